package checkout

import (
	"testing"

	"medibook/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNormalizeAmount(t *testing.T) {
	assert.Equal(t, 1500.0, NormalizeAmount(150000), "minor units are converted")
	assert.Equal(t, 1500.0, NormalizeAmount(1500), "major units pass through")
	assert.Equal(t, 500.0, NormalizeAmount(50000), "threshold itself is major units")
	assert.Equal(t, 1357.0, NormalizeAmount(1357))
}

func TestResolveDisplayAmount_BackendLookupWins(t *testing.T) {
	handoff := &models.HandoffRecord{ConfirmedAmount: 999, ComputedAmount: 888}
	lookup := &models.VerificationResult{Success: true, Amount: 1357}

	resolved := ResolveDisplayAmount(handoff, lookup, nil, zap.NewNop())
	assert.Equal(t, 1357.0, resolved.Value)
	assert.Equal(t, models.AmountSourceBackend, resolved.Source)
}

func TestResolveDisplayAmount_FailedLookupFallsToHandoff(t *testing.T) {
	handoff := &models.HandoffRecord{ConfirmedAmount: 1357, ComputedAmount: 888}
	lookup := &models.VerificationResult{Success: false, Amount: 1357}

	resolved := ResolveDisplayAmount(handoff, lookup, nil, zap.NewNop())
	assert.Equal(t, 1357.0, resolved.Value)
	assert.Equal(t, models.AmountSourceHandoff, resolved.Source)
}

func TestResolveDisplayAmount_HandoffComputedAmount(t *testing.T) {
	handoff := &models.HandoffRecord{ComputedAmount: 766}

	resolved := ResolveDisplayAmount(handoff, nil, nil, zap.NewNop())
	assert.Equal(t, 766.0, resolved.Value)
	assert.Equal(t, models.AmountSourceComputed, resolved.Source)
}

func TestResolveDisplayAmount_DirectComputedFees(t *testing.T) {
	fees := &models.FeeBreakdown{TotalAmount: 1357}

	resolved := ResolveDisplayAmount(nil, nil, fees, zap.NewNop())
	assert.Equal(t, 1357.0, resolved.Value)
	assert.Equal(t, models.AmountSourceComputed, resolved.Source)
}

func TestResolveDisplayAmount_MinorUnitBackendAmount(t *testing.T) {
	lookup := &models.VerificationResult{Success: true, Amount: 135700}

	resolved := ResolveDisplayAmount(nil, lookup, nil, zap.NewNop())
	assert.Equal(t, 1357.0, resolved.Value)
	assert.Equal(t, models.AmountSourceBackend, resolved.Source)
}

func TestResolveDisplayAmount_FallbackIsTaggedAndLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	resolved := ResolveDisplayAmount(nil, nil, nil, zap.New(core))
	assert.Equal(t, 500.0, resolved.Value)
	assert.Equal(t, models.AmountSourceFallback, resolved.Source)

	entries := logs.FilterLevelExact(zap.WarnLevel).All()
	assert.NotEmpty(t, entries, "fallback use must be logged, never silent")
}
