package checkout

import (
	"medibook/models"

	"go.uber.org/zap"
)

// minorUnitThreshold separates major-unit amounts from minor-unit (paisa)
// amounts. No realistic booking total reaches this in rupees, so anything
// above it is taken as paisa and divided by 100. This is the single place
// that rule lives.
const minorUnitThreshold = 50000

// fallbackDisplayAmount is shown only when every real amount source is
// unavailable. Hitting it means a reconciliation gap; it is always logged
// and tagged, never used silently.
const fallbackDisplayAmount = 500

// NormalizeAmount converts a candidate amount to major currency units.
func NormalizeAmount(v float64) float64 {
	if v > minorUnitThreshold {
		return v / 100
	}
	return v
}

// ResolveDisplayAmount picks the one amount to display from the available
// candidate sources, highest authority first:
//
//  1. a fresh backend lookup keyed by the payment id from the return URL
//  2. the backend amount captured in the handoff record at verification time
//  3. the locally recomputed fee total (captured in the handoff, or passed
//     directly when the original inputs are still in hand)
//  4. the fixed fallback constant
//
// The result is tagged with its source so fallback usage stays observable.
func ResolveDisplayAmount(handoff *models.HandoffRecord, lookup *models.VerificationResult, computed *models.FeeBreakdown, logger *zap.Logger) models.ResolvedAmount {
	if lookup != nil && lookup.Success && lookup.Amount > 0 {
		return models.ResolvedAmount{
			Value:  NormalizeAmount(lookup.Amount),
			Source: models.AmountSourceBackend,
		}
	}

	if handoff != nil && handoff.ConfirmedAmount > 0 {
		return models.ResolvedAmount{
			Value:  NormalizeAmount(handoff.ConfirmedAmount),
			Source: models.AmountSourceHandoff,
		}
	}

	if handoff != nil && handoff.ComputedAmount > 0 {
		return models.ResolvedAmount{
			Value:  NormalizeAmount(handoff.ComputedAmount),
			Source: models.AmountSourceComputed,
		}
	}

	if computed != nil && computed.TotalAmount > 0 {
		return models.ResolvedAmount{
			Value:  NormalizeAmount(computed.TotalAmount),
			Source: models.AmountSourceComputed,
		}
	}

	logger.Warn("amount reconciliation gap: no amount source available, using fallback constant",
		zap.Float64("fallback", fallbackDisplayAmount))
	return models.ResolvedAmount{
		Value:  fallbackDisplayAmount,
		Source: models.AmountSourceFallback,
	}
}
