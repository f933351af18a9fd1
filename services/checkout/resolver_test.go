package checkout

import (
	"context"
	"testing"
	"time"

	"medibook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(h *testHarness) *ConfirmationResolver {
	return &ConfirmationResolver{
		Handoff: h.handoff,
		Core:    h.core,
		Journal: h.journal,
		Logger:  zap.NewNop(),
	}
}

func returnParams() models.ReturnParams {
	return models.ReturnParams{
		PatientID: "pat-7",
		Kind:      models.KindAppointment,
		PaymentID: "pay_1",
		OrderID:   "order_1",
		BookingID: "bk-1",
	}
}

func writeHandoff(t *testing.T, h *testHarness, rec models.HandoffRecord) {
	t.Helper()
	if rec.Version == 0 {
		rec.Version = models.HandoffSchemaVersion
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	require.NoError(t, h.handoff.Write(context.Background(), "pat-7", &rec))
}

func TestResolve_MissingParamsIsTerminalError(t *testing.T) {
	h := newTestHarness()
	r := newTestResolver(h)

	cases := []struct {
		name   string
		mutate func(*models.ReturnParams)
	}{
		{"no payment id", func(p *models.ReturnParams) { p.PaymentID = "" }},
		{"no booking id", func(p *models.ReturnParams) { p.BookingID = "" }},
		{"no kind", func(p *models.ReturnParams) { p.Kind = "" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			params := returnParams()
			c.mutate(&params)

			view, err := r.Resolve(context.Background(), params)
			require.Error(t, err)
			assert.Equal(t, CodeValidation, ErrorCode(err))
			assert.Equal(t, models.StateError, view.State)
			assert.Zero(t, h.core.detailCalls, "no lookups before the ids arrive")
		})
	}
}

func TestResolve_HappyPathWithHandoffAndLookup(t *testing.T) {
	h := newTestHarness()
	r := newTestResolver(h)
	h.core.detailResult = models.VerificationResult{Success: true, Amount: 1357, PaymentID: "pay_1"}
	writeHandoff(t, h, models.HandoffRecord{
		Kind:             models.KindAppointment,
		BookingID:        "bk-1",
		GatewayPaymentID: "pay_1",
		ConfirmedAmount:  1357,
		ComputedAmount:   1357,
	})

	view, err := r.Resolve(context.Background(), returnParams())
	require.NoError(t, err)

	assert.Equal(t, models.StateResolved, view.State)
	assert.True(t, view.Paid)
	assert.Equal(t, 1357.0, view.Amount.Value)
	assert.Equal(t, models.AmountSourceBackend, view.Amount.Source)
	assert.False(t, view.Degraded)
	assert.False(t, view.ResolvedAt.IsZero())
}

func TestResolve_HandoffIsReadOnce(t *testing.T) {
	h := newTestHarness()
	r := newTestResolver(h)
	h.core.detailResult = models.VerificationResult{Success: true, Amount: 1357}
	writeHandoff(t, h, models.HandoffRecord{
		Kind:             models.KindAppointment,
		GatewayPaymentID: "pay_1",
		ConfirmedAmount:  1357,
	})

	_, err := r.Resolve(context.Background(), returnParams())
	require.NoError(t, err)

	// A manual refresh resolves again from backend lookups alone.
	view, err := r.Resolve(context.Background(), returnParams())
	require.NoError(t, err)
	assert.Equal(t, models.StateResolved, view.State)
	assert.True(t, view.Paid)
	assert.Equal(t, models.AmountSourceBackend, view.Amount.Source)
	assert.Empty(t, h.handoff.slots)
}

func TestResolve_StaleHandoffDiscarded(t *testing.T) {
	h := newTestHarness()
	r := newTestResolver(h)
	h.core.detailResult = models.VerificationResult{Success: true, Amount: 766}
	writeHandoff(t, h, models.HandoffRecord{
		Kind:             models.KindAppointment,
		GatewayPaymentID: "pay_OLD",
		ConfirmedAmount:  9999,
	})

	view, err := r.Resolve(context.Background(), returnParams())
	require.NoError(t, err)

	// The mismatched record must not leak its amount into this resolution.
	assert.Equal(t, 766.0, view.Amount.Value)
	assert.Equal(t, models.AmountSourceBackend, view.Amount.Source)
}

func TestResolve_NoHandoffNoLookupIsResolutionGap(t *testing.T) {
	h := newTestHarness()
	r := newTestResolver(h)
	h.core.detailErr = assert.AnError

	view, err := r.Resolve(context.Background(), returnParams())
	require.Error(t, err)
	assert.Equal(t, CodeResolutionGap, ErrorCode(err))
	assert.Equal(t, models.StateError, view.State)
	assert.Equal(t, "pay_1", view.PaymentID, "the ids survive for a retry")
}

func TestResolve_HandoffAloneWhenLookupFails(t *testing.T) {
	h := newTestHarness()
	r := newTestResolver(h)
	h.core.detailErr = assert.AnError
	writeHandoff(t, h, models.HandoffRecord{
		Kind:             models.KindAppointment,
		GatewayPaymentID: "pay_1",
		ConfirmedAmount:  1357,
	})

	view, err := r.Resolve(context.Background(), returnParams())
	require.NoError(t, err)

	assert.Equal(t, models.StateResolved, view.State)
	assert.True(t, view.Paid, "a handoff record only exists after verified payment")
	assert.Equal(t, models.AmountSourceHandoff, view.Amount.Source)
}

func TestResolve_LookupSaysUnpaid(t *testing.T) {
	h := newTestHarness()
	r := newTestResolver(h)
	h.core.detailResult = models.VerificationResult{Success: false}
	writeHandoff(t, h, models.HandoffRecord{
		Kind:             models.KindAppointment,
		GatewayPaymentID: "pay_1",
		ConfirmedAmount:  1357,
	})

	view, err := r.Resolve(context.Background(), returnParams())
	require.NoError(t, err)

	// The fresh backend answer outranks the handoff record for paid status.
	assert.False(t, view.Paid)
	assert.NotEmpty(t, view.Message)
}

func TestResolve_ReturnedViewsAreTerminal(t *testing.T) {
	terminal := []models.ResolveState{models.StateResolved, models.StateError}

	// Missing params, resolution gap, and a full resolve: every returned
	// view has left AWAITING_PARAMS and RESOLVING behind.
	h := newTestHarness()
	r := newTestResolver(h)

	view, _ := r.Resolve(context.Background(), models.ReturnParams{})
	assert.Contains(t, terminal, view.State)

	h.core.detailErr = assert.AnError
	view, _ = r.Resolve(context.Background(), returnParams())
	assert.Contains(t, terminal, view.State)

	h.core.detailErr = nil
	h.core.detailResult = models.VerificationResult{Success: true, Amount: 1357}
	view, err := r.Resolve(context.Background(), returnParams())
	require.NoError(t, err)
	assert.Contains(t, terminal, view.State)
}

func TestResolve_JournalsResolution(t *testing.T) {
	h := newTestHarness()
	r := newTestResolver(h)
	h.core.detailResult = models.VerificationResult{Success: true, Amount: 1357}
	require.NoError(t, h.journal.Create(context.Background(), &models.CheckoutAttempt{
		AttemptID: "att-1",
		PatientID: "pat-7",
		Kind:      models.KindAppointment,
		PaymentID: "pay_1",
		Status:    models.AttemptVerified,
	}))

	_, err := r.Resolve(context.Background(), returnParams())
	require.NoError(t, err)

	attempt, err := h.journal.GetByAttemptID(context.Background(), "att-1")
	require.NoError(t, err)
	assert.Equal(t, models.AttemptResolved, attempt.Status)
	assert.Equal(t, 1357.0, attempt.Amount)
	assert.Equal(t, string(models.AmountSourceBackend), attempt.AmountSource)
}
