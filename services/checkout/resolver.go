package checkout

import (
	"context"
	"time"

	"medibook/database/repository"
	"medibook/models"
	"medibook/services/coreapi"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ConfirmationResolver renders the post-redirect confirmation state. Each
// call walks AWAITING_PARAMS -> RESOLVING -> RESOLVED or ERROR; a retry
// after ERROR is simply another call, which by then finds the handoff slot
// already consumed and relies on backend lookups alone.
type ConfirmationResolver struct {
	Handoff HandoffStore
	Core    coreapi.Client
	Journal repository.AttemptRepository
	Logger  *zap.Logger
}

// Resolve turns the return-URL parameters into a confirmation view. The
// view's state walks the machine as resolution progresses and is returned
// in a terminal state: RESOLVED, or ERROR when the ids are missing or no
// source could answer.
func (r *ConfirmationResolver) Resolve(ctx context.Context, params models.ReturnParams) (*models.ConfirmationView, error) {
	view := &models.ConfirmationView{State: models.StateAwaitingParams}

	// Without the durable ids there is nothing to resolve.
	if params.PaymentID == "" || params.BookingID == "" || !params.Kind.Valid() {
		view.State = models.StateError
		view.Message = "missing payment or booking reference"
		return view, NewValidationError("paymentId and a booking id are required")
	}

	view.State = models.StateResolving
	view.Kind = params.Kind
	view.BookingID = params.BookingID
	view.PaymentID = params.PaymentID
	view.OrderID = params.OrderID

	// Consume the handoff slot first. Delete-on-read means a manual refresh
	// can never replay a stale record.
	handoff, err := r.Handoff.Consume(ctx, params.PatientID, params.Kind)
	if err != nil {
		r.Logger.Warn("handoff slot unreadable, continuing with backend lookups",
			zap.String("paymentId", params.PaymentID), zap.Error(err))
		handoff = nil
	}
	if handoff != nil && handoff.GatewayPaymentID != params.PaymentID {
		// A slot left over from some other attempt. Discard it.
		r.Logger.Warn("handoff record does not match return URL, discarding",
			zap.String("handoffPaymentId", handoff.GatewayPaymentID),
			zap.String("urlPaymentId", params.PaymentID))
		handoff = nil
	}

	lookup, lookupErr := r.Core.PaymentDetail(ctx, params.PaymentID)
	var lookupPtr *models.VerificationResult
	if lookupErr != nil {
		r.Logger.Warn("payment detail lookup failed",
			zap.String("paymentId", params.PaymentID), zap.Error(lookupErr))
	} else {
		lookupPtr = &lookup
	}

	if handoff == nil && lookupPtr == nil {
		// Nothing authoritative to show. The caller may retry, which by then
		// relies on backend lookups alone.
		view.State = models.StateError
		view.Message = "payment status could not be resolved, please retry"
		return view, NewResolutionGapError("no handoff record and payment detail lookup failed", lookupErr)
	}

	amount := ResolveDisplayAmount(handoff, lookupPtr, nil, r.Logger)

	// Paid status comes from the fresh backend answer when there is one;
	// otherwise from the handoff record, which only ever exists because a
	// verification succeeded.
	paid := handoff != nil
	if lookupPtr != nil {
		paid = lookupPtr.Success
	}

	view.State = models.StateResolved
	view.Paid = paid
	view.Amount = amount
	view.Degraded = amount.Source == models.AmountSourceFallback
	view.ResolvedAt = time.Now()
	if !paid {
		view.Message = "payment not confirmed"
	}

	r.journalResolution(ctx, params.PaymentID, view)
	return view, nil
}

func (r *ConfirmationResolver) journalResolution(ctx context.Context, paymentID string, view *models.ConfirmationView) {
	attempt, err := r.Journal.GetByPaymentID(ctx, paymentID)
	if err != nil {
		// Attempts that never journaled a payment id (for example when the
		// journal write itself failed earlier) are not an error here.
		r.Logger.Debug("no journaled attempt for payment",
			zap.String("paymentId", paymentID), zap.Error(err))
		return
	}
	if err := r.Journal.UpdateStatus(ctx, attempt.AttemptID, models.AttemptResolved, bson.M{
		"amount":        view.Amount.Value,
		"amount_source": string(view.Amount.Source),
	}); err != nil {
		r.Logger.Error("failed to journal confirmation resolution",
			zap.String("attemptId", attempt.AttemptID), zap.Error(err))
	}
}
