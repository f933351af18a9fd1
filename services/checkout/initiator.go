package checkout

import (
	"context"
	"errors"

	"medibook/models"
	"medibook/services/coreapi"
	"medibook/services/gateway"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// reconcileDelaySeconds is how long the reconciliation worker waits before
// sweeping an attempt that opened an order but never reported back.
const reconcileDelaySeconds = 15 * 60

// OpenCheckout ensures the booking exists, asks the backend for a payment
// order, and returns the options the patient app opens the gateway widget
// with. The charge amount is backend-supplied end to end; the locally
// computed total is used only to request the order and for display.
func (s *DefaultCheckoutService) OpenCheckout(ctx context.Context, attemptID string, payer models.ContactInfo) (gateway.CheckoutOptions, error) {
	session, err := s.Sessions.Get(ctx, attemptID)
	if err != nil {
		return gateway.CheckoutOptions{}, err
	}

	// Guard against a double-click on pay: one in-flight payment per attempt.
	ok, err := s.Sessions.AcquireLock(ctx, attemptID)
	if err != nil {
		return gateway.CheckoutOptions{}, err
	}
	if !ok {
		return gateway.CheckoutOptions{}, NewInFlightError(attemptID)
	}

	opts, err := s.openCheckoutLocked(ctx, session, payer)
	if err != nil {
		// The lock guards the gateway round-trip, not a failed setup; release
		// it so the user can retry explicitly.
		if rerr := s.Sessions.ReleaseLock(ctx, attemptID); rerr != nil {
			s.Logger.Error("failed to release in-flight lock",
				zap.String("attemptId", attemptID), zap.Error(rerr))
		}
		return gateway.CheckoutOptions{}, err
	}
	return opts, nil
}

func (s *DefaultCheckoutService) openCheckoutLocked(ctx context.Context, session *models.CheckoutSession, payer models.ContactInfo) (gateway.CheckoutOptions, error) {
	booking, err := s.ensureBooking(ctx, session)
	if err != nil {
		return gateway.CheckoutOptions{}, err
	}

	order, err := s.Core.CreateOrder(ctx, booking, session.Fees.TotalAmount, s.Fees.Currency, payer)
	if err != nil {
		var apiErr *coreapi.APIError
		if errors.As(err, &apiErr) {
			return gateway.CheckoutOptions{}, NewBackendError(apiErr.Message, err)
		}
		return gateway.CheckoutOptions{}, NewBackendError("payment order could not be created", err)
	}

	// An order missing its gateway key, id, or amount cannot be charged;
	// refuse rather than hand the widget a partial order.
	opts, err := gateway.BuildOptions(order, payer)
	if err != nil {
		return gateway.CheckoutOptions{}, NewBackendError(err.Error(), err)
	}

	session.Order = &order
	if err := s.Sessions.Save(ctx, session); err != nil {
		return gateway.CheckoutOptions{}, err
	}

	if err := s.Journal.UpdateStatus(ctx, session.AttemptID, models.AttemptOrderOpened,
		bson.M{"order_id": order.OrderID, "amount": order.Amount}); err != nil {
		s.Logger.Error("failed to journal order creation",
			zap.String("attemptId", session.AttemptID), zap.Error(err))
	}

	if s.Tasks != nil {
		// Sweep this attempt later in case the user abandons the widget.
		if err := s.Tasks.EnqueueReconcile(session.AttemptID, reconcileDelaySeconds); err != nil {
			s.Logger.Error("failed to enqueue reconciliation",
				zap.String("attemptId", session.AttemptID), zap.Error(err))
		}
	}

	s.Logger.Info("checkout opened",
		zap.String("attemptId", session.AttemptID),
		zap.String("orderId", order.OrderID),
		zap.Float64("amount", order.Amount),
	)
	return opts, nil
}
