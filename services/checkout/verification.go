package checkout

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"medibook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// GatewayResultResponse tells the patient app what to do after it reports a
// gateway outcome. Only a verified payment carries a redirect URL.
type GatewayResultResponse struct {
	Status      string `json:"status"` // "verified", "failed", "dismissed"
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// HandleGatewayResult consumes the checkout widget's terminal outcome. All
// three outcomes clear the in-flight lock; only a backend-verified success
// produces a confirmed state. The widget's own success signal is evidence,
// never authority.
func (s *DefaultCheckoutService) HandleGatewayResult(ctx context.Context, attemptID string, result models.GatewayResult) (*GatewayResultResponse, error) {
	session, err := s.Sessions.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	defer func() {
		if rerr := s.Sessions.ReleaseLock(ctx, attemptID); rerr != nil {
			s.Logger.Error("failed to release in-flight lock",
				zap.String("attemptId", attemptID), zap.Error(rerr))
		}
	}()

	switch result.Outcome {
	case models.GatewayDismissed:
		// User closed the widget with no callback. The booking stays; it is
		// reconciled by backend reporting, never rolled back from here.
		s.journalNote(ctx, attemptID, models.AttemptAbandoned, "gateway checkout dismissed")
		s.Logger.Info("gateway checkout dismissed", zap.String("attemptId", attemptID))
		return &GatewayResultResponse{Status: "dismissed"}, nil

	case models.GatewayFailed:
		s.journalNote(ctx, attemptID, models.AttemptAbandoned, "gateway failure: "+result.FailureReason)
		s.Logger.Warn("gateway checkout failed",
			zap.String("attemptId", attemptID),
			zap.String("reason", result.FailureReason),
		)
		return &GatewayResultResponse{Status: "failed"}, NewGatewayError(result.FailureReason)

	case models.GatewaySuccess:
		return s.verifyAndHandoff(ctx, session, result)

	default:
		return nil, NewValidationError(fmt.Sprintf("unknown gateway outcome %q", result.Outcome))
	}
}

// verifyAndHandoff forwards the gateway proof to the backend and, only on an
// authoritative success, writes the handoff record before handing back the
// redirect URL. The next page loads in a fresh process state; the record
// must be durable before navigation starts.
func (s *DefaultCheckoutService) verifyAndHandoff(ctx context.Context, session *models.CheckoutSession, result models.GatewayResult) (*GatewayResultResponse, error) {
	if result.PaymentID == "" || result.OrderID == "" || result.Signature == "" {
		return nil, NewValidationError("gateway success payload is missing proof fields")
	}
	if session.Booking == nil {
		return nil, NewVerificationError("no booking recorded for this attempt", nil)
	}

	verification, err := s.Core.VerifyPayment(ctx, result.OrderID, result.PaymentID, result.Signature)
	if err != nil {
		// Includes unparseable verification payloads: never downgraded to
		// success.
		s.journalNote(ctx, session.AttemptID, models.AttemptVerifyFailed, err.Error())
		return nil, NewVerificationError("payment verification failed", err)
	}
	if !verification.Success {
		s.journalNote(ctx, session.AttemptID, models.AttemptVerifyFailed, "backend reported not verified")
		s.Logger.Warn("payment verification rejected",
			zap.String("attemptId", session.AttemptID),
			zap.String("paymentId", result.PaymentID),
		)
		return nil, NewVerificationError("payment could not be verified", nil)
	}

	rec := &models.HandoffRecord{
		Version:          models.HandoffSchemaVersion,
		Kind:             session.Draft.Kind,
		BookingID:        session.Booking.ID,
		GatewayPaymentID: result.PaymentID,
		GatewayOrderID:   result.OrderID,
		ConfirmedAmount:  verification.Amount,
		ComputedAmount:   session.Fees.TotalAmount,
		RawVerification:  verification.Raw,
		CreatedAt:        time.Now(),
	}
	if err := s.Handoff.Write(ctx, session.PatientID, rec); err != nil {
		// Verified but no handoff slot: the confirmation page still works
		// through the backend lookup path, so log and continue.
		s.Logger.Error("failed to write handoff record",
			zap.String("attemptId", session.AttemptID), zap.Error(err))
	}

	if err := s.Journal.UpdateStatus(ctx, session.AttemptID, models.AttemptVerified, bson.M{
		"payment_id": result.PaymentID,
		"amount":     verification.Amount,
	}); err != nil {
		s.Logger.Error("failed to journal verification",
			zap.String("attemptId", session.AttemptID), zap.Error(err))
	}

	// The attempt state is no longer needed after the redirect; the
	// confirmation page works from the handoff slot and the URL ids.
	if err := s.Sessions.Delete(ctx, session.AttemptID); err != nil {
		s.Logger.Error("failed to delete checkout session",
			zap.String("attemptId", session.AttemptID), zap.Error(err))
	}

	s.Logger.Info("payment verified",
		zap.String("attemptId", session.AttemptID),
		zap.String("paymentId", result.PaymentID),
		zap.Float64("amount", verification.Amount),
	)
	return &GatewayResultResponse{
		Status:      "verified",
		RedirectURL: s.confirmationURL(session, result),
	}, nil
}

// confirmationURL carries the minimum durable identifiers as query
// parameters, so the confirmation page can resolve even with an empty
// handoff slot.
func (s *DefaultCheckoutService) confirmationURL(session *models.CheckoutSession, result models.GatewayResult) string {
	q := url.Values{}
	q.Set("paymentId", result.PaymentID)
	q.Set("orderId", result.OrderID)
	switch session.Draft.Kind {
	case models.KindLabTest:
		q.Set("labBookingId", session.Booking.ID)
	default:
		q.Set("appointmentId", session.Booking.ID)
	}
	return s.ReturnURL + "?" + q.Encode()
}

func (s *DefaultCheckoutService) journalNote(ctx context.Context, attemptID, status, note string) {
	if err := s.Journal.UpdateStatus(ctx, attemptID, status, bson.M{"failure_note": note}); err != nil {
		s.Logger.Error("failed to journal attempt note",
			zap.String("attemptId", attemptID), zap.Error(err))
	}
}
