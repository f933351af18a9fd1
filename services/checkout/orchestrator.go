package checkout

import (
	"context"
	"errors"
	"time"

	"medibook/models"
	"medibook/services/coreapi"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// StartAttempt opens a new checkout attempt for a finalized booking draft.
// The draft dies with the session; only the attempt id leaves this layer.
func (s *DefaultCheckoutService) StartAttempt(ctx context.Context, draft models.BookingDraft) (*models.CheckoutSession, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	fees, err := ComputeFees(draft.BasePrice, s.Fees.RegistrationFee(draft.Kind), s.Fees.TaxRate)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}

	session := &models.CheckoutSession{
		AttemptID: uuid.New().String(),
		PatientID: draft.PatientID,
		Draft:     draft,
		Fees:      fees,
		CreatedAt: time.Now(),
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	if err := s.Journal.Create(ctx, &models.CheckoutAttempt{
		AttemptID: session.AttemptID,
		PatientID: draft.PatientID,
		Kind:      draft.Kind,
		Status:    models.AttemptStarted,
	}); err != nil {
		// The journal is an audit trail, not a gate: the attempt proceeds.
		s.Logger.Error("failed to journal checkout attempt",
			zap.String("attemptId", session.AttemptID), zap.Error(err))
	}

	s.Logger.Info("checkout attempt started",
		zap.String("attemptId", session.AttemptID),
		zap.String("kind", string(draft.Kind)),
		zap.Float64("total", fees.TotalAmount),
	)
	return session, nil
}

// ensureBooking creates the backend booking exactly once per attempt. A
// retry with an existing reference returns it unchanged without a second
// create call.
func (s *DefaultCheckoutService) ensureBooking(ctx context.Context, session *models.CheckoutSession) (models.BookingRef, error) {
	if session.Booking != nil && session.Booking.ID != "" && session.Booking.Kind == session.Draft.Kind {
		return *session.Booking, nil
	}

	ref, err := s.Core.CreateBooking(ctx, session.Draft)
	if err != nil {
		var apiErr *coreapi.APIError
		if errors.As(err, &apiErr) {
			// Surface the backend message; the user re-submits explicitly.
			return models.BookingRef{}, NewBackendError(apiErr.Message, err)
		}
		return models.BookingRef{}, NewBackendError("booking could not be created", err)
	}

	session.Booking = &ref
	if err := s.Sessions.Save(ctx, session); err != nil {
		return models.BookingRef{}, err
	}

	if err := s.Journal.UpdateStatus(ctx, session.AttemptID, models.AttemptBookingCreated,
		bson.M{"booking_id": ref.ID}); err != nil {
		s.Logger.Error("failed to journal booking creation",
			zap.String("attemptId", session.AttemptID), zap.Error(err))
	}

	s.Logger.Info("booking created",
		zap.String("attemptId", session.AttemptID),
		zap.String("bookingId", ref.ID),
	)
	return ref, nil
}

func validateDraft(draft models.BookingDraft) error {
	if !draft.Kind.Valid() {
		return NewValidationError("bookingKind must be APPOINTMENT or LAB_TEST")
	}
	if draft.SubjectID == "" {
		return NewValidationError("subjectId is required")
	}
	if draft.PatientID == "" {
		return NewValidationError("patientId is required")
	}
	if draft.BasePrice <= 0 {
		return NewValidationError("basePrice must be positive")
	}
	if draft.Kind == models.KindAppointment {
		if draft.Date == "" {
			return NewValidationError("date is required for appointments")
		}
		if draft.Slot == "" {
			return NewValidationError("slot is required for appointments")
		}
	}
	if draft.Kind == models.KindLabTest && draft.CollectionPreference == "" {
		return NewValidationError("collectionPreference is required for lab tests")
	}
	return nil
}
