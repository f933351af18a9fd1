package checkout

import (
	"context"

	"medibook/database/repository"
	"medibook/models"
	"medibook/services/coreapi"
	"medibook/services/gateway"

	"go.uber.org/zap"
)

// CheckoutService drives one checkout attempt from draft to gateway handoff.
type CheckoutService interface {
	StartAttempt(ctx context.Context, draft models.BookingDraft) (*models.CheckoutSession, error)
	OpenCheckout(ctx context.Context, attemptID string, payer models.ContactInfo) (gateway.CheckoutOptions, error)
	HandleGatewayResult(ctx context.Context, attemptID string, result models.GatewayResult) (*GatewayResultResponse, error)
}

// TaskEnqueuer schedules background reconciliation for an attempt.
type TaskEnqueuer interface {
	EnqueueReconcile(attemptID string, delaySeconds int) error
}

// FeePolicy holds the platform fee inputs fed to ComputeFees.
type FeePolicy struct {
	TaxRate           float64
	AppointmentRegFee float64
	LabTestRegFee     float64
	Currency          string
}

// RegistrationFee returns the fixed registration fee for a booking kind.
func (p FeePolicy) RegistrationFee(kind models.BookingKind) float64 {
	if kind == models.KindLabTest {
		return p.LabTestRegFee
	}
	return p.AppointmentRegFee
}

// DefaultCheckoutService implements CheckoutService.
type DefaultCheckoutService struct {
	Sessions SessionStore
	Handoff  HandoffStore
	Core     coreapi.Client
	Journal  repository.AttemptRepository
	Tasks    TaskEnqueuer // optional; nil disables background reconciliation
	Fees     FeePolicy
	// ReturnURL is the confirmation page path the gateway redirect lands on.
	ReturnURL string
	Logger    *zap.Logger
}
