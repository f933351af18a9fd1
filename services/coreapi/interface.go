package coreapi

import (
	"context"

	"medibook/models"
)

// Client is the upstream core backend: bookings, payment orders,
// verification, and post-redirect payment detail. The backend owns all
// booking and payment state; this service only forwards and renders.
type Client interface {
	CreateBooking(ctx context.Context, draft models.BookingDraft) (models.BookingRef, error)
	CreateOrder(ctx context.Context, booking models.BookingRef, amount float64, currency string, payer models.ContactInfo) (models.Order, error)
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (models.VerificationResult, error)
	PaymentDetail(ctx context.Context, paymentID string) (models.VerificationResult, error)
}
