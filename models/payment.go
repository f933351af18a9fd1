package models

import "encoding/json"

// Order is the backend-created payment intent tied 1:1 to a booking. All
// fields are backend-supplied; the service never recomputes the charge
// amount client-side.
type Order struct {
	GatewayKey string      `json:"gatewayKey"`
	OrderID    string      `json:"orderId"`
	Amount     float64     `json:"amount"`
	Currency   string      `json:"currency"`
	Prefill    ContactInfo `json:"prefill"`
}

// GatewayOutcome is the terminal outcome reported by the checkout widget.
type GatewayOutcome string

const (
	GatewaySuccess   GatewayOutcome = "success"
	GatewayFailed    GatewayOutcome = "failed"
	GatewayDismissed GatewayOutcome = "dismissed"
)

// GatewayResult is the payload handed back by the checkout widget. It is
// evidence to submit for verification, never a fact to render.
type GatewayResult struct {
	Outcome       GatewayOutcome `json:"outcome"`
	PaymentID     string         `json:"paymentId,omitempty"`
	OrderID       string         `json:"orderId,omitempty"`
	Signature     string         `json:"signature,omitempty"`
	FailureReason string         `json:"failureReason,omitempty"`
}

// VerificationResult is the backend's authoritative answer to "was this
// paid". It is the single source of truth for payment status.
type VerificationResult struct {
	Success   bool            `json:"success"`
	Amount    float64         `json:"amount"`
	PaymentID string          `json:"paymentId"`
	Booking   BookingRef      `json:"booking"`
	Raw       json.RawMessage `json:"-"`
}
