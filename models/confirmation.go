package models

import "time"

// ResolveState is the confirmation resolver's state machine.
type ResolveState string

const (
	StateAwaitingParams ResolveState = "AWAITING_PARAMS"
	StateResolving      ResolveState = "RESOLVING"
	StateResolved       ResolveState = "RESOLVED"
	StateError          ResolveState = "ERROR"
)

// ReturnParams are the durable identifiers carried on the confirmation
// return URL. They survive even when the handoff slot is empty.
type ReturnParams struct {
	PatientID string      `json:"patientId"`
	Kind      BookingKind `json:"kind"`
	PaymentID string      `json:"paymentId"`
	OrderID   string      `json:"orderId"`
	BookingID string      `json:"bookingId"`
}

// ConfirmationView is the display model rendered after a checkout attempt
// returns from the gateway.
type ConfirmationView struct {
	State      ResolveState   `json:"state"`
	Kind       BookingKind    `json:"kind,omitempty"`
	BookingID  string         `json:"bookingId,omitempty"`
	PaymentID  string         `json:"paymentId,omitempty"`
	OrderID    string         `json:"orderId,omitempty"`
	Paid       bool           `json:"paid"`
	Amount     ResolvedAmount `json:"amount"`
	Degraded   bool           `json:"degraded,omitempty"` // true when the fallback amount was shown
	Message    string         `json:"message,omitempty"`
	ResolvedAt time.Time      `json:"resolvedAt,omitempty"`
}
