package models

import "time"

// CheckoutSession holds the attempt-scoped state between starting a checkout
// and the gateway redirect. It lives in the session cache, not the handoff
// slot: it is needed before the reload, not after.
type CheckoutSession struct {
	AttemptID string       `json:"attemptId"`
	PatientID string       `json:"patientId"`
	Draft     BookingDraft `json:"draft"`
	Fees      FeeBreakdown `json:"fees"`
	Booking   *BookingRef  `json:"booking,omitempty"` // set once, reused on retries
	Order     *Order       `json:"order,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}
