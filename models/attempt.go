package models

import "time"

// Checkout attempt journal statuses, in pipeline order.
const (
	AttemptStarted        = "started"
	AttemptBookingCreated = "booking_created"
	AttemptOrderOpened    = "order_opened"
	AttemptVerified       = "verified"
	AttemptVerifyFailed   = "verify_failed"
	AttemptAbandoned      = "abandoned"
	AttemptResolved       = "resolved"
	AttemptReconciled     = "reconciled"
)

// CheckoutAttempt is the persisted journal entry for one checkout attempt.
// It exists for operators: how far did the attempt get, which amount was
// shown, and from which source. A booking existing without a completed
// payment is an expected intermediate state here.
type CheckoutAttempt struct {
	AttemptID    string      `bson:"attempt_id" json:"attemptId"`
	PatientID    string      `bson:"patient_id" json:"patientId"`
	Kind         BookingKind `bson:"kind" json:"kind"`
	BookingID    string      `bson:"booking_id,omitempty" json:"bookingId,omitempty"`
	OrderID      string      `bson:"order_id,omitempty" json:"orderId,omitempty"`
	PaymentID    string      `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	Status       string      `bson:"status" json:"status"`
	Amount       float64     `bson:"amount,omitempty" json:"amount,omitempty"`
	AmountSource string      `bson:"amount_source,omitempty" json:"amountSource,omitempty"`
	FailureNote  string      `bson:"failure_note,omitempty" json:"failureNote,omitempty"`
	CreatedAt    time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `bson:"updated_at" json:"updatedAt"`
}
