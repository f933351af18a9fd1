package models

import "time"

// BookingKind distinguishes the two bookable products.
type BookingKind string

const (
	KindAppointment BookingKind = "APPOINTMENT"
	KindLabTest     BookingKind = "LAB_TEST"
)

// Valid reports whether the kind is one of the known booking kinds.
func (k BookingKind) Valid() bool {
	return k == KindAppointment || k == KindLabTest
}

// BookingDraft is the ephemeral per-attempt booking intent. It exists only
// inside a checkout session and is never persisted on its own.
type BookingDraft struct {
	Kind                 BookingKind `json:"kind"`
	SubjectID            string      `json:"subjectId"` // doctor ID or lab test ID
	PatientID            string      `json:"patientId"`
	Date                 string      `json:"date,omitempty"` // "YYYY-MM-DD"
	Slot                 string      `json:"slot,omitempty"`
	CollectionPreference string      `json:"collectionPreference,omitempty"` // lab tests: "home" or "center"
	BasePrice            float64     `json:"basePrice"`
}

// BookingRef is the opaque reference to a backend-owned booking record.
// The service never re-derives backend state from it.
type BookingRef struct {
	ID   string      `json:"id"`
	Kind BookingKind `json:"kind"`
}

// ContactInfo is payer contact data passed through to the gateway prefill.
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Booking mirrors the backend booking record as returned by detail lookups.
type Booking struct {
	ID        string      `json:"id"`
	Kind      BookingKind `json:"kind"`
	PatientID string      `json:"patientId"`
	SubjectID string      `json:"subjectId"`
	Date      string      `json:"date,omitempty"`
	Slot      string      `json:"slot,omitempty"`
	Paid      bool        `json:"paid"`
	CreatedAt time.Time   `json:"createdAt"`
}
