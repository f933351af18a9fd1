package models

import (
	"encoding/json"
	"time"
)

// HandoffSchemaVersion is bumped whenever the HandoffRecord layout changes.
// Readers reject records with an unknown version instead of guessing.
const HandoffSchemaVersion = 1

// HandoffRecord is the only data that crosses the gateway-redirect reload
// boundary. It is written once after a successful verification and consumed
// exactly once by the confirmation resolver.
type HandoffRecord struct {
	Version          int             `json:"version"`
	Kind             BookingKind     `json:"bookingKind"`
	BookingID        string          `json:"bookingId"`
	GatewayPaymentID string          `json:"gatewayPaymentId"`
	GatewayOrderID   string          `json:"gatewayOrderId"`
	ConfirmedAmount  float64         `json:"confirmedAmount,omitempty"` // backend canonical amount at verify time
	ComputedAmount   float64         `json:"computedAmount,omitempty"`  // locally recomputed total, display fallback
	RawVerification  json.RawMessage `json:"rawVerification,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}
