package models

// FeeBreakdown is the deterministic fee split for one booking.
// TotalAmount is always recomputed from the other three, never stored
// independently, so the parts cannot drift apart.
type FeeBreakdown struct {
	BasePrice       float64 `json:"basePrice"`
	RegistrationFee float64 `json:"registrationFee"`
	TaxAmount       float64 `json:"taxAmount"`
	TotalAmount     float64 `json:"totalAmount"`
}

// AmountSource tags where a displayed amount came from, so fallback usage
// stays auditable even when the UI shows a single number.
type AmountSource string

const (
	AmountSourceBackend  AmountSource = "backend"
	AmountSourceHandoff  AmountSource = "handoff"
	AmountSourceComputed AmountSource = "computed"
	AmountSourceFallback AmountSource = "fallback"
)

// ResolvedAmount is a display amount together with its provenance.
type ResolvedAmount struct {
	Value  float64      `json:"value"`
	Source AmountSource `json:"source"`
}
