package checkout

import (
	"fmt"
	"math"

	"medibook/models"
)

// ComputeFees maps a base price, the fixed registration fee, and a tax rate
// to a deterministic fee breakdown. Every caller (order creation, display,
// reconciliation) must go through this one function so the rounding rule
// never diverges between call sites.
func ComputeFees(basePrice, registrationFee, taxRate float64) (models.FeeBreakdown, error) {
	if basePrice <= 0 {
		return models.FeeBreakdown{}, fmt.Errorf("basePrice must be positive, got %v", basePrice)
	}
	if registrationFee < 0 {
		return models.FeeBreakdown{}, fmt.Errorf("registrationFee must be non-negative, got %v", registrationFee)
	}
	if taxRate < 0 || taxRate > 1 {
		return models.FeeBreakdown{}, fmt.Errorf("taxRate must be within [0,1], got %v", taxRate)
	}

	taxAmount := roundHalfUp((basePrice + registrationFee) * taxRate)
	return models.FeeBreakdown{
		BasePrice:       basePrice,
		RegistrationFee: registrationFee,
		TaxAmount:       taxAmount,
		TotalAmount:     basePrice + registrationFee + taxAmount,
	}, nil
}

// roundHalfUp rounds to the nearest integer currency unit, halves away from
// zero for the amounts seen here (all non-negative).
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
