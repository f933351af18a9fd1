package checkout

import (
	"errors"
	"fmt"
)

// Error codes for the checkout pipeline, one per failure class. Handlers map
// these to HTTP statuses; the codes themselves never reach the gateway.
const (
	CodeValidation         = "validationError"
	CodeBackendRejected    = "backendRejected"
	CodeGatewayFailed      = "gatewayFailed"
	CodeVerificationFailed = "verificationFailed"
	CodeResolutionGap      = "resolutionGap"
	CodeAttemptInFlight    = "attemptInFlight"
	CodeSessionExpired     = "sessionExpired"
)

type CheckoutError struct {
	Code    string
	Message string
	Err     error
}

func (e *CheckoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CheckoutError) Unwrap() error { return e.Err }

func newError(code, msg string, err error) error {
	return &CheckoutError{Code: code, Message: msg, Err: err}
}

func NewValidationError(msg string) error {
	return newError(CodeValidation, msg, nil)
}

func NewBackendError(msg string, err error) error {
	return newError(CodeBackendRejected, msg, err)
}

func NewGatewayError(msg string) error {
	return newError(CodeGatewayFailed, msg, nil)
}

func NewVerificationError(msg string, err error) error {
	return newError(CodeVerificationFailed, msg, err)
}

func NewResolutionGapError(msg string, err error) error {
	return newError(CodeResolutionGap, msg, err)
}

func NewInFlightError(attemptID string) error {
	return newError(CodeAttemptInFlight, fmt.Sprintf("payment already in flight for attempt %s", attemptID), nil)
}

func NewSessionExpiredError(attemptID string) error {
	return newError(CodeSessionExpired, fmt.Sprintf("checkout session %s not found or expired", attemptID), nil)
}

// ErrorCode returns the checkout error code, or "" for foreign errors.
func ErrorCode(err error) string {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
