package coreapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"medibook/models"

	"go.uber.org/zap"
)

// APIError is a non-2xx response from the core backend. The backend message
// is surfaced verbatim to the user on rejections.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("core API returned %d: %s", e.Status, e.Message)
}

// HTTPClient implements Client against the core backend REST API.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Logger  *zap.Logger
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

func (c *HTTPClient) CreateBooking(ctx context.Context, draft models.BookingDraft) (models.BookingRef, error) {
	// The two kinds have distinct backend endpoints and payload shapes.
	var path string
	var payload interface{}
	switch draft.Kind {
	case models.KindAppointment:
		path = "/v1/bookings/appointments"
		payload = map[string]interface{}{
			"patient_id": draft.PatientID,
			"doctor_id":  draft.SubjectID,
			"date":       draft.Date,
			"slot":       draft.Slot,
		}
	case models.KindLabTest:
		path = "/v1/bookings/lab-tests"
		payload = map[string]interface{}{
			"patient_id":            draft.PatientID,
			"test_id":               draft.SubjectID,
			"collection_preference": draft.CollectionPreference,
		}
	default:
		return models.BookingRef{}, fmt.Errorf("unknown booking kind %q", draft.Kind)
	}

	var data struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, path, payload, &data); err != nil {
		return models.BookingRef{}, err
	}
	if data.ID == "" {
		return models.BookingRef{}, fmt.Errorf("core API returned booking without an id")
	}
	return models.BookingRef{ID: data.ID, Kind: draft.Kind}, nil
}

func (c *HTTPClient) CreateOrder(ctx context.Context, booking models.BookingRef, amount float64, currency string, payer models.ContactInfo) (models.Order, error) {
	payload := map[string]interface{}{
		"booking_id":   booking.ID,
		"booking_kind": booking.Kind,
		"amount":       amount,
		"currency":     currency,
		"prefill": map[string]string{
			"name":  payer.Name,
			"email": payer.Email,
			"phone": payer.Phone,
		},
	}

	var data struct {
		Key      string             `json:"key"`
		OrderID  string             `json:"order_id"`
		Amount   float64            `json:"amount"`
		Currency string             `json:"currency"`
		Prefill  models.ContactInfo `json:"prefill"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/payments/orders", payload, &data); err != nil {
		return models.Order{}, err
	}
	return models.Order{
		GatewayKey: data.Key,
		OrderID:    data.OrderID,
		Amount:     data.Amount,
		Currency:   data.Currency,
		Prefill:    data.Prefill,
	}, nil
}

// verificationPayload is the backend's verification/detail body after
// envelope normalization.
type verificationPayload struct {
	Verified  bool    `json:"verified"`
	Amount    float64 `json:"amount"`
	PaymentID string  `json:"payment_id"`
	BookingID string  `json:"booking_id"`
	Kind      string  `json:"kind"`
}

func (c *HTTPClient) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (models.VerificationResult, error) {
	// Field names are the backend contract; renaming any of them silently
	// breaks verification, so they are pinned here and in the tests.
	payload := map[string]string{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
		"razorpay_signature":  signature,
	}
	return c.verificationCall(ctx, http.MethodPost, "/v1/payments/verify", payload)
}

func (c *HTTPClient) PaymentDetail(ctx context.Context, paymentID string) (models.VerificationResult, error) {
	return c.verificationCall(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil)
}

func (c *HTTPClient) verificationCall(ctx context.Context, method, path string, payload interface{}) (models.VerificationResult, error) {
	env, raw, err := c.doEnvelope(ctx, method, path, payload)
	if err != nil {
		return models.VerificationResult{}, err
	}

	var vp verificationPayload
	if err := decodeData(env.Data, &vp); err != nil {
		// A payload we cannot parse is never treated as paid.
		return models.VerificationResult{}, fmt.Errorf("verification payload: %w", err)
	}

	return models.VerificationResult{
		Success:   env.Success && vp.Verified,
		Amount:    vp.Amount,
		PaymentID: vp.PaymentID,
		Booking:   models.BookingRef{ID: vp.BookingID, Kind: models.BookingKind(vp.Kind)},
		Raw:       raw,
	}, nil
}

// do performs a request and decodes the envelope data into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	env, _, err := c.doEnvelope(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if !env.Success {
		return &APIError{Status: http.StatusOK, Message: env.Message}
	}
	return decodeData(env.Data, out)
}

func (c *HTTPClient) doEnvelope(ctx context.Context, method, path string, payload interface{}) (*apiEnvelope, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("core API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read core API response: %w", err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("failed to parse core API envelope: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.Logger.Warn("core API rejected request",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return nil, nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	return &env, raw, nil
}
