package checkout

import (
	"context"
	"fmt"
	"time"

	"medibook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// fakeSessionStore implements SessionStore in memory for testing.
type fakeSessionStore struct {
	sessions map[string]models.CheckoutSession
	locks    map[string]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[string]models.CheckoutSession),
		locks:    make(map[string]bool),
	}
}

func (f *fakeSessionStore) Save(_ context.Context, session *models.CheckoutSession) error {
	f.sessions[session.AttemptID] = *session
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, attemptID string) (*models.CheckoutSession, error) {
	session, ok := f.sessions[attemptID]
	if !ok {
		return nil, NewSessionExpiredError(attemptID)
	}
	copied := session
	return &copied, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, attemptID string) error {
	delete(f.sessions, attemptID)
	return nil
}

func (f *fakeSessionStore) AcquireLock(_ context.Context, attemptID string) (bool, error) {
	if f.locks[attemptID] {
		return false, nil
	}
	f.locks[attemptID] = true
	return true, nil
}

func (f *fakeSessionStore) ReleaseLock(_ context.Context, attemptID string) error {
	delete(f.locks, attemptID)
	return nil
}

// fakeHandoffStore implements HandoffStore with read-once semantics.
type fakeHandoffStore struct {
	slots  map[string]*models.HandoffRecord
	writes int
}

func newFakeHandoffStore() *fakeHandoffStore {
	return &fakeHandoffStore{slots: make(map[string]*models.HandoffRecord)}
}

func (f *fakeHandoffStore) key(patientID string, kind models.BookingKind) string {
	return fmt.Sprintf("%s:%s", patientID, kind)
}

func (f *fakeHandoffStore) Write(_ context.Context, patientID string, rec *models.HandoffRecord) error {
	f.writes++
	copied := *rec
	f.slots[f.key(patientID, rec.Kind)] = &copied
	return nil
}

func (f *fakeHandoffStore) Consume(_ context.Context, patientID string, kind models.BookingKind) (*models.HandoffRecord, error) {
	rec, ok := f.slots[f.key(patientID, kind)]
	if !ok {
		return nil, nil
	}
	delete(f.slots, f.key(patientID, kind))
	return rec, nil
}

// fakeCoreClient implements coreapi.Client with scripted responses.
type fakeCoreClient struct {
	bookingRef         models.BookingRef
	bookingErr         error
	createBookingCalls int

	order            models.Order
	orderErr         error
	createOrderCalls int
	lastOrderAmount  float64

	verifyResult models.VerificationResult
	verifyErr    error
	verifyCalls  int
	lastVerify   map[string]string

	detailResult models.VerificationResult
	detailErr    error
	detailCalls  int
}

func (f *fakeCoreClient) CreateBooking(_ context.Context, draft models.BookingDraft) (models.BookingRef, error) {
	f.createBookingCalls++
	if f.bookingErr != nil {
		return models.BookingRef{}, f.bookingErr
	}
	if f.bookingRef.ID == "" {
		return models.BookingRef{ID: "bk-1", Kind: draft.Kind}, nil
	}
	return f.bookingRef, nil
}

func (f *fakeCoreClient) CreateOrder(_ context.Context, _ models.BookingRef, amount float64, _ string, _ models.ContactInfo) (models.Order, error) {
	f.createOrderCalls++
	f.lastOrderAmount = amount
	if f.orderErr != nil {
		return models.Order{}, f.orderErr
	}
	return f.order, nil
}

func (f *fakeCoreClient) VerifyPayment(_ context.Context, orderID, paymentID, signature string) (models.VerificationResult, error) {
	f.verifyCalls++
	f.lastVerify = map[string]string{
		"orderId":   orderID,
		"paymentId": paymentID,
		"signature": signature,
	}
	if f.verifyErr != nil {
		return models.VerificationResult{}, f.verifyErr
	}
	return f.verifyResult, nil
}

func (f *fakeCoreClient) PaymentDetail(_ context.Context, _ string) (models.VerificationResult, error) {
	f.detailCalls++
	if f.detailErr != nil {
		return models.VerificationResult{}, f.detailErr
	}
	return f.detailResult, nil
}

// fakeJournal implements repository.AttemptRepository in memory.
type fakeJournal struct {
	attempts map[string]*models.CheckoutAttempt
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{attempts: make(map[string]*models.CheckoutAttempt)}
}

func (f *fakeJournal) Create(_ context.Context, attempt *models.CheckoutAttempt) error {
	copied := *attempt
	f.attempts[attempt.AttemptID] = &copied
	return nil
}

func (f *fakeJournal) GetByAttemptID(_ context.Context, attemptID string) (*models.CheckoutAttempt, error) {
	attempt, ok := f.attempts[attemptID]
	if !ok {
		return nil, fmt.Errorf("attempt %s not found", attemptID)
	}
	return attempt, nil
}

func (f *fakeJournal) GetByPaymentID(_ context.Context, paymentID string) (*models.CheckoutAttempt, error) {
	for _, attempt := range f.attempts {
		if attempt.PaymentID == paymentID {
			return attempt, nil
		}
	}
	return nil, fmt.Errorf("no attempt for payment %s", paymentID)
}

func (f *fakeJournal) UpdateStatus(_ context.Context, attemptID, status string, fields bson.M) error {
	attempt, ok := f.attempts[attemptID]
	if !ok {
		return fmt.Errorf("attempt %s not found", attemptID)
	}
	attempt.Status = status
	if v, ok := fields["booking_id"].(string); ok {
		attempt.BookingID = v
	}
	if v, ok := fields["order_id"].(string); ok {
		attempt.OrderID = v
	}
	if v, ok := fields["payment_id"].(string); ok {
		attempt.PaymentID = v
	}
	if v, ok := fields["amount"].(float64); ok {
		attempt.Amount = v
	}
	if v, ok := fields["amount_source"].(string); ok {
		attempt.AmountSource = v
	}
	if v, ok := fields["failure_note"].(string); ok {
		attempt.FailureNote = v
	}
	return nil
}

func (f *fakeJournal) StuckAfterOrder(_ context.Context, _ time.Time) ([]models.CheckoutAttempt, error) {
	return nil, nil
}

func (f *fakeJournal) CountFallbackResolutions(_ context.Context, _ time.Time) (int64, error) {
	var n int64
	for _, attempt := range f.attempts {
		if attempt.AmountSource == string(models.AmountSourceFallback) {
			n++
		}
	}
	return n, nil
}

// fakeEnqueuer implements TaskEnqueuer.
type fakeEnqueuer struct {
	enqueued []string
}

func (f *fakeEnqueuer) EnqueueReconcile(attemptID string, _ int) error {
	f.enqueued = append(f.enqueued, attemptID)
	return nil
}

type testHarness struct {
	svc      *DefaultCheckoutService
	sessions *fakeSessionStore
	handoff  *fakeHandoffStore
	core     *fakeCoreClient
	journal  *fakeJournal
	tasks    *fakeEnqueuer
}

func newTestHarness() *testHarness {
	h := &testHarness{
		sessions: newFakeSessionStore(),
		handoff:  newFakeHandoffStore(),
		core:     &fakeCoreClient{},
		journal:  newFakeJournal(),
		tasks:    &fakeEnqueuer{},
	}
	h.core.order = models.Order{
		GatewayKey: "rzp_test_key",
		OrderID:    "order_1",
		Amount:     1357,
		Currency:   "INR",
	}
	h.svc = &DefaultCheckoutService{
		Sessions: h.sessions,
		Handoff:  h.handoff,
		Core:     h.core,
		Journal:  h.journal,
		Tasks:    h.tasks,
		Fees: FeePolicy{
			TaxRate:           0.18,
			AppointmentRegFee: 350,
			LabTestRegFee:     50,
			Currency:          "INR",
		},
		ReturnURL: "/checkout/confirmation",
		Logger:    zap.NewNop(),
	}
	return h
}

func appointmentDraft() models.BookingDraft {
	return models.BookingDraft{
		Kind:      models.KindAppointment,
		SubjectID: "doc-42",
		PatientID: "pat-7",
		Date:      "2026-09-14",
		Slot:      "10:30",
		BasePrice: 800,
	}
}

func labTestDraft() models.BookingDraft {
	return models.BookingDraft{
		Kind:                 models.KindLabTest,
		SubjectID:            "test-cbc",
		PatientID:            "pat-7",
		CollectionPreference: "home",
		BasePrice:            599,
	}
}
