package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hanbit-travel/booking-api/internal/model"
	"github.com/hanbit-travel/booking-api/internal/repository"
)

// MockPaymentStore mocks the payment repository slice used by the handler.
type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) Create(ctx context.Context, p *model.ReservationPayment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentStore) GetByTransactionID(ctx context.Context, txid string) (model.ReservationPayment, error) {
	args := m.Called(ctx, txid)
	return args.Get(0).(model.ReservationPayment), args.Error(1)
}

func (m *MockPaymentStore) RecordOutcome(ctx context.Context, txid, status, rawResponse, memo string) error {
	args := m.Called(ctx, txid, status, rawResponse, memo)
	return args.Error(0)
}

func callReturn(t *testing.T, h *PaymentHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Return(c); err != nil {
		t.Fatalf("Return returned error: %v", err)
	}
	return rec
}

// The return route must reject callbacks it cannot correlate or classify
// before touching any storage, so these cases run against an empty handler.

func TestPaymentReturnMissingTxid(t *testing.T) {
	rec := callReturn(t, &PaymentHandler{}, "/v1/payments/onepay/return?status=success")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without txid, got %d", rec.Code)
	}
}

func TestPaymentReturnUnknownStatus(t *testing.T) {
	rec := callReturn(t, &PaymentHandler{}, "/v1/payments/onepay/return?txid=tx-1&status=paid")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unclassifiable status, got %d", rec.Code)
	}
}

func TestPaymentReturnFirstCallback(t *testing.T) {
	store := new(MockPaymentStore)
	store.On("RecordOutcome", mock.Anything, "tx-1", model.PaymentStatusCompleted, mock.Anything, "").Return(nil)

	rec := callReturn(t, &PaymentHandler{Payments: store}, "/v1/payments/onepay/return?txid=tx-1&status=success")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, model.PaymentStatusCompleted, body["payment_status"])
	store.AssertExpectations(t)
}

// A replayed callback must answer with what was recorded first, not with
// whatever the replay claims: a success callback for a payment already
// recorded failed reports failed.
func TestPaymentReturnReplayReportsStoredState(t *testing.T) {
	memo := "카드 승인이 거절되었습니다"
	store := new(MockPaymentStore)
	store.On("RecordOutcome", mock.Anything, "tx-1", model.PaymentStatusCompleted, mock.Anything, "").
		Return(repository.ErrConflict)
	store.On("GetByTransactionID", mock.Anything, "tx-1").
		Return(model.ReservationPayment{
			TransactionID: "tx-1",
			PaymentStatus: model.PaymentStatusFailed,
			Memo:          &memo,
		}, nil)

	rec := callReturn(t, &PaymentHandler{Payments: store}, "/v1/payments/onepay/return?txid=tx-1&status=success")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, model.PaymentStatusFailed, body["payment_status"])
	assert.Equal(t, memo, body["failure_reason"])
	store.AssertExpectations(t)
}

// The same guard holds in the other direction: replaying a failure over a
// recorded success must not flip the receipt to failed.
func TestPaymentReturnFailedReplayOverCompleted(t *testing.T) {
	store := new(MockPaymentStore)
	store.On("RecordOutcome", mock.Anything, "tx-2", model.PaymentStatusFailed, mock.Anything, mock.Anything).
		Return(repository.ErrConflict)
	store.On("GetByTransactionID", mock.Anything, "tx-2").
		Return(model.ReservationPayment{
			TransactionID: "tx-2",
			PaymentStatus: model.PaymentStatusCompleted,
		}, nil)

	rec := callReturn(t, &PaymentHandler{Payments: store}, "/v1/payments/onepay/return?txid=tx-2&status=failed&code=6")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, model.PaymentStatusCompleted, body["payment_status"])
	assert.NotContains(t, body, "failure_reason")
	store.AssertExpectations(t)
}

// Hash-mismatch callbacks never mutate state; the stored (still pending)
// status is reported together with the advisory.
func TestPaymentReturnHashMismatchLeavesPending(t *testing.T) {
	store := new(MockPaymentStore)
	store.On("GetByTransactionID", mock.Anything, "tx-3").
		Return(model.ReservationPayment{
			TransactionID: "tx-3",
			PaymentStatus: model.PaymentStatusPending,
		}, nil)

	rec := callReturn(t, &PaymentHandler{Payments: store}, "/v1/payments/onepay/return?txid=tx-3&status=success&error=hash")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, model.PaymentStatusPending, body["payment_status"])
	assert.Contains(t, body, "advisory")
	store.AssertNotCalled(t, "RecordOutcome", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}
