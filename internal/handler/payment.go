package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hanbit-travel/booking-api/internal/model"
	"github.com/hanbit-travel/booking-api/internal/repository"
	"github.com/hanbit-travel/booking-api/internal/service"
)

// paymentStore is the slice of PaymentRepo the handler needs.
type paymentStore interface {
	Create(ctx context.Context, p *model.ReservationPayment) error
	GetByTransactionID(ctx context.Context, txid string) (model.ReservationPayment, error)
	RecordOutcome(ctx context.Context, txid, status, rawResponse, memo string) error
}

// reservationOwnerStore resolves a reservation's owner and amount.
type reservationOwnerStore interface {
	GetOwner(ctx context.Context, reservationID uint64) (uint64, int64, error)
}

// PaymentHandler bridges reservations to the onepay hosted checkout.
// Create issues a redirect URL for a pending payment; Return receives
// the gateway's browser redirect and records the outcome.
type PaymentHandler struct {
	Reservations reservationOwnerStore
	Payments     paymentStore
	Onepay       *service.OnepayClient
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(reservations *repository.ReservationRepo, payments *repository.PaymentRepo, onepay *service.OnepayClient) *PaymentHandler {
	if reservations == nil || payments == nil || onepay == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Reservations: reservations, Payments: payments, Onepay: onepay}
}

type createPaymentReq struct {
	ReservationID uint64 `json:"reservation_id"`
	PaymentMethod string `json:"payment_method"`
}

// Create handles POST /v1/payments/onepay/create. It verifies the
// caller owns the reservation, opens a pending payment row with a fresh
// merchant transaction id and returns the gateway checkout URL. Each
// call creates a new attempt; abandoned attempts simply stay pending.
func (h *PaymentHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPaymentReq
	if err := c.Bind(&req); err != nil || req.ReservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id required"})
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = "card"
	}

	ctx := c.Request().Context()
	ownerID, amount, err := h.Reservations.GetOwner(ctx, req.ReservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if ownerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	p := &model.ReservationPayment{
		ReservationID: req.ReservationID,
		Amount:        amount,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: method,
		Gateway:       service.GatewayOnepay,
		TransactionID: uuid.NewString(),
	}
	if err := h.Payments.Create(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create payment"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"payment_id":     p.ID,
		"transaction_id": p.TransactionID,
		"amount":         p.Amount,
		"checkout_url":   h.Onepay.CheckoutURL(p.TransactionID, p.Amount),
	})
}

// Return handles GET /v1/payments/onepay/return, the gateway's browser
// redirect. It is unauthenticated: the customer may come back in a
// fresh session, so the merchant transaction id is the only correlation
// key. The full raw query string is stored with the verdict. Replayed
// callbacks never mutate anything; the stored verdict always wins over
// whatever the replayed request claims.
func (h *PaymentHandler) Return(c echo.Context) error {
	txid := strings.TrimSpace(c.QueryParam("txid"))
	if txid == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "txid required"})
	}
	status := c.QueryParam("status")
	errParam := c.QueryParam("error")
	rawQuery := c.Request().URL.RawQuery

	ctx := c.Request().Context()
	switch service.ClassifyCallback(status, errParam) {
	case service.OutcomeCompleted:
		if stored, handled, err := h.recordOutcome(ctx, txid, model.PaymentStatusCompleted, rawQuery, ""); err != nil {
			return paymentErrJSON(c, err)
		} else if handled {
			return storedVerdictJSON(c, stored)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"transaction_id": txid,
			"payment_status": model.PaymentStatusCompleted,
		})

	case service.OutcomeFailed:
		code, convErr := strconv.Atoi(c.QueryParam("code"))
		if convErr != nil {
			code = 7
		}
		reason := service.FailureReason(code)
		if stored, handled, err := h.recordOutcome(ctx, txid, model.PaymentStatusFailed, rawQuery, reason); err != nil {
			return paymentErrJSON(c, err)
		} else if handled {
			return storedVerdictJSON(c, stored)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"transaction_id": txid,
			"payment_status": model.PaymentStatusFailed,
			"failure_code":   code,
			"failure_reason": reason,
		})

	case service.OutcomeHashMismatch:
		// Signature failure means the verdict cannot be trusted either
		// way. The row stays pending for manual follow-up; only the raw
		// callback is captured.
		p, err := h.Payments.GetByTransactionID(ctx, txid)
		if err != nil {
			return paymentErrJSON(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"transaction_id": txid,
			"payment_status": p.PaymentStatus,
			"advisory":       "결제 검증에 실패했습니다. 고객센터로 문의해 주세요",
		})

	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid callback parameters"})
	}
}

// recordOutcome persists the verdict. When the row has already left
// pending the replayed verdict is discarded and the stored row is
// returned instead, so the receipt always reflects what was recorded
// first, not what the latest callback claims.
func (h *PaymentHandler) recordOutcome(ctx context.Context, txid, status, rawQuery, memo string) (model.ReservationPayment, bool, error) {
	err := h.Payments.RecordOutcome(ctx, txid, status, rawQuery, memo)
	if err == nil {
		return model.ReservationPayment{}, false, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return model.ReservationPayment{}, false, err
	}
	stored, err := h.Payments.GetByTransactionID(ctx, txid)
	if err != nil {
		return model.ReservationPayment{}, false, err
	}
	return stored, true, nil
}

// storedVerdictJSON renders the receipt for an already-recorded payment.
func storedVerdictJSON(c echo.Context, p model.ReservationPayment) error {
	resp := echo.Map{
		"transaction_id": p.TransactionID,
		"payment_status": p.PaymentStatus,
	}
	if p.PaymentStatus == model.PaymentStatusFailed && p.Memo != nil {
		resp["failure_reason"] = *p.Memo
	}
	return c.JSON(http.StatusOK, resp)
}

func paymentErrJSON(c echo.Context, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown transaction"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment outcome"})
}
