package handler

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hanbit-travel/booking-api/internal/model"
	"github.com/hanbit-travel/booking-api/internal/queue"
	"github.com/hanbit-travel/booking-api/internal/repository"
)

// ReservationHandler converts approved quotes into reservations and
// serves the reservation list and detail views.
type ReservationHandler struct {
	Quotes       *repository.QuoteRepo
	Users        *repository.UserRepo
	Reservations *repository.ReservationRepo
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(quotes *repository.QuoteRepo, users *repository.UserRepo, reservations *repository.ReservationRepo) *ReservationHandler {
	if quotes == nil || users == nil || reservations == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Quotes: quotes, Users: users, Reservations: reservations}
}

// reservableTypes is the closed set accepted for reservations.type.
var reservableTypes = map[string]bool{
	"cruise":  true,
	"hotel":   true,
	"airport": true,
	"rentcar": true,
}

type reserveReq struct {
	Type       string `json:"type"`
	Phone      string `json:"phone"`
	PassportNo string `json:"passport_no"`
	BirthDate  string `json:"birth_date"` // YYYY-MM-DD
}

// Reserve handles POST /v1/quotes/:id/reserve. The conversion is one
// transaction: the contact profile is saved, a guest owner is promoted
// to member, the reservation row is inserted and the quote moves to
// reserved. If any step fails nothing is observable, so a retried
// request starts clean. The unique constraint on reservations.quote_id
// catches concurrent double-conversions.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	quoteID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote id"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Type = strings.TrimSpace(req.Type)
	if !reservableTypes[req.Type] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation type"})
	}
	req.Phone = strings.TrimSpace(req.Phone)
	req.PassportNo = strings.TrimSpace(req.PassportNo)
	if req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone is required"})
	}
	var birth *time.Time
	if strings.TrimSpace(req.BirthDate) != "" {
		t, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid birth_date"})
		}
		birth = &t
	}

	ctx := c.Request().Context()
	q, err := h.Quotes.GetForUser(ctx, quoteID, userID)
	if err != nil {
		return quoteErrJSON(c, err)
	}
	switch q.Status {
	case model.QuoteStatusApproved, model.QuoteStatusConfirmed:
	case model.QuoteStatusReserved:
		return c.JSON(http.StatusConflict, echo.Map{"error": "quote already reserved"})
	default:
		return c.JSON(http.StatusConflict, echo.Map{"error": "quote is not ready for reservation"})
	}
	if q.TotalPrice == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "quote has not been priced"})
	}

	tx, err := h.Quotes.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Users.UpdateProfileTx(ctx, tx, userID, req.Phone, req.PassportNo, birth); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save profile"})
	}
	if err := h.Users.PromoteTx(ctx, tx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update membership"})
	}
	res := &model.Reservation{
		UserID:      userID,
		QuoteID:     q.ID,
		Type:        req.Type,
		Status:      model.ReservationStatusPending,
		TotalAmount: q.TotalPrice,
	}
	if err := h.Reservations.CreateTx(ctx, tx, res); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "quote already reserved"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}
	if err := h.Quotes.UpdateStatusTx(ctx, tx,
		q.ID,
		[]string{model.QuoteStatusApproved, model.QuoteStatusConfirmed},
		model.QuoteStatusReserved,
	); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "quote already reserved"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update quote"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	if err := queue.Publish(ctx, queue.ReservationCreatedQueue, queue.ReservationCreatedEvent{
		ReservationID: res.ID,
		UserID:        userID,
		QuoteID:       q.ID,
		QuoteTitle:    q.Title,
		Type:          res.Type,
		TotalAmount:   res.TotalAmount,
		CreatedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("reservation: publish reservation.created failed: %v", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id": res.ID,
		"quote_id":       q.ID,
		"status":         res.Status,
		"total_amount":   res.TotalAmount,
	})
}

// List handles GET /v1/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	det, err := h.Reservations.GetByIDForUser(c.Request().Context(), reservationID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
	}
	return c.JSON(http.StatusOK, det)
}
