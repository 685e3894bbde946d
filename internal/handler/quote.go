package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hanbit-travel/booking-api/internal/model"
	"github.com/hanbit-travel/booking-api/internal/queue"
	"github.com/hanbit-travel/booking-api/internal/repository"
	"github.com/hanbit-travel/booking-api/internal/service"
)

// awaitingQuoteLabel is shown in place of a total while a quote has not
// been priced yet.
const awaitingQuoteLabel = "견적 대기"

// QuoteHandler implements the quote aggregate endpoints: creation of the
// full aggregate in one transaction, listing, detail, submission, the
// pricing fill-in and the submission progress poll. All methods assume
// JWT authentication has already run.
type QuoteHandler struct {
	Quotes  *repository.QuoteRepo
	Catalog *repository.CatalogRepo
	Pricer  *service.Pricer
}

// NewQuoteHandler constructs a QuoteHandler. All dependencies must be
// non-nil.
func NewQuoteHandler(quotes *repository.QuoteRepo, catalog *repository.CatalogRepo, pricer *service.Pricer) *QuoteHandler {
	if quotes == nil || catalog == nil || pricer == nil {
		panic("nil dependency passed to NewQuoteHandler")
	}
	return &QuoteHandler{Quotes: quotes, Catalog: catalog, Pricer: pricer}
}

// ----- DTOs -----

type quoteRoomReq struct {
	RoomCode   string `json:"room_code"`
	Category   string `json:"category"`
	Persons    uint32 `json:"persons"`
	Infants    uint32 `json:"infants"`
	ExtraAdult uint32 `json:"extra_adult"`
	ExtraChild uint32 `json:"extra_child"`
}

type quoteCarReq struct {
	VehicleCode   string `json:"vehicle_code"`
	CategoryCode  string `json:"category_code"`
	PassengerType string `json:"passenger_type"`
	CarCount      uint32 `json:"car_count"`
}

type quoteItemReq struct {
	ServiceType string `json:"service_type"`
	ServiceCode string `json:"service_code"`
	Description string `json:"description"`
	ServiceDate string `json:"service_date"` // YYYY-MM-DD
	Quantity    uint32 `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

type createQuoteReq struct {
	Title        string         `json:"title"`
	Checkin      string         `json:"checkin"` // YYYY-MM-DD
	ScheduleCode string         `json:"schedule_code"`
	CruiseCode   string         `json:"cruise_code"`
	PaymentCode  string         `json:"payment_code"`
	DiscountRate int            `json:"discount_rate"`
	Rooms        []quoteRoomReq `json:"rooms"`
	Cars         []quoteCarReq  `json:"cars"`
	Items        []quoteItemReq `json:"items"`
}

// validateCreateQuote checks the whole aggregate before any write is
// issued. A validation failure must never leave a partial aggregate
// behind, so every rule runs up front. It returns the parsed checkin
// date on success.
func validateCreateQuote(req *createQuoteReq) (time.Time, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.ScheduleCode = strings.TrimSpace(req.ScheduleCode)
	req.CruiseCode = strings.TrimSpace(req.CruiseCode)
	req.PaymentCode = strings.TrimSpace(req.PaymentCode)
	if req.ScheduleCode == "" || req.CruiseCode == "" || req.PaymentCode == "" {
		return time.Time{}, errors.New("schedule, cruise and payment are required")
	}
	checkin, err := time.Parse("2006-01-02", strings.TrimSpace(req.Checkin))
	if err != nil {
		return time.Time{}, errors.New("invalid checkin date")
	}
	if req.DiscountRate < 0 || req.DiscountRate > 100 {
		return time.Time{}, errors.New("discount_rate must be between 0 and 100")
	}
	if len(req.Rooms) > model.MaxRoomsPerQuote {
		return time.Time{}, fmt.Errorf("a quote may have at most %d rooms", model.MaxRoomsPerQuote)
	}
	categorized := false
	for _, rm := range req.Rooms {
		if strings.TrimSpace(rm.RoomCode) == "" {
			return time.Time{}, errors.New("room_code is required for every room")
		}
		if rm.Persons == 0 {
			return time.Time{}, errors.New("each room needs at least one person")
		}
		if strings.TrimSpace(rm.Category) != "" {
			categorized = true
		}
	}
	for _, cr := range req.Cars {
		if strings.TrimSpace(cr.VehicleCode) == "" || strings.TrimSpace(cr.CategoryCode) == "" {
			return time.Time{}, errors.New("vehicle_code and category_code are required for every car")
		}
		if cr.CarCount == 0 {
			return time.Time{}, errors.New("car_count must be at least 1")
		}
		// A vehicle booking only makes sense against a categorized room
		// party, mirroring the booking form's submit gate.
		if !categorized {
			return time.Time{}, errors.New("car selection requires at least one room with a category")
		}
	}
	for _, it := range req.Items {
		switch it.ServiceType {
		case model.ServiceTypeAirport, model.ServiceTypeRentcar, model.ServiceTypeTour:
		default:
			return time.Time{}, fmt.Errorf("unknown service_type %q", it.ServiceType)
		}
		if it.Quantity == 0 {
			return time.Time{}, errors.New("item quantity must be at least 1")
		}
		if it.UnitPrice < 0 {
			return time.Time{}, errors.New("item unit_price must not be negative")
		}
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(it.ServiceDate)); err != nil {
			return time.Time{}, errors.New("invalid item service_date")
		}
	}
	return checkin, nil
}

// Create handles POST /v1/quotes. The quote head, the zeroed price
// summary and every child line are inserted in a single transaction;
// any failure rolls the whole aggregate back so it is never observable
// half-built. Room and car prices stay zero until the pricing step runs.
func (h *QuoteHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createQuoteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	checkin, err := validateCreateQuote(&req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	// Car lines must name a real vehicle before anything is written.
	for _, cr := range req.Cars {
		if _, err := h.Catalog.GetVehicle(ctx, strings.TrimSpace(cr.VehicleCode)); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("unknown vehicle %q", cr.VehicleCode)})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
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

	q := &model.Quote{
		UserID:       userID,
		Status:       model.QuoteStatusDraft,
		Title:        req.Title,
		Checkin:      checkin,
		ScheduleCode: req.ScheduleCode,
		CruiseCode:   req.CruiseCode,
		PaymentCode:  req.PaymentCode,
		DiscountRate: req.DiscountRate,
	}
	if err := h.Quotes.CreateTx(ctx, tx, q); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create quote"})
	}
	summary := &model.QuotePriceSummary{
		QuoteID:      q.ID,
		DiscountRate: q.DiscountRate,
		Checkin:      q.Checkin,
	}
	if err := h.Quotes.CreateSummaryTx(ctx, tx, summary); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create price summary"})
	}

	rooms := make([]model.QuoteRoom, 0, len(req.Rooms))
	for _, rm := range req.Rooms {
		rooms = append(rooms, model.QuoteRoom{
			QuoteID:    q.ID,
			RoomCode:   strings.TrimSpace(rm.RoomCode),
			Category:   strings.TrimSpace(rm.Category),
			Persons:    rm.Persons,
			Infants:    rm.Infants,
			ExtraAdult: rm.ExtraAdult,
			ExtraChild: rm.ExtraChild,
		})
	}
	if err := h.Quotes.CreateRoomsBulkTx(ctx, tx, rooms); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create rooms"})
	}

	cars := make([]model.QuoteCar, 0, len(req.Cars))
	for _, cr := range req.Cars {
		cars = append(cars, model.QuoteCar{
			QuoteID:       q.ID,
			VehicleCode:   strings.TrimSpace(cr.VehicleCode),
			CategoryCode:  strings.TrimSpace(cr.CategoryCode),
			PassengerType: strings.TrimSpace(cr.PassengerType),
			CarCount:      cr.CarCount,
		})
	}
	if err := h.Quotes.CreateCarsBulkTx(ctx, tx, cars); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create cars"})
	}

	for _, it := range req.Items {
		svcDate, _ := time.Parse("2006-01-02", strings.TrimSpace(it.ServiceDate))
		refID, err := h.Quotes.CreateServiceTx(ctx, tx, it.ServiceType, it.Description, strings.TrimSpace(it.ServiceCode), svcDate)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create service row"})
		}
		item := &model.QuoteItem{
			QuoteID:      q.ID,
			ServiceType:  it.ServiceType,
			ServiceRefID: refID,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			TotalPrice:   service.ItemLineTotal(it.UnitPrice, it.Quantity),
		}
		if err := h.Quotes.CreateItemTx(ctx, tx, item); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create quote item"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{
		"quote_id": q.ID,
		"status":   q.Status,
	})
}

// List handles GET /v1/quotes. It returns the user's quotes newest
// first; unpriced quotes carry the awaiting-quote label.
func (h *QuoteHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	quotes, err := h.Quotes.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load quotes"})
	}
	items := make([]echo.Map, 0, len(quotes))
	for _, q := range quotes {
		items = append(items, quoteHead(q))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/quotes/:id. It returns the full aggregate: head,
// rooms, cars, items and the derived price summary.
func (h *QuoteHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	quoteID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote id"})
	}
	ctx := c.Request().Context()
	q, err := h.Quotes.GetForUser(ctx, quoteID, userID)
	if err != nil {
		return quoteErrJSON(c, err)
	}
	rooms, err := h.Quotes.ListRooms(ctx, q.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	cars, err := h.Quotes.ListCars(ctx, q.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load cars"})
	}
	items, err := h.Quotes.ListItems(ctx, q.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load items"})
	}
	roomViews := make([]echo.Map, 0, len(rooms))
	for _, rm := range rooms {
		roomViews = append(roomViews, echo.Map{
			"id":          rm.ID,
			"room_code":   rm.RoomCode,
			"category":    rm.Category,
			"persons":     rm.Persons,
			"infants":     rm.Infants,
			"extra_adult": rm.ExtraAdult,
			"extra_child": rm.ExtraChild,
			"unit_price":  rm.UnitPrice,
			"total_price": rm.TotalPrice,
		})
	}
	carViews := make([]echo.Map, 0, len(cars))
	for _, cr := range cars {
		carViews = append(carViews, echo.Map{
			"id":             cr.ID,
			"vehicle_code":   cr.VehicleCode,
			"category_code":  cr.CategoryCode,
			"passenger_type": cr.PassengerType,
			"car_count":      cr.CarCount,
			"unit_price":     cr.UnitPrice,
			"total_price":    cr.TotalPrice,
		})
	}
	itemViews := make([]echo.Map, 0, len(items))
	for _, it := range items {
		itemViews = append(itemViews, echo.Map{
			"id":           it.ID,
			"service_type": it.ServiceType,
			"quantity":     it.Quantity,
			"unit_price":   it.UnitPrice,
			"total_price":  it.TotalPrice,
		})
	}

	resp := quoteHead(q)
	resp["rooms"] = roomViews
	resp["cars"] = carViews
	resp["items"] = itemViews
	if summary, err := h.Quotes.GetSummary(ctx, q.ID); err == nil {
		resp["price_summary"] = echo.Map{
			"total_room_price": summary.TotalRoomPrice,
			"total_car_price":  summary.TotalCarPrice,
			"grand_total":      summary.GrandTotal,
			"final_total":      summary.FinalTotal,
			"discount_rate":    summary.DiscountRate,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Submit handles POST /v1/quotes/:id/submit, moving a draft into the
// review pipeline and starting the progress timetable.
func (h *QuoteHandler) Submit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	quoteID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote id"})
	}
	if err := h.Quotes.Submit(c.Request().Context(), quoteID, userID); err != nil {
		return quoteErrJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"quote_id":  quoteID,
		"status":    model.QuoteStatusSubmitted,
		"next_path": fmt.Sprintf("/quotes/%d/progress", quoteID),
	})
}

// Delete handles DELETE /v1/quotes/:id. Only drafts can be deleted; the
// quote and all its children are removed in one transaction.
func (h *QuoteHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	quoteID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote id"})
	}
	ctx := c.Request().Context()
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
	if err := h.Quotes.DeleteTx(ctx, tx, quoteID, userID); err != nil {
		return quoteErrJSON(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}

// Price handles POST /v1/quotes/:id/price, the second phase of quote
// creation. On success the filled-in summary is returned and a
// quote.priced event is published best-effort. When a line has no valid
// fare the quote stays unpriced and 409 is returned.
func (h *QuoteHandler) Price(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	quoteID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote id"})
	}
	ctx := c.Request().Context()
	q, err := h.Quotes.GetForUser(ctx, quoteID, userID)
	if err != nil {
		return quoteErrJSON(c, err)
	}
	summary, err := h.Pricer.Price(ctx, q)
	if err != nil {
		if errors.Is(err, repository.ErrPriceNotFound) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":  "no valid fare for one or more lines",
				"status": awaitingQuoteLabel,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pricing failed"})
	}
	// Broker outages must not fail the pricing request.
	if err := queue.Publish(ctx, queue.QuotePricedQueue, queue.QuotePricedEvent{
		QuoteID:    q.ID,
		UserID:     q.UserID,
		GrandTotal: summary.GrandTotal,
		FinalTotal: summary.FinalTotal,
		PricedAt:   time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("quote: publish quote.priced failed: %v", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"quote_id":         q.ID,
		"total_room_price": summary.TotalRoomPrice,
		"total_car_price":  summary.TotalCarPrice,
		"grand_total":      summary.GrandTotal,
		"final_total":      summary.FinalTotal,
	})
}

// Progress handles GET /v1/quotes/:id/progress. The timetable is
// computed from submitted_at and the server clock; nothing is stored
// and no timers run server-side, so polling is safe from any device.
func (h *QuoteHandler) Progress(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	quoteID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote id"})
	}
	q, err := h.Quotes.GetForUser(c.Request().Context(), quoteID, userID)
	if err != nil {
		return quoteErrJSON(c, err)
	}
	if q.SubmittedAt == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "quote has not been submitted"})
	}
	p := service.ProgressAt(*q.SubmittedAt, time.Now().UTC())
	p.NextPath = fmt.Sprintf(p.NextPath, q.ID)
	return c.JSON(http.StatusOK, p)
}

// quoteHead renders the common head fields of a quote.
func quoteHead(q model.Quote) echo.Map {
	m := echo.Map{
		"id":            q.ID,
		"status":        q.Status,
		"title":         q.Title,
		"checkin":       q.Checkin.Format("2006-01-02"),
		"schedule_code": q.ScheduleCode,
		"cruise_code":   q.CruiseCode,
		"payment_code":  q.PaymentCode,
		"discount_rate": q.DiscountRate,
		"total_price":   q.TotalPrice,
		"created_at":    q.CreatedAt.UTC().Format(time.RFC3339),
	}
	if q.TotalPrice == 0 {
		m["display_status"] = awaitingQuoteLabel
	}
	return m
}

// quoteErrJSON maps repository sentinels to HTTP responses.
func quoteErrJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrQuoteNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "quote not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
