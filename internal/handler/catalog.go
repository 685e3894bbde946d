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
	"github.com/hanbit-travel/booking-api/internal/repository"
)

// CatalogHandler serves the option cascade endpoints. Each endpoint
// returns the set of valid next-level option codes given the upstream
// keys already chosen and the checkin date. The cascade degrades rather
// than fails: a missing upstream key or a backend read failure both
// yield an empty option list with HTTP 200, so the booking form renders
// "no options" instead of crashing during a partial outage.
type CatalogHandler struct {
	Catalog *repository.CatalogRepo
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog *repository.CatalogRepo) *CatalogHandler {
	if catalog == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Catalog: catalog}
}

// optionList writes the standard cascade response.
func optionList(c echo.Context, opts []model.Option, err error) error {
	if err != nil {
		log.Printf("catalog: option query failed: %v", err)
		opts = nil
	}
	if opts == nil {
		opts = []model.Option{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": opts})
}

// parseCheckin reads the checkin query parameter. The zero time and
// false are returned when it is absent or malformed.
func parseCheckin(c echo.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.QueryParam("checkin"))
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// GetSchedules handles GET /v1/catalog/schedules, the first cascade level.
func (h *CatalogHandler) GetSchedules(c echo.Context) error {
	opts, err := h.Catalog.ListSchedules(c.Request().Context())
	return optionList(c, opts, err)
}

// GetCruises handles GET /v1/catalog/cruises?schedule=&checkin=.
func (h *CatalogHandler) GetCruises(c echo.Context) error {
	schedule := strings.TrimSpace(c.QueryParam("schedule"))
	checkin, ok := parseCheckin(c)
	if schedule == "" || !ok {
		return optionList(c, nil, nil)
	}
	opts, err := h.Catalog.ListCruises(c.Request().Context(), schedule, checkin)
	return optionList(c, opts, err)
}

// GetPayments handles GET /v1/catalog/payments?schedule=&cruise=&checkin=.
func (h *CatalogHandler) GetPayments(c echo.Context) error {
	schedule := strings.TrimSpace(c.QueryParam("schedule"))
	cruise := strings.TrimSpace(c.QueryParam("cruise"))
	checkin, ok := parseCheckin(c)
	if schedule == "" || cruise == "" || !ok {
		return optionList(c, nil, nil)
	}
	opts, err := h.Catalog.ListPayments(c.Request().Context(), schedule, cruise, checkin)
	return optionList(c, opts, err)
}

// GetRooms handles GET /v1/catalog/rooms?schedule=&cruise=&payment=&checkin=.
func (h *CatalogHandler) GetRooms(c echo.Context) error {
	schedule := strings.TrimSpace(c.QueryParam("schedule"))
	cruise := strings.TrimSpace(c.QueryParam("cruise"))
	payment := strings.TrimSpace(c.QueryParam("payment"))
	checkin, ok := parseCheckin(c)
	if schedule == "" || cruise == "" || payment == "" || !ok {
		return optionList(c, nil, nil)
	}
	opts, err := h.Catalog.ListRooms(c.Request().Context(), schedule, cruise, payment, checkin)
	return optionList(c, opts, err)
}

// GetRentalCategories handles GET /v1/catalog/rental/categories.
func (h *CatalogHandler) GetRentalCategories(c echo.Context) error {
	opts, err := h.Catalog.ListRentalCategories(c.Request().Context())
	return optionList(c, opts, err)
}

// GetRentalRoutes handles GET /v1/catalog/rental/routes?category=.
func (h *CatalogHandler) GetRentalRoutes(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	if category == "" {
		return optionList(c, nil, nil)
	}
	opts, err := h.Catalog.ListRentalRoutes(c.Request().Context(), category)
	return optionList(c, opts, err)
}

// GetRentalCarTypes handles GET /v1/catalog/rental/cartypes?category=&route=.
func (h *CatalogHandler) GetRentalCarTypes(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	route := strings.TrimSpace(c.QueryParam("route"))
	if category == "" || route == "" {
		return optionList(c, nil, nil)
	}
	opts, err := h.Catalog.ListRentalCarTypes(c.Request().Context(), category, route)
	return optionList(c, opts, err)
}

// ResolveRental handles GET /v1/catalog/rental/resolve. Unlike the list
// endpoints this is a point lookup: the fully-selected rental tuple must
// resolve to exactly one grid row, so "not found" is a 404 here rather
// than an empty list.
func (h *CatalogHandler) ResolveRental(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	route := strings.TrimSpace(c.QueryParam("route"))
	carType := strings.TrimSpace(c.QueryParam("carType"))
	checkin, ok := parseCheckin(c)
	if category == "" || route == "" || carType == "" || !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category, route, carType and checkin are required"})
	}
	key := repository.RentalCompositeKey(category, route, carType)
	rr, err := h.Catalog.ResolveRentalRoute(c.Request().Context(), key, checkin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no rental fare for this selection"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"composite_key": rr.CompositeKey,
		"label":         rr.Label,
		"unit_price":    rr.UnitPrice,
	})
}
