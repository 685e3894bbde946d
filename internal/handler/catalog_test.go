package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/hanbit-travel/booking-api/internal/repository"
)

// brokenCatalog returns a CatalogHandler whose every query fails:
// sql.Open does not dial, so the first real query hits the unreachable
// address and errors. The cascade must degrade to an empty option list
// instead of surfacing the failure.
func brokenCatalog(t *testing.T) *CatalogHandler {
	t.Helper()
	db, err := sql.Open("mysql", "nobody:nothing@tcp(127.0.0.1:1)/absent?timeout=200ms")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewCatalogHandler(repository.NewCatalogRepo(db))
}

func callCatalog(t *testing.T, target string, fn func(echo.Context) error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	if err := fn(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func assertEmptyOptionList(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Items []struct {
			Code  string `json:"code"`
			Label string `json:"label"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Items == nil {
		t.Error("items must be an empty array, not null")
	}
	if len(body.Items) != 0 {
		t.Errorf("expected no items, got %d", len(body.Items))
	}
}

func TestCatalogDegradesOnQueryFailure(t *testing.T) {
	h := brokenCatalog(t)
	assertEmptyOptionList(t, callCatalog(t, "/v1/catalog/schedules", h.GetSchedules))
	assertEmptyOptionList(t, callCatalog(t, "/v1/catalog/cruises?schedule=S1&checkin=2025-06-01", h.GetCruises))
	assertEmptyOptionList(t, callCatalog(t, "/v1/catalog/rental/categories", h.GetRentalCategories))
}

// A missing upstream key is not an error either: the form just has
// nothing to offer yet.
func TestCatalogEmptyOnMissingUpstreamKey(t *testing.T) {
	h := brokenCatalog(t)
	assertEmptyOptionList(t, callCatalog(t, "/v1/catalog/cruises", h.GetCruises))
	assertEmptyOptionList(t, callCatalog(t, "/v1/catalog/rooms?schedule=S1&cruise=C1&checkin=2025-06-01", h.GetRooms))
	assertEmptyOptionList(t, callCatalog(t, "/v1/catalog/rental/cartypes?category=AIRPORT", h.GetRentalCarTypes))
}
