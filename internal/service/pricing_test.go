package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hanbit-travel/booking-api/internal/model"
)

func TestRoomLineTotal(t *testing.T) {
	grid := model.RoomPrice{
		AdultPrice:      500000,
		ExtraAdultPrice: 300000,
		ChildPrice:      200000,
		InfantPrice:     50000,
	}
	rm := model.QuoteRoom{
		Persons:    2,
		ExtraAdult: 1,
		ExtraChild: 1,
		Infants:    1,
	}
	unit, total := RoomLineTotal(grid, rm)
	assert.Equal(t, int64(500000), unit)
	assert.Equal(t, int64(2*500000+300000+200000+50000), total)
}

func TestRoomLineTotalNoExtras(t *testing.T) {
	grid := model.RoomPrice{AdultPrice: 400000, ExtraAdultPrice: 999999}
	unit, total := RoomLineTotal(grid, model.QuoteRoom{Persons: 2})
	assert.Equal(t, int64(400000), unit)
	assert.Equal(t, int64(800000), total)
}

func TestCarLineTotal(t *testing.T) {
	assert.Equal(t, int64(180000), CarLineTotal(60000, 3))
	assert.Equal(t, int64(0), CarLineTotal(60000, 0))
}

func TestItemLineTotal(t *testing.T) {
	assert.Equal(t, int64(250000), ItemLineTotal(50000, 5))
}

func TestApplyDiscount(t *testing.T) {
	assert.Equal(t, int64(1000), ApplyDiscount(1000, 0))
	assert.Equal(t, int64(900), ApplyDiscount(1000, 10))
	assert.Equal(t, int64(0), ApplyDiscount(1000, 100))
	assert.Equal(t, int64(0), ApplyDiscount(1000, 150))
	// negative rates are treated as no discount
	assert.Equal(t, int64(1000), ApplyDiscount(1000, -5))
	// KRW truncation: 3% of 101 is 3.03, truncated to 3
	assert.Equal(t, int64(98), ApplyDiscount(101, 3))
}

func TestSummarize(t *testing.T) {
	checkin := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	q := model.Quote{ID: 7, DiscountRate: 10, Checkin: checkin}
	rooms := []model.QuoteRoom{
		{TotalPrice: 1000000},
		{TotalPrice: 800000},
	}
	cars := []model.QuoteCar{{TotalPrice: 120000}}
	items := []model.QuoteItem{{TotalPrice: 80000}}

	s := Summarize(q, rooms, cars, items)
	assert.Equal(t, uint64(7), s.QuoteID)
	assert.Equal(t, int64(1800000), s.TotalRoomPrice)
	assert.Equal(t, int64(120000), s.TotalCarPrice)
	assert.Equal(t, int64(2000000), s.GrandTotal)
	assert.Equal(t, int64(1800000), s.FinalTotal)
	assert.Equal(t, 10, s.DiscountRate)
	assert.Equal(t, checkin, s.Checkin)
}

// Before the pricing pass runs, every line total is zero and the summary
// must come out all-zero regardless of occupancy or discount.
func TestSummarizeUnpriced(t *testing.T) {
	q := model.Quote{ID: 3, DiscountRate: 15}
	rooms := []model.QuoteRoom{{Persons: 2}, {Persons: 4, ExtraAdult: 2}}
	cars := []model.QuoteCar{{CarCount: 2}}

	s := Summarize(q, rooms, cars, nil)
	assert.Zero(t, s.TotalRoomPrice)
	assert.Zero(t, s.TotalCarPrice)
	assert.Zero(t, s.GrandTotal)
	assert.Zero(t, s.FinalTotal)
}

// The summary must always equal the sum of the line totals; spot-check
// that items are part of the grand total alongside rooms and cars.
func TestSummarizeGrandTotalIncludesItems(t *testing.T) {
	q := model.Quote{ID: 1}
	s := Summarize(q,
		[]model.QuoteRoom{{TotalPrice: 100}},
		[]model.QuoteCar{{TotalPrice: 10}},
		[]model.QuoteItem{{TotalPrice: 1}, {TotalPrice: 2}},
	)
	assert.Equal(t, int64(113), s.GrandTotal)
	assert.Equal(t, int64(113), s.FinalTotal)
}
