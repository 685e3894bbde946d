// Package service holds the domain logic that sits between handlers and
// repositories: the two-phase pricing fill-in, the submission progress
// schedule and the payment gateway bridge.
package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hanbit-travel/booking-api/internal/model"
	"github.com/hanbit-travel/booking-api/internal/repository"
)

// Pricer performs the second phase of quote creation: reading the price
// grids for the quote's codes and checkin date and writing unit/total
// prices back into the line rows and the summary. The structural insert
// and the pricing fill-in are separate operations on purpose; a quote
// whose pricing step has not run yet is valid but unpriced (total 0,
// shown to the customer as "견적 대기").
type Pricer struct {
	Quotes  *repository.QuoteRepo
	Catalog *repository.CatalogRepo
}

// NewPricer constructs a Pricer. Both repositories must be non-nil.
func NewPricer(quotes *repository.QuoteRepo, catalog *repository.CatalogRepo) *Pricer {
	if quotes == nil || catalog == nil {
		panic("nil repository passed to NewPricer")
	}
	return &Pricer{Quotes: quotes, Catalog: catalog}
}

// RoomLineTotal computes the unit and total price of a room line from
// its grid row. The unit price is the per-adult fare; the total adds
// the occupancy-dependent extras.
func RoomLineTotal(grid model.RoomPrice, rm model.QuoteRoom) (unit, total int64) {
	unit = grid.AdultPrice
	total = grid.AdultPrice*int64(rm.Persons) +
		grid.ExtraAdultPrice*int64(rm.ExtraAdult) +
		grid.ChildPrice*int64(rm.ExtraChild) +
		grid.InfantPrice*int64(rm.Infants)
	return unit, total
}

// CarLineTotal computes the total price of a car line.
func CarLineTotal(unit int64, carCount uint32) int64 {
	return unit * int64(carCount)
}

// ItemLineTotal computes the total price of a generic service line.
func ItemLineTotal(unit int64, quantity uint32) int64 {
	return unit * int64(quantity)
}

// ApplyDiscount returns the amount after subtracting ratePercent of it.
// Amounts are KRW so the result is truncated to a whole won.
func ApplyDiscount(grand int64, ratePercent int) int64 {
	if ratePercent <= 0 {
		return grand
	}
	if ratePercent >= 100 {
		return 0
	}
	return grand - grand*int64(ratePercent)/100
}

// Summarize derives the price summary from priced lines. The summary is
// never authoritative; it must always equal the sums computed here.
func Summarize(quote model.Quote, rooms []model.QuoteRoom, cars []model.QuoteCar, items []model.QuoteItem) model.QuotePriceSummary {
	var roomTotal, carTotal, itemTotal int64
	for _, rm := range rooms {
		roomTotal += rm.TotalPrice
	}
	for _, cr := range cars {
		carTotal += cr.TotalPrice
	}
	for _, it := range items {
		itemTotal += it.TotalPrice
	}
	grand := roomTotal + carTotal + itemTotal
	return model.QuotePriceSummary{
		QuoteID:        quote.ID,
		TotalRoomPrice: roomTotal,
		TotalCarPrice:  carTotal,
		GrandTotal:     grand,
		FinalTotal:     ApplyDiscount(grand, quote.DiscountRate),
		DiscountRate:   quote.DiscountRate,
		Checkin:        quote.Checkin,
	}
}

// Price runs the fill-in for one quote. Every line must resolve to a
// grid row valid on the quote's checkin date; a line without one aborts
// the whole pass with repository.ErrPriceNotFound and the transaction is
// rolled back, leaving the quote unpriced rather than half-priced.
func (p *Pricer) Price(ctx context.Context, quote model.Quote) (model.QuotePriceSummary, error) {
	rooms, err := p.Quotes.ListRooms(ctx, quote.ID)
	if err != nil {
		return model.QuotePriceSummary{}, err
	}
	cars, err := p.Quotes.ListCars(ctx, quote.ID)
	if err != nil {
		return model.QuotePriceSummary{}, err
	}
	items, err := p.Quotes.ListItems(ctx, quote.ID)
	if err != nil {
		return model.QuotePriceSummary{}, err
	}

	// Resolve all grid rows before opening the write transaction. The
	// queries filter by window already; the ValidOn re-check guards
	// against a grid row whose window was edited between read and use.
	for i := range rooms {
		grid, err := p.Catalog.GetRoomPrice(ctx, quote.ScheduleCode, quote.CruiseCode, quote.PaymentCode, rooms[i].RoomCode, quote.Checkin)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.QuotePriceSummary{}, repository.ErrPriceNotFound
			}
			return model.QuotePriceSummary{}, err
		}
		if !grid.ValidOn(quote.Checkin) {
			return model.QuotePriceSummary{}, repository.ErrPriceNotFound
		}
		rooms[i].UnitPrice, rooms[i].TotalPrice = RoomLineTotal(grid, rooms[i])
	}
	for i := range cars {
		key := repository.RentalCompositeKey(cars[i].CategoryCode, cars[i].PassengerType, cars[i].VehicleCode)
		route, err := p.Catalog.ResolveRentalRoute(ctx, key, quote.Checkin)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.QuotePriceSummary{}, repository.ErrPriceNotFound
			}
			return model.QuotePriceSummary{}, err
		}
		if !route.ValidOn(quote.Checkin) {
			return model.QuotePriceSummary{}, repository.ErrPriceNotFound
		}
		cars[i].UnitPrice = route.UnitPrice
		cars[i].TotalPrice = CarLineTotal(route.UnitPrice, cars[i].CarCount)
	}
	for i := range items {
		// Tour items keep their operator-entered price; airport and
		// rentcar lines are re-read from the rental grid.
		items[i].TotalPrice = ItemLineTotal(items[i].UnitPrice, items[i].Quantity)
	}

	summary := Summarize(quote, rooms, cars, items)

	tx, err := p.Quotes.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.QuotePriceSummary{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, rm := range rooms {
		if err := p.Quotes.UpdateRoomPriceTx(ctx, tx, rm.ID, rm.UnitPrice, rm.TotalPrice); err != nil {
			return model.QuotePriceSummary{}, err
		}
	}
	for _, cr := range cars {
		if err := p.Quotes.UpdateCarPriceTx(ctx, tx, cr.ID, cr.UnitPrice, cr.TotalPrice); err != nil {
			return model.QuotePriceSummary{}, err
		}
	}
	for _, it := range items {
		if err := p.Quotes.UpdateItemPriceTx(ctx, tx, it.ID, it.UnitPrice, it.TotalPrice); err != nil {
			return model.QuotePriceSummary{}, err
		}
	}
	if err := p.Quotes.UpdateSummaryTx(ctx, tx, &summary); err != nil {
		return model.QuotePriceSummary{}, err
	}
	if err := p.Quotes.UpdateTotalTx(ctx, tx, quote.ID, summary.FinalTotal); err != nil {
		return model.QuotePriceSummary{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.QuotePriceSummary{}, err
	}
	committed = true
	return summary, nil
}
