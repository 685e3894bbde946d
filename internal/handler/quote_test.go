package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validReq() createQuoteReq {
	return createQuoteReq{
		Title:        "가족 크루즈",
		Checkin:      "2025-06-01",
		ScheduleCode: "S1",
		CruiseCode:   "C1",
		PaymentCode:  "P1",
		DiscountRate: 10,
		Rooms: []quoteRoomReq{
			{RoomCode: "SUITE_OV", Category: "FAMILY", Persons: 2},
		},
		Cars: []quoteCarReq{
			{VehicleCode: "VAN", CategoryCode: "AIRPORT", PassengerType: "ICN_SEOUL", CarCount: 1},
		},
		Items: []quoteItemReq{
			{ServiceType: "tour", Description: "시내 투어", ServiceDate: "2025-06-02", Quantity: 2, UnitPrice: 50000},
		},
	}
}

func TestValidateCreateQuoteOK(t *testing.T) {
	req := validReq()
	checkin, err := validateCreateQuote(&req)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), checkin)
}

func TestValidateCreateQuoteMissingPayment(t *testing.T) {
	req := validReq()
	req.PaymentCode = "  "
	_, err := validateCreateQuote(&req)
	assert.Error(t, err)
}

func TestValidateCreateQuoteBadCheckin(t *testing.T) {
	req := validReq()
	req.Checkin = "06/01/2025"
	_, err := validateCreateQuote(&req)
	assert.Error(t, err)
}

func TestValidateCreateQuoteTooManyRooms(t *testing.T) {
	req := validReq()
	req.Rooms = []quoteRoomReq{
		{RoomCode: "A", Category: "F", Persons: 2},
		{RoomCode: "B", Category: "F", Persons: 2},
		{RoomCode: "C", Category: "F", Persons: 2},
	}
	if _, err := validateCreateQuote(&req); err != nil {
		t.Fatalf("three rooms must be accepted: %v", err)
	}
	req.Rooms = append(req.Rooms, quoteRoomReq{RoomCode: "D", Category: "F", Persons: 2})
	_, err := validateCreateQuote(&req)
	assert.Error(t, err, "a fourth room must be rejected")
}

func TestValidateCreateQuoteEmptyRoom(t *testing.T) {
	req := validReq()
	req.Rooms[0].Persons = 0
	_, err := validateCreateQuote(&req)
	assert.Error(t, err)
}

func TestValidateCreateQuoteCarNeedsCategorizedRoom(t *testing.T) {
	req := validReq()
	req.Rooms[0].Category = ""
	_, err := validateCreateQuote(&req)
	assert.Error(t, err)

	// with no cars the uncategorized room is fine
	req.Cars = nil
	_, err = validateCreateQuote(&req)
	assert.NoError(t, err)
}

func TestValidateCreateQuoteZeroCarCount(t *testing.T) {
	req := validReq()
	req.Cars[0].CarCount = 0
	_, err := validateCreateQuote(&req)
	assert.Error(t, err)
}

func TestValidateCreateQuoteBadItem(t *testing.T) {
	req := validReq()
	req.Items[0].ServiceType = "spa"
	_, err := validateCreateQuote(&req)
	assert.Error(t, err)

	req = validReq()
	req.Items[0].Quantity = 0
	_, err = validateCreateQuote(&req)
	assert.Error(t, err)

	req = validReq()
	req.Items[0].UnitPrice = -1
	_, err = validateCreateQuote(&req)
	assert.Error(t, err)
}

func TestValidateCreateQuoteDiscountBounds(t *testing.T) {
	req := validReq()
	req.DiscountRate = 101
	_, err := validateCreateQuote(&req)
	assert.Error(t, err)

	req = validReq()
	req.DiscountRate = -1
	_, err = validateCreateQuote(&req)
	assert.Error(t, err)
}
