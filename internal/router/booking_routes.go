package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hanbit-travel/booking-api/internal/handler"
	"github.com/hanbit-travel/booking-api/internal/middleware"
	"github.com/hanbit-travel/booking-api/internal/model"
)

// RegisterBooking registers every authenticated endpoint: profile,
// quotes, reservations and payment creation. All routes require a valid
// JWT; any of the three roles is accepted because guests may build and
// submit quotes before they are promoted to member.
func RegisterBooking(e *echo.Echo, jwtSecret string,
	a *handler.AuthHandler, q *handler.QuoteHandler, r *handler.ReservationHandler, p *handler.PaymentHandler) {

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleGuest, model.RoleMember, model.RoleUser),
	)

	g.GET("/me", a.Me)
	g.PUT("/me/profile", a.UpdateProfile)

	// Quote aggregate: create, browse, submit, price, poll, delete.
	g.POST("/quotes", q.Create)
	g.GET("/quotes", q.List)
	g.GET("/quotes/:id", q.Get)
	g.DELETE("/quotes/:id", q.Delete)
	g.POST("/quotes/:id/submit", q.Submit)
	g.POST("/quotes/:id/price", q.Price)
	g.GET("/quotes/:id/progress", q.Progress)

	// Reservation conversion and browsing.
	g.POST("/quotes/:id/reserve", r.Reserve)
	g.GET("/reservations", r.List)
	g.GET("/reservations/:id", r.Get)

	// Payment link creation requires the session; the gateway's return
	// redirect is registered separately because the customer may come
	// back without one.
	g.POST("/payments/onepay/create", p.Create)
}

// RegisterPaymentReturn registers the unauthenticated gateway return
// route. The merchant transaction id in the query string is the only
// correlation key.
func RegisterPaymentReturn(e *echo.Echo, p *handler.PaymentHandler) {
	e.GET("/v1/payments/onepay/return", p.Return)
}
