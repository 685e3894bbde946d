package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/hanbit-travel/booking-api/internal/config"
	"github.com/hanbit-travel/booking-api/internal/handler"
	"github.com/hanbit-travel/booking-api/internal/middleware"
)

// RegisterCatalog registers the option cascade endpoints under
// /v1/catalog. The cascade is read-only reference data queried on every
// keystroke of the booking form, so the group carries the Redis response
// cache and the token-bucket rate limiter. Both middlewares degrade to
// pass-through when Redis is unavailable; rdb may be nil in tests.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, rdb *redis.Client) {
	g := e.Group("/v1/catalog")
	if rdb != nil {
		g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		g.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}

	// Cruise cascade: schedule -> cruise -> payment -> room. Each level
	// takes the upstream selections plus the checkin date as query
	// parameters and returns the valid next-level options.
	g.GET("/schedules", h.GetSchedules)
	g.GET("/cruises", h.GetCruises)
	g.GET("/payments", h.GetPayments)
	g.GET("/rooms", h.GetRooms)

	// Rental cascade: category -> route -> car type, plus the point
	// lookup that resolves a completed selection to a fare.
	g.GET("/rental/categories", h.GetRentalCategories)
	g.GET("/rental/routes", h.GetRentalRoutes)
	g.GET("/rental/cartypes", h.GetRentalCarTypes)
	g.GET("/rental/resolve", h.ResolveRental)
}
