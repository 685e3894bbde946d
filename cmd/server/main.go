package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/hanbit-travel/booking-api/internal/config"
	"github.com/hanbit-travel/booking-api/internal/database"
	"github.com/hanbit-travel/booking-api/internal/handler"
	"github.com/hanbit-travel/booking-api/internal/queue"
	"github.com/hanbit-travel/booking-api/internal/repository"
	"github.com/hanbit-travel/booking-api/internal/router"
	"github.com/hanbit-travel/booking-api/internal/service"
	"github.com/labstack/echo/v4"
)

func main() {
	// .env is optional; in production everything comes from the real
	// environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	catalog := repository.NewCatalogRepo(db)
	quotes := repository.NewQuoteRepo(db)
	reservations := repository.NewReservationRepo(db)
	payments := repository.NewPaymentRepo(db)

	pricer := service.NewPricer(quotes, catalog)
	onepay := service.NewOnepayClient(cfg.OnepayBaseURL, cfg.OnepayReturnURL)

	auth := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(catalog)
	quoteH := handler.NewQuoteHandler(quotes, catalog, pricer)
	reservationH := handler.NewReservationHandler(quotes, users, reservations)
	paymentH := handler.NewPaymentHandler(reservations, payments, onepay)

	// The reservation log consumer reconnects on its own; a broker
	// outage must not keep the API from serving.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("queue: reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth)
	router.RegisterCatalog(e, catalogH, rdb)
	router.RegisterBooking(e, cfg.JWTSecret, auth, quoteH, reservationH, paymentH)
	router.RegisterPaymentReturn(e, paymentH)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
