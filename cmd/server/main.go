// Command server runs the restaurant availability and reservation API.
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/restovia/table-reservation/internal/config"
	"github.com/restovia/table-reservation/internal/database"
	"github.com/restovia/table-reservation/internal/handler"
	"github.com/restovia/table-reservation/internal/queue"
	"github.com/restovia/table-reservation/internal/repository"
	"github.com/restovia/table-reservation/internal/router"
	"github.com/restovia/table-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the availability cache.  A nil
	// client disables both; the API stays functional.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	restaurants := repository.NewRestaurantRepo(db)
	tables := repository.NewTableRepo(db)
	schedules := repository.NewScheduleRepo(db)
	reservations := repository.NewReservationRepo(db)
	staff := repository.NewStaffRepo(db)
	tokens := repository.NewTokenRepo(db)

	booking := service.NewBookingService(restaurants, tables, schedules, reservations,
		service.AMQPPublisher{}, cfg.SlotGranularityMin, cfg.LockTimeout)

	// The confirmation consumer reconnects on its own; run it for the
	// lifetime of the process.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, staff, tokens), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewAvailabilityHandler(booking),
		handler.NewReservationHandler(booking),
		config.LoadCacheConfig(), config.LoadRateLimitConfig(), rdb)
	router.RegisterStaff(e, handler.NewStaffReservationHandler(booking), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
