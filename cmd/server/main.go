package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/voicetable/reservation-engine/internal/config"
	"github.com/voicetable/reservation-engine/internal/database"
	"github.com/voicetable/reservation-engine/internal/handler"
	appmw "github.com/voicetable/reservation-engine/internal/middleware"
	"github.com/voicetable/reservation-engine/internal/queue"
	"github.com/voicetable/reservation-engine/internal/repository"
	"github.com/voicetable/reservation-engine/internal/router"
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

	// Redis is optional: nil disables rate limiting and response caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}
	rateLimit := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

	restaurantRepo := repository.NewRestaurantRepo(db)
	slotRepo := repository.NewTimeSlotRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	callRepo := repository.NewCallRepo(db)
	callbackRepo := repository.NewCallbackRepo(db)
	statsRepo := repository.NewStatsRepo(db)
	staffRepo := repository.NewStaffRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	authH := handler.NewAuthHandler(cfg, staffRepo, tokenRepo)
	availabilityH := handler.NewAvailabilityHandler(restaurantRepo, slotRepo)
	bookingH := handler.NewBookingHandler(restaurantRepo, slotRepo, reservationRepo, customerRepo, callRepo)
	callLogH := handler.NewCallLogHandler(restaurantRepo, callRepo, statsRepo)
	callbackH := handler.NewCallbackHandler(restaurantRepo, callbackRepo, callRepo, staffRepo)
	reservationH := handler.NewReservationHandler(restaurantRepo, reservationRepo, slotRepo)
	statsH := handler.NewStatsHandler(restaurantRepo, statsRepo)
	customerH := handler.NewCustomerHandler(customerRepo)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterVoice(e, availabilityH, bookingH, callLogH, callbackH, rateLimit)
	router.RegisterStaff(e, callbackH, reservationH, statsH, customerH, cfg.JWTSecret, cache)

	// Drain confirmation and callback events into the activity log.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
