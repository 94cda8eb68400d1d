package main

import (
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"walk-scheduler/internal/adapters/cache"
	"walk-scheduler/internal/adapters/geocode"
	"walk-scheduler/internal/adapters/notify"
	"walk-scheduler/internal/adapters/repositories"
	"walk-scheduler/internal/api"
	"walk-scheduler/internal/config"
	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/logger"
	"walk-scheduler/internal/platform/db"
	"walk-scheduler/internal/scheduling"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, Kafka, Nominatim) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.Load()
	appLog := logger.New(cfg.Logger)

	pool, err := db.Open(cfg.Database.URL)
	if err != nil {
		appLog.WithError(err).Fatal("Database connection failed")
	}
	defer pool.Close()

	if err := repositories.InitSchema(pool); err != nil {
		appLog.WithError(err).Fatal("Schema initialization failed")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	notifier, err := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Kafka producer setup failed")
	}
	defer notifier.Close()

	geocodeTTL := time.Duration(cfg.Redis.GeocodeTTLSecs) * time.Second
	geocoder := &geocode.CachedGeocoder{
		Inner: geocode.NewNominatimGeocoder(""),
		Cache: cache.NewRedisGeocodeCache(redisClient, geocodeTTL),
		Log:   appLog,
	}

	bookings := &repositories.PostgresBookingRepository{DB: pool}
	walkers := &repositories.PostgresWalkerRepository{DB: pool}
	slots := &repositories.PostgresSlotRepository{DB: pool}
	runs := &repositories.PostgresRunRepository{DB: pool}

	optimizer := &scheduling.Optimizer{
		Bookings: bookings,
		Walkers:  walkers,
		Slots:    slots,
		Runs:     runs,
		Notifier: notifier,
		Geocoder: geocoder,
		Log:      appLog,
	}
	slotService := &scheduling.SlotService{
		Slots:    slots,
		Bookings: bookings,
		Notifier: notifier,
		Log:      appLog,
	}

	defaults := domain.RunParams{
		MaxRadiusKm:       cfg.Scheduling.MaxRadiusKm,
		MaxTimeGapMinutes: cfg.Scheduling.MaxTimeGapMinutes,
		MaxDogsPerGroup:   cfg.Scheduling.MaxDogsPerGroup,
		GroupDiscountRate: cfg.Scheduling.GroupDiscountRate,
	}
	router := api.NewRouter(optimizer, slotService, defaults, appLog)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	appLog.WithField("addr", addr).Info("Server listening")
	appLog.Fatal(srv.ListenAndServe())
}
