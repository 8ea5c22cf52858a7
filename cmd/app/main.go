package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aeroregional/ticketing/config"
	"github.com/aeroregional/ticketing/internal/bootstrap"
	"github.com/aeroregional/ticketing/internal/cache"
	"github.com/aeroregional/ticketing/internal/kafka"
	"github.com/aeroregional/ticketing/internal/logger"
	"github.com/aeroregional/ticketing/internal/repository"
	"github.com/aeroregional/ticketing/internal/service/flights"
	"github.com/aeroregional/ticketing/internal/service/purchase"
	"github.com/aeroregional/ticketing/internal/ticket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Error("app", "load config: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("app", "connect postgres: %v", err)
		os.Exit(1)
	}
	defer pool.Close()

	searchCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Purchase.SearchCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)

	flightService := flights.NewFlightService(flightRepo, searchCache)
	purchaseService := purchase.NewPurchaseService(
		purchaseRepo,
		flightRepo,
		ticket.NewRandomGenerator(),
		producer,
		cfg.Kafka.NotificationsTopic,
		cfg.Purchase.CodeAttempts,
		log,
	)

	if err := bootstrap.Run(ctx, cfg, flightService, purchaseService, log); err != nil {
		log.Error("app", "server error: %v", err)
		os.Exit(1)
	}
}
