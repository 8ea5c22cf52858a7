package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/aeroregional/ticketing/config"
	"github.com/aeroregional/ticketing/internal/email"
	"github.com/aeroregional/ticketing/internal/kafka"
	"github.com/aeroregional/ticketing/internal/logger"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The worker drains the notifications topic and delivers ticket emails.
// Delivery problems are logged and the message is not retried; the
// purchase itself was already committed by the API.
func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Error("worker", "load config: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender(cfg.SMTP, log)

	log.Info("worker", "consuming %s", cfg.Kafka.NotificationsTopic)
	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var event kafka.TicketEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Warn("worker", "decode event: %v", err)
			return nil
		}
		if event.Type != kafka.EventTicketSold {
			return nil
		}
		if err := sender.Send(ctx, event); err != nil {
			log.Error("worker", "send ticket %s: %v", event.TicketCode, err)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Error("worker", "consumer stopped: %v", err)
		os.Exit(1)
	}
}
