package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukaramakaro/opa2-preview/config"
	appkafka "github.com/dukaramakaro/opa2-preview/internal/kafka"
	"github.com/dukaramakaro/opa2-preview/internal/notify"
	"github.com/dukaramakaro/opa2-preview/pkg/logger"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The worker drains the notifications topic and pushes WhatsApp messages.
// Every failure is logged and skipped: notifications are best-effort and
// must never block the booking flow that produced them.
func main() {
	log := logger.New()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatal("load config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := appkafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := notify.NewWhatsAppSender(cfg.WhatsApp.BaseURL, cfg.WhatsApp.Token, log)

	log.Info("notification worker started", "topic", cfg.Kafka.NotificationsTopic)
	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var event appkafka.ReservationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Warn("skipping undecodable event", "error", err)
			return nil
		}
		if err := sender.Send(ctx, event); err != nil {
			log.Warn("whatsapp notification failed", "code", event.Code, "error", err)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Error("consumer stopped", "error", err)
	}
	log.Info("notification worker stopped")
}
