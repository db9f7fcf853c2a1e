package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukaramakaro/opa2-preview/config"
	"github.com/dukaramakaro/opa2-preview/internal/bootstrap"
	"github.com/dukaramakaro/opa2-preview/internal/cache"
	"github.com/dukaramakaro/opa2-preview/internal/kafka"
	"github.com/dukaramakaro/opa2-preview/internal/payment"
	"github.com/dukaramakaro/opa2-preview/internal/repository"
	"github.com/dukaramakaro/opa2-preview/internal/service/reservation"
	"github.com/dukaramakaro/opa2-preview/pkg/logger"
	"github.com/dukaramakaro/opa2-preview/pkg/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

	repo, cleanup, err := newRepository(ctx, cfg)
	if err != nil {
		log.Fatal("init reservation store", "error", err)
	}
	defer cleanup()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	provider := newProvider(cfg)

	svc := reservation.NewReservationService(repo, log,
		reservation.WithCache(cache.NewRedisCache(cfg.Redis)),
		reservation.WithProducer(producer, cfg.Kafka.ReservationsTopic, cfg.Kafka.NotificationsTopic),
		reservation.WithPaymentProvider(provider, cfg.HTTP.BaseURL),
		reservation.WithMetrics(metrics.New("opa2")),
	)

	if err := bootstrap.Run(ctx, cfg, svc, provider, log); err != nil {
		log.Fatal("server error", "error", err)
	}
}

func newRepository(ctx context.Context, cfg *config.Config) (repository.ReservationRepository, func(), error) {
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Storage.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPGRepository(pool)
		if err := repo.InitSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	default:
		repo, err := repository.NewFileRepository(cfg.Storage.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}
}

func newProvider(cfg *config.Config) payment.Provider {
	if cfg.Payment.Provider == "clip" {
		return payment.NewClipProvider(cfg.Payment.ClipBaseURL, cfg.Payment.ClipAPIKey)
	}
	return payment.NewStripeProvider(cfg.Payment.StripeAPIKey)
}
