package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/peertrade/peertrade/internal/cache"
	"github.com/peertrade/peertrade/internal/db"
	"github.com/peertrade/peertrade/internal/identity"
	"github.com/peertrade/peertrade/internal/kafka"
	"github.com/peertrade/peertrade/internal/logger"
	"github.com/peertrade/peertrade/internal/notify"
	"github.com/peertrade/peertrade/internal/payment"
	"github.com/peertrade/peertrade/internal/repository/postgresql"
	"github.com/peertrade/peertrade/internal/server"
	"github.com/peertrade/peertrade/internal/service"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db.LoadEnv()
	log := logger.New()
	defer log.Sync() //nolint:errcheck

	database, err := db.NewDb(ctx)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer database.Close()

	requestRepo := postgresql.NewRequestRepo(database)
	responseRepo := postgresql.NewResponseRepo(database)
	transactionRepo := postgresql.NewTransactionRepo(database)
	userRepo := postgresql.NewUserRepo(database)
	outboxRepo := postgresql.NewOutboxTaskRepo(database)

	requestCache := cache.NewRequestCache(requestRepo, log)
	if err := requestCache.LoadInitialData(ctx); err != nil {
		log.Warn("request cache warmup failed", zap.Error(err))
	}

	notifier := notify.NewOutboxNotifier(outboxRepo, log)

	var gateway service.PaymentGateway = payment.NewNoopGateway(log)
	if baseURL := os.Getenv("PAYMENT_API_URL"); baseURL != "" {
		gateway = payment.NewProviderGateway(baseURL, os.Getenv("PAYMENT_API_KEY"), log)
	}

	verifier := identity.NewHTTPVerifier(os.Getenv("FACEBOOK_APP_TOKEN"))

	core := service.New(
		requestRepo,
		responseRepo,
		transactionRepo,
		userRepo,
		notifier,
		gateway,
		userRepo,
		requestCache,
		service.LimitsFromEnv(),
		log,
	)

	srv := server.New(core, userRepo, verifier, log)

	var producer kafka.Producer = kafka.NewConsoleProducer(log)
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaProducer := kafka.NewKafkaProducer(strings.Split(brokers, ","), log)
		defer kafkaProducer.Close() //nolint:errcheck
		producer = kafkaProducer
	}

	publisher := kafka.NewPublisher(outboxRepo, producer, kafka.PublisherConfig{
		PollInterval: 2 * time.Second,
		BatchSize:    50,
		MaxAttempts:  5,
	}, log)

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "9000"
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, port)
	})
	g.Go(func() error {
		publisher.Run(gctx)
		return nil
	})

	<-gctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	publisher.Shutdown()

	if err := g.Wait(); err != nil {
		log.Error("run group exited with error", zap.Error(err))
	}

	log.Info("stopped")
}
