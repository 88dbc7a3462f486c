package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/peertrade/peertrade/internal/logger"
	"github.com/peertrade/peertrade/internal/notify"
	"github.com/peertrade/peertrade/internal/repository"
)

const groupID = "notification-delivery-group"

// The consumer drains the notifications topic and hands each payload to the
// push delivery side. Delivery here is the console notifier; swapping in a
// real push provider only touches this binary.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := logger.New()
	defer log.Sync() //nolint:errcheck

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}

	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        strings.Split(brokers, ","),
		GroupID:        groupID,
		Topic:          notify.Topic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Error("failed to close kafka reader", zap.Error(err))
		}
	}()

	deliver := notify.NewConsoleNotifier(log)

	log.Info("consumer connected",
		zap.String("topic", notify.Topic),
		zap.String("brokers", brokers))

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received, stopping consumer")
			return
		default:
			m, err := r.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error("failed to read message", zap.Error(err))
				time.Sleep(5 * time.Second)
				continue
			}

			var payload repository.NotificationPayload
			if err := json.Unmarshal(m.Value, &payload); err != nil {
				log.Error("failed to decode notification payload",
					zap.Int64("offset", m.Offset),
					zap.Error(err))
				continue
			}

			if err := deliver.Send(ctx, payload.RecipientID, payload.Title, payload.Message, payload.Type, payload.Data); err != nil {
				log.Error("failed to deliver notification",
					zap.String("recipient_id", payload.RecipientID),
					zap.Error(err))
			}
		}
	}
}
