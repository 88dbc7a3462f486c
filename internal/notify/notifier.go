package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/peertrade/peertrade/internal/repository"
)

// Topic is the broker topic notifications are shipped to by the outbox
// publisher and consumed from by the push-delivery worker.
const Topic = "notifications"

type OutboxTaskRepository interface {
	Create(ctx context.Context, task *repository.OutboxTask) error
}

// OutboxNotifier enqueues notifications durably instead of calling a push
// provider inline: delivery happens in the outbox publisher, so a slow or
// down provider never blocks business logic.
type OutboxNotifier struct {
	repo   OutboxTaskRepository
	logger *zap.Logger
}

func NewOutboxNotifier(repo OutboxTaskRepository, logger *zap.Logger) *OutboxNotifier {
	return &OutboxNotifier{repo: repo, logger: logger}
}

func (n *OutboxNotifier) Send(ctx context.Context, recipientID, title, message, notificationType string, data map[string]string) error {
	payload, err := json.Marshal(repository.NotificationPayload{
		Timestamp:   time.Now().UTC(),
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Type:        notificationType,
		Data:        data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	task := &repository.OutboxTask{
		Payload: payload,
		Topic:   Topic,
	}
	if err := n.repo.Create(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// ConsoleNotifier prints notifications to the log, for local runs and tests.
type ConsoleNotifier struct {
	logger *zap.Logger
}

func NewConsoleNotifier(logger *zap.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{logger: logger}
}

func (n *ConsoleNotifier) Send(ctx context.Context, recipientID, title, message, notificationType string, data map[string]string) error {
	n.logger.Info("notification",
		zap.String("recipient_id", recipientID),
		zap.String("title", title),
		zap.String("message", message),
		zap.String("type", notificationType),
		zap.Any("data", data))
	return nil
}
