package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peertrade/peertrade/internal/db"
	"github.com/peertrade/peertrade/internal/repository"
)

type OutboxTaskRepository interface {
	BeginTx(ctx context.Context) (db.Tx, error)
	GetProcessableTasksTx(ctx context.Context, tx db.Tx, maxAttempts, limit int) ([]*repository.OutboxTask, error)
	UpdateTaskStatusTx(ctx context.Context, tx db.Tx, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
}

type PublisherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// Publisher drains the notification outbox into the broker. Failed sends are
// retried on later polls until MaxAttempts, then left FAILED for inspection.
type Publisher struct {
	repo     OutboxTaskRepository
	producer Producer
	config   PublisherConfig
	logger   *zap.Logger

	wg             sync.WaitGroup
	shutdownSignal chan struct{}
	stopOnce       sync.Once
}

func NewPublisher(repo OutboxTaskRepository, producer Producer, config PublisherConfig, logger *zap.Logger) *Publisher {
	return &Publisher{
		repo:           repo,
		producer:       producer,
		config:         config,
		logger:         logger,
		shutdownSignal: make(chan struct{}),
	}
}

func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("starting outbox publisher",
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Int("batch_size", p.config.BatchSize))
	p.wg.Add(1)
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error("outbox publisher failed to process batch", zap.Error(err))
			}
		case <-p.shutdownSignal:
			p.logger.Info("outbox publisher received shutdown signal")
			return
		case <-ctx.Done():
			p.Shutdown()
			return
		}
	}
}

func (p *Publisher) Shutdown() {
	p.stopOnce.Do(func() {
		close(p.shutdownSignal)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			p.logger.Info("outbox publisher shutdown complete")
		case <-shutdownCtx.Done():
			p.logger.Warn("outbox publisher shutdown timed out")
		}

		if err := p.producer.Close(); err != nil {
			p.logger.Error("failed to close producer", zap.Error(err))
		}
	})
}

// processBatch claims a batch inside one transaction, holding the row locks
// until every task is sent and marked. A crash between the send and the
// commit re-delivers on the next poll, so consumers see at-least-once.
func (p *Publisher) processBatch(ctx context.Context) error {
	tx, err := p.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tasks, err := p.repo.GetProcessableTasksTx(ctx, tx, p.config.MaxAttempts, p.config.BatchSize)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	p.logger.Debug("outbox publisher fetched tasks", zap.Int("count", len(tasks)))

	for _, task := range tasks {
		select {
		case <-p.shutdownSignal:
			return tx.Commit(ctx)
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.processSingleTask(ctx, tx, task); err != nil {
			p.logger.Error("failed to process outbox task",
				zap.String("task_id", task.ID.String()), zap.Error(err))
		}
	}
	return tx.Commit(ctx)
}

func (p *Publisher) processSingleTask(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error {
	err := p.producer.SendMessage(ctx, task.Topic, []byte(task.ID.String()), task.Payload)
	if err != nil {
		newAttempts := task.Attempts + 1
		errMsg := err.Error()
		if newAttempts >= p.config.MaxAttempts {
			p.logger.Warn("outbox task reached max attempts",
				zap.String("task_id", task.ID.String()),
				zap.Int("attempts", newAttempts))
		}
		if updateErr := p.repo.UpdateTaskStatusTx(ctx, tx, task.ID, repository.TaskStatusFailed, newAttempts, &errMsg, nil); updateErr != nil {
			return updateErr
		}
		return err
	}

	now := time.Now().UTC()
	return p.repo.UpdateTaskStatusTx(ctx, tx, task.ID, repository.TaskStatusDone, task.Attempts, nil, &now)
}
