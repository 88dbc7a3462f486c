package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/peertrade/peertrade/internal/db"
	"github.com/peertrade/peertrade/internal/repository"
)

type OutboxTaskRepo struct {
	db db.DB
}

func NewOutboxTaskRepo(db db.DB) *OutboxTaskRepo {
	return &OutboxTaskRepo{db: db}
}

func (r *OutboxTaskRepo) Create(ctx context.Context, task *repository.OutboxTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx, `
        INSERT INTO outbox_tasks (id, status, payload, topic, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, task.ID, repository.TaskStatusCreated, task.Payload, task.Topic, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert outbox task: %w", err)
	}
	return nil
}

func (r *OutboxTaskRepo) BeginTx(ctx context.Context) (db.Tx, error) {
	return r.db.BeginTx(ctx)
}

// GetProcessableTasksTx claims a batch of undelivered tasks. It must run
// inside a transaction so the row locks hold until the batch is marked; SKIP
// LOCKED keeps concurrent publishers off the same rows.
func (r *OutboxTaskRepo) GetProcessableTasksTx(ctx context.Context, tx db.Tx, maxAttempts, limit int) ([]*repository.OutboxTask, error) {
	var tasks []*repository.OutboxTask
	err := tx.Select(ctx, &tasks, `
        SELECT id, status, payload, topic, attempts, last_error, created_at, updated_at, completed_at
        FROM outbox_tasks
        WHERE status = $1 OR (status = $2 AND attempts < $3)
        ORDER BY updated_at ASC
        LIMIT $4
        FOR UPDATE SKIP LOCKED
    `, repository.TaskStatusCreated, repository.TaskStatusFailed, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get processable outbox tasks: %w", err)
	}
	return tasks, nil
}

func (r *OutboxTaskRepo) UpdateTaskStatusTx(ctx context.Context, tx db.Tx, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error {
	_, err := tx.Exec(ctx, `
        UPDATE outbox_tasks
        SET status = $1, attempts = $2, last_error = $3, completed_at = $4, updated_at = $5
        WHERE id = $6
    `, status, attempts, lastError, completedAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update outbox task %s: %w", id, err)
	}
	return nil
}
