package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/peertrade/peertrade/internal/db"
	"github.com/peertrade/peertrade/internal/repository"
)

type RequestRepo struct {
	db db.DB
}

func NewRequestRepo(db db.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

func (r *RequestRepo) Create(ctx context.Context, req *repository.Request) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO requests (
            id, user_id, item_name, category, type, description, post_date, expire_date,
            status, inappropriate, duplicate, source_listing_id, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `, req.ID, req.UserID, req.ItemName, req.Category, req.Type, req.Description,
		req.PostDate, req.ExpireDate, req.Status, req.Inappropriate, req.Duplicate,
		req.SourceListingID, req.CreatedAt, req.UpdatedAt)
	return err
}

func (r *RequestRepo) GetByID(ctx context.Context, id string) (*repository.Request, error) {
	var req repository.Request
	err := r.db.Get(ctx, &req, "SELECT * FROM requests WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepo) Update(ctx context.Context, req *repository.Request) error {
	_, err := r.db.Exec(ctx, `
        UPDATE requests
        SET
            item_name = $1,
            category = $2,
            type = $3,
            description = $4,
            expire_date = $5,
            status = $6,
            inappropriate = $7,
            updated_at = $8
        WHERE id = $9
    `, req.ItemName, req.Category, req.Type, req.Description, req.ExpireDate,
		req.Status, req.Inappropriate, req.UpdatedAt, req.ID)
	return err
}

func (r *RequestRepo) CountByUserAndStatus(ctx context.Context, userID string, status repository.RequestStatus) (int, error) {
	var count int
	err := r.db.Get(ctx, &count,
		"SELECT COUNT(*) FROM requests WHERE user_id = $1 AND status = $2 AND duplicate = FALSE",
		userID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count requests: %w", err)
	}
	return count, nil
}

func (r *RequestRepo) GetAllOpen(ctx context.Context) ([]*repository.Request, error) {
	var reqs []*repository.Request
	err := r.db.Select(ctx, &reqs, `
        SELECT * FROM requests
        WHERE status = $1 AND duplicate = FALSE
        ORDER BY post_date DESC
    `, repository.RequestStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to get open requests: %w", err)
	}
	return reqs, nil
}

// SearchOpen filters open listings by optional category and keyword, skipping
// requests posted by users the searcher has blocked.
func (r *RequestRepo) SearchOpen(ctx context.Context, category, keyword string, excludeUserIDs []string) ([]*repository.Request, error) {
	query := "SELECT * FROM requests WHERE status = $1 AND duplicate = FALSE AND inappropriate = FALSE"
	args := []interface{}{repository.RequestStatusOpen}

	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if keyword != "" {
		args = append(args, "%"+keyword+"%")
		query += fmt.Sprintf(" AND item_name ILIKE $%d", len(args))
	}
	if len(excludeUserIDs) > 0 {
		args = append(args, excludeUserIDs)
		query += fmt.Sprintf(" AND NOT (user_id = ANY($%d))", len(args))
	}
	query += " ORDER BY post_date DESC"

	var reqs []*repository.Request
	err := r.db.Select(ctx, &reqs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search open requests: %w", err)
	}
	return reqs, nil
}
