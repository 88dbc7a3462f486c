package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/peertrade/peertrade/internal/db"
	"github.com/peertrade/peertrade/internal/repository"
)

type ResponseRepo struct {
	db db.DB
}

func NewResponseRepo(db db.DB) *ResponseRepo {
	return &ResponseRepo{db: db}
}

func (r *ResponseRepo) Create(ctx context.Context, resp *repository.Response) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO responses (
            id, request_id, responder_id, offer_price, price_type,
            exchange_location, return_location, exchange_time, return_time, message,
            buyer_status, seller_status, status, offer_to_buy_or_rent, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
    `, resp.ID, resp.RequestID, resp.ResponderID, resp.OfferPrice, resp.PriceType,
		resp.ExchangeLocation, resp.ReturnLocation, resp.ExchangeTime, resp.ReturnTime,
		resp.Message, resp.BuyerStatus, resp.SellerStatus, resp.Status,
		resp.OfferToBuyOrRent, resp.CreatedAt, resp.UpdatedAt)
	return err
}

func (r *ResponseRepo) GetByID(ctx context.Context, id string) (*repository.Response, error) {
	var resp repository.Response
	err := r.db.Get(ctx, &resp, "SELECT * FROM responses WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (r *ResponseRepo) Update(ctx context.Context, resp *repository.Response) error {
	_, err := r.db.Exec(ctx, `
        UPDATE responses
        SET
            offer_price = $1,
            price_type = $2,
            exchange_location = $3,
            return_location = $4,
            exchange_time = $5,
            return_time = $6,
            message = $7,
            buyer_status = $8,
            seller_status = $9,
            status = $10,
            updated_at = $11
        WHERE id = $12
    `, resp.OfferPrice, resp.PriceType, resp.ExchangeLocation, resp.ReturnLocation,
		resp.ExchangeTime, resp.ReturnTime, resp.Message, resp.BuyerStatus,
		resp.SellerStatus, resp.Status, resp.UpdatedAt, resp.ID)
	return err
}

func (r *ResponseRepo) GetByRequestID(ctx context.Context, requestID string) ([]*repository.Response, error) {
	var resps []*repository.Response
	err := r.db.Select(ctx, &resps,
		"SELECT * FROM responses WHERE request_id = $1 ORDER BY created_at ASC", requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses for request: %w", err)
	}
	return resps, nil
}

func (r *ResponseRepo) GetPendingByRequestID(ctx context.Context, requestID string) ([]*repository.Response, error) {
	var resps []*repository.Response
	err := r.db.Select(ctx, &resps,
		"SELECT * FROM responses WHERE request_id = $1 AND status = $2 ORDER BY created_at ASC",
		requestID, repository.ResponseStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending responses for request: %w", err)
	}
	return resps, nil
}

func (r *ResponseRepo) CountByResponderAndStatus(ctx context.Context, responderID string, status repository.ResponseStatus) (int, error) {
	var count int
	err := r.db.Get(ctx, &count,
		"SELECT COUNT(*) FROM responses WHERE responder_id = $1 AND status = $2",
		responderID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return count, nil
}
