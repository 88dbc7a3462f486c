package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/peertrade/peertrade/internal/db"
	"github.com/peertrade/peertrade/internal/repository"
)

type TransactionRepo struct {
	db db.DB
}

func NewTransactionRepo(db db.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) Create(ctx context.Context, txn *repository.Transaction) error {
	// The partial unique index on (request_id) WHERE NOT canceled backs the
	// single-active-transaction invariant at the storage level.
	_, err := r.db.Exec(ctx, `
        INSERT INTO transactions (
            id, request_id, response_id, seller_id, buyer_id,
            exchanged, exchange_time, returned, return_time,
            exchange_code, exchange_code_expire_date, return_code, return_code_expire_date,
            calculated_price, price_override, final_price, seller_accepted,
            exchange_override_time, exchange_override_buyer_accepted,
            exchange_override_seller_accepted, exchange_override_declined,
            return_override_time, return_override_buyer_accepted,
            return_override_seller_accepted, return_override_declined,
            canceled, canceled_by, canceled_reason, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
            $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30
        )
    `, txn.ID, txn.RequestID, txn.ResponseID, txn.SellerID, txn.BuyerID,
		txn.Exchanged, txn.ExchangeTime, txn.Returned, txn.ReturnTime,
		txn.ExchangeCode, txn.ExchangeCodeExpireDate, txn.ReturnCode, txn.ReturnCodeExpireDate,
		txn.CalculatedPrice, txn.PriceOverride, txn.FinalPrice, txn.SellerAccepted,
		txn.ExchangeOverrideTime, txn.ExchangeOverrideBuyerAccepted,
		txn.ExchangeOverrideSellerAccepted, txn.ExchangeOverrideDeclined,
		txn.ReturnOverrideTime, txn.ReturnOverrideBuyerAccepted,
		txn.ReturnOverrideSellerAccepted, txn.ReturnOverrideDeclined,
		txn.Canceled, txn.CanceledBy, txn.CanceledReason, txn.CreatedAt, txn.UpdatedAt)
	return err
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*repository.Transaction, error) {
	var txn repository.Transaction
	err := r.db.Get(ctx, &txn, "SELECT * FROM transactions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepo) Update(ctx context.Context, txn *repository.Transaction) error {
	_, err := r.db.Exec(ctx, `
        UPDATE transactions
        SET
            exchanged = $1,
            exchange_time = $2,
            returned = $3,
            return_time = $4,
            exchange_code = $5,
            exchange_code_expire_date = $6,
            return_code = $7,
            return_code_expire_date = $8,
            calculated_price = $9,
            price_override = $10,
            final_price = $11,
            seller_accepted = $12,
            exchange_override_time = $13,
            exchange_override_buyer_accepted = $14,
            exchange_override_seller_accepted = $15,
            exchange_override_declined = $16,
            return_override_time = $17,
            return_override_buyer_accepted = $18,
            return_override_seller_accepted = $19,
            return_override_declined = $20,
            canceled = $21,
            canceled_by = $22,
            canceled_reason = $23,
            updated_at = $24
        WHERE id = $25
    `, txn.Exchanged, txn.ExchangeTime, txn.Returned, txn.ReturnTime,
		txn.ExchangeCode, txn.ExchangeCodeExpireDate, txn.ReturnCode, txn.ReturnCodeExpireDate,
		txn.CalculatedPrice, txn.PriceOverride, txn.FinalPrice, txn.SellerAccepted,
		txn.ExchangeOverrideTime, txn.ExchangeOverrideBuyerAccepted,
		txn.ExchangeOverrideSellerAccepted, txn.ExchangeOverrideDeclined,
		txn.ReturnOverrideTime, txn.ReturnOverrideBuyerAccepted,
		txn.ReturnOverrideSellerAccepted, txn.ReturnOverrideDeclined,
		txn.Canceled, txn.CanceledBy, txn.CanceledReason, txn.UpdatedAt, txn.ID)
	return err
}

// GetActiveByRequestID returns the single non-canceled transaction for a
// request, or ErrObjectNotFound when none is active.
func (r *TransactionRepo) GetActiveByRequestID(ctx context.Context, requestID string) (*repository.Transaction, error) {
	var txn repository.Transaction
	err := r.db.Get(ctx, &txn,
		"SELECT * FROM transactions WHERE request_id = $1 AND canceled = FALSE", requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// CountOpenByUser counts transactions the user is a party to that have neither
// been canceled nor reached a final price.
func (r *TransactionRepo) CountOpenByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.Get(ctx, &count, `
        SELECT COUNT(*) FROM transactions
        WHERE (seller_id = $1 OR buyer_id = $1) AND canceled = FALSE AND final_price IS NULL
    `, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count open transactions: %w", err)
	}
	return count, nil
}
