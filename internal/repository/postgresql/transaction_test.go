package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_database "github.com/peertrade/peertrade/internal/db/mocks"
	"github.com/peertrade/peertrade/internal/repository"
	"github.com/peertrade/peertrade/internal/repository/postgresql"
)

func TestTransactionRepo_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewTransactionRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		testTxn := &repository.Transaction{
			ID:         "txn-123",
			RequestID:  "req-456",
			ResponseID: "resp-789",
			SellerID:   "user-1",
			BuyerID:    "user-2",
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		mockDB.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(testTxn.ID),
			gomock.Eq(testTxn.RequestID),
			gomock.Eq(testTxn.ResponseID),
			gomock.Eq(testTxn.SellerID),
			gomock.Eq(testTxn.BuyerID),
			gomock.Any(),
		).Return(nil, nil)

		err := repo.Create(ctx, testTxn)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewTransactionRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, expectedErr)

		err := repo.Create(ctx, &repository.Transaction{ID: "txn-123"})
		assert.Equal(t, expectedErr, err)
	})
}

func TestTransactionRepo_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("transaction found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewTransactionRepo(mockDB)

		testTxn := &repository.Transaction{
			ID:         "txn-123",
			RequestID:  "req-456",
			ResponseID: "resp-789",
			SellerID:   "user-1",
			BuyerID:    "user-2",
		}

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(testTxn.ID)).
			DoAndReturn(func(_ context.Context, dest *repository.Transaction, _ string, _ string) error {
				*dest = *testTxn
				return nil
			})

		txn, err := repo.GetByID(ctx, testTxn.ID)
		assert.NoError(t, err)
		assert.Equal(t, testTxn, txn)
	})

	t.Run("transaction not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewTransactionRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		txn, err := repo.GetByID(ctx, "non-existent-id")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, txn)
	})
}

func TestTransactionRepo_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewTransactionRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		price := int64(100)
		testTxn := &repository.Transaction{
			ID:              "txn-123",
			RequestID:       "req-456",
			ResponseID:      "resp-789",
			SellerID:        "user-1",
			BuyerID:         "user-2",
			Exchanged:       true,
			ExchangeTime:    &now,
			CalculatedPrice: &price,
			UpdatedAt:       now,
		}

		mockDB.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(testTxn.Exchanged),
			gomock.Eq(testTxn.ExchangeTime),
			gomock.Any(),
		).Return(nil, nil)

		err := repo.Update(ctx, testTxn)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewTransactionRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, expectedErr)

		err := repo.Update(ctx, &repository.Transaction{ID: "txn-123"})
		assert.Equal(t, expectedErr, err)
	})
}

func TestTransactionRepo_GetActiveByRequestID(t *testing.T) {
	ctx := context.Background()

	t.Run("active transaction found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewTransactionRepo(mockDB)

		testTxn := &repository.Transaction{
			ID:        "txn-123",
			RequestID: "req-456",
		}

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("req-456")).
			DoAndReturn(func(_ context.Context, dest *repository.Transaction, _ string, _ string) error {
				*dest = *testTxn
				return nil
			})

		txn, err := repo.GetActiveByRequestID(ctx, "req-456")
		assert.NoError(t, err)
		assert.Equal(t, testTxn, txn)
	})

	t.Run("no active transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewTransactionRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		txn, err := repo.GetActiveByRequestID(ctx, "req-456")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, txn)
	})
}

func TestTransactionRepo_CountOpenByUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewTransactionRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("user-1")).
			DoAndReturn(func(_ context.Context, dest *int, _ string, _ string) error {
				*dest = 2
				return nil
			})

		count, err := repo.CountOpenByUser(ctx, "user-1")
		assert.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewTransactionRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("database error"))

		count, err := repo.CountOpenByUser(ctx, "user-1")
		assert.Error(t, err)
		assert.Zero(t, count)
	})
}
