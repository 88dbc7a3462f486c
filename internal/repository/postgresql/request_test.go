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

func TestRequestRepo_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		testRequest := &repository.Request{
			ID:          "req-123",
			UserID:      "user-456",
			ItemName:    "cordless drill",
			Category:    "tools",
			Type:        repository.RequestTypeRenting,
			Description: "need one for the weekend",
			PostDate:    now,
			ExpireDate:  now.Add(72 * time.Hour),
			Status:      repository.RequestStatusOpen,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		mockDB.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(testRequest.ID),
			gomock.Eq(testRequest.UserID),
			gomock.Eq(testRequest.ItemName),
			gomock.Eq(testRequest.Category),
			gomock.Eq(testRequest.Type),
			gomock.Eq(testRequest.Description),
			gomock.Eq(testRequest.PostDate),
			gomock.Eq(testRequest.ExpireDate),
			gomock.Eq(testRequest.Status),
			gomock.Eq(testRequest.Inappropriate),
			gomock.Eq(testRequest.Duplicate),
			gomock.Eq(testRequest.SourceListingID),
			gomock.Eq(testRequest.CreatedAt),
			gomock.Eq(testRequest.UpdatedAt),
		).Return(nil, nil)

		err := repo.Create(ctx, testRequest)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, expectedErr)

		err := repo.Create(ctx, &repository.Request{ID: "req-123"})
		assert.Equal(t, expectedErr, err)
	})
}

func TestRequestRepo_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("request found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		testRequest := &repository.Request{
			ID:         "req-123",
			UserID:     "user-456",
			ItemName:   "cordless drill",
			Type:       repository.RequestTypeRenting,
			ExpireDate: now.Add(72 * time.Hour),
			Status:     repository.RequestStatusOpen,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(testRequest.ID)).
			DoAndReturn(func(_ context.Context, dest *repository.Request, _ string, _ string) error {
				*dest = *testRequest
				return nil
			})

		req, err := repo.GetByID(ctx, testRequest.ID)
		assert.NoError(t, err)
		assert.Equal(t, testRequest, req)
	})

	t.Run("request not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		req, err := repo.GetByID(ctx, "non-existent-id")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, req)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(expectedErr)

		req, err := repo.GetByID(ctx, "req-123")
		assert.Equal(t, expectedErr, err)
		assert.Nil(t, req)
	})
}

func TestRequestRepo_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		testRequest := &repository.Request{
			ID:         "req-123",
			UserID:     "user-456",
			ItemName:   "cordless drill",
			Category:   "tools",
			Type:       repository.RequestTypeRenting,
			ExpireDate: now.Add(72 * time.Hour),
			Status:     repository.RequestStatusClosed,
			UpdatedAt:  now,
		}

		mockDB.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(testRequest.ItemName),
			gomock.Eq(testRequest.Category),
			gomock.Eq(testRequest.Type),
			gomock.Eq(testRequest.Description),
			gomock.Eq(testRequest.ExpireDate),
			gomock.Eq(testRequest.Status),
			gomock.Eq(testRequest.Inappropriate),
			gomock.Eq(testRequest.UpdatedAt),
			gomock.Eq(testRequest.ID),
		).Return(nil, nil)

		err := repo.Update(ctx, testRequest)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, expectedErr)

		err := repo.Update(ctx, &repository.Request{ID: "req-123"})
		assert.Equal(t, expectedErr, err)
	})
}

func TestRequestRepo_CountByUserAndStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Eq("user-456"), gomock.Eq(repository.RequestStatusOpen)).
			DoAndReturn(func(_ context.Context, dest *int, _ string, _ ...interface{}) error {
				*dest = 3
				return nil
			})

		count, err := repo.CountByUserAndStatus(ctx, "user-456", repository.RequestStatusOpen)
		assert.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("database error"))

		count, err := repo.CountByUserAndStatus(ctx, "user-456", repository.RequestStatusOpen)
		assert.Error(t, err)
		assert.Zero(t, count)
	})
}

func TestRequestRepo_SearchOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("keyword and category narrow the query", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		testRequests := []*repository.Request{
			{ID: "req-123", UserID: "user-456", ItemName: "cordless drill", Category: "tools"},
		}

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Eq(repository.RequestStatusOpen), gomock.Eq("tools"), gomock.Eq("%drill%")).
			DoAndReturn(func(_ context.Context, dest *[]*repository.Request, _ string, _ ...interface{}) error {
				*dest = testRequests
				return nil
			})

		reqs, err := repo.SearchOpen(ctx, "tools", "drill", nil)
		assert.NoError(t, err)
		assert.Equal(t, testRequests, reqs)
	})

	t.Run("blocked posters excluded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		excluded := []string{"user-789"}

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Eq(repository.RequestStatusOpen), gomock.Eq(excluded)).
			DoAndReturn(func(_ context.Context, dest *[]*repository.Request, _ string, _ ...interface{}) error {
				*dest = nil
				return nil
			})

		reqs, err := repo.SearchOpen(ctx, "", "", excluded)
		assert.NoError(t, err)
		assert.Empty(t, reqs)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewRequestRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("database error"))

		reqs, err := repo.SearchOpen(ctx, "", "", nil)
		assert.Error(t, err)
		assert.Nil(t, reqs)
	})
}
