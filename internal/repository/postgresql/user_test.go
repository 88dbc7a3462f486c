package postgresql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	mock_database "github.com/peertrade/peertrade/internal/db/mocks"
	"github.com/peertrade/peertrade/internal/repository"
	"github.com/peertrade/peertrade/internal/repository/postgresql"
)

func TestUserRepo_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("user found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewUserRepo(mockDB)

		testUser := &repository.User{
			ID:            "user-123",
			Username:      "alice",
			AcceptedTerms: true,
		}

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(testUser.ID)).
			DoAndReturn(func(_ context.Context, dest *repository.User, _ string, _ string) error {
				*dest = *testUser
				return nil
			})

		user, err := repo.GetByID(ctx, testUser.ID)
		assert.NoError(t, err)
		assert.Equal(t, testUser, user)
	})

	t.Run("user not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewUserRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		user, err := repo.GetByID(ctx, "non-existent-id")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, user)
	})
}

func TestUserRepo_ValidateUser(t *testing.T) {
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewUserRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("alice")).
			DoAndReturn(func(_ context.Context, dest *repository.User, _ string, _ string) error {
				*dest = repository.User{ID: "user-123", Username: "alice", Password: string(hashed)}
				return nil
			})

		userID, err := repo.ValidateUser(ctx, "alice", "secret")
		assert.NoError(t, err)
		assert.Equal(t, "user-123", userID)
	})

	t.Run("wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewUserRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("alice")).
			DoAndReturn(func(_ context.Context, dest *repository.User, _ string, _ string) error {
				*dest = repository.User{ID: "user-123", Username: "alice", Password: string(hashed)}
				return nil
			})

		userID, err := repo.ValidateUser(ctx, "alice", "not-the-password")
		assert.NoError(t, err)
		assert.Empty(t, userID)
	})

	t.Run("unknown username", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewUserRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		userID, err := repo.ValidateUser(ctx, "nobody", "secret")
		assert.NoError(t, err)
		assert.Empty(t, userID)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewUserRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("database error"))

		userID, err := repo.ValidateUser(ctx, "alice", "secret")
		assert.Error(t, err)
		assert.Empty(t, userID)
	})
}

func TestUserRepo_ListAdmins(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewUserRepo(mockDB)

		admins := []string{"admin-1", "admin-2"}

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, dest *[]string, _ string, _ ...interface{}) error {
				*dest = admins
				return nil
			})

		ids, err := repo.ListAdmins(ctx)
		assert.NoError(t, err)
		assert.Equal(t, admins, ids)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewUserRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("database error"))

		ids, err := repo.ListAdmins(ctx)
		assert.Error(t, err)
		assert.Nil(t, ids)
	})
}
