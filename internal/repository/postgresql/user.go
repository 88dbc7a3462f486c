package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/peertrade/peertrade/internal/db"
	"github.com/peertrade/peertrade/internal/repository"
)

type UserRepo struct {
	db db.DB
}

func NewUserRepo(db db.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *repository.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
        INSERT INTO users (id, username, password, admin, accepted_terms, blocked_users, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, user.ID, user.Username, string(hashedPassword), user.Admin, user.AcceptedTerms,
		user.BlockedUsers, user.CreatedAt)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	var user repository.User
	err := r.db.Get(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ValidateUser checks basic-auth credentials and returns the user id on
// success, or an empty id when the credentials do not match.
func (r *UserRepo) ValidateUser(ctx context.Context, username, password string) (string, error) {
	var user repository.User
	err := r.db.Get(ctx, &user, "SELECT * FROM users WHERE username = $1", username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil
	}
	return user.ID, nil
}

func (r *UserRepo) ListAdmins(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.Select(ctx, &ids, "SELECT id FROM users WHERE admin = TRUE")
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return ids, nil
}
