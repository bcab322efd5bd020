package db

import (
	"context"

	"github.com/nyat/backend/internal/model"
)

// CreateUser inserts a new account. The UNIQUE constraint on username is
// the authoritative duplicate gate; callers inspect the returned error
// with IsUniqueViolation.
func (db *Postgres) CreateUser(ctx context.Context, username, passwordDigest string) (*model.User, error) {
	query := `
		INSERT INTO users (username, password_digest)
		VALUES ($1, $2)
		RETURNING id, username, password_digest, created_at
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, username, passwordDigest).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordDigest,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername looks up an account by exact, case-sensitive match.
func (db *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, password_digest, created_at
		FROM users
		WHERE username = $1
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordDigest,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `
		SELECT id, username, password_digest, created_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordDigest,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
