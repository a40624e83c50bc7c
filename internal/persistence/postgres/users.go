package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"example.com/fitness/internal/identity"
)

const uniqueViolation = "23505"

// CreateUser implements identity.CredentialStore.
func (r *Repository) CreateUser(ctx context.Context, email string, passwordHash []byte) (*identity.User, error) {
	user := identity.User{Email: email, PasswordHash: passwordHash}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1,$2) RETURNING id, created_at`,
		email, passwordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, identity.ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail implements identity.CredentialStore.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var user identity.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email=$1`, email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
