package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"example.com/fitness/internal/identity"
)

// CreateUser implements identity.CredentialStore.
func (s *Store) CreateUser(ctx context.Context, email string, passwordHash []byte) (*identity.User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`,
		email, passwordHash, formatTime(now),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, identity.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user id: %w", err)
	}
	return &identity.User{ID: id, Email: email, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// FindByEmail implements identity.CredentialStore.
func (s *Store) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var u identity.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.CreatedAt, _ = parseTime(createdAt)
	return &u, nil
}
