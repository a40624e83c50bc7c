// Package identity registers users and exchanges credentials for bearer tokens.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"example.com/fitness/internal/domain"
)

var (
	// ErrEmailTaken is returned when registering an address that already exists.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the ownership key for activities.
type User struct {
	ID           int64
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// CredentialStore persists users. CreateUser must return ErrEmailTaken on a
// duplicate email; FindByEmail returns nil, nil when no user matches.
type CredentialStore interface {
	CreateUser(ctx context.Context, email string, passwordHash []byte) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// TokenIssuer signs access tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, time.Time, error)
}

// Credentials is the register/login payload.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"notblank"`
}

// Token is returned by a successful login.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Service implements register and login on top of a CredentialStore.
type Service struct {
	store  CredentialStore
	issuer TokenIssuer
	cost   int
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithHashCost overrides the bcrypt cost, mainly to keep tests fast.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// NewService constructs a Service.
func NewService(store CredentialStore, issuer TokenIssuer, opts ...Option) *Service {
	s := &Service{store: store, issuer: issuer, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user. Emails are matched case-insensitively.
func (s *Service) Register(ctx context.Context, creds Credentials) (*User, error) {
	creds.Email = NormalizeEmail(creds.Email)
	if err := domain.Validate(creds); err != nil {
		return nil, err
	}

	existing, err := s.store.FindByEmail(ctx, creds.Email)
	if err != nil {
		return nil, &domain.StorageError{Op: "find user", Err: err}
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, &domain.ValidationError{Field: "password", Message: "password must be at most 72 bytes"}
		}
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, creds.Email, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, &domain.StorageError{Op: "create user", Err: err}
	}
	return user, nil
}

// Login verifies the password and issues a token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, error) {
	creds.Email = NormalizeEmail(creds.Email)
	if err := domain.Validate(creds); err != nil {
		return nil, err
	}

	user, err := s.store.FindByEmail(ctx, creds.Email)
	if err != nil {
		return nil, &domain.StorageError{Op: "find user", Err: err}
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: token, ExpiresAt: expiresAt}, nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
