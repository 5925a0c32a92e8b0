package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/treasurehunt-go/internal/dependencies/clock"
	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// Session represents an authenticated session
type Session struct {
	Token     string
	Account   model.Account
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims are the JWT claims carried by a session token.
// The subject is the account ID.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service handles authentication and session tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	secret          []byte
	sessionDuration time.Duration
	parser          *jwt.Parser
}

// Config holds configuration for the auth service
type Config struct {
	// Secret signs session tokens (HS256)
	Secret          []byte
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		secret:          cfg.Secret,
		sessionDuration: cfg.SessionDuration,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clock.Now),
		),
	}
}

// HashPassword returns the bcrypt hash of a password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login checks credentials and issues a session token.
// Disabled players may not log in; admins always can.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	account, err := s.storage.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !account.CanPlay() {
		return nil, model.ErrAccountDisabled
	}

	return s.createSession(account)
}

// Authenticate validates a session token and returns the current account.
// The account is reloaded so disabling or deleting it takes effect at once.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Account, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidSession
	}

	account, err := s.storage.GetAccount(ctx, model.AccountID(claims.Subject))
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if !account.CanPlay() {
		return nil, ErrInvalidSession
	}

	return account, nil
}

// createSession signs a token for an account
func (s *Service) createSession(account *model.Account) (*Session, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.sessionDuration)

	claims := Claims{
		Role: account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(account.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Session{
		Token:     token,
		Account:   *account,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}
