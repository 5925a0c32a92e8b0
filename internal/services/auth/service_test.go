package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/treasurehunt-go/internal/dependencies/mocks"
	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
	hash    string
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupSuite() {
	hash, err := HashPassword("password123")
	s.Require().NoError(err)
	s.hash = hash
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.Secret = []byte("test-secret")
	s.service = New(s.storage, s.clock, cfg)
	s.ctx = context.Background()
}

func (s *ServiceSuite) createAccount(id, username string, role model.Role, active bool) {
	now := s.clock.Now()
	s.Require().NoError(s.storage.CreateAccount(s.ctx, &model.Account{
		ID:           model.AccountID(id),
		Username:     username,
		PasswordHash: s.hash,
		Role:         role,
		Active:       active,
		Progress:     model.NewProgress(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

// HashPassword tests

func (s *ServiceSuite) TestHashPasswordIsNotPlaintext() {
	s.NotEqual("password123", s.hash)
	s.NotEmpty(s.hash)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	s.createAccount("acc-1", "alice", model.RolePlayer, true)

	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal(model.AccountID("acc-1"), session.Account.ID)
	s.Equal(s.clock.Now().Add(24*time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestLoginTokenCarriesRole() {
	s.createAccount("adm-1", "admin", model.RoleAdmin, true)

	session, err := s.service.Login(s.ctx, "admin", "password123")
	s.Require().NoError(err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(session.Token, claims)
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, claims.Role)
	s.Equal("adm-1", claims.Subject)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	s.createAccount("acc-1", "alice", model.RolePlayer, true)

	_, err := s.service.Login(s.ctx, "alice", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWhenDisabled() {
	s.createAccount("acc-1", "alice", model.RolePlayer, false)

	_, err := s.service.Login(s.ctx, "alice", "password123")
	s.ErrorIs(err, model.ErrAccountDisabled)
}

func (s *ServiceSuite) TestLoginDisabledWithWrongPasswordIsInvalidCredentials() {
	s.createAccount("acc-1", "alice", model.RolePlayer, false)

	_, err := s.service.Login(s.ctx, "alice", "nope")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginInactiveAdminStillSucceeds() {
	s.createAccount("adm-1", "admin", model.RoleAdmin, false)

	_, err := s.service.Login(s.ctx, "admin", "password123")
	s.NoError(err)
}

// Authenticate tests

func (s *ServiceSuite) TestAuthenticateSucceeds() {
	s.createAccount("acc-1", "alice", model.RolePlayer, true)
	session, _ := s.service.Login(s.ctx, "alice", "password123")

	account, err := s.service.Authenticate(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal("alice", account.Username)
}

func (s *ServiceSuite) TestAuthenticateReturnsFreshAccount() {
	s.createAccount("acc-1", "alice", model.RolePlayer, true)
	session, _ := s.service.Login(s.ctx, "alice", "password123")

	next := model.NewProgress().Advance(2, s.clock.Now(), false)
	s.Require().NoError(s.storage.AdvanceProgress(s.ctx, "acc-1", 1, next, s.clock.Now()))

	account, err := s.service.Authenticate(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(2, account.Progress.CurrentLevel)
}

func (s *ServiceSuite) TestAuthenticateFailsWithGarbage() {
	_, err := s.service.Authenticate(s.ctx, "invalid_token")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestAuthenticateFailsWhenExpired() {
	s.createAccount("acc-1", "alice", model.RolePlayer, true)
	session, _ := s.service.Login(s.ctx, "alice", "password123")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.Authenticate(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestAuthenticateFailsWithOtherSecret() {
	s.createAccount("acc-1", "alice", model.RolePlayer, true)
	other := New(s.storage, s.clock, Config{Secret: []byte("other-secret")})
	session, err := other.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	_, err = s.service.Authenticate(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestAuthenticateRejectsUnsignedToken() {
	s.createAccount("acc-1", "alice", model.RolePlayer, true)
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acc-1",
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.Authenticate(s.ctx, token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestAuthenticateFailsAfterDisable() {
	s.createAccount("acc-1", "alice", model.RolePlayer, true)
	session, _ := s.service.Login(s.ctx, "alice", "password123")

	inactive := false
	_, err := s.storage.PatchAccount(s.ctx, "acc-1", model.AccountPatch{Active: &inactive}, s.clock.Now())
	s.Require().NoError(err)

	_, err = s.service.Authenticate(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestAuthenticateFailsAfterDelete() {
	s.createAccount("acc-1", "alice", model.RolePlayer, true)
	session, _ := s.service.Login(s.ctx, "alice", "password123")

	s.Require().NoError(s.storage.DeleteAccount(s.ctx, "acc-1"))

	_, err := s.service.Authenticate(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}
