// Package account implements administration of hunt accounts: creating,
// editing, resetting and removing players, and bootstrapping the admin.
package account

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/treasurehunt-go/internal/dependencies/clock"
	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/services/auth"
	"github.com/mcoot/treasurehunt-go/internal/storage"
)

// UpdatePlayerInput holds optional admin edits. Nil fields are unchanged.
type UpdatePlayerInput struct {
	Active   *bool
	Password *string
}

// Service manages player accounts on behalf of the admin
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new account Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// CreatePlayer registers a new active player at level 1
func (s *Service) CreatePlayer(ctx context.Context, username, password string) (*model.Account, error) {
	account, err := s.newAccount(username, password, model.RolePlayer)
	if err != nil {
		return nil, err
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("player created",
		slog.String("account_id", string(account.ID)),
		slog.String("username", account.Username),
	)

	return account, nil
}

// ListPlayers returns all non-admin accounts, newest first
func (s *Service) ListPlayers(ctx context.Context) ([]*model.Account, error) {
	accounts, err := s.storage.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	players := make([]*model.Account, 0, len(accounts))
	for _, account := range accounts {
		if !account.IsAdmin() {
			players = append(players, account)
		}
	}

	sort.SliceStable(players, func(i, j int) bool {
		if !players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].CreatedAt.After(players[j].CreatedAt)
		}
		return players[i].Username < players[j].Username
	})

	return players, nil
}

// UpdatePlayer changes a player's active flag and/or password
func (s *Service) UpdatePlayer(ctx context.Context, id model.AccountID, input UpdatePlayerInput) (*model.Account, error) {
	if _, err := s.modifiable(ctx, id); err != nil {
		return nil, err
	}

	patch := model.AccountPatch{Active: input.Active}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, model.ErrInvalidInput
		}
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	account, err := s.storage.PatchAccount(ctx, id, patch, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("player updated",
		slog.String("account_id", string(id)),
		slog.Bool("active", account.Active),
		slog.Bool("password_changed", input.Password != nil),
	)

	return account, nil
}

// TogglePlayer flips a player's active flag
func (s *Service) TogglePlayer(ctx context.Context, id model.AccountID) (*model.Account, error) {
	current, err := s.modifiable(ctx, id)
	if err != nil {
		return nil, err
	}

	active := !current.Active
	account, err := s.storage.PatchAccount(ctx, id, model.AccountPatch{Active: &active}, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("player toggled",
		slog.String("account_id", string(id)),
		slog.Bool("active", account.Active),
	)

	return account, nil
}

// ResetPlayer returns a player to the start of the hunt with the timer cleared.
// Identity, credentials and the active flag are kept.
func (s *Service) ResetPlayer(ctx context.Context, id model.AccountID) (*model.Account, error) {
	if _, err := s.modifiable(ctx, id); err != nil {
		return nil, err
	}

	if err := s.storage.ResetProgress(ctx, id, s.clock.Now()); err != nil {
		return nil, err
	}

	s.logger.Info("player progress reset", slog.String("account_id", string(id)))

	return s.storage.GetAccount(ctx, id)
}

// DeletePlayer removes a player permanently
func (s *Service) DeletePlayer(ctx context.Context, id model.AccountID) error {
	if _, err := s.modifiable(ctx, id); err != nil {
		return err
	}

	if err := s.storage.DeleteAccount(ctx, id); err != nil {
		return err
	}

	s.logger.Info("player deleted", slog.String("account_id", string(id)))
	return nil
}

// EnsureAdmin creates the admin account if no admin exists yet.
// It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	exists, err := s.storage.AdminExists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	account, err := s.newAccount(username, password, model.RoleAdmin)
	if err != nil {
		return false, err
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, model.ErrUsernameExists) {
			// Another instance may have bootstrapped concurrently
			if again, aerr := s.storage.AdminExists(ctx); aerr == nil && again {
				return false, nil
			}
		}
		return false, err
	}

	s.logger.Info("admin account created",
		slog.String("account_id", string(account.ID)),
		slog.String("username", account.Username),
	)

	return true, nil
}

// modifiable loads an account and refuses admin targets
func (s *Service) modifiable(ctx context.Context, id model.AccountID) (*model.Account, error) {
	account, err := s.storage.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.IsAdmin() {
		return nil, model.ErrCannotModifyAdmin
	}
	return account, nil
}

func (s *Service) newAccount(username, password string, role model.Role) (*model.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, model.ErrInvalidInput
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return &model.Account{
		ID:           model.AccountID(uuid.NewString()),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		Progress:     model.NewProgress(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
