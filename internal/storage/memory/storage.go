package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	accounts      map[model.AccountID]*model.Account
	usernameIndex map[string]model.AccountID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:      make(map[model.AccountID]*model.Account),
		usernameIndex: make(map[string]model.AccountID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usernameIndex[account.Username]; ok {
		return model.ErrUsernameExists
	}
	s.accounts[account.ID] = account.Clone()
	s.usernameIndex[account.Username] = account.ID
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*model.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account.Clone())
	}
	return accounts, nil
}

func (s *Storage) PatchAccount(ctx context.Context, id model.AccountID, patch model.AccountPatch, at time.Time) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	patch.Apply(account, at)
	return account.Clone(), nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil
	}
	delete(s.usernameIndex, account.Username)
	delete(s.accounts, id)
	return nil
}

func (s *Storage) AdminExists(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if account.IsAdmin() {
			return true, nil
		}
	}
	return false, nil
}

// Progress operations

func (s *Storage) StartClock(ctx context.Context, id model.AccountID, at time.Time) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	p := &account.Progress
	if p.StartedAt == nil && p.CurrentLevel == 1 && !p.Completed {
		started := at
		p.StartedAt = &started
		account.UpdatedAt = at
	}
	return account.Clone(), nil
}

func (s *Storage) AdvanceProgress(ctx context.Context, id model.AccountID, expectedLevel int, next model.Progress, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	if !advanceable(account.Progress, expectedLevel, next) {
		return storage.ErrProgressConflict
	}
	account.Progress = next.Clone()
	account.UpdatedAt = at
	return nil
}

func (s *Storage) ResetProgress(ctx context.Context, id model.AccountID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	account.Progress = model.NewProgress()
	account.UpdatedAt = at
	return nil
}

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}

// advanceable reports whether next was derived from the stored progress: same
// level, not completed and the same timer start. A reset followed by a replay
// to the same level changes the start, so stale writes are rejected.
func advanceable(stored model.Progress, expectedLevel int, next model.Progress) bool {
	return stored.CurrentLevel == expectedLevel &&
		!stored.Completed &&
		model.SameInstant(stored.StartedAt, next.StartedAt)
}
