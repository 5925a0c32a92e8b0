// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/storage"
)

// Suite runs the storage contract against the backend returned by NewStorage.
// Backends embed it and may add their own tests.
type Suite struct {
	suite.Suite
	NewStorage func(t *testing.T) storage.Storage

	Store storage.Storage
	Ctx   context.Context
	Now   time.Time
}

func (s *Suite) SetupTest() {
	s.Store = s.NewStorage(s.T())
	s.Ctx = context.Background()
	s.Now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) TearDownTest() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

// NewAccount builds a fresh player account
func (s *Suite) NewAccount(id, username string) *model.Account {
	return &model.Account{
		ID:           model.AccountID(id),
		Username:     username,
		PasswordHash: "hash",
		Role:         model.RolePlayer,
		Active:       true,
		Progress:     model.NewProgress(),
		CreatedAt:    s.Now,
		UpdatedAt:    s.Now,
	}
}

func (s *Suite) create(id, username string) *model.Account {
	account := s.NewAccount(id, username)
	s.Require().NoError(s.Store.CreateAccount(s.Ctx, account))
	return account
}

// Account tests

func (s *Suite) TestCreateAndGetAccount() {
	s.create("acc-1", "alice")

	retrieved, err := s.Store.GetAccount(s.Ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
	s.Equal(model.RolePlayer, retrieved.Role)
	s.True(retrieved.Active)
	s.Equal(1, retrieved.Progress.CurrentLevel)
	s.True(s.Now.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestGetAccountNotFound() {
	_, err := s.Store.GetAccount(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestGetAccountByUsername() {
	s.create("acc-1", "alice")

	retrieved, err := s.Store.GetAccountByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), retrieved.ID)
}

func (s *Suite) TestGetAccountByUsernameNotFound() {
	_, err := s.Store.GetAccountByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestCreateAccountDuplicateUsername() {
	s.create("acc-1", "alice")

	err := s.Store.CreateAccount(s.Ctx, s.NewAccount("acc-2", "alice"))
	s.ErrorIs(err, model.ErrUsernameExists)

	_, err = s.Store.GetAccount(s.Ctx, "acc-2")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestListAccounts() {
	s.create("acc-1", "alice")
	s.create("acc-2", "bob")

	accounts, err := s.Store.ListAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Len(accounts, 2)
}

func (s *Suite) TestPatchAccount() {
	s.create("acc-1", "alice")
	inactive := false
	hash := "new-hash"
	later := s.Now.Add(time.Minute)

	patched, err := s.Store.PatchAccount(s.Ctx, "acc-1", model.AccountPatch{Active: &inactive, PasswordHash: &hash}, later)
	s.Require().NoError(err)
	s.False(patched.Active)
	s.Equal("new-hash", patched.PasswordHash)

	retrieved, _ := s.Store.GetAccount(s.Ctx, "acc-1")
	s.False(retrieved.Active)
	s.Equal("new-hash", retrieved.PasswordHash)
	s.True(later.Equal(retrieved.UpdatedAt))
}

func (s *Suite) TestPatchAccountLeavesProgressAlone() {
	s.create("acc-1", "alice")
	next := model.NewProgress().Advance(2, s.Now, false)
	s.Require().NoError(s.Store.AdvanceProgress(s.Ctx, "acc-1", 1, next, s.Now))

	inactive := false
	_, err := s.Store.PatchAccount(s.Ctx, "acc-1", model.AccountPatch{Active: &inactive}, s.Now)
	s.Require().NoError(err)

	retrieved, _ := s.Store.GetAccount(s.Ctx, "acc-1")
	s.Equal(2, retrieved.Progress.CurrentLevel)
}

func (s *Suite) TestPatchAccountNotFound() {
	active := true
	_, err := s.Store.PatchAccount(s.Ctx, "nonexistent", model.AccountPatch{Active: &active}, s.Now)
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestDeleteAccount() {
	s.create("acc-1", "alice")

	err := s.Store.DeleteAccount(s.Ctx, "acc-1")
	s.Require().NoError(err)

	_, err = s.Store.GetAccount(s.Ctx, "acc-1")
	s.ErrorIs(err, model.ErrAccountNotFound)
	_, err = s.Store.GetAccountByUsername(s.Ctx, "alice")
	s.ErrorIs(err, model.ErrAccountNotFound)

	// Username is free again
	s.NoError(s.Store.CreateAccount(s.Ctx, s.NewAccount("acc-2", "alice")))
}

func (s *Suite) TestAdminExists() {
	exists, err := s.Store.AdminExists(s.Ctx)
	s.Require().NoError(err)
	s.False(exists)

	admin := s.NewAccount("admin-1", "admin")
	admin.Role = model.RoleAdmin
	s.Require().NoError(s.Store.CreateAccount(s.Ctx, admin))

	exists, err = s.Store.AdminExists(s.Ctx)
	s.Require().NoError(err)
	s.True(exists)
}

// Progress tests

func (s *Suite) TestStartClockSetsOnce() {
	s.create("acc-1", "alice")

	account, err := s.Store.StartClock(s.Ctx, "acc-1", s.Now)
	s.Require().NoError(err)
	s.Require().NotNil(account.Progress.StartedAt)
	s.True(s.Now.Equal(*account.Progress.StartedAt))

	account, err = s.Store.StartClock(s.Ctx, "acc-1", s.Now.Add(time.Hour))
	s.Require().NoError(err)
	s.True(s.Now.Equal(*account.Progress.StartedAt))
}

func (s *Suite) TestStartClockIgnoredAfterLevelOne() {
	s.create("acc-1", "alice")
	next := model.NewProgress().Advance(2, s.Now, false)
	s.Require().NoError(s.Store.AdvanceProgress(s.Ctx, "acc-1", 1, next, s.Now))

	account, err := s.Store.StartClock(s.Ctx, "acc-1", s.Now)
	s.Require().NoError(err)
	s.Nil(account.Progress.StartedAt)
}

func (s *Suite) TestAdvanceProgress() {
	s.create("acc-1", "alice")
	next := model.NewProgress().Advance(2, s.Now, false)

	err := s.Store.AdvanceProgress(s.Ctx, "acc-1", 1, next, s.Now)
	s.Require().NoError(err)

	retrieved, _ := s.Store.GetAccount(s.Ctx, "acc-1")
	s.Equal(2, retrieved.Progress.CurrentLevel)
	s.Require().Len(retrieved.Progress.Scans, 1)
	s.Equal(2, retrieved.Progress.Scans[0].Level)
	s.True(s.Now.Equal(retrieved.Progress.Scans[0].ScannedAt))
}

func (s *Suite) TestAdvanceProgressCompletion() {
	s.create("acc-1", "alice")
	started, err := s.Store.StartClock(s.Ctx, "acc-1", s.Now)
	s.Require().NoError(err)

	end := s.Now.Add(42 * time.Second)
	next := started.Progress.Advance(2, end, true)
	s.Require().NoError(s.Store.AdvanceProgress(s.Ctx, "acc-1", 1, next, end))

	retrieved, _ := s.Store.GetAccount(s.Ctx, "acc-1")
	s.True(retrieved.Progress.Completed)
	s.Require().NotNil(retrieved.Progress.EndedAt)
	s.True(end.Equal(*retrieved.Progress.EndedAt))
	s.Require().NotNil(retrieved.Progress.ElapsedSeconds)
	s.Equal(int64(42), *retrieved.Progress.ElapsedSeconds)
}

func (s *Suite) TestAdvanceProgressStaleLevel() {
	s.create("acc-1", "alice")
	next := model.NewProgress().Advance(2, s.Now, false)
	s.Require().NoError(s.Store.AdvanceProgress(s.Ctx, "acc-1", 1, next, s.Now))

	err := s.Store.AdvanceProgress(s.Ctx, "acc-1", 1, next, s.Now)
	s.ErrorIs(err, storage.ErrProgressConflict)

	retrieved, _ := s.Store.GetAccount(s.Ctx, "acc-1")
	s.Len(retrieved.Progress.Scans, 1)
}

func (s *Suite) TestAdvanceProgressFromBeforeResetConflicts() {
	s.create("acc-1", "alice")
	stale, err := s.Store.StartClock(s.Ctx, "acc-1", s.Now)
	s.Require().NoError(err)

	// Reset and restart the timer: the level matches the stale snapshot again
	s.Require().NoError(s.Store.ResetProgress(s.Ctx, "acc-1", s.Now))
	restarted := s.Now.Add(time.Hour)
	_, err = s.Store.StartClock(s.Ctx, "acc-1", restarted)
	s.Require().NoError(err)

	next := stale.Progress.Advance(2, restarted.Add(time.Minute), false)
	err = s.Store.AdvanceProgress(s.Ctx, "acc-1", 1, next, restarted)
	s.ErrorIs(err, storage.ErrProgressConflict)

	retrieved, _ := s.Store.GetAccount(s.Ctx, "acc-1")
	s.Equal(1, retrieved.Progress.CurrentLevel)
	s.Require().NotNil(retrieved.Progress.StartedAt)
	s.True(restarted.Equal(*retrieved.Progress.StartedAt))
}

func (s *Suite) TestAdvanceProgressNotFound() {
	next := model.NewProgress().Advance(2, s.Now, false)
	err := s.Store.AdvanceProgress(s.Ctx, "nonexistent", 1, next, s.Now)
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestConcurrentAdvanceAppliesOnce() {
	s.create("acc-1", "alice")
	next := model.NewProgress().Advance(2, s.Now, false)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Store.AdvanceProgress(s.Ctx, "acc-1", 1, next, s.Now)
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, storage.ErrProgressConflict)
	}
	s.Equal(1, succeeded)

	retrieved, _ := s.Store.GetAccount(s.Ctx, "acc-1")
	s.Equal(2, retrieved.Progress.CurrentLevel)
	s.Len(retrieved.Progress.Scans, 1)
}

func (s *Suite) TestResetProgress() {
	s.create("acc-1", "alice")
	started, _ := s.Store.StartClock(s.Ctx, "acc-1", s.Now)
	next := started.Progress.Advance(2, s.Now.Add(time.Minute), true)
	s.Require().NoError(s.Store.AdvanceProgress(s.Ctx, "acc-1", 1, next, s.Now))
	inactive := false
	_, _ = s.Store.PatchAccount(s.Ctx, "acc-1", model.AccountPatch{Active: &inactive}, s.Now)

	err := s.Store.ResetProgress(s.Ctx, "acc-1", s.Now)
	s.Require().NoError(err)

	retrieved, _ := s.Store.GetAccount(s.Ctx, "acc-1")
	s.Equal(1, retrieved.Progress.CurrentLevel)
	s.False(retrieved.Progress.Completed)
	s.Nil(retrieved.Progress.StartedAt)
	s.Nil(retrieved.Progress.EndedAt)
	s.Nil(retrieved.Progress.ElapsedSeconds)
	s.Empty(retrieved.Progress.Scans)
	s.False(retrieved.Active)
	s.Equal("alice", retrieved.Username)
}

func (s *Suite) TestResetProgressNotFound() {
	err := s.Store.ResetProgress(s.Ctx, "nonexistent", s.Now)
	s.ErrorIs(err, model.ErrAccountNotFound)
}
