package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *Storage
	ctx   context.Context
	now   time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	s.Require().NoError(err)

	s.db = db
	s.mock = mock
	s.store = New(db)
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	_ = s.db.Close()
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "password_hash", "role", "active", "current_level", "completed",
		"started_at", "ended_at", "elapsed_seconds", "created_at", "updated_at",
	})
}

func (s *StorageSuite) expectGet(id string, level int, started *time.Time, scans ...model.Scan) {
	var startedAt any
	if started != nil {
		startedAt = *started
	}
	s.mock.ExpectQuery(querySelectAccountByID).
		WithArgs(id).
		WillReturnRows(accountRows().AddRow(id, "alice", "hash", "player", true, level, false, startedAt, nil, nil, s.now, s.now))

	rows := sqlmock.NewRows([]string{"level", "scanned_at"})
	for _, scan := range scans {
		rows.AddRow(scan.Level, scan.ScannedAt)
	}
	s.mock.ExpectQuery(querySelectScans).WithArgs(id).WillReturnRows(rows)
}

// Account tests

func (s *StorageSuite) TestCreateAccount() {
	s.mock.ExpectExec(queryInsertAccount).
		WithArgs("acc-1", "alice", "hash", "player", true, 1, false, nil, nil, nil, s.now, s.now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.store.CreateAccount(s.ctx, &model.Account{
		ID:           "acc-1",
		Username:     "alice",
		PasswordHash: "hash",
		Role:         model.RolePlayer,
		Active:       true,
		Progress:     model.NewProgress(),
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	})
	s.NoError(err)
}

func (s *StorageSuite) TestCreateAccountDuplicateUsername() {
	s.mock.ExpectExec(queryInsertAccount).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err := s.store.CreateAccount(s.ctx, &model.Account{ID: "acc-2", Username: "alice", Progress: model.NewProgress()})
	s.ErrorIs(err, model.ErrUsernameExists)
}

func (s *StorageSuite) TestGetAccountWithScans() {
	started := s.now
	s.expectGet("acc-1", 3, &started,
		model.Scan{Level: 2, ScannedAt: s.now.Add(time.Minute)},
		model.Scan{Level: 3, ScannedAt: s.now.Add(2 * time.Minute)},
	)

	account, err := s.store.GetAccount(s.ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), account.ID)
	s.Equal(model.RolePlayer, account.Role)
	s.Equal(3, account.Progress.CurrentLevel)
	s.Require().NotNil(account.Progress.StartedAt)
	s.True(s.now.Equal(*account.Progress.StartedAt))
	s.Nil(account.Progress.EndedAt)
	s.Nil(account.Progress.ElapsedSeconds)
	s.Len(account.Progress.Scans, 2)
	s.Equal(3, account.Progress.Scans[1].Level)
}

func (s *StorageSuite) TestGetAccountNotFound() {
	s.mock.ExpectQuery(querySelectAccountByID).WithArgs("missing").WillReturnRows(accountRows())

	_, err := s.store.GetAccount(s.ctx, "missing")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestGetAccountByUsername() {
	s.mock.ExpectQuery(querySelectAccountByUsername).
		WithArgs("alice").
		WillReturnRows(accountRows().AddRow("acc-1", "alice", "hash", "player", true, 1, false, nil, nil, nil, s.now, s.now))
	s.mock.ExpectQuery(querySelectScans).WithArgs("acc-1").WillReturnRows(sqlmock.NewRows([]string{"level", "scanned_at"}))

	account, err := s.store.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), account.ID)
	s.Empty(account.Progress.Scans)
}

func (s *StorageSuite) TestListAccountsAttachesScans() {
	s.mock.ExpectQuery(querySelectAccounts).
		WillReturnRows(accountRows().
			AddRow("acc-1", "alice", "hash", "player", true, 2, false, s.now, nil, nil, s.now, s.now).
			AddRow("acc-2", "bob", "hash", "admin", true, 1, false, nil, nil, nil, s.now, s.now))
	s.mock.ExpectQuery(querySelectAllScans).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "level", "scanned_at"}).
			AddRow("acc-1", 2, s.now.Add(time.Minute)))

	accounts, err := s.store.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 2)
	s.Len(accounts[0].Progress.Scans, 1)
	s.Empty(accounts[1].Progress.Scans)
	s.True(accounts[1].IsAdmin())
}

func (s *StorageSuite) TestPatchAccount() {
	active := false
	s.mock.ExpectExec(queryPatchAccount).
		WithArgs("acc-1", false, nil, s.now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.expectGet("acc-1", 1, nil)

	account, err := s.store.PatchAccount(s.ctx, "acc-1", model.AccountPatch{Active: &active}, s.now)
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), account.ID)
}

func (s *StorageSuite) TestPatchAccountNotFound() {
	hash := "new"
	s.mock.ExpectExec(queryPatchAccount).
		WithArgs("missing", nil, "new", s.now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.store.PatchAccount(s.ctx, "missing", model.AccountPatch{PasswordHash: &hash}, s.now)
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestDeleteAccount() {
	s.mock.ExpectExec(queryDeleteAccount).WithArgs("acc-1").WillReturnResult(sqlmock.NewResult(0, 0))

	s.NoError(s.store.DeleteAccount(s.ctx, "acc-1"))
}

func (s *StorageSuite) TestAdminExists() {
	s.mock.ExpectQuery(queryAdminExists).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.store.AdminExists(s.ctx)
	s.Require().NoError(err)
	s.True(exists)
}

// Progress tests

func (s *StorageSuite) TestStartClock() {
	started := s.now
	s.mock.ExpectExec(queryStartClock).WithArgs("acc-1", s.now).WillReturnResult(sqlmock.NewResult(0, 1))
	s.expectGet("acc-1", 1, &started)

	account, err := s.store.StartClock(s.ctx, "acc-1", s.now)
	s.Require().NoError(err)
	s.Require().NotNil(account.Progress.StartedAt)
}

func (s *StorageSuite) TestAdvanceProgress() {
	next := model.NewProgress().Advance(2, s.now, false)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(queryAdvanceProgress).
		WithArgs("acc-1", 1, 2, false, nil, nil, nil, s.now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(queryInsertScan).
		WithArgs("acc-1", 2, s.now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	s.NoError(s.store.AdvanceProgress(s.ctx, "acc-1", 1, next, s.now))
}

func (s *StorageSuite) TestAdvanceProgressCompletion() {
	start := s.now
	end := s.now.Add(42 * time.Second)
	p := model.NewProgress()
	p.CurrentLevel = 11
	p.StartedAt = &start
	next := p.Advance(12, end, true)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(queryAdvanceProgress).
		WithArgs("acc-1", 11, 12, true, start, end, int64(42), end).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(queryInsertScan).
		WithArgs("acc-1", 12, end).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	s.NoError(s.store.AdvanceProgress(s.ctx, "acc-1", 11, next, end))
}

func (s *StorageSuite) TestAdvanceProgressConflict() {
	next := model.NewProgress().Advance(2, s.now, false)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(queryAdvanceProgress).WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectQuery(queryAccountExists).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	s.mock.ExpectRollback()

	err := s.store.AdvanceProgress(s.ctx, "acc-1", 1, next, s.now)
	s.ErrorIs(err, storage.ErrProgressConflict)
}

func (s *StorageSuite) TestAdvanceProgressNotFound() {
	next := model.NewProgress().Advance(2, s.now, false)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(queryAdvanceProgress).WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectQuery(queryAccountExists).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	s.mock.ExpectRollback()

	err := s.store.AdvanceProgress(s.ctx, "missing", 1, next, s.now)
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestResetProgress() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(queryResetProgress).WithArgs("acc-1", s.now).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(queryDeleteScans).WithArgs("acc-1").WillReturnResult(sqlmock.NewResult(0, 3))
	s.mock.ExpectCommit()

	s.NoError(s.store.ResetProgress(s.ctx, "acc-1", s.now))
}

func (s *StorageSuite) TestResetProgressNotFound() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(queryResetProgress).WithArgs("missing", s.now).WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectRollback()

	err := s.store.ResetProgress(s.ctx, "missing", s.now)
	s.ErrorIs(err, model.ErrAccountNotFound)
}
