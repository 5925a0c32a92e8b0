// Package postgres is a PostgreSQL-backed storage using database/sql with the
// pgx driver. The schema is managed by goose from embedded migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/storage"
	"github.com/mcoot/treasurehunt-go/internal/storage/postgres/migrations"
)

const uniqueViolation = "23505"

const accountColumns = `id, username, password_hash, role, active, current_level, completed, started_at, ended_at, elapsed_seconds, created_at, updated_at`

const (
	queryInsertAccount = `INSERT INTO accounts (` + accountColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	querySelectAccountByID       = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	querySelectAccountByUsername = `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	querySelectAccounts          = `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at`

	querySelectScans    = `SELECT level, scanned_at FROM scans WHERE account_id = $1 ORDER BY level`
	querySelectAllScans = `SELECT account_id, level, scanned_at FROM scans ORDER BY account_id, level`
	queryInsertScan     = `INSERT INTO scans (account_id, level, scanned_at) VALUES ($1, $2, $3)`
	queryDeleteScans    = `DELETE FROM scans WHERE account_id = $1`

	queryPatchAccount  = `UPDATE accounts SET active = COALESCE($2, active), password_hash = COALESCE($3, password_hash), updated_at = $4 WHERE id = $1`
	queryDeleteAccount = `DELETE FROM accounts WHERE id = $1`
	queryAdminExists   = `SELECT EXISTS (SELECT 1 FROM accounts WHERE role = 'admin')`
	queryAccountExists = `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`

	queryStartClock = `UPDATE accounts SET started_at = $2, updated_at = $2 WHERE id = $1 AND started_at IS NULL AND current_level = 1 AND NOT completed`

	queryAdvanceProgress = `UPDATE accounts SET current_level = $3, completed = $4, started_at = $5, ended_at = $6, elapsed_seconds = $7, updated_at = $8 WHERE id = $1 AND current_level = $2 AND NOT completed AND started_at IS NOT DISTINCT FROM $5`

	queryResetProgress = `UPDATE accounts SET current_level = 1, completed = FALSE, started_at = NULL, ended_at = NULL, elapsed_seconds = NULL, updated_at = $2 WHERE id = $1`
)

// Storage implements storage.Storage on a *sql.DB
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New wraps an open database. The schema must already be migrated.
func New(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Open connects to dsn, verifies the connection and applies migrations
func Open(ctx context.Context, dsn string) (*Storage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return New(db), nil
}

// Migrate applies all pending embedded migrations
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	p := account.Progress
	_, err := s.db.ExecContext(ctx, queryInsertAccount,
		string(account.ID), account.Username, account.PasswordHash, string(account.Role), account.Active,
		p.CurrentLevel, p.Completed, nullTime(p.StartedAt), nullTime(p.EndedAt), nullInt64(p.ElapsedSeconds),
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrUsernameExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return s.getAccount(ctx, querySelectAccountByID, string(id))
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return s.getAccount(ctx, querySelectAccountByUsername, username)
}

func (s *Storage) getAccount(ctx context.Context, query string, arg string) (*model.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, querySelectScans, string(account.ID))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var scan model.Scan
		if err := rows.Scan(&scan.Level, &scan.ScannedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		account.Progress.Scans = append(account.Progress.Scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	rows, err := s.db.QueryContext(ctx, querySelectAccounts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	accounts := []*model.Account{}
	byID := make(map[model.AccountID]*model.Account)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		accounts = append(accounts, account)
		byID[account.ID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	scanRows, err := s.db.QueryContext(ctx, querySelectAllScans)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer scanRows.Close()

	for scanRows.Next() {
		var id string
		var scan model.Scan
		if err := scanRows.Scan(&id, &scan.Level, &scan.ScannedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if account, ok := byID[model.AccountID(id)]; ok {
			account.Progress.Scans = append(account.Progress.Scans, scan)
		}
	}
	if err := scanRows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return accounts, nil
}

func (s *Storage) PatchAccount(ctx context.Context, id model.AccountID, patch model.AccountPatch, at time.Time) (*model.Account, error) {
	active := sql.NullBool{}
	if patch.Active != nil {
		active = sql.NullBool{Bool: *patch.Active, Valid: true}
	}
	hash := sql.NullString{}
	if patch.PasswordHash != nil {
		hash = sql.NullString{String: *patch.PasswordHash, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, queryPatchAccount, string(id), active, hash, at)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	return s.GetAccount(ctx, id)
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteAccount, string(id)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Storage) AdminExists(ctx context.Context) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, queryAdminExists).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Progress operations

func (s *Storage) StartClock(ctx context.Context, id model.AccountID, at time.Time) (*model.Account, error) {
	if _, err := s.db.ExecContext(ctx, queryStartClock, string(id), at); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s.GetAccount(ctx, id)
}

func (s *Storage) AdvanceProgress(ctx context.Context, id model.AccountID, expectedLevel int, next model.Progress, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, queryAdvanceProgress,
		string(id), expectedLevel,
		next.CurrentLevel, next.Completed, nullTime(next.StartedAt), nullTime(next.EndedAt), nullInt64(next.ElapsedSeconds),
		at,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := requireRow(res); err != nil {
		if !errors.Is(err, model.ErrAccountNotFound) {
			return err
		}
		var exists bool
		if err := tx.QueryRowContext(ctx, queryAccountExists, string(id)).Scan(&exists); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if exists {
			return storage.ErrProgressConflict
		}
		return model.ErrAccountNotFound
	}

	for _, scan := range next.Scans {
		if scan.Level <= expectedLevel {
			continue
		}
		if _, err := tx.ExecContext(ctx, queryInsertScan, string(id), scan.Level, scan.ScannedAt); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Storage) ResetProgress(ctx context.Context, id model.AccountID, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, queryResetProgress, string(id), at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, queryDeleteScans, string(id)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		account   model.Account
		id, role  string
		startedAt sql.NullTime
		endedAt   sql.NullTime
		elapsed   sql.NullInt64
	)
	err := row.Scan(
		&id, &account.Username, &account.PasswordHash, &role, &account.Active,
		&account.Progress.CurrentLevel, &account.Progress.Completed, &startedAt, &endedAt, &elapsed,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.ID = model.AccountID(id)
	account.Role = model.Role(role)
	account.Progress.Scans = []model.Scan{}
	if startedAt.Valid {
		t := startedAt.Time
		account.Progress.StartedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		account.Progress.EndedAt = &t
	}
	if elapsed.Valid {
		e := elapsed.Int64
		account.Progress.ElapsedSeconds = &e
	}
	return &account, nil
}

// requireRow maps an update that touched nothing to ErrAccountNotFound
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
