package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mcoot/treasurehunt-go/internal/model"
)

// ErrProgressConflict is returned by conditional progress updates when the
// stored record no longer matches what the caller read
var ErrProgressConflict = errors.New("progress changed concurrently")

// Storage defines the interface for data persistence
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]*model.Account, error)
	PatchAccount(ctx context.Context, id model.AccountID, patch model.AccountPatch, at time.Time) (*model.Account, error)
	DeleteAccount(ctx context.Context, id model.AccountID) error
	AdminExists(ctx context.Context) (bool, error)

	// Progress operations

	// StartClock sets StartedAt to at if it is unset and the account is on level 1.
	// It returns the account as stored after the call.
	StartClock(ctx context.Context, id model.AccountID, at time.Time) (*model.Account, error)
	// AdvanceProgress replaces the progress only if the stored level still equals
	// expectedLevel, the hunt is not completed and the stored StartedAt equals
	// next.StartedAt; otherwise ErrProgressConflict.
	AdvanceProgress(ctx context.Context, id model.AccountID, expectedLevel int, next model.Progress, at time.Time) error
	// ResetProgress restores model.NewProgress() without touching identity fields.
	ResetProgress(ctx context.Context, id model.AccountID, at time.Time) error

	Close() error
}
