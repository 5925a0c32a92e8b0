// Package hunt implements the progression engine and clue retrieval.
package hunt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/treasurehunt-go/internal/dependencies/clock"
	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/services/clue"
	"github.com/mcoot/treasurehunt-go/internal/storage"
)

// WrongCodeError is returned when a submitted code does not unlock the next
// level. It matches model.ErrWrongCode with errors.Is.
type WrongCodeError struct {
	CurrentLevel int
}

func (e *WrongCodeError) Error() string {
	return fmt.Sprintf("%s (current level %d)", model.ErrWrongCode, e.CurrentLevel)
}

func (e *WrongCodeError) Unwrap() error {
	return model.ErrWrongCode
}

// ScanResult is the outcome of an accepted code
type ScanResult struct {
	Accepted bool
	// Level is the player's level after the scan
	Level int
	// NextClue is the clue for Level, nil once the hunt is completed
	NextClue       *model.Clue
	Completed      bool
	ElapsedSeconds *int64
	// Duplicate is set when a concurrent submission of the same code had
	// already been applied
	Duplicate bool
}

// ClueResult is what a player sees when asking for their current clue
type ClueResult struct {
	Completed      bool
	ElapsedSeconds *int64
	// Clue is nil once the hunt is completed
	Clue        *model.Clue
	TotalLevels int
	StartedAt   *time.Time
}

// Controller runs hunt progression for players
type Controller struct {
	storage storage.Storage
	clues   *clue.Table
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new hunt Controller
func NewController(storage storage.Storage, clues *clue.Table, clock clock.Clock, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		clues:   clues,
		clock:   clock,
		logger:  logger,
	}
}

// Clues returns the clue table the controller plays against
func (c *Controller) Clues() *clue.Table {
	return c.clues
}

// CurrentClue returns the clue for the player's current level, starting the
// hunt timer on the first fetch at level 1.
func (c *Controller) CurrentClue(ctx context.Context, accountID model.AccountID) (*ClueResult, error) {
	account, err := c.storage.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.Progress.Completed {
		return &ClueResult{
			Completed:      true,
			ElapsedSeconds: account.Progress.ElapsedSeconds,
			TotalLevels:    c.clues.Len(),
			StartedAt:      account.Progress.StartedAt,
		}, nil
	}

	current, ok := c.clues.Get(account.Progress.CurrentLevel)
	if !ok {
		return nil, model.ErrClueNotFound
	}

	if account.Progress.StartedAt == nil && account.Progress.CurrentLevel == 1 {
		account, err = c.storage.StartClock(ctx, accountID, c.clock.Now())
		if err != nil {
			return nil, err
		}
		if account.Progress.StartedAt != nil {
			c.logger.Info("hunt started",
				slog.String("account_id", string(accountID)),
				slog.Time("started_at", *account.Progress.StartedAt),
			)
		}
	}

	return &ClueResult{
		Clue:        &current,
		TotalLevels: c.clues.Len(),
		StartedAt:   account.Progress.StartedAt,
	}, nil
}

// SubmitCode checks a code against the level after the player's current one
// and advances them if it matches. Accepting the final level's code completes
// the hunt and stops the timer.
func (c *Controller) SubmitCode(ctx context.Context, accountID model.AccountID, code string) (*ScanResult, error) {
	account, err := c.storage.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	progress := account.Progress
	if progress.Completed {
		return nil, model.ErrAlreadyCompleted
	}

	target := progress.CurrentLevel + 1
	expected, ok := c.clues.Get(target)
	if !ok {
		return nil, model.ErrNoSuchLevel
	}

	if code != expected.Code {
		c.logger.Debug("wrong code submitted",
			slog.String("account_id", string(accountID)),
			slog.Int("current_level", progress.CurrentLevel),
		)
		return nil, &WrongCodeError{CurrentLevel: progress.CurrentLevel}
	}

	now := c.clock.Now()
	final := c.clues.IsFinal(target)
	if final && progress.StartedAt == nil {
		c.logger.Warn("hunt completed without a start time",
			slog.String("account_id", string(accountID)),
		)
	}

	next := progress.Advance(target, now, final)
	if err := c.storage.AdvanceProgress(ctx, accountID, progress.CurrentLevel, next, now); err != nil {
		if errors.Is(err, storage.ErrProgressConflict) {
			return c.resolveConflict(ctx, accountID, target)
		}
		return nil, err
	}

	if final {
		c.logger.Info("hunt completed",
			slog.String("account_id", string(accountID)),
			slog.Int64("elapsed_seconds", *next.ElapsedSeconds),
		)
		return &ScanResult{
			Accepted:       true,
			Level:          target,
			Completed:      true,
			ElapsedSeconds: next.ElapsedSeconds,
		}, nil
	}

	c.logger.Info("level advanced",
		slog.String("account_id", string(accountID)),
		slog.Int("level", target),
	)

	return &ScanResult{
		Accepted: true,
		Level:    target,
		NextClue: &expected,
	}, nil
}

// resolveConflict handles a lost race on AdvanceProgress. If the stored state
// already covers target, the submission was a duplicate of one that won.
func (c *Controller) resolveConflict(ctx context.Context, accountID model.AccountID, target int) (*ScanResult, error) {
	account, err := c.storage.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	progress := account.Progress
	if progress.CurrentLevel < target {
		return nil, storage.ErrProgressConflict
	}

	c.logger.Debug("duplicate code submission",
		slog.String("account_id", string(accountID)),
		slog.Int("level", target),
	)

	result := &ScanResult{
		Accepted:       true,
		Level:          progress.CurrentLevel,
		Completed:      progress.Completed,
		ElapsedSeconds: progress.ElapsedSeconds,
		Duplicate:      true,
	}
	if !progress.Completed {
		if next, ok := c.clues.Get(progress.CurrentLevel); ok {
			result.NextClue = &next
		}
	}
	return result, nil
}
