package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/storage"
)

// errUnchanged aborts an update without writing
var errUnchanged = errors.New("unchanged")

// Storage is a Redis-backed implementation of the storage interface.
// Accounts are JSON documents; conditional updates use WATCH/MULTI.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// Claim the username first so two creates cannot both win
	claimed, err := s.client.SetNX(ctx, usernameIndexKey(account.Username), string(account.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrUsernameExists
	}

	key := accountKey(account.ID)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, accountsIndexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		_ = s.client.Del(ctx, usernameIndexKey(account.Username)).Err()
		return err
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return getAccount(ctx, s.client, id)
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	// Look up account ID from username index
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	return s.GetAccount(ctx, model.AccountID(id))
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	keys, err := s.client.SMembers(ctx, accountsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return []*model.Account{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	accounts := make([]*model.Account, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // deleted between SMEMBERS and MGET
		}
		str, ok := val.(string)
		if !ok {
			continue
		}
		var account model.Account
		if err := json.Unmarshal([]byte(str), &account); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	return accounts, nil
}

func (s *Storage) PatchAccount(ctx context.Context, id model.AccountID, patch model.AccountPatch, at time.Time) (*model.Account, error) {
	return s.update(ctx, id, func(account *model.Account) error {
		patch.Apply(account, at)
		return nil
	})
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil
		}
		return err
	}

	key := accountKey(id)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, usernameIndexKey(account.Username))
	pipe.SRem(ctx, accountsIndexKey(), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) AdminExists(ctx context.Context) (bool, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return false, err
	}
	for _, account := range accounts {
		if account.IsAdmin() {
			return true, nil
		}
	}
	return false, nil
}

// Progress operations

func (s *Storage) StartClock(ctx context.Context, id model.AccountID, at time.Time) (*model.Account, error) {
	account, err := s.update(ctx, id, func(account *model.Account) error {
		p := &account.Progress
		if p.StartedAt != nil || p.CurrentLevel != 1 || p.Completed {
			return errUnchanged
		}
		started := at
		p.StartedAt = &started
		account.UpdatedAt = at
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return s.GetAccount(ctx, id)
	}
	return account, err
}

func (s *Storage) AdvanceProgress(ctx context.Context, id model.AccountID, expectedLevel int, next model.Progress, at time.Time) error {
	_, err := s.update(ctx, id, func(account *model.Account) error {
		if !advanceable(account.Progress, expectedLevel, next) {
			return storage.ErrProgressConflict
		}
		account.Progress = next.Clone()
		account.UpdatedAt = at
		return nil
	})
	return err
}

func (s *Storage) ResetProgress(ctx context.Context, id model.AccountID, at time.Time) error {
	_, err := s.update(ctx, id, func(account *model.Account) error {
		account.Progress = model.NewProgress()
		account.UpdatedAt = at
		return nil
	})
	return err
}

// update runs an optimistic read-modify-write on one account. fn sees the
// current record; returning an error aborts without writing. A concurrent
// write to the key retries from a fresh read.
func (s *Storage) update(ctx context.Context, id model.AccountID, fn func(*model.Account) error) (*model.Account, error) {
	key := accountKey(id)
	var result *model.Account

	txf := func(tx *redis.Tx) error {
		account, err := getAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(account); err != nil {
			return err
		}
		data, err := json.Marshal(account)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			result = account
		}
		return err
	}

	for i := 0; i < s.cfg.MaxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return result, err
	}
	return nil, storage.ErrProgressConflict
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getAccount(ctx context.Context, cmd getter, id model.AccountID) (*model.Account, error) {
	data, err := cmd.Get(ctx, accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &account, nil
}

// advanceable reports whether next was derived from the stored progress: same
// level, not completed and the same timer start. A reset followed by a replay
// to the same level changes the start, so stale writes are rejected.
func advanceable(stored model.Progress, expectedLevel int, next model.Progress) bool {
	return stored.CurrentLevel == expectedLevel &&
		!stored.Completed &&
		model.SameInstant(stored.StartedAt, next.StartedAt)
}
