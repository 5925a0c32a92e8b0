package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/treasurehunt-go/internal/api"
	"github.com/mcoot/treasurehunt-go/internal/dependencies/clock"
	"github.com/mcoot/treasurehunt-go/internal/dependencies/random"
	"github.com/mcoot/treasurehunt-go/internal/services/account"
	"github.com/mcoot/treasurehunt-go/internal/services/auth"
	"github.com/mcoot/treasurehunt-go/internal/services/clue"
	"github.com/mcoot/treasurehunt-go/internal/services/hunt"
	"github.com/mcoot/treasurehunt-go/internal/storage"
	"github.com/mcoot/treasurehunt-go/internal/storage/memory"
	pgstorage "github.com/mcoot/treasurehunt-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/treasurehunt-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// generatedSecretLength is the length of the signing secret made when none is configured
const generatedSecretLength = 48

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger

	// Services
	Clues          *clue.Table
	AuthService    *auth.Service
	AccountService *account.Service
	HuntController *hunt.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// CluesFile is a JSON clue table (optional)
	// If empty, the built-in table is used
	CluesFile string
	// AuthConfig holds configuration for the auth service (optional)
	// A missing secret is replaced with a random one
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseURL is the postgres DSN (required if StorageType is "postgres")
	DatabaseURL string
}

// New creates a new application with all dependencies wired. The storage
// handle is opened here once and owned by the App until Close.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clues := clue.Default()
	if cfg.CluesFile != "" {
		loaded, err := clue.LoadFromFile(cfg.CluesFile)
		if err != nil {
			return nil, err
		}
		clues = loaded
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clues, clock.New(), random.New(), cfg.AuthConfig, logger), nil
}

func openStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		return pgstorage.Open(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clues *clue.Table, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	if len(authCfg.Secret) == 0 {
		logger.Warn("no JWT secret configured, generating one; sessions will not survive a restart")
		authCfg.Secret = []byte(random.Secret(rnd, generatedSecretLength))
	}

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Logger:         logger,
		Clues:          clues,
		AuthService:    auth.New(store, clk, authCfg),
		AccountService: account.New(store, clk, logger),
		HuntController: hunt.NewController(store, clues, clk, logger),
	}
}

// Router returns the HTTP API handler for the app
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:         a.Logger,
		AuthService:    a.AuthService,
		AccountService: a.AccountService,
		HuntController: a.HuntController,
	})
}

// Close releases the storage handle
func (a *App) Close() error {
	return a.Storage.Close()
}
