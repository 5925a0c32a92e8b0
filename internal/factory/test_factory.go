package factory

import (
	"context"
	"time"

	"github.com/mcoot/treasurehunt-go/internal/dependencies/mocks"
	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/services/auth"
	"github.com/mcoot/treasurehunt-go/internal/services/clue"
	"github.com/mcoot/treasurehunt-go/internal/storage/memory"
	"github.com/mcoot/treasurehunt-go/internal/testutil"
)

// Test admin credentials provisioned by NewTestApp
const (
	TestAdminUsername = "admin"
	TestAdminPassword = "admin123"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and the admin account already provisioned
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, clue.Default(), mockClock, mockRandom, auth.DefaultConfig(), testutil.NopLogger())

	if _, err := app.AccountService.EnsureAdmin(context.Background(), TestAdminUsername, TestAdminPassword); err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// CreatePlayer creates a player with the given credentials
func (t *TestApp) CreatePlayer(ctx context.Context, username, password string) (*model.Account, error) {
	return t.AccountService.CreatePlayer(ctx, username, password)
}

// Code returns the secret code for a level of the test clue table
func (t *TestApp) Code(level int) string {
	c, _ := t.Clues.Get(level)
	return c.Code
}
