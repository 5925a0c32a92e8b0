package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/treasurehunt-go/internal/api"
	"github.com/mcoot/treasurehunt-go/internal/cli"
	"github.com/mcoot/treasurehunt-go/internal/factory"
	"github.com/mcoot/treasurehunt-go/internal/testutil"
)

// cliRunner executes the hunt CLI in-process against a server
type cliRunner struct {
	serverURL string
	tokenFile string
}

// cliMu serialises runs since the CLI keeps its config in package state
var cliMu sync.Mutex

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	return &cliRunner{
		serverURL: serverURL,
		tokenFile: filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	cliMu.Lock()
	defer cliMu.Unlock()

	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := cli.NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(fullArgs)

	err := cmd.Execute()
	if err != nil {
		return stderr.String(), err
	}
	return stdout.String(), nil
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.TestApp
	url      string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Listen on a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := factory.NewTestApp()
	server := api.NewServer(app.Router(), api.DefaultServerConfig(), testutil.NopLogger())

	// Start server
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app: app,
		url: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), "output: %s", out)
	return v
}

func TestCLIHealth(t *testing.T) {
	srv := startTestServer(t)
	defer srv.shutdown()

	runner := newCLIRunner(t, srv.url)
	out, err := runner.run("health")
	require.NoError(t, err)
	assert.Equal(t, "ok", decode[cli.HealthResult](t, out).Status)
}

func TestCLIFullHunt(t *testing.T) {
	srv := startTestServer(t)
	defer srv.shutdown()

	admin := newCLIRunner(t, srv.url)
	player := newCLIRunner(t, srv.url)

	// Admin sets up a player
	_, err := admin.run("auth", "login", "--user", factory.TestAdminUsername, "--pass", factory.TestAdminPassword)
	require.NoError(t, err)
	out, err := admin.run("admin", "users", "create", "--user", "alice", "--pass", "pw1")
	require.NoError(t, err)
	alice := decode[cli.Account](t, out)

	// Player logs in with their own token file
	out, err = player.run("auth", "login", "--user", "alice", "--pass", "pw1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, decode[cli.AuthResult](t, out).Account.ID)

	out, err = player.run("hunt", "clue")
	require.NoError(t, err)
	clue := decode[cli.ClueResult](t, out)
	require.NotNil(t, clue.Clue)
	assert.Equal(t, 1, clue.Clue.Level)

	total := clue.TotalLevels
	for level := 2; level <= total; level++ {
		srv.app.MockClock.Advance(time.Minute)
		out, err = player.run("hunt", "scan", srv.app.Code(level))
		require.NoError(t, err, "level %d", level)
		scan := decode[cli.ScanResult](t, out)
		assert.Equal(t, level, scan.Level)
		assert.Equal(t, level == total, scan.Completed)
	}

	// Admin sees the finished player
	out, err = admin.run("admin", "users", "list")
	require.NoError(t, err)
	users := decode[[]cli.Account](t, out)
	require.Len(t, users, 1)
	assert.True(t, users[0].Completed)
	require.NotNil(t, users[0].ElapsedSeconds)
	assert.Equal(t, int64(60*(total-1)), *users[0].ElapsedSeconds)

	// Reset sends them back
	_, err = admin.run("admin", "users", "reset", alice.ID)
	require.NoError(t, err)
	out, err = player.run("hunt", "clue")
	require.NoError(t, err)
	clue = decode[cli.ClueResult](t, out)
	assert.False(t, clue.Completed)
	require.NotNil(t, clue.Clue)
	assert.Equal(t, 1, clue.Clue.Level)
}

func TestCLIDisabledPlayerIsLockedOut(t *testing.T) {
	srv := startTestServer(t)
	defer srv.shutdown()

	admin := newCLIRunner(t, srv.url)
	player := newCLIRunner(t, srv.url)

	_, err := admin.run("auth", "login", "--user", factory.TestAdminUsername, "--pass", factory.TestAdminPassword)
	require.NoError(t, err)
	out, err := admin.run("admin", "users", "create", "--user", "bob", "--pass", "pw2")
	require.NoError(t, err)
	bob := decode[cli.Account](t, out)

	_, err = player.run("auth", "login", "--user", "bob", "--pass", "pw2")
	require.NoError(t, err)

	_, err = admin.run("admin", "users", "toggle", bob.ID)
	require.NoError(t, err)

	// The saved session no longer works
	_, err = player.run("hunt", "clue")
	require.Error(t, err)

	_, err = player.run("auth", "login", "--user", "bob", "--pass", "pw2")
	require.Error(t, err)
	var apiErr *cli.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ACCOUNT_DISABLED", apiErr.Code)
}

func TestCLIPlayerCannotAdminister(t *testing.T) {
	srv := startTestServer(t)
	defer srv.shutdown()

	admin := newCLIRunner(t, srv.url)
	_, err := admin.run("auth", "login", "--user", factory.TestAdminUsername, "--pass", factory.TestAdminPassword)
	require.NoError(t, err)
	_, err = admin.run("admin", "users", "create", "--user", "carol", "--pass", "pw3")
	require.NoError(t, err)

	player := newCLIRunner(t, srv.url)
	_, err = player.run("auth", "login", "--user", "carol", "--pass", "pw3")
	require.NoError(t, err)

	_, err = player.run("admin", "clues")
	var apiErr *cli.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
}
