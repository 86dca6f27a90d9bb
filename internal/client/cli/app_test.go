package cli

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/client/config"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, endpoint string) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.ServerEndpointAddr = endpoint
	c.DatabaseDSN = filepath.Join(t.TempDir(), "client.db")
	c.TelemetryAddr = "127.0.0.1:1"
	c.ConnectTimeout = 100 * time.Millisecond
	c.TelemetryGrace = 50 * time.Millisecond
	c.RemoteTimeout = 100 * time.Millisecond
	return c
}

func TestNewApp(t *testing.T) {
	ctx := context.Background()

	t.Run("local backend", func(t *testing.T) {
		a, err := NewApp(ctx, testConfig(t, "http://127.0.0.1:1"), logging.Nop{})
		require.NoError(t, err)
		assert.False(t, a.authService.Status(ctx).Restricted)
		require.NoError(t, a.Close(ctx))
	})

	t.Run("startup is logged", func(t *testing.T) {
		var logs bytes.Buffer
		a, err := NewApp(ctx, testConfig(t, "http://127.0.0.1:1"), logging.NewFromConfig(&logs, "text", "debug"))
		require.NoError(t, err)
		require.NoError(t, a.Close(ctx))

		text := logs.String()
		assert.Contains(t, text, "backend client ready")
		assert.Contains(t, text, "host=127.0.0.1")
		assert.Contains(t, text, "client_id=")
		assert.Contains(t, text, "user store disabled")
	})

	t.Run("hosted frontend is restricted", func(t *testing.T) {
		a, err := NewApp(ctx, testConfig(t, "https://machinewatch.fly.dev"), logging.Nop{})
		require.NoError(t, err)
		assert.True(t, a.authService.Status(ctx).Restricted)
		require.NoError(t, a.Close(ctx))
	})

	t.Run("store enabled", func(t *testing.T) {
		c := testConfig(t, "http://localhost:8080")
		c.Store.DBHost = "127.0.0.1"
		a, err := NewApp(ctx, c, logging.Nop{})
		require.NoError(t, err)
		assert.Len(t, a.closers, 2)
		require.NoError(t, a.Close(ctx))
	})

	t.Run("bad database path", func(t *testing.T) {
		c := testConfig(t, "http://localhost:8080")
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
		c.DatabaseDSN = filepath.Join(blocker, "client.db")
		_, err := NewApp(ctx, c, logging.Nop{})
		require.Error(t, err)
	})
}

// End to end over the fallback accounts: the backend and gateway are
// unreachable, so login succeeds locally and telemetry is degraded.
func TestApp_RunScript(t *testing.T) {
	out := captureOutput(t)
	stubTerminal(t, false, nil)

	c := testConfig(t, "http://127.0.0.1:1")
	a, err := NewApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)

	var buf bytes.Buffer
	a.out = &buf
	a.reader = bufio.NewReader(strings.NewReader("login\nashutosh\ncdc123\nstatus\nlogout\nexit\n"))

	require.NoError(t, a.Run(context.Background()))

	text := buf.String()
	assert.Contains(t, text, "Welcome, Ashutosh")
	assert.Contains(t, text, "Location:  CDC Office, Pune")
	assert.Contains(t, text, "Signed out")
	assert.Contains(t, strings.Join(*out, "\n"), "Bye!")

	// The session does not survive logout.
	again, err := NewApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)
	again.authService.Restore(context.Background())
	assert.False(t, again.isLoggedIn(context.Background()))
	require.NoError(t, again.Close(context.Background()))
}

func TestApp_SessionSurvivesRestart(t *testing.T) {
	captureOutput(t)
	stubTerminal(t, false, nil)

	c := testConfig(t, "http://127.0.0.1:1")
	a, err := NewApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)
	a.out = &bytes.Buffer{}
	a.reader = bufio.NewReader(strings.NewReader("login\nadmin\nadmin123\nexit\n"))
	require.NoError(t, a.Run(context.Background()))

	again, err := NewApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)
	again.authService.Restore(context.Background())
	assert.True(t, again.isLoggedIn(context.Background()))
	assert.Equal(t, "admin", again.authService.Status(context.Background()).Identity.Username)
	require.NoError(t, again.Close(context.Background()))
}
