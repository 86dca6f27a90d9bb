package config

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/auth"
	"github.com/dmitrijs2005/machinewatch/internal/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "JWT_SECRET", "ALLOW_DEV_SECRET", "RUN_MIGRATIONS"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":50051", c.TelemetryAddr)
	assert.Empty(t, c.SecretKey)
	assert.True(t, c.AllowDevSecret)
	assert.False(t, c.Store.Enabled())
	assert.Equal(t, 5432, c.Store.DBPort)
	assert.False(t, c.RunMigrations)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	clearEnv(t)
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.True(t, c.AllowDevSecret)
}

func TestLoadConfig_FlagsBeatEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "from-env")
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-s", "from-flag"}

	c := LoadConfig()
	assert.Equal(t, "from-flag", c.SecretKey)
}

func TestSecret(t *testing.T) {
	c := &Config{SecretKey: "prod-secret"}
	s, dev, err := c.Secret()
	require.NoError(t, err)
	assert.Equal(t, []byte("prod-secret"), s)
	assert.False(t, dev)

	c = &Config{AllowDevSecret: true}
	s, dev, err = c.Secret()
	require.NoError(t, err)
	assert.Equal(t, []byte(auth.DevSecret), s)
	assert.True(t, dev)

	c = &Config{}
	_, _, err = c.Secret()
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestParseEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "pg.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "svc")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "machinewatch")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ALLOW_DEV_SECRET", "false")
	t.Setenv("RUN_MIGRATIONS", "true")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, credentials.StoreConfig{
		DBHost: "pg.internal", DBPort: 6543, DBUser: "svc", DBPassword: "pw", DBName: "machinewatch",
	}, c.Store)
	assert.Equal(t, "s3cret", c.SecretKey)
	assert.False(t, c.AllowDevSecret)
	assert.True(t, c.RunMigrations)
}

func TestParseEnv_HostAloneEnablesStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "localhost")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.True(t, c.Store.Enabled())
	assert.Equal(t, 5432, c.Store.DBPort)
}

func TestParseEnv_BadValuesPanic(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PORT", "not-a-port")

	var c Config
	c.LoadDefaults()
	require.Panics(t, func() { parseEnv(&c) })

	t.Setenv("DB_PORT", "")
	t.Setenv("ALLOW_DEV_SECRET", "perhaps")
	require.Panics(t, func() { parseEnv(&c) })
}
