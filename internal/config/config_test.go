package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDRESS", "STORE_DRIVER", "TOKEN_TTL", "OUTBOX_BATCH_SIZE", "KAFKA_BROKERS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, DriverSQLite, cfg.StoreDriver)
	require.Equal(t, 8*time.Hour, cfg.TokenTTL)
	require.Equal(t, 25, cfg.OutboxBatchSize)
	require.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("OUTBOX_BATCH_SIZE", "100")
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")

	cfg := Load()

	require.Equal(t, DriverPostgres, cfg.StoreDriver)
	require.Equal(t, 90*time.Minute, cfg.TokenTTL)
	require.Equal(t, 100, cfg.OutboxBatchSize)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("OUTBOX_BATCH_SIZE", "-4")

	cfg := Load()

	require.Equal(t, 8*time.Hour, cfg.TokenTTL)
	require.Equal(t, 25, cfg.OutboxBatchSize)
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fitness.env")
	require.NoError(t, os.WriteFile(path, []byte("SQLITE_PATH=/tmp/from-file.db\nJWT_ISSUER=from-file\n"), 0o600))

	t.Setenv("JWT_ISSUER", "from-env")
	t.Setenv("SQLITE_PATH", "")
	require.NoError(t, os.Unsetenv("SQLITE_PATH"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	t.Cleanup(func() { os.Unsetenv("SQLITE_PATH") })

	cfg := Load()
	require.Equal(t, "/tmp/from-file.db", cfg.SQLitePath)
	require.Equal(t, "from-env", cfg.JWTIssuer)
}
