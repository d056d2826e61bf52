package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAPIConfigDefaults(t *testing.T) {
	cfg, err := LoadAPIConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "marketplace", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8545", cfg.Ethereum.RPCURL)
	assert.Equal(t, int64(1337), cfg.Ethereum.ChainID)
	assert.Equal(t, "artifacts/abi", cfg.Ethereum.ArtifactsDir)
	assert.False(t, cfg.Debug)
}

func TestLoadAPIConfigEnvOverride(t *testing.T) {
	t.Setenv("MARKETPLACE_DATABASE_HOST", "db.internal")
	t.Setenv("MARKETPLACE_SERVER_PORT", "9090")
	t.Setenv("MARKETPLACE_DEBUG", "true")

	cfg, err := LoadAPIConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Debug)
}

func TestLoadAPIConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  host: filehost
  port: 5433
server:
  port: 8888
ethereum:
  chain_id: 11155111
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	cfg, err := LoadAPIConfig(configFile, dir)
	require.NoError(t, err)

	assert.Equal(t, "filehost", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 8888, cfg.Server.Port)
	assert.Equal(t, int64(11155111), cfg.Ethereum.ChainID)
}

func TestLoadSweeperConfigDefaults(t *testing.T) {
	cfg, err := LoadSweeperConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "15m0s", cfg.Sweeper.OrderTTL.String())
	assert.Equal(t, 100, cfg.Sweeper.BatchSize)
	assert.Equal(t, 10, cfg.Sweeper.WorkerPoolSize)
	assert.Equal(t, "1m0s", cfg.Sweeper.SweepInterval.String())
}

func TestLoadBootstrapConfigDefaults(t *testing.T) {
	cfg, err := LoadBootstrapConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8545", cfg.Ethereum.RPCURL)
	assert.Equal(t, int64(1337), cfg.Ethereum.ChainID)
	assert.Equal(t, "artifacts/abi", cfg.ArtifactsDir)
	assert.True(t, cfg.AllowDevKeys)
	assert.NotEmpty(t, cfg.Keys.OwnerPrivateKey)
	assert.NotEmpty(t, cfg.Keys.SellerPrivateKey)
	assert.NotEmpty(t, cfg.Keys.BuyerPrivateKey)
}

func TestLoadBootstrapConfigDisallowDevKeys(t *testing.T) {
	t.Setenv("MARKETPLACE_ALLOW_DEV_KEYS", "false")

	cfg, err := LoadBootstrapConfig("", t.TempDir())
	require.NoError(t, err)

	assert.False(t, cfg.AllowDevKeys)
}

func TestLoadTraderConfigDefaults(t *testing.T) {
	cfg, err := LoadTraderConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, "15s", cfg.Timeout.String())
	assert.Equal(t, uint64(3), cfg.MaxRetries)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MARKETPLACE_DATABASE_PASSWORD=fromenvfile\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MARKETPLACE_DATABASE_PASSWORD") })

	cfg, err := LoadAPIConfig("", dir)
	require.NoError(t, err)

	assert.Equal(t, "fromenvfile", cfg.Database.Password)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		DBName:   "marketplace",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=marketplace sslmode=disable",
		cfg.DSN())
}
