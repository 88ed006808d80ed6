package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrFrey75/TimePE/config"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad_ExplicitFile(t *testing.T) {
	// GIVEN a config file overriding every setting
	path := writeConfigFile(t, `
port = 9090
database_path = "/tmp/ledger.sqlite"
cors_origins = ["http://localhost:3000"]
`)

	// WHEN it is loaded
	cfg, err := config.Load(path)
	require.NoError(t, err)

	// THEN the file values win
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/ledger.sqlite", cfg.DatabasePath)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	// GIVEN a file that only sets the port
	path := writeConfigFile(t, "port = 9191\n")

	// WHEN it is loaded
	cfg, err := config.Load(path)
	require.NoError(t, err)

	// THEN unset fields keep their defaults
	defaults := config.DefaultConfig()
	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, defaults.DatabasePath, cfg.DatabasePath)
	assert.Equal(t, defaults.CORSOrigins, cfg.CORSOrigins)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	// GIVEN an explicit path that does not exist
	path := filepath.Join(t.TempDir(), "nope.toml")

	// WHEN it is loaded THEN the error surfaces; only the default
	// location is allowed to be absent
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, 8080, cfg.Port)
	assert.Contains(t, cfg.DatabasePath, "timepe.sqlite")
	assert.NotEmpty(t, cfg.CORSOrigins)
}
