/*
config.go - application configuration

PURPOSE:
  Loads server settings from a TOML file, falling back to defaults when
  no file exists. The config file lives next to the database under
  ~/.timepe/ unless an explicit path is given.

SEE ALSO:
  - cmd/timepe/main.go: flag wiring
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Port         int      `toml:"port"`
	DatabasePath string   `toml:"database_path"`
	CORSOrigins  []string `toml:"cors_origins"`
}

func DefaultConfig() *Config {
	dir, _ := baseDir()
	return &Config{
		Port:         8080,
		DatabasePath: filepath.Join(dir, "timepe.sqlite"),
		CORSOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
	}
}

func baseDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".timepe"), nil
}

func ConfigPath() (string, error) {
	dir, err := baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func EnsureDirectories() error {
	dir, err := baseDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// Load reads the config at path, or the default location when path is
// empty. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(cfg *Config) error {
	if err := EnsureDirectories(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
