package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// APIConfig holds the remote log-store client settings.
type APIConfig struct {
	BaseURL    string `toml:"base_url"`
	TimeoutMs  int    `toml:"timeout_ms"`
	MaxRetries int    `toml:"max_retries"`
}

// PollConfig holds the background refresh settings.
type PollConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// Config holds all punchclock settings. Values come from defaults, then an
// optional config.toml, then environment variables — later sources win.
type Config struct {
	DBPath      string `toml:"db_path"`
	SessionFile string `toml:"session_file"`
	Scope       string `toml:"scope"`

	API  APIConfig  `toml:"api"`
	Poll PollConfig `toml:"poll"`
}

// DefaultConfig returns a Config with sensible defaults rooted under
// ~/.punchclock.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	base := filepath.Join(home, ".punchclock")

	return Config{
		DBPath:      filepath.Join(base, "punchclock.db"),
		SessionFile: filepath.Join(base, "session.json"),
		Scope:       "default",
		API: APIConfig{
			BaseURL:    "http://localhost:8080",
			TimeoutMs:  10000,
			MaxRetries: 1,
		},
		Poll: PollConfig{
			IntervalSeconds: 30,
		},
	}, nil
}

// Load builds the effective configuration. The config file path defaults to
// ~/.punchclock/config.toml and can be moved with PUNCHCLOCK_CONFIG; a
// missing file is not an error.
func Load() (Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	path := os.Getenv("PUNCHCLOCK_CONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		path = filepath.Join(home, ".punchclock", "config.toml")
	}
	if err := loadFile(&cfg, path); err != nil {
		return Config{}, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PUNCHCLOCK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PUNCHCLOCK_SESSION_FILE"); v != "" {
		cfg.SessionFile = v
	}
	if v := os.Getenv("PUNCHCLOCK_SCOPE"); v != "" {
		cfg.Scope = v
	}
	if v := os.Getenv("PUNCHCLOCK_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("PUNCHCLOCK_HTTP_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.API.TimeoutMs = n
		}
	}
	if v := os.Getenv("PUNCHCLOCK_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.API.MaxRetries = n
		}
	}
	if v := os.Getenv("PUNCHCLOCK_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Poll.IntervalSeconds = n
		}
	}
}
