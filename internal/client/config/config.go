package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for both front-ends.
type Config struct {
	// RemoteDSN is the Postgres connection string of the hosted backend.
	RemoteDSN string `env:"REMOTE_DSN"`

	// LocalDBPath is the SQLite file keeping the persisted session.
	LocalDBPath string `env:"LOCAL_DB_PATH"`

	// SessionSecret signs session tokens. When empty a random secret is
	// generated once and kept in the local store.
	SessionSecret string `env:"SESSION_SECRET"`

	// SessionTTL bounds the lifetime of a session token; zero never expires.
	SessionTTL time.Duration `env:"SESSION_TTL"`

	QueryTimeout time.Duration `env:"QUERY_TIMEOUT"`

	UsersPageSize  int `env:"USERS_PAGE_SIZE"`
	LogsPageSize   int `env:"LOGS_PAGE_SIZE"`
	EmailsPageSize int `env:"EMAILS_PAGE_SIZE"`

	// FetchConcurrency bounds parallel per-user subscription reads.
	FetchConcurrency int `env:"FETCH_CONCURRENCY"`

	WebAddr     string   `env:"WEB_ADDR"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	LogLevel string `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LocalDBPath = "opsdash.db"
	c.SessionTTL = 30 * 24 * time.Hour
	c.QueryTimeout = 15 * time.Second
	c.UsersPageSize = 10
	c.LogsPageSize = 20
	c.EmailsPageSize = 20
	c.FetchConcurrency = 8
	c.WebAddr = ":8080"
	c.CORSOrigins = []string{"http://localhost:5173"}
	c.LogLevel = "info"
}

// Validate reports settings no front-end can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.RemoteDSN == "" {
		errs = append(errs, errors.New("remote DSN is required (-dsn or OPSDASH_REMOTE_DSN)"))
	}
	if c.LocalDBPath == "" {
		errs = append(errs, errors.New("local database path is required"))
	}
	if c.UsersPageSize <= 0 || c.LogsPageSize <= 0 || c.EmailsPageSize <= 0 {
		errs = append(errs, errors.New("page sizes must be positive"))
	}
	if c.QueryTimeout < 0 || c.SessionTTL < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from defaults, then the JSON file, then the
// environment, then flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
