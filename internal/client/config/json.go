package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/flagx"
	"github.com/dmitrijs2005/opsdash/internal/timex"
)

// JsonConfig is the file form of Config. Absent fields keep their current
// value.
type JsonConfig struct {
	RemoteDSN        *string         `json:"remote_dsn"`
	LocalDBPath      *string         `json:"local_db_path"`
	SessionSecret    *string         `json:"session_secret"`
	SessionTTL       *timex.Duration `json:"session_ttl"`
	QueryTimeout     *timex.Duration `json:"query_timeout"`
	UsersPageSize    *int            `json:"users_page_size"`
	LogsPageSize     *int            `json:"logs_page_size"`
	EmailsPageSize   *int            `json:"emails_page_size"`
	FetchConcurrency *int            `json:"fetch_concurrency"`
	WebAddr          *string         `json:"web_addr"`
	CORSOrigins      []string        `json:"cors_origins"`
	LogLevel         *string         `json:"log_level"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}

// parseJson overlays cfg with the file named by -c/-config, if any.
func parseJson(cfg *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&cfg.RemoteDSN, jc.RemoteDSN)
	set(&cfg.LocalDBPath, jc.LocalDBPath)
	set(&cfg.SessionSecret, jc.SessionSecret)
	setDuration(&cfg.SessionTTL, jc.SessionTTL)
	setDuration(&cfg.QueryTimeout, jc.QueryTimeout)
	set(&cfg.UsersPageSize, jc.UsersPageSize)
	set(&cfg.LogsPageSize, jc.LogsPageSize)
	set(&cfg.EmailsPageSize, jc.EmailsPageSize)
	set(&cfg.FetchConcurrency, jc.FetchConcurrency)
	set(&cfg.WebAddr, jc.WebAddr)
	if jc.CORSOrigins != nil {
		cfg.CORSOrigins = jc.CORSOrigins
	}
	set(&cfg.LogLevel, jc.LogLevel)
	return nil
}
