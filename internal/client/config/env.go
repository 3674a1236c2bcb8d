package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/opsdash/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "OPSDASH_"

// loadDotenv exports the dotenv file named by -e/-env-file, or ./.env when
// present. Variables already set in the environment win.
func loadDotenv() error {
	path := flagx.EnvFileFlags()
	if path == "" {
		if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays cfg with the OPSDASH_* variables that are set.
func parseEnv(cfg *Config) error {
	if err := loadDotenv(); err != nil {
		return err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
