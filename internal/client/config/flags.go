package config

import (
	"flag"
	"io"
	"os"

	"github.com/dmitrijs2005/opsdash/internal/flagx"
)

var flagNames = []string{"dsn", "db", "addr", "timeout", "log-level"}

// parseFlags overlays cfg with the flags listed in flagNames. Other arguments
// are left to the front-end.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], flagx.Dashed(flagNames...))

	fs := flag.NewFlagSet("opsdash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.RemoteDSN, "dsn", cfg.RemoteDSN, "remote Postgres connection string")
	fs.StringVar(&cfg.LocalDBPath, "db", cfg.LocalDBPath, "path of the local SQLite store")
	fs.StringVar(&cfg.WebAddr, "addr", cfg.WebAddr, "listen address of the web server")
	fs.DurationVar(&cfg.QueryTimeout, "timeout", cfg.QueryTimeout, "per-query timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	return fs.Parse(args)
}
