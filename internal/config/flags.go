package config

import (
	"flag"
	"os"
	"time"

	"github.com/meterbook/meterbook/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN of the remote store (default from Config)
//	-f string   path of the local cache database (default from Config)
//	-i int      online check interval in seconds (default from Config)
//	-l string   minimum log level (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-f", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN of the remote store")
	fs.StringVar(&cfg.CachePath, "f", cfg.CachePath, "path of the local cache database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "minimum log level (debug, info, warn, error)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
