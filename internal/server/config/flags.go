package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/capstone/internal/flagx"
)

var knownFlags = []string{"-a", "-b", "-d", "-n", "-w", "-s", "-t", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC health endpoint address (e.g. ":50051")
//	-b string   database driver ("pgx" or "sqlite")
//	-d string   database DSN
//	-n int      connection pool size
//	-w int      connection acquire timeout, milliseconds (-w=-1 waits forever)
//	-s string   principal token HMAC secret
//	-t int      principal token validity, minutes
//	-l string   log level
//
// Args are filtered with flagx.FilterArgs first, so subcommands and their
// own flags pass through untouched.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("capstone", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC health endpoint address")
	fs.StringVar(&config.DatabaseDriver, "b", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.PoolSize, "n", config.PoolSize, "connection pool size")
	acquireMs := fs.Int64("w", config.AcquireTimeout.Milliseconds(), "acquire timeout (in milliseconds)")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "principal token secret")
	validity := fs.Int("t", int(config.PrincipalTokenValidity.Minutes()), "principal token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.AcquireTimeout = time.Duration(*acquireMs) * time.Millisecond
	config.PrincipalTokenValidity = time.Duration(*validity) * time.Minute
	return nil
}
