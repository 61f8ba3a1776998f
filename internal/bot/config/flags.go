package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/farmkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-f string   path of the JSON data file
//	-a string   messaging API base URL
//	-t int      long-poll timeout, seconds
//	-w int      sweep interval, minutes
//	-l string   healthz/readyz bind address (empty disables the listener)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags handled
// by parseJson. The token and master secret have no flags on purpose.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-a", "-t", "-w", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DataFile, "f", config.DataFile, "path of the JSON data file")
	fs.StringVar(&config.APIBaseURL, "a", config.APIBaseURL, "messaging API base URL")

	pollTimeout := fs.Int("t", int(config.PollTimeout.Seconds()), "long-poll timeout (in seconds)")
	sweepInterval := fs.Int("w", int(config.SweepInterval.Minutes()), "sweep interval (in minutes)")

	fs.StringVar(&config.HealthAddr, "l", config.HealthAddr, "health listener address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.PollTimeout = time.Duration(*pollTimeout) * time.Second
	config.SweepInterval = time.Duration(*sweepInterval) * time.Minute
}
