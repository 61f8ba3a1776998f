// Package config handles configuration for the bot process, including
// defaults, JSON overlay, environment variables, and command-line flags.
package config

import (
	"errors"
	"os"
	"time"
)

// Config holds runtime settings for the farmkeeper bot.
//
// Fields:
//   - BotToken: messaging API token. Required, only settable via environment.
//   - MasterSecret: secret the credential vault derives its key from.
//     Required, only settable via environment.
//   - DataFile: path of the JSON data file.
//   - APIBaseURL: messaging API base URL, overridable for tests.
//   - PollTimeout: long-poll timeout for fetching updates.
//   - SweepInterval: how often the reminder sweep runs.
//   - ReminderThresholds: days-before-renewal at which reminders fire.
//   - HealthAddr: bind address for the healthz/readyz listener; empty
//     disables it.
type Config struct {
	BotToken           string
	MasterSecret       string
	DataFile           string
	APIBaseURL         string
	PollTimeout        time.Duration
	SweepInterval      time.Duration
	ReminderThresholds []int
	HealthAddr         string
}

// LoadDefaults populates Config with development defaults. The token and
// master secret have no default and must come from the environment.
func (c *Config) LoadDefaults() {
	c.DataFile = "farms_data.json"
	c.APIBaseURL = "https://api.telegram.org"
	c.PollTimeout = 60 * time.Second
	c.SweepInterval = 1 * time.Hour
	c.ReminderThresholds = []int{3, 2, 1, 0}
	c.HealthAddr = ""
}

// parseEnv overlays values from the process environment. The secrets are
// deliberately env-only so they never appear in shell history or process
// listings.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("FARMKEEPER_BOT_TOKEN"); ok {
		config.BotToken = v
	}
	if v, ok := os.LookupEnv("FARMKEEPER_MASTER_SECRET"); ok {
		config.MasterSecret = v
	}
	if v, ok := os.LookupEnv("FARMKEEPER_DATA_FILE"); ok {
		config.DataFile = v
	}
}

// Validate reports the configuration errors that make startup impossible.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return errors.New("FARMKEEPER_BOT_TOKEN is not set")
	}
	if c.MasterSecret == "" {
		return errors.New("FARMKEEPER_MASTER_SECRET is not set")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment, and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
