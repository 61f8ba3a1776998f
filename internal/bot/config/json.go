package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/farmkeeper/internal/flagx"
	"github.com/dmitrijs2005/farmkeeper/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON configuration
// files. Interval fields use timex.Duration, which parses both string values
// such as "1h" and integer nanoseconds. After unmarshalling, its fields are
// copied into the runtime Config.
//
// Secrets are intentionally absent: the token and master secret come from
// the environment only.
type JsonConfig struct {
	DataFile           string         `json:"data_file"`
	APIBaseURL         string         `json:"api_base_url"`
	PollTimeout        timex.Duration `json:"poll_timeout"`
	SweepInterval      timex.Duration `json:"sweep_interval"`
	ReminderThresholds []int          `json:"reminder_thresholds"`
	HealthAddr         string         `json:"health_addr"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config. The file path comes from the -c or -config command-line flags;
// when neither is set, no JSON file is loaded. An unreadable or invalid
// file panics, since running with half-applied configuration is worse than
// not starting.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.DataFile != "" {
		config.DataFile = c.DataFile
	}
	if c.APIBaseURL != "" {
		config.APIBaseURL = c.APIBaseURL
	}
	if c.PollTimeout.Duration != 0 {
		config.PollTimeout = time.Duration(c.PollTimeout.Duration)
	}
	if c.SweepInterval.Duration != 0 {
		config.SweepInterval = time.Duration(c.SweepInterval.Duration)
	}
	if len(c.ReminderThresholds) > 0 {
		config.ReminderThresholds = c.ReminderThresholds
	}
	if c.HealthAddr != "" {
		config.HealthAddr = c.HealthAddr
	}
}
