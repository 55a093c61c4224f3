package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/meterbook/meterbook/internal/flagx"
)

// Duration unmarshals from either a string like "3s" or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	DatabaseDSN         string   `json:"database_dsn"`
	CachePath           string   `json:"cache_path"`
	OnlineCheckInterval Duration `json:"online_check_interval"`
	LogLevel            string   `json:"log_level"`
}

// parseJson overlays cfg with values loaded from a JSON file whose path is
// given via the -c/-config flags. Absent flags mean no JSON is loaded.
// Empty JSON fields leave the current value in place. Panics on read or
// unmarshal errors, matching the fail-fast startup path.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.CachePath != "" {
		cfg.CachePath = jc.CachePath
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
