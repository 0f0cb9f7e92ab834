package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Duration accepts either a Go duration string ("5s") or integer
// nanoseconds in JSON.
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
		return errors.New("invalid duration")
	}
}

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell "absent" apart from zero values.
type JSONConfig struct {
	APIVersion     *string   `json:"api_version"`
	DatabasePath   *string   `json:"database_path"`
	RequestTimeout *Duration `json:"request_timeout"`
	StatusTTL      *Duration `json:"status_ttl"`
	Verbose        *bool     `json:"verbose"`
	Ephemeral      *bool     `json:"ephemeral"`
}

// parseJSON overlays cfg with the values present in the file at path.
func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.APIVersion != nil {
		cfg.APIVersion = *jc.APIVersion
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.StatusTTL != nil {
		cfg.StatusTTL = jc.StatusTTL.Duration
	}
	if jc.Verbose != nil {
		cfg.Verbose = *jc.Verbose
	}
	if jc.Ephemeral != nil {
		cfg.Ephemeral = *jc.Ephemeral
	}
	return nil
}
