package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
)

const appName = "dsbrowser"

// Config holds runtime settings for the dsbrowser CLI.
type Config struct {
	APIVersion     string
	DatabasePath   string
	RequestTimeout time.Duration
	StatusTTL      time.Duration
	Verbose        bool
	Ephemeral      bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIVersion = "3.19"
	c.DatabasePath = defaultDatabasePath()
	c.RequestTimeout = 30 * time.Second
	c.StatusTTL = 5 * time.Second
	c.Verbose = false
	c.Ephemeral = false
}

// defaultDatabasePath resolves to the per-user config directory, falling
// back to the working directory when it is unknown.
var defaultDatabasePath = func() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return appName + ".db"
	}
	return filepath.Join(dir, appName, "settings.db")
}

// Flag names shared by RegisterFlags and the overlay step of Load.
const (
	flagConfig     = "config"
	flagAPIVersion = "api-version"
	flagDB         = "db"
	flagTimeout    = "timeout"
	flagStatusTTL  = "status-ttl"
	flagEphemeral  = "ephemeral"
	flagVerbose    = "verbose"
)

// Flags are the raw command-line values, bound by RegisterFlags.
type Flags struct {
	ConfigPath     string
	APIVersion     string
	DatabasePath   string
	RequestTimeout time.Duration
	StatusTTL      time.Duration
	Ephemeral      bool
	Verbose        bool
}

// RegisterFlags defines the configuration flags on fs. Flag defaults mirror
// LoadDefaults so that --help shows real values.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	var d Config
	d.LoadDefaults()

	f := &Flags{}
	fs.StringVarP(&f.ConfigPath, flagConfig, "c", "", "path to JSON config file")
	fs.StringVar(&f.APIVersion, flagAPIVersion, d.APIVersion, "REST API version")
	fs.StringVar(&f.DatabasePath, flagDB, d.DatabasePath, "settings database path")
	fs.DurationVar(&f.RequestTimeout, flagTimeout, d.RequestTimeout, "HTTP request timeout")
	fs.DurationVar(&f.StatusTTL, flagStatusTTL, d.StatusTTL, "how long success messages stay visible")
	fs.BoolVar(&f.Ephemeral, flagEphemeral, false, "keep saved settings in memory only")
	fs.BoolVarP(&f.Verbose, flagVerbose, "v", false, "enable debug logging")
	return f
}

// Load constructs a Config: defaults, then the JSON file named by
// --config (if any), then every flag the user actually set on fs.
func Load(fs *pflag.FlagSet, f *Flags) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if f.ConfigPath != "" {
		if err := parseJSON(cfg, f.ConfigPath); err != nil {
			return nil, err
		}
	}

	applyFlags(cfg, fs, f)
	return cfg, nil
}

func applyFlags(cfg *Config, fs *pflag.FlagSet, f *Flags) {
	if fs.Changed(flagAPIVersion) {
		cfg.APIVersion = f.APIVersion
	}
	if fs.Changed(flagDB) {
		cfg.DatabasePath = f.DatabasePath
	}
	if fs.Changed(flagTimeout) {
		cfg.RequestTimeout = f.RequestTimeout
	}
	if fs.Changed(flagStatusTTL) {
		cfg.StatusTTL = f.StatusTTL
	}
	if fs.Changed(flagEphemeral) {
		cfg.Ephemeral = f.Ephemeral
	}
	if fs.Changed(flagVerbose) {
		cfg.Verbose = f.Verbose
	}
}
