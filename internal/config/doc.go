// Package config loads runtime configuration for the dsbrowser CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / --config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	--api-version string   REST API version used in endpoint paths
//	--db string            path of the SQLite settings database
//	--timeout duration     per-request HTTP timeout
//	--status-ttl duration  how long success messages stay visible
//	--ephemeral            keep settings in memory only
//	-v, --verbose          debug logging
//
// # JSON schema
//
// Durations may be strings like "5s" or integer nanoseconds. Absent keys
// keep the value from the previous stage:
//
//	{
//	  "api_version": "3.19",
//	  "database_path": "/home/me/.config/dsbrowser/settings.db",
//	  "request_timeout": "30s",
//	  "status_ttl": "5s",
//	  "verbose": false
//	}
package config
