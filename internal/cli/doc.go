// Package cli provides the dsbrowser command line.
//
// Running dsbrowser without a subcommand opens the interactive popup: a REPL
// with a connection form (server URL, site, token name, token secret), a
// connect action that signs in and lists the site's data sources, and
// save/clear actions for the non-secret settings. The one-shot subcommands
// connect and settings cover the same actions for scripts.
//
// Key features:
//   - Personal Access Token sign-in with best-effort sign-out on exit
//   - Data source listing rendered with lipgloss, or encoded as JSON/YAML
//   - Saved settings in a local SQLite database (never the token secret)
package cli
