package models

import "strings"

// Settings are the connection parameters that survive a restart.
// The token secret is intentionally not part of it.
type Settings struct {
	ServerURL string `json:"serverUrl" yaml:"serverUrl"`
	SiteName  string `json:"siteName" yaml:"siteName"`
	TokenName string `json:"tokenName" yaml:"tokenName"`
}

// Form is the state of the connection form: the saved settings plus the
// token secret, which lives only in memory.
type Form struct {
	Settings
	TokenSecret string
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f Form) Trimmed() Form {
	return Form{
		Settings: Settings{
			ServerURL: strings.TrimSpace(f.ServerURL),
			SiteName:  strings.TrimSpace(f.SiteName),
			TokenName: strings.TrimSpace(f.TokenName),
		},
		TokenSecret: strings.TrimSpace(f.TokenSecret),
	}
}
