package ui

import (
	"errors"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/dsbrowser/internal/models"
)

var (
	ErrRequiredField    = errors.New("please fill in all fields")
	ErrInvalidServerURL = errors.New("enter a valid http(s) server URL (e.g. https://your-site.online.tableau.com)")
)

// ValidationError reports form input rejected before any network call.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Err.Error()
	}
	return e.Err.Error() + " (" + strings.Join(e.Fields, ", ") + ")"
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks an already trimmed form: every field is required and the
// server URL must be an absolute http(s) URL with a host.
func Validate(f models.Form) error {
	var missing []string
	for _, field := range []struct {
		name, value string
	}{
		{"server URL", f.ServerURL},
		{"site name", f.SiteName},
		{"token name", f.TokenName},
		{"token secret", f.TokenSecret},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Err: ErrRequiredField}
	}

	u, err := url.Parse(f.ServerURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Fields: []string{"server URL"}, Err: ErrInvalidServerURL}
	}
	return nil
}
