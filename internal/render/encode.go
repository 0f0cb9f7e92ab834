package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/dsbrowser/internal/models"
)

// Format selects how Encode writes a result list.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json, yaml and yml.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text, json or yaml)", s)
	}
}

// Encode writes sources to w in the given format.
func Encode(w io.Writer, format Format, sources []models.DataSource) error {
	if sources == nil {
		sources = []models.DataSource{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sources)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sources); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		_, err := fmt.Fprintln(w, FormatDataSources(sources))
		return err
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
