package export

import (
	"path/filepath"
	"strings"

	"github.com/nishad/ffqf/internal/errors"
)

// Format is an output format.
type Format string

const (
	JSON   Format = "JSON"
	TSV    Format = "TSV"
	CSV    Format = "CSV"
	TABLE  Format = "TABLE"
	SQLITE Format = "SQLITE"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{JSON, TSV, CSV, TABLE, SQLITE}
}

var extensions = map[string]Format{
	".json":   JSON,
	".tsv":    TSV,
	".csv":    CSV,
	".txt":    TABLE,
	".sqlite": SQLITE,
	".db":     SQLITE,
}

// ParseFormat returns the format named s, ignoring case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Errorf("export.ParseFormat", errors.KindConfig,
		"unknown output format %q", s)
}

// FormatFor infers the format from the extension of path, ignoring a
// trailing .gz. Unknown extensions and an empty path mean JSON.
func FormatFor(path string) Format {
	path = strings.TrimSuffix(strings.ToLower(path), ".gz")
	if f, ok := extensions[filepath.Ext(path)]; ok {
		return f
	}
	return JSON
}
