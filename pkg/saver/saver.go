// Package saver exports bar series to files in csv, json or parquet form.
package saver

import (
	"strings"

	"options-tracker/pkg/shared"
)

// Saver writes one bar series to a file.
type Saver interface {
	Save(bars []shared.Bar, path string) error
	Extension() string
}

// New returns the saver for a format, or nil when unsupported.
// Supported: csv, json, parquet.
func New(format string) Saver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "json":
		return JSONSaver{}
	case "parquet":
		return ParquetSaver{}
	default:
		return nil
	}
}
