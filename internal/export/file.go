package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/isws/wqrun/internal/database"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatFor returns the format implied by the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

// WriteFile writes t to path in the format implied by its extension,
// creating parent directories as needed.
func WriteFile(path string, t *database.Table) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}

	switch format {
	case FormatJSON:
		err = WriteJSON(f, t)
	default:
		err = WriteCSV(f, t)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a table exported by WriteFile.
func ReadFile(path string, opts ReadOptions) (*database.Table, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	if format == FormatJSON {
		return ReadJSON(f)
	}
	return ReadCSV(f, opts)
}

// FileName builds an export file name from a free-form title and a
// timestamp, e.g. "station-403609_20240102_150405.csv".
func FileName(title string, format Format, at time.Time) string {
	base := slug.Make(title)
	if base == "" {
		base = "wqrun-export"
	}
	return fmt.Sprintf("%s_%s.%s", base, at.Format("20060102_150405"), format)
}
