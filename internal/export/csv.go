package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/isws/wqrun/internal/database"
)

// WriteCSV writes a header row with the column names followed by one record
// per row.
func WriteCSV(w io.Writer, t *database.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = FormatCell(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadOptions controls how CSV cells are turned back into values.
type ReadOptions struct {
	// InferTypes parses integers, floats, booleans, and timestamps. Without
	// it every non-empty cell is a string.
	InferTypes bool
}

// ReadCSV rebuilds a table from CSV written by WriteCSV. The first record is
// the header. Empty cells become nil. Value kinds other than string only
// survive the round trip when InferTypes is set.
func ReadCSV(r io.Reader, opts ReadOptions) (*database.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := database.NewTable(append([]string(nil), header...)...)
	if len(header) > 0 {
		t.Columns[0].Name = strings.TrimPrefix(header[0], "\ufeff")
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", t.RowCount()+1, err)
		}

		row := make([]any, len(t.Columns))
		for i := range row {
			if i < len(record) {
				row[i] = parseCell(record[i], opts.InferTypes)
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

var readTimeLayouts = []string{TimeLayout, time.RFC3339Nano}

func parseCell(s string, infer bool) any {
	if s == "" {
		return nil
	}
	if !infer {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	for _, layout := range readTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return s
}
