package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/isws/wqrun/internal/database"
)

// WriteJSON writes the table as an array of objects, one per row, with keys
// in column order. Timestamps use RFC 3339.
func WriteJSON(w io.Writer, t *database.Table) error {
	bw := bufio.NewWriter(w)

	keys := make([][]byte, len(t.Columns))
	for i, c := range t.Columns {
		k, err := json.Marshal(c.Name)
		if err != nil {
			return fmt.Errorf("encode column %q: %w", c.Name, err)
		}
		keys[i] = k
	}

	if len(t.Rows) == 0 {
		bw.WriteString("[]\n")
		return bw.Flush()
	}

	bw.WriteString("[\n")
	for ri, row := range t.Rows {
		if ri > 0 {
			bw.WriteString(",\n")
		}
		bw.WriteString("  {")
		for i, key := range keys {
			if i > 0 {
				bw.WriteString(", ")
			}
			bw.Write(key)
			bw.WriteString(": ")

			var v any
			if i < len(row) {
				v = row[i]
			}
			val, err := marshalCell(v)
			if err != nil {
				return fmt.Errorf("encode row %d column %q: %w", ri, t.Columns[i].Name, err)
			}
			bw.Write(val)
		}
		bw.WriteString("}")
	}
	bw.WriteString("\n]\n")

	return bw.Flush()
}

func marshalCell(v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return []byte("null"), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return []byte("null"), nil
		}
	case time.Time:
		return json.Marshal(x.Format(time.RFC3339Nano))
	}
	return json.Marshal(v)
}

// ReadJSON rebuilds a table from an array of objects. Columns follow the
// key order of the first object; keys first seen in later objects are
// appended. Numbers without a fraction become int64.
func ReadJSON(r io.Reader) (*database.Table, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	t := database.NewTable()
	index := make(map[string]int)

	for ri, obj := range raw {
		keys, err := objectKeys(obj)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", ri, err)
		}
		for _, k := range keys {
			if _, ok := index[k]; !ok {
				index[k] = len(t.Columns)
				t.Columns = append(t.Columns, database.Column{Name: k})
				for i := range t.Rows {
					t.Rows[i] = append(t.Rows[i], nil)
				}
			}
		}

		var values map[string]any
		dec := json.NewDecoder(bytes.NewReader(obj))
		dec.UseNumber()
		if err := dec.Decode(&values); err != nil {
			return nil, fmt.Errorf("row %d: %w", ri, err)
		}

		row := make([]any, len(t.Columns))
		for k, v := range values {
			row[index[k]] = jsonValue(v)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func jsonValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return ts
		}
		return x
	case bool:
		return x
	case nil:
		return nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return string(b)
	}
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(obj []byte) ([]string, error) {
	obj = bytes.TrimSpace(obj)
	if len(obj) < 2 || obj[0] != '{' {
		return nil, fmt.Errorf("expected object")
	}

	var keys []string
	depth := 0
	expectKey := false

	for i := 0; i < len(obj); i++ {
		switch c := obj[i]; c {
		case '{', '[':
			depth++
			if depth == 1 {
				expectKey = true
			}
		case '}', ']':
			depth--
		case ',':
			if depth == 1 {
				expectKey = true
			}
		case '"':
			end := stringEnd(obj, i)
			if end < 0 {
				return nil, fmt.Errorf("unterminated string")
			}
			if depth == 1 && expectKey {
				var k string
				if err := json.Unmarshal(obj[i:end+1], &k); err != nil {
					return nil, err
				}
				keys = append(keys, k)
				expectKey = false
			}
			i = end
		}
	}
	return keys, nil
}

// stringEnd returns the index of the closing quote of the string starting
// at start.
func stringEnd(b []byte, start int) int {
	for i := start + 1; i < len(b); i++ {
		switch b[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
