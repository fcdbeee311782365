package snapshot

import (
	"fmt"
	"time"

	"github.com/isws/wqrun/internal/database"
	"github.com/isws/wqrun/internal/export"
)

// Kind is the value kind of a stored column.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// column is one stored column. Only the vector matching Kind is populated
// and it has one entry per row; null rows hold the zero value.
type column struct {
	Name     string
	DataType string
	Kind     Kind
	Nulls    []byte

	Ints    []int64
	Floats  []float64
	Strings []string
	Bools   []bool
	Times   []time.Time
}

func kindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case bool:
		return KindBool
	case time.Time:
		return KindTime
	default:
		return KindString
	}
}

// columnKind picks the kind for column ci. Integers mixed with floats are
// widened to float; any other mix is stored as strings.
func columnKind(t *database.Table, ci int) Kind {
	kind := KindNull
	for _, row := range t.Rows {
		k := kindOf(cell(row, ci))
		switch {
		case k == KindNull || k == kind:
		case kind == KindNull:
			kind = k
		case (kind == KindInt && k == KindFloat) || (kind == KindFloat && k == KindInt):
			kind = KindFloat
		default:
			return KindString
		}
	}
	return kind
}

func encodeColumn(t *database.Table, ci int) column {
	n := len(t.Rows)
	c := column{
		Name:     t.Columns[ci].Name,
		DataType: t.Columns[ci].DataType,
		Kind:     columnKind(t, ci),
		Nulls:    make([]byte, (n+7)/8),
	}

	switch c.Kind {
	case KindInt:
		c.Ints = make([]int64, n)
	case KindFloat:
		c.Floats = make([]float64, n)
	case KindString:
		c.Strings = make([]string, n)
	case KindBool:
		c.Bools = make([]bool, n)
	case KindTime:
		c.Times = make([]time.Time, n)
	}

	for ri, row := range t.Rows {
		v := cell(row, ci)
		if v == nil {
			c.Nulls[ri/8] |= 1 << (ri % 8)
			continue
		}
		switch c.Kind {
		case KindInt:
			c.Ints[ri] = v.(int64)
		case KindFloat:
			if i, ok := v.(int64); ok {
				c.Floats[ri] = float64(i)
			} else {
				c.Floats[ri] = v.(float64)
			}
		case KindString:
			if s, ok := v.(string); ok {
				c.Strings[ri] = s
			} else {
				c.Strings[ri] = export.FormatCell(v)
			}
		case KindBool:
			c.Bools[ri] = v.(bool)
		case KindTime:
			c.Times[ri] = v.(time.Time)
		}
	}
	return c
}

func (c column) isNull(ri int) bool {
	return c.Nulls[ri/8]&(1<<(ri%8)) != 0
}

func (c column) decodeInto(rows [][]any, ci int) error {
	n := len(rows)
	if len(c.Nulls) != (n+7)/8 {
		return fmt.Errorf("null bitmap covers %d rows, want %d", len(c.Nulls)*8, n)
	}

	var size int
	switch c.Kind {
	case KindNull:
		return nil
	case KindInt:
		size = len(c.Ints)
	case KindFloat:
		size = len(c.Floats)
	case KindString:
		size = len(c.Strings)
	case KindBool:
		size = len(c.Bools)
	case KindTime:
		size = len(c.Times)
	default:
		return fmt.Errorf("unknown kind %s", c.Kind)
	}
	if size != n {
		return fmt.Errorf("%s vector has %d values, want %d", c.Kind, size, n)
	}

	for ri := range rows {
		if c.isNull(ri) {
			continue
		}
		switch c.Kind {
		case KindInt:
			rows[ri][ci] = c.Ints[ri]
		case KindFloat:
			rows[ri][ci] = c.Floats[ri]
		case KindString:
			rows[ri][ci] = c.Strings[ri]
		case KindBool:
			rows[ri][ci] = c.Bools[ri]
		case KindTime:
			rows[ri][ci] = c.Times[ri]
		}
	}
	return nil
}

func cell(row []any, ci int) any {
	if ci < len(row) {
		return row[ci]
	}
	return nil
}
