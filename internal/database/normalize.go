package database

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Normalize converts a raw driver value into one of the cell types a Table
// may hold.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int64, float64, string, bool:
		return x
	case time.Time:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return normalizeUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return normalizeUint(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case uuid.UUID:
		return x.String()
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	case driver.Valuer:
		inner, err := x.Value()
		if err != nil {
			return nil
		}
		if _, again := inner.(driver.Valuer); again {
			return fmt.Sprint(inner)
		}
		return Normalize(inner)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func normalizeUint(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

// NormalizeTyped is Normalize with a hint from the column's database type.
// Drivers that hand back decimals and integers as text (mssql decimals,
// MySQL text protocol) get numeric cells instead of strings.
func NormalizeTyped(v any, dbType string) any {
	n := Normalize(v)
	s, ok := n.(string)
	if !ok {
		return n
	}
	switch kindOfType(dbType) {
	case typeInt:
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return i
		}
	case typeFloat:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	case typeBool:
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return s
}

type typeKind int

const (
	typeOther typeKind = iota
	typeInt
	typeFloat
	typeBool
)

func kindOfType(dbType string) typeKind {
	switch strings.ToUpper(dbType) {
	case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT",
		"INT2", "INT4", "INT8", "UNSIGNED INT", "UNSIGNED BIGINT",
		"UNSIGNED SMALLINT", "UNSIGNED TINYINT", "YEAR":
		return typeInt
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY", "FLOAT", "REAL",
		"DOUBLE", "FLOAT4", "FLOAT8", "UNSIGNED DECIMAL":
		return typeFloat
	case "BIT", "BOOL", "BOOLEAN":
		return typeBool
	}
	return typeOther
}
