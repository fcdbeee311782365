package sqldb

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/isws/wqrun/internal/database"
)

// namedArgs turns params into sql.Named arguments in key order. SQL Server
// resolves @name placeholders itself.
func namedArgs(params database.Params) []any {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = sql.Named(k, params[k])
	}
	return args
}

// bindPositional rewrites @name placeholders to ? for drivers that only
// support positional parameters. Quoted strings, quoted identifiers,
// comments and @@system variables are left untouched.
func bindPositional(query string, params database.Params) (string, []any, error) {
	if len(params) == 0 {
		return query, nil, nil
	}

	var (
		b    strings.Builder
		args []any
	)
	b.Grow(len(query))

	for i := 0; i < len(query); {
		c := query[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := skipQuoted(query, i, c)
			b.WriteString(query[i:end])
			i = end
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				end = len(query) - i
			}
			b.WriteString(query[i : i+end])
			i += end
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				b.WriteString(query[i:])
				i = len(query)
				continue
			}
			b.WriteString(query[i : i+2+end+2])
			i += 2 + end + 2
		case c == '@' && i+1 < len(query) && query[i+1] == '@':
			j := i + 2
			for j < len(query) && isIdentByte(query[j]) {
				j++
			}
			b.WriteString(query[i:j])
			i = j
		case c == '@' && i+1 < len(query) && isIdentStart(query[i+1]):
			j := i + 1
			for j < len(query) && isIdentByte(query[j]) {
				j++
			}
			name := query[i+1 : j]
			v, ok := params[name]
			if !ok {
				return "", nil, fmt.Errorf("missing value for parameter @%s", name)
			}
			b.WriteByte('?')
			args = append(args, v)
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), args, nil
}

// skipQuoted returns the index just past the quoted run starting at i.
// Doubled quote characters are treated as escapes.
func skipQuoted(s string, i int, q byte) int {
	j := i + 1
	for j < len(s) {
		if s[j] == q {
			if j+1 < len(s) && s[j+1] == q {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return len(s)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
