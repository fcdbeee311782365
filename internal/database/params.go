package database

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseParams builds Params from name=value pairs. A leading @ on the name
// is optional. Values are typed with ParseValue.
func ParseParams(pairs []string) (Params, error) {
	params := Params{}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), "@")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected name=value", p)
		}
		params[name] = ParseValue(strings.TrimSpace(value))
	}
	return params, nil
}

// ParseValue types a literal parameter value: integers become int64, other
// numbers float64, true/false bool. Single-quoted values stay strings with
// the quotes removed.
func ParseValue(s string) any {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
