package common

import (
	"fmt"
	"strings"
)

// ParseStringOrArray accepts a parameter that is either a string or an array
// of strings. A string may hold several comma-separated values. Blank
// entries are dropped; an absent or empty parameter is an error.
func ParseStringOrArray(param any, paramName string) ([]string, error) {
	values, err := OptionalStringList(param, paramName)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s is required", paramName)
	}
	return values, nil
}

// OptionalStringList is ParseStringOrArray for optional parameters: nil and
// empty input yield an empty list.
func OptionalStringList(param any, paramName string) ([]string, error) {
	var raw []string
	switch v := param.(type) {
	case nil:
		return nil, nil
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// ClampInt bounds n to [lo, hi], substituting def when n is not positive.
func ClampInt(n, def, lo, hi int) int {
	if n <= 0 {
		n = def
	}
	return max(lo, min(n, hi))
}
