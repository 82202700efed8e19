package payload

import (
	"encoding/json"
	"maps"
	"strconv"
	"strings"
)

// Map is an open set of named values. Values decoded from JSON arrive as
// float64 or json.Number, values built in-process as native Go types; the
// typed getters accept all of them.
type Map map[string]any

// Clone returns a shallow copy of m. A nil map clones to an empty map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	maps.Copy(out, m)
	return out
}

// Has reports whether key is present with a non-nil value.
func (m Map) Has(key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

// String returns the value at key as a string, or "" when absent.
func (m Map) String(key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int, int32, int64, float64:
		n, _ := m.Int64OK(key)
		return strconv.FormatInt(n, 10)
	default:
		return ""
	}
}

// Int64 returns the value at key as an int64, or 0 when absent or not numeric.
func (m Map) Int64(key string) int64 {
	n, _ := m.Int64OK(key)
	return n
}

// Int64OK is Int64 that also reports whether a numeric value was found.
func (m Map) Int64OK(key string) (int64, bool) {
	switch v := m[key].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint32:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		if f, err := v.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Bool returns the value at key as a bool. Missing or unparsable values
// yield def.
func (m Map) Bool(key string, def bool) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
