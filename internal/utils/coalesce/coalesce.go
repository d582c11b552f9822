package coalesce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Accessor tries to read one value; ok=false means "not present, try the next one".
type Accessor[S any, T any] func(src S) (T, bool)

// FirstDefined returns the result of the first accessor that yields a value.
func FirstDefined[S any, T any](src S, accessors ...Accessor[S, T]) (T, bool) {
	for _, get := range accessors {
		if v, ok := get(src); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// StringField reads key from a decoded JSON object as a non-empty string.
// Numbers are rendered without an exponent so large integer ids survive intact.
func StringField(key string) Accessor[map[string]any, string] {
	return func(m map[string]any) (string, bool) {
		raw, ok := m[key]
		if !ok || raw == nil {
			return "", false
		}
		s, ok := stringify(raw)
		if !ok || strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	}
}

// BoolField reads key from a decoded JSON object as a boolean, accepting "true"/"false" strings.
func BoolField(key string) Accessor[map[string]any, bool] {
	return func(m map[string]any) (bool, bool) {
		switch v := m[key].(type) {
		case bool:
			return v, true
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return false, false
			}
			return b, true
		}
		return false, false
	}
}

// StringFields is shorthand for a StringField accessor per key, in priority order.
func StringFields(keys ...string) []Accessor[map[string]any, string] {
	out := make([]Accessor[map[string]any, string], len(keys))
	for i, k := range keys {
		out[i] = StringField(k)
	}
	return out
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case fmt.Stringer:
		return t.String(), true
	}
	return "", false
}
