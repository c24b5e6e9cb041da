package config

import "strconv"

// Params is a loosely typed option bag for settings that have no field in
// Train, typically forwarded from a JSON file.
type Params map[string]any

// Get returns the value for key, or def when it is missing.
func (p Params) Get(key string, def any) any {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func (p Params) Set(key string, v any) { p[key] = v }

func (p Params) Delete(key string) { delete(p, key) }

func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Bool accepts JSON booleans and the strings understood by Str2Bool.
func (p Params) Bool(key string, def bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		return Str2Bool(v)
	}
	return def
}
