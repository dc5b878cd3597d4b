package settings

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
)

// Values are raw configured setting values, as decoded from YAML or parsed
// from the command line.
type Values map[string]any

// Merge returns a copy of v with overrides applied on top.
func (v Values) Merge(overrides Values) Values {
	merged := make(Values, len(v)+len(overrides))
	for k, val := range v {
		merged[k] = val
	}
	for k, val := range overrides {
		merged[k] = val
	}
	return merged
}

// Lookup is the read side scripts use to fetch their settings.
type Lookup interface {
	// Value returns the resolved value of a declared setting.
	Value(key string) (any, bool)
	// Bool returns a bool setting, false when undeclared or not a bool.
	Bool(key string) bool
	// Float returns a numeric setting, 0 when undeclared or not numeric.
	Float(key string) float64
	// Enabled reports whether the setting's enabled gate is on.
	Enabled(key string) bool
}

// Store is a schema with every setting resolved to a typed value.
type Store struct {
	schema Schema
	values map[string]any
}

var _ Lookup = (*Store)(nil)

// Resolve applies defaults and coerces configured values to their declared
// types. Unknown keys and values that cannot be coerced are rejected.
func (s Schema) Resolve(values Values) (*Store, error) {
	resolved := make(map[string]any, len(s.Definitions))
	for _, def := range s.Definitions {
		v, err := coerce(def.Type, def.Default)
		if err != nil {
			return nil, perrors.InvalidSettingValue(def.Key, def.Default, err)
		}
		resolved[def.Key] = v
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		def, ok := s.Lookup(key)
		if !ok {
			return nil, perrors.UnknownSetting(s.Key, key)
		}
		v, err := coerce(def.Type, values[key])
		if err != nil {
			return nil, perrors.InvalidSettingValue(key, values[key], err)
		}
		resolved[key] = v
	}

	return &Store{schema: s, values: resolved}, nil
}

// Defaults resolves the schema with no configured values.
func (s Schema) Defaults() *Store {
	store, err := s.Resolve(nil)
	if err != nil {
		// Defaults are checked by Schema.Validate at registration.
		panic(fmt.Sprintf("settings: invalid defaults in %s: %v", s.Key, err))
	}
	return store
}

// Schema returns the declaration the store was resolved against.
func (st *Store) Schema() Schema {
	return st.schema
}

// Value implements Lookup.
func (st *Store) Value(key string) (any, bool) {
	v, ok := st.values[key]
	return v, ok
}

// Bool implements Lookup.
func (st *Store) Bool(key string) bool {
	b, _ := st.values[key].(bool)
	return b
}

// Float implements Lookup.
func (st *Store) Float(key string) float64 {
	switch v := st.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Enabled implements Lookup.
func (st *Store) Enabled(key string) bool {
	def, ok := st.schema.Lookup(key)
	if !ok {
		return false
	}
	if def.Enabled == "" {
		return true
	}
	return st.Bool(def.Enabled)
}

// Snapshot returns a copy of the resolved values.
func (st *Store) Snapshot() Values {
	out := make(Values, len(st.values))
	for k, v := range st.values {
		out[k] = v
	}
	return out
}

// coerce converts a raw value to the Go type of t: bool, float64, int or
// string.
func coerce(t Type, raw any) (any, error) {
	switch t {
	case TypeBool:
		return coerceBool(raw)
	case TypeFloat:
		return coerceFloat(raw)
	case TypeInt:
		f, err := coerceFloat(raw)
		if err != nil {
			return nil, err
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("%v is not an integer", raw)
		}
		return int(f), nil
	case TypeString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("expected string, got %T", raw)
	default:
		return nil, fmt.Errorf("unsupported setting type %q", t)
	}
}

func coerceBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "on":
			return true, nil
		case "no", "off":
			return false, nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("expected bool, got %q", v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("expected bool, got %T", raw)
	}
}

func coerceFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}
