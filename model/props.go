package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jacentio/arbor/internal/keys"
)

// Props is the open property map of an object: property name to primitive
// value (string, bool, number or nil). Keys that were never declared on the
// model are "dynamic" properties and are stored like any other, except that
// nil-valued and underscore-prefixed dynamic keys are skipped at save time.
type Props map[string]any

// storablePrimitive reports whether v belongs to the closed set of value
// types a record may hold.
func storablePrimitive(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// canonical returns the string form of a primitive used in index keys.
// Integer-valued numbers canonicalize identically whatever their Go type, so
// int64(5), float64(5) and the post-JSON float64 of a stored 5 all address
// the same index entry.
func canonical(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.FormatInt(int64(x), 10), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 64), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	}
	return "", fmt.Errorf("%w: %T", ErrInvalidValue, v)
}

// buildRecord produces the property map that save persists: declared
// properties first (instance value, else declared default), then dynamic
// properties filtered by the storability rules. The result is a full
// overwrite of the stored record; keys absent here disappear from the store.
func (m *Model) buildRecord(in Props) (Props, error) {
	rec := make(Props, len(m.props)+len(in))
	for name, desc := range m.props {
		v, ok := in[name]
		if !ok {
			rec[name] = desc.Default
			continue
		}
		if v != nil && !storablePrimitive(v) {
			return nil, fmt.Errorf("%w: %s.%s (%T)", ErrInvalidValue, m.name, name, v)
		}
		rec[name] = v
	}
	for name, v := range in {
		if _, declared := m.props[name]; declared {
			continue
		}
		if !keys.ValidPropertyName(name) {
			return nil, fmt.Errorf("%w: %s.%s", ErrInvalidProperty, m.name, name)
		}
		// reserved names and nil dynamics are not persisted
		if !keys.Storable(name) || v == nil {
			continue
		}
		if !storablePrimitive(v) {
			return nil, fmt.Errorf("%w: %s.%s (%T)", ErrInvalidValue, m.name, name, v)
		}
		rec[name] = v
	}
	return rec, nil
}

// uniqueValues returns the index claims a record makes: canonical values of
// declared unique properties that are non-nil and differ from their declared
// default. Defaulted unique properties make no claim, so two objects may sit
// at the default simultaneously and a lookup by the default reports not-found.
func (m *Model) uniqueValues(rec Props) (map[string]string, error) {
	out := make(map[string]string, len(m.uniqueNames))
	for _, name := range m.uniqueNames {
		v, ok := rec[name]
		if !ok || v == nil {
			continue
		}
		canon, err := canonical(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", m.name, name, err)
		}
		if d := m.props[name].Default; d != nil {
			dc, err := canonical(d)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", m.name, name, err)
			}
			if canon == dc {
				continue
			}
		}
		out[name] = canon
	}
	return out, nil
}

// applyDefaults overlays declared defaults onto a loaded record, covering
// records written before a property was declared.
func (m *Model) applyDefaults(rec Props) {
	for name, desc := range m.props {
		if _, ok := rec[name]; !ok {
			rec[name] = desc.Default
		}
	}
}

func encodeRecord(rec Props) (string, error) {
	b, err := json.Marshal(map[string]any(rec))
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(b), nil
}

func decodeRecord(text string) (Props, error) {
	var rec Props
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
