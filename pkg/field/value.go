package field

import (
	"math"
	"reflect"
	"time"
)

// Truthy reports whether an initial value counts as present. nil, empty
// strings, numeric zero, NaN, false, the zero time and nil pointers, maps,
// slices or funcs are treated as absent.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int8:
		return v != 0
	case int16:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint8:
		return v != 0
	case uint16:
		return v != 0
	case uint32:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case float64:
		return v != 0 && !math.IsNaN(v)
	case time.Time:
		return !v.IsZero()
	case *time.Time:
		return v != nil && !v.IsZero()
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}

// Lookup reads key from a record-like initial value. It understands
// map[string]any, map[string]string and map[string]time.Time.
func Lookup(record any, key string) (any, bool) {
	switch m := record.(type) {
	case map[string]any:
		v, ok := m[key]
		return v, ok
	case map[string]string:
		v, ok := m[key]
		return v, ok
	case map[string]time.Time:
		v, ok := m[key]
		return v, ok
	default:
		return nil, false
	}
}

// Records converts a groupArray initial value into row records. Entries that
// are not records are skipped.
func Records(value any) []map[string]any {
	switch v := value.(type) {
	case nil:
		return nil
	case []map[string]any:
		out := make([]map[string]any, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, entry := range v {
			if record, ok := entry.(map[string]any); ok {
				out = append(out, record)
			}
		}
		return out
	default:
		return nil
	}
}

// ApplyRecords hands the nested records found in values to the groupArray
// descriptors of fields, matching by name, so their rows are materialised
// with the template. Layout containers are transparent and groups receive
// nested records key by key. Leaf values are left to the built controls.
// fields is modified in place; callers pass a clone.
func ApplyRecords(fields []Field, values map[string]any) {
	if len(values) == 0 {
		return
	}
	for i := range fields {
		f := &fields[i]
		if f.Kind.IsLayout() {
			ApplyRecords(f.Children, values)
			continue
		}
		value, ok := values[f.Name]
		if !ok || value == nil || f.Name == "" {
			continue
		}
		switch f.Kind {
		case KindGroup:
			if record, isRecord := value.(map[string]any); isRecord {
				ApplyRecords(f.Children, record)
			}
		case KindGroupArray:
			f.Initial = value
		}
	}
}
