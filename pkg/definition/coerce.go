package definition

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/field"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// coerce converts a decoded initial value into the shape the builder expects
// for f: dates become time.Time, numbers float64, checkboxes bool, and
// records inside groups, ranges and row lists are converted recursively.
func coerce(f field.Field, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch f.Kind {
	case field.KindDate:
		return parseDate(value)
	case field.KindNumber:
		return parseNumber(value)
	case field.KindCheckbox:
		return field.Truthy(value), nil
	case field.KindDateRange:
		record, ok := toRecord(value)
		if !ok {
			return nil, fmt.Errorf("daterange expects a record, got %T", value)
		}
		out := make(map[string]any, len(record))
		for key, raw := range record {
			parsed, err := parseDate(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = parsed
		}
		return out, nil
	case field.KindGroup:
		record, ok := toRecord(value)
		if !ok {
			return nil, fmt.Errorf("group expects a record, got %T", value)
		}
		return coerceRecord(f.Children, record)
	case field.KindGroupArray:
		var list []any
		switch v := value.(type) {
		case []any:
			list = v
		case []map[string]any:
			for _, record := range v {
				list = append(list, record)
			}
		default:
			return nil, fmt.Errorf("groupArray expects a list of records, got %T", value)
		}
		rows := make([]map[string]any, 0, len(list))
		for idx, entry := range list {
			record, ok := toRecord(entry)
			if !ok {
				return nil, fmt.Errorf("row %d: expected a record, got %T", idx, entry)
			}
			row, err := coerceRecord(f.Children, record)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", idx, err)
			}
			rows = append(rows, row)
		}
		return rows, nil
	default:
		return value, nil
	}
}

// coerceRecord converts the entries of record that match a named descriptor
// in fields (looking through layout containers). Other entries are kept as
// decoded.
func coerceRecord(fields []field.Field, record map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(record))
	for key, value := range record {
		out[key] = value
	}
	var firstErr error
	field.Walk(fields, func(_ string, f *field.Field) bool {
		if firstErr != nil {
			return false
		}
		if f.Kind.IsLayout() {
			return true
		}
		if value, ok := record[f.Name]; ok {
			converted, err := coerce(*f, value)
			if err != nil {
				firstErr = fmt.Errorf("%s: %w", f.Name, err)
				return false
			}
			out[f.Name] = converted
		}
		return false
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func parseDate(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed, nil
			}
		}
		return nil, fmt.Errorf("invalid date %q", v)
	default:
		return nil, fmt.Errorf("invalid date value %T", value)
	}
}

func parseNumber(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("invalid number value %T", value)
	}
}

func toRecord(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[fmt.Sprint(key)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
