package field

import "github.com/goliatone/go-formbuilder/pkg/control"

// Clone deep-copies a descriptor so that no children, metadata, options or
// record-like initial values are shared with the original. Validators,
// component factories and option sources are shared by reference.
func Clone(f Field) Field {
	out := f
	out.Initial = cloneValue(f.Initial)
	out.Validators = cloneValidators(f.Validators)
	out.Metadata = cloneStringMap(f.Metadata)
	out.Options = cloneOptions(f.Options)
	out.Children = CloneAll(f.Children)
	return out
}

// CloneAll deep-copies a descriptor list.
func CloneAll(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i := range fields {
		out[i] = Clone(fields[i])
	}
	return out
}

func cloneOptions(opts KindOptions) KindOptions {
	switch o := opts.(type) {
	case nil:
		return nil
	case *SelectOptions:
		if o == nil {
			return o
		}
		cp := *o
		if o.Options != nil {
			cp.Options = make([]SelectOption, len(o.Options))
			for i, opt := range o.Options {
				cp.Options[i] = SelectOption{Label: opt.Label, Value: cloneValue(opt.Value)}
			}
		}
		return &cp
	case *DateRangeOptions:
		if o == nil {
			return o
		}
		cp := *o
		cp.BeginValidators = cloneValidators(o.BeginValidators)
		cp.EndValidators = cloneValidators(o.EndValidators)
		return &cp
	case *CustomOptions:
		if o == nil {
			return o
		}
		cp := *o
		cp.Context = cloneRecord(o.Context)
		return &cp
	case *TemplateOptions:
		if o == nil {
			return o
		}
		cp := *o
		cp.Context = cloneRecord(o.Context)
		return &cp
	case *GroupArrayOptions:
		if o == nil {
			return o
		}
		cp := *o
		cp.Context = cloneRecord(o.Context)
		cp.RowValidators = cloneValidators(o.RowValidators)
		return &cp
	default:
		return opts
	}
}

func cloneValidators(in []control.Validator) []control.Validator {
	if in == nil {
		return nil
	}
	return append([]control.Validator(nil), in...)
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func cloneRecord(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneRecord(v)
	case map[string]string:
		return cloneStringMap(v)
	case []any:
		if v == nil {
			return v
		}
		out := make([]any, len(v))
		for i := range v {
			out[i] = cloneValue(v[i])
		}
		return out
	case []map[string]any:
		if v == nil {
			return v
		}
		out := make([]map[string]any, len(v))
		for i := range v {
			out[i] = cloneRecord(v[i])
		}
		return out
	case []string:
		if v == nil {
			return v
		}
		return append([]string(nil), v...)
	default:
		return value
	}
}
