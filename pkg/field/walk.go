package field

// RowWildcard stands in for the row index in paths below a groupArray.
const RowWildcard = "*"

// Walk visits descriptors depth-first in declaration order. path is the dotted
// control path of the visited node; layout nodes share their parent's path
// and groupArray templates are reported under "<array>.*". Returning false
// from fn skips the node's children.
func Walk(fields []Field, fn func(path string, f *Field) bool) {
	if fn == nil {
		return
	}
	walk("", fields, fn)
}

func walk(prefix string, fields []Field, fn func(string, *Field) bool) {
	for i := range fields {
		f := &fields[i]
		path := prefix
		if !f.Kind.IsLayout() && f.Name != "" {
			path = JoinPath(prefix, f.Name)
		}
		if !fn(path, f) {
			continue
		}
		switch f.Kind {
		case KindGroupArray:
			walk(JoinPath(path, RowWildcard), f.Children, fn)
		default:
			walk(path, f.Children, fn)
		}
	}
}

// JoinPath joins dotted path segments, skipping empty ones.
func JoinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
