package render

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-formbuilder/pkg/control"
)

// ApplyValues writes values onto the controls below root addressed by their
// dotted paths. Paths are applied in sorted order so parents are written
// before their children. Unknown paths are returned, not treated as errors.
func ApplyValues(root *control.Group, values map[string]any) (unknown []string, err error) {
	if root == nil || len(values) == 0 {
		return nil, nil
	}
	paths := make([]string, 0, len(values))
	for path := range values {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		c, ok := root.Get(path)
		if !ok {
			unknown = append(unknown, path)
			continue
		}
		if err := c.SetValue(values[path]); err != nil {
			return unknown, fmt.Errorf("render: value %q: %w", path, err)
		}
	}
	return unknown, nil
}
