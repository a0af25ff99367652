package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/definition"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/form"
)

// LoadForm parses a single definition file and returns the form registered
// under id. Testing helpers fail the test on error to keep table tests short.
func LoadForm(t *testing.T, path, id string, options ...definition.Option) definition.Form {
	t.Helper()

	f, err := LoadFormFromPath(path, id, options...)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return f
}

// LoadFormFromPath is LoadForm without testing.T, for setup code.
func LoadFormFromPath(path, id string, options ...definition.Option) (definition.Form, error) {
	if path == "" {
		return definition.Form{}, errors.New("testsupport: definition path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return definition.Form{}, fmt.Errorf("testsupport: read definition: %w", err)
	}
	doc, err := definition.Parse(data, path, options...)
	if err != nil {
		return definition.Form{}, fmt.Errorf("testsupport: parse definition: %w", err)
	}
	f, ok := doc.Forms[id]
	if !ok {
		return definition.Form{}, fmt.Errorf("testsupport: form %q not found in %s", id, path)
	}
	return f, nil
}

// MustBuild builds fields with a default builder configured by options.
func MustBuild(t *testing.T, fields []field.Field, options ...form.Option) *form.Facade {
	t.Helper()

	b, err := form.NewBuilder(options...)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	facade, err := b.BuildFields(fields)
	if err != nil {
		t.Fatalf("build fields: %v", err)
	}
	return facade
}

// Snapshot is the golden-friendly view of a built form: its aggregate value
// and the errors of every invalid control keyed by path.
type Snapshot struct {
	Value  map[string]any      `json:"value"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// TakeSnapshot captures the value and error keys of facade. The value is
// round-tripped through JSON so it compares equal to a decoded golden.
func TakeSnapshot(t *testing.T, facade *form.Facade) Snapshot {
	t.Helper()

	raw, err := json.Marshal(facade.Value())
	if err != nil {
		t.Fatalf("marshal form value: %v", err)
	}
	snap := Snapshot{}
	if err := json.Unmarshal(raw, &snap.Value); err != nil {
		t.Fatalf("unmarshal form value: %v", err)
	}
	control.Walk(facade.Controls, func(path string, c control.Control) {
		keys := c.Errors().Keys()
		if len(keys) == 0 {
			return
		}
		if snap.Errors == nil {
			snap.Errors = make(map[string][]string)
		}
		snap.Errors[path] = keys
	})
	return snap
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareGolden decodes the JSON golden at path into a value of the same
// type as got and returns a diff (-want +got). The golden is rewritten first
// when UPDATE_GOLDENS is set.
func CompareGolden[T any](t *testing.T, path string, got T) string {
	t.Helper()

	WriteGolden(t, path, got)
	var want T
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("unmarshal golden %s: %v", path, err)
	}
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
