package form_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formbuilder/pkg/config"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/form"
	"github.com/goliatone/go-formbuilder/pkg/repeat"
)

func TestNewBuilder_Defaults(t *testing.T) {
	b, err := form.NewBuilder(form.WithIDGenerator(func() string { return "fixed" }))
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	facade, err := b.BuildFields([]field.Field{field.Email("email", "a@example.com")})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if facade.ID != "fixed" {
		t.Fatalf("id generator not applied: %q", facade.ID)
	}
	if facade.RootCSSClass != "container" {
		t.Fatalf("bare field lists should be wrapped in the container class, got %q", facade.RootCSSClass)
	}
	if got := facade.Field.Children[0].Label; got != "Email" {
		t.Fatalf("default label mismatch: %q", got)
	}
}

func TestNewBuilder_ConfigAndStrictNames(t *testing.T) {
	cfg := config.Default()
	cfg.ColumnsPerRow = 24
	cfg.ColumnClassTemplate = "col-{width}"
	b, err := form.NewBuilder(form.WithConfig(cfg), form.WithStrictNames())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}

	facade, err := b.Build(field.Row([]field.Field{field.Text("a", ""), field.Text("b", ""), field.Text("c", "")}))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var classes []string
	for _, child := range facade.Field.Children {
		classes = append(classes, child.CSSClass)
	}
	if diff := cmp.Diff([]string{"col-8", "col-8", "col-8"}, classes); diff != "" {
		t.Fatalf("classes mismatch (-want +got):\n%s", diff)
	}

	_, err = b.BuildFields([]field.Field{field.Text("a", ""), field.Text("a", "")})
	var buildErr *form.BuildError
	if !errors.Is(err, form.ErrDuplicateName) || !errors.As(err, &buildErr) || buildErr.Path != "a" {
		t.Fatalf("expected duplicate name error at path a, got %v", err)
	}
}

func TestNewBuilder_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ColumnClassTemplate = "static"
	if _, err := form.NewBuilder(form.WithConfig(cfg)); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected config.ErrInvalid, got %v", err)
	}
}

func TestRowEvents_DisableComputedControl(t *testing.T) {
	b, err := form.NewBuilder(form.WithEagerRows(false))
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	facade, err := b.BuildFields([]field.Field{
		field.GroupArray("lines", []field.Field{
			field.Text("description", ""),
			field.Number("total", 0),
		}, []map[string]any{{"description": "seeded"}}),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	facade.Events.OnAdded(func(evt repeat.Event) {
		row := evt.Row.(*form.Facade)
		if total, ok := row.Get("total"); ok {
			total.Disable()
		}
	})
	if err := facade.SeedRows(true); err != nil {
		t.Fatalf("seed rows: %v", err)
	}
	lines, _ := facade.Array("lines")
	if _, err := lines.AddRow(map[string]any{"description": "added"}, true); err != nil {
		t.Fatalf("add row: %v", err)
	}

	want := []any{
		map[string]any{"description": "seeded"},
		map[string]any{"description": "added"},
	}
	if diff := cmp.Diff(want, facade.Value()["lines"]); diff != "" {
		t.Fatalf("disabled controls should drop out of the value (-want +got):\n%s", diff)
	}
}

func TestWithLogger_ReportsStaleRowRemoval(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	b, err := form.NewBuilder(form.WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	facade, err := b.BuildFields([]field.Field{field.GroupArray("items", []field.Field{field.Text("sku", "")}, nil)})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	items, _ := facade.Array("items")
	if items.RemoveRow(3) {
		t.Fatalf("expected stale removal to be ignored")
	}
	if logs.FilterMessage("row index out of range").Len() != 1 {
		t.Fatalf("expected a warning for the stale removal, got %v", logs.All())
	}
	if logs.FilterMessage("form built").Len() != 1 {
		t.Fatalf("expected a debug entry for the built form")
	}
}

func TestDefaultLabeler(t *testing.T) {
	if got := form.DefaultLabeler("dueDate"); got != "Due Date" {
		t.Fatalf("label mismatch: %q", got)
	}
}
