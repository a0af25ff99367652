package builder

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/config"
	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/repeat"
)

func newBuilder(t *testing.T, opts Options) *Builder {
	t.Helper()
	counter := 0
	if opts.IDGenerator == nil {
		opts.IDGenerator = func() string {
			counter++
			return "form-" + strconv.Itoa(counter)
		}
	}
	b, err := New(opts)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	return b
}

func leafAt(t *testing.T, facade *Facade, path string) *control.Leaf {
	t.Helper()
	c, ok := facade.Get(path)
	if !ok {
		t.Fatalf("control %q not found", path)
	}
	leaf, ok := c.(*control.Leaf)
	if !ok {
		t.Fatalf("control %q is %T, want leaf", path, c)
	}
	return leaf
}

func required(c control.Control) control.Errors {
	if !field.Truthy(c.Value()) {
		return control.Errors{"required": true}
	}
	return nil
}

func TestBuild_RowScenario(t *testing.T) {
	b := newBuilder(t, Options{})
	root := field.Div("container", field.Row([]field.Field{
		field.Text("first", ""),
		field.Text("last", ""),
	}))

	facade, err := b.Build(root)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := map[string]any{"first": "", "last": ""}
	if diff := cmp.Diff(want, facade.Value()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	row := facade.Field.Children[0]
	var classes []string
	for _, child := range row.Children {
		classes = append(classes, child.CSSClass)
	}
	if diff := cmp.Diff([]string{"col-sm-6", "col-sm-6"}, classes); diff != "" {
		t.Fatalf("column classes mismatch (-want +got):\n%s", diff)
	}
	if facade.RootCSSClass != "container" {
		t.Fatalf("root class mismatch: %q", facade.RootCSSClass)
	}
	if root.Children[0].Children[0].CSSClass != "" {
		t.Fatalf("caller descriptor was annotated in place")
	}
}

func TestBuild_LeafSeedRules(t *testing.T) {
	b := newBuilder(t, Options{})
	facade, err := b.BuildFields([]field.Field{
		field.Text("x", "hello"),
		field.Text("y", ""),
		field.Checkbox("ok", false),
		{Kind: field.KindCheckbox, Name: "on", Initial: "yes"},
		field.Number("n", 0),
		field.Number("m", 4),
		field.Date("when", time.Time{}),
		field.Select("choice", []field.SelectOption{{Label: "A", Value: "a"}}),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	x := leafAt(t, facade, "x")
	if x.Value() != "hello" || x.Nullable() {
		t.Fatalf("text with initial: value=%v nullable=%v", x.Value(), x.Nullable())
	}
	if y := leafAt(t, facade, "y"); y.Value() != "" || !y.Nullable() {
		t.Fatalf("text without initial: value=%#v nullable=%v", y.Value(), y.Nullable())
	}
	if ok := leafAt(t, facade, "ok"); ok.Value() != false || ok.Type() != control.TypeBool {
		t.Fatalf("checkbox without initial: value=%#v type=%s", ok.Value(), ok.Type())
	}
	if on := leafAt(t, facade, "on"); on.Value() != true || on.Nullable() {
		t.Fatalf("checkbox with truthy initial: value=%#v nullable=%v", on.Value(), on.Nullable())
	}
	n := leafAt(t, facade, "n")
	if n.Value() != nil || n.Type() != control.TypeNumber {
		t.Fatalf("number without initial: value=%#v type=%s", n.Value(), n.Type())
	}
	if err := n.SetValue("four"); !errors.Is(err, control.ErrTypeMismatch) {
		t.Fatalf("expected numeric control to reject strings, got %v", err)
	}
	if m := leafAt(t, facade, "m"); m.Value() != 4.0 || m.Nullable() {
		t.Fatalf("number with initial: value=%#v nullable=%v", m.Value(), m.Nullable())
	}
	if when := leafAt(t, facade, "when"); when.Value() != nil || when.Type() != control.TypeDate {
		t.Fatalf("date without initial: value=%#v type=%s", when.Value(), when.Type())
	}
	if choice := leafAt(t, facade, "choice"); choice.Value() != nil {
		t.Fatalf("select without initial: value=%#v", choice.Value())
	}
}

func TestBuild_DateRange(t *testing.T) {
	b := newBuilder(t, Options{})
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	opts := field.DateRangeOptions{BeginName: "from", EndName: "to"}

	facade, err := b.BuildFields([]field.Field{
		field.DateRange("period", opts, map[string]any{"from": d1, "to": d2}),
		field.DateRange("empty", opts, nil),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	period, ok := facade.Get("period")
	if !ok {
		t.Fatalf("period group missing")
	}
	group, ok := period.(*control.Group)
	if !ok || group.Len() != 2 {
		t.Fatalf("expected two-leaf group, got %T", period)
	}
	if from := leafAt(t, facade, "period.from"); from.Value() != d1 || from.Nullable() {
		t.Fatalf("from side: value=%v nullable=%v", from.Value(), from.Nullable())
	}
	if to := leafAt(t, facade, "period.to"); to.Value() != d2 || to.Nullable() {
		t.Fatalf("to side: value=%v nullable=%v", to.Value(), to.Nullable())
	}
	for _, path := range []string{"empty.from", "empty.to"} {
		if side := leafAt(t, facade, path); side.Value() != nil || !side.Nullable() {
			t.Fatalf("%s: value=%v nullable=%v", path, side.Value(), side.Nullable())
		}
	}

	labels := facade.Field.Children[0].DateRangeOpts()
	if labels.BeginLabel != "Start" || labels.EndLabel != "End" {
		t.Fatalf("default range labels not applied: %+v", labels)
	}
}

func TestBuild_DateRangeSideValidators(t *testing.T) {
	b := newBuilder(t, Options{})
	opts := field.DateRangeOptions{BeginName: "from", EndName: "to", EndValidators: []control.Validator{required}}
	facade, err := b.BuildFields([]field.Field{field.DateRange("period", opts, nil)})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !leafAt(t, facade, "period.from").Valid() {
		t.Fatalf("begin side should carry no validators")
	}
	if leafAt(t, facade, "period.to").Errors().Has("required") == false {
		t.Fatalf("end side validator not attached")
	}
}

func TestBuild_GroupNesting(t *testing.T) {
	b := newBuilder(t, Options{})
	groupRule := func(c control.Control) control.Errors {
		if values, _ := c.Value().(map[string]any); values["a"] == "" {
			return control.Errors{"incomplete": true}
		}
		return nil
	}
	facade, err := b.BuildFields([]field.Field{
		field.Group("g", []field.Field{field.Text("a", "")}, field.WithValidators(groupRule)),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	leaf := leafAt(t, facade, "g.a")
	if len(leaf.Errors()) != 0 {
		t.Fatalf("group validator leaked onto leaf: %v", leaf.Errors())
	}
	g, _ := facade.Get("g")
	if !g.Errors().Has("incomplete") {
		t.Fatalf("group validator not applied at group level")
	}
	if err := leaf.SetValue("filled"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if !g.Valid() {
		t.Fatalf("group should revalidate after child change: %v", g.Errors())
	}
}

func TestBuild_Errors(t *testing.T) {
	b := newBuilder(t, Options{})
	cases := map[string]struct {
		field field.Field
		want  error
	}{
		"unknown kind":          {field: field.Field{Kind: "slider", Name: "s"}, want: ErrUnsupportedKind},
		"missing name":          {field: field.Field{Kind: field.KindText}, want: ErrConfiguration},
		"daterange no options":  {field: field.Field{Kind: field.KindDateRange, Name: "r"}, want: ErrConfiguration},
		"daterange no end name": {field: field.DateRange("r", field.DateRangeOptions{BeginName: "from"}, nil), want: ErrConfiguration},
		"wrong options":         {field: field.Field{Kind: field.KindText, Name: "t", Options: &field.SelectOptions{}}, want: ErrConfiguration},
		"empty template":        {field: field.GroupArray("items", nil, nil), want: ErrConfiguration},
		"nested unknown kind": {
			field: field.Group("g", []field.Field{field.Text("ok", ""), {Kind: "bogus", Name: "b"}}),
			want:  ErrUnsupportedKind,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			facade, err := b.BuildFields([]field.Field{tc.field})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if facade != nil {
				t.Fatalf("expected no facade on error")
			}
			var buildErr *BuildError
			if !errors.As(err, &buildErr) {
				t.Fatalf("expected *BuildError, got %T", err)
			}
		})
	}
}

func TestBuild_DuplicateNames(t *testing.T) {
	fields := []field.Field{field.Text("a", "first"), field.Number("a", 2)}

	lenient := newBuilder(t, Options{})
	facade, err := lenient.BuildFields(fields)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": 2.0}, facade.Value()); diff != "" {
		t.Fatalf("last write should win (-want +got):\n%s", diff)
	}

	strict := newBuilder(t, Options{StrictNames: true})
	if _, err := strict.BuildFields(fields); !errors.Is(err, ErrDuplicateName) || !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrDuplicateName wrapping ErrConfiguration, got %v", err)
	}
}

func TestBuild_GroupArraySeedsRows(t *testing.T) {
	b := newBuilder(t, Options{})
	items := field.GroupArray("items",
		[]field.Field{field.Row([]field.Field{field.Text("name", ""), field.Number("qty", 0)})},
		[]map[string]any{{"name": "A", "qty": 1}, {"name": "B"}},
	)

	facade, err := b.BuildFields([]field.Field{items})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	rows, ok := facade.Array("items")
	if !ok {
		t.Fatalf("items row set missing")
	}
	if rows.Len() != 2 || rows.Array().Len() != 2 {
		t.Fatalf("expected 2 aligned rows, got %d/%d", rows.Len(), rows.Array().Len())
	}
	want := []any{
		map[string]any{"name": "A", "qty": 1},
		map[string]any{"name": "B", "qty": nil},
	}
	if diff := cmp.Diff(want, facade.Value()["items"]); diff != "" {
		t.Fatalf("seeded rows mismatch (-want +got):\n%s", diff)
	}
	row, _ := rows.Row(0)
	if got := row.Field.Children[0].Children[0].CSSClass; got != "col-sm-6" {
		t.Fatalf("row template not annotated: %q", got)
	}
	if row.ID == "" || row.Events != facade.Events {
		t.Fatalf("row facade should carry an id and share the form bus")
	}
}

func TestBuild_RowsAddRemoveThroughFacade(t *testing.T) {
	b := newBuilder(t, Options{})
	facade, err := b.BuildFields([]field.Field{
		field.GroupArray("items", []field.Field{field.Text("name", "")}, nil),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	rows, _ := facade.Array("items")

	var added, removed []repeat.Event
	facade.Events.OnAdded(func(evt repeat.Event) { added = append(added, evt) })
	facade.Events.OnRemoved(func(evt repeat.Event) { removed = append(removed, evt) })

	for _, name := range []string{"a", "b", "c"} {
		if _, err := rows.AddRow(map[string]any{"name": name}, true); err != nil {
			t.Fatalf("add row: %v", err)
		}
	}
	if !rows.RemoveRow(1) {
		t.Fatalf("expected removal of row 1")
	}
	if rows.RemoveRow(99) {
		t.Fatalf("expected out-of-range removal to be a no-op")
	}

	want := []any{map[string]any{"name": "a"}, map[string]any{"name": "c"}}
	if diff := cmp.Diff(want, facade.Value()["items"]); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	for idx, row := range rows.Rows() {
		group, _ := rows.Array().At(idx)
		if row.Controls != group {
			t.Fatalf("row %d not aligned with control array", idx)
		}
	}
	if len(added) != 3 || len(removed) != 1 || removed[0].Index != 1 {
		t.Fatalf("unexpected events: added=%d removed=%+v", len(added), removed)
	}
	if added[2].Row.(*Facade).Controls != added[2].Group {
		t.Fatalf("event row should be the row facade")
	}
}

func TestBuild_NestedArrays(t *testing.T) {
	b := newBuilder(t, Options{})
	orders := field.GroupArray("orders", []field.Field{
		field.Text("ref", ""),
		field.GroupArray("lines", []field.Field{field.Text("sku", "")}, nil),
	}, []map[string]any{
		{"ref": "o-1", "lines": []map[string]any{{"sku": "x"}, {"sku": "y"}}},
	})

	facade, err := b.BuildFields([]field.Field{orders})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	lines, ok := facade.Array("orders.0.lines")
	if !ok {
		t.Fatalf("nested array not reachable")
	}
	if lines.Len() != 2 {
		t.Fatalf("expected 2 nested rows, got %d", lines.Len())
	}
	if lines.Path() != "orders.*.lines" {
		t.Fatalf("unexpected nested path %q", lines.Path())
	}
	if _, ok := facade.Array("orders.4.lines"); ok {
		t.Fatalf("expected missing row to resolve to nothing")
	}
}

func TestBuild_TrailingRowAndLazySeeding(t *testing.T) {
	cfg := config.Default()
	cfg.GroupArray.TrailingEmptyRow = true
	b := newBuilder(t, Options{Config: cfg, LazyRows: true})

	facade, err := b.BuildFields([]field.Field{
		field.GroupArray("items", []field.Field{field.Text("name", "")}, []map[string]any{{"name": "A"}}),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	rows, _ := facade.Array("items")
	if rows.Len() != 0 {
		t.Fatalf("lazy builder should not seed during build, got %d rows", rows.Len())
	}

	var events int
	facade.Events.OnAdded(func(repeat.Event) { events++ })
	if err := facade.SeedRows(true); err != nil {
		t.Fatalf("seed rows: %v", err)
	}
	if err := facade.SeedRows(true); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	want := []any{map[string]any{"name": "A"}, map[string]any{"name": ""}}
	if diff := cmp.Diff(want, facade.Value()["items"]); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if events != 2 {
		t.Fatalf("expected 2 row events, got %d", events)
	}
}

func TestBuild_ReentrantAndIndependent(t *testing.T) {
	b := newBuilder(t, Options{})
	fields := []field.Field{field.Text("name", "init")}

	first, err := b.BuildFields(fields)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := b.BuildFields(fields)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := leafAt(t, first, "name").SetValue("changed"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if got := leafAt(t, second, "name").Value(); got != "init" {
		t.Fatalf("facades share controls: %v", got)
	}
	if first.ID == second.ID {
		t.Fatalf("facades share an id")
	}
	if fields[0].Label != "" {
		t.Fatalf("input descriptor mutated")
	}
}

func TestBuild_RootValidatorsAndLabels(t *testing.T) {
	b := newBuilder(t, Options{Labeler: func(name string) string { return "<" + name + ">" }})
	needsA := func(c control.Control) control.Errors {
		if values, _ := c.Value().(map[string]any); values["a"] == "" {
			return control.Errors{"required": "a"}
		}
		return nil
	}
	facade, err := b.BuildFields([]field.Field{field.Text("a", ""), field.Text("b", "", field.WithLabel("Bee"))}, needsA)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !facade.Controls.Errors().Has("required") {
		t.Fatalf("root validators not attached")
	}
	got := []string{facade.Field.Children[0].Label, facade.Field.Children[1].Label}
	if diff := cmp.Diff([]string{"<a>", "Bee"}, got); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ColumnClassTemplate = "col"
	if _, err := New(Options{Config: cfg}); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected config.ErrInvalid, got %v", err)
	}
}

func TestBuild_RowValuesKeepZeroValues(t *testing.T) {
	b := newBuilder(t, Options{})
	facade, err := b.BuildFields([]field.Field{
		field.GroupArray("lines", []field.Field{
			field.Number("qty", 1),
			field.Select("unit", []field.SelectOption{{Value: "kg", Label: "Kilogram"}}, field.WithInitial("kg")),
			field.Checkbox("gift", true),
			field.Group("dims", []field.Field{field.Number("width", 3)}),
		}, []map[string]any{{"qty": 0.0, "unit": "", "gift": false, "dims": map[string]any{"width": 0.0}}}),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []any{map[string]any{
		"qty":  0.0,
		"unit": "",
		"gift": false,
		"dims": map[string]any{"width": 0.0},
	}}
	if diff := cmp.Diff(want, facade.Value()["lines"]); diff != "" {
		t.Fatalf("seeded row mismatch (-want +got):\n%s", diff)
	}

	rows, _ := facade.Array("lines")
	if _, err := rows.AddRow(map[string]any{"qty": 0}, false); err != nil {
		t.Fatalf("add row: %v", err)
	}
	if got := leafAt(t, facade, "lines.1.qty").Value(); got != 0 {
		t.Fatalf("added row qty should be 0, got %#v", got)
	}
	if got := leafAt(t, facade, "lines.1.unit").Value(); got != "kg" {
		t.Fatalf("unset keys keep the template initial, got %#v", got)
	}
	if facade.Controls.Dirty() {
		t.Fatalf("seeded rows should leave the form pristine")
	}
}

func TestBuild_RowValuesAreTypeChecked(t *testing.T) {
	b := newBuilder(t, Options{})
	items := field.GroupArray("items", []field.Field{field.Number("qty", 0)}, []map[string]any{{"qty": "many"}})
	if _, err := b.BuildFields([]field.Field{items}); !errors.Is(err, control.ErrTypeMismatch) || !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrTypeMismatch wrapped in ErrConfiguration, got %v", err)
	}

	facade, err := b.BuildFields([]field.Field{field.GroupArray("items", []field.Field{field.Number("qty", 0)}, nil)})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	rows, _ := facade.Array("items")
	if _, err := rows.AddRow(map[string]any{"qty": "many"}, false); !errors.Is(err, control.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if rows.Len() != 0 || rows.Array().Len() != 0 {
		t.Fatalf("rejected row must not be added")
	}
}

func TestBuild_ReplacedGroupDropsNestedArrays(t *testing.T) {
	b := newBuilder(t, Options{})
	facade, err := b.BuildFields([]field.Field{
		field.Group("g", []field.Field{
			field.GroupArray("items", []field.Field{field.Text("sku", "")}, nil),
		}),
		field.Group("g", []field.Field{field.Text("y", "")}),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := facade.Get("g.items"); ok {
		t.Fatalf("replaced control should be gone")
	}
	if _, ok := facade.Array("g.items"); ok {
		t.Fatalf("row set of a replaced group should be dropped")
	}
	if paths := facade.ArrayPaths(); len(paths) != 0 {
		t.Fatalf("expected no array paths, got %v", paths)
	}

	lazy := newBuilder(t, Options{LazyRows: true})
	facade, err = lazy.BuildFields([]field.Field{
		field.Group("g", []field.Field{
			field.GroupArray("items", []field.Field{field.Text("sku", "")}, []map[string]any{{"sku": "a"}}),
		}),
		field.Group("g", []field.Field{field.Text("y", "")}),
	})
	if err != nil {
		t.Fatalf("lazy build: %v", err)
	}
	if err := facade.SeedRows(false); err != nil {
		t.Fatalf("seed rows: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"g": map[string]any{"y": ""}}, facade.Value()); diff != "" {
		t.Fatalf("form value mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_MergesPartialConfig(t *testing.T) {
	b := newBuilder(t, Options{Config: config.Config{ContainerClass: "x"}})
	got := b.Options().Config
	want := config.Default()
	want.ContainerClass = "x"
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(config.Config{}, "AddRowLabelSource")); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	b = newBuilder(t, Options{Config: config.Config{ColumnsPerRow: 6}})
	if got := b.Options().Config; got.ContainerClass != "container" || got.RowClass != "row" || got.ColumnsPerRow != 6 {
		t.Fatalf("partial config should keep the other defaults: %+v", got)
	}
}
