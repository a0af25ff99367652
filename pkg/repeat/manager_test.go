package repeat

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/field"
)

type testRow struct {
	index int
	group *control.Group
}

func (r *testRow) Group() *control.Group { return r.group }

func leafRows(index int, fields []field.Field) (*testRow, error) {
	group := control.NewGroup()
	field.Walk(fields, func(_ string, f *field.Field) bool {
		if !f.Kind.IsLayout() && f.Name != "" {
			group.Add(f.Name, control.NewLeaf(f.Initial))
		}
		return true
	})
	return &testRow{index: index, group: group}, nil
}

func newManager(t *testing.T, options ...Option) *Manager[*testRow] {
	t.Helper()
	template := []field.Field{
		field.Text("sku", ""),
		field.Number("qty", 0),
	}
	m, err := New[*testRow]("items", "order.items", template, control.NewArray(), leafRows, options...)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func assertAligned(t *testing.T, m *Manager[*testRow]) {
	t.Helper()
	if m.Len() != m.Array().Len() {
		t.Fatalf("rows (%d) and controls (%d) out of sync", m.Len(), m.Array().Len())
	}
	for idx, row := range m.Rows() {
		group, _ := m.Array().At(idx)
		if row.Group() != group {
			t.Fatalf("row %d does not own control group at the same index", idx)
		}
	}
}

func TestAddRow_SeedsMatchingControls(t *testing.T) {
	m := newManager(t)

	idx, err := m.AddRow(map[string]any{"sku": "A-1", "qty": 3, "unknown": true, "price": nil}, false)
	if err != nil {
		t.Fatalf("add row: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}
	want := []any{map[string]any{"sku": "A-1", "qty": 3}}
	if diff := cmp.Diff(want, m.Array().Values()); diff != "" {
		t.Fatalf("row values mismatch (-want +got):\n%s", diff)
	}
	assertAligned(t, m)
}

func TestAddRow_AssignsZeroValues(t *testing.T) {
	template := []field.Field{field.Number("qty", 1), field.Text("note", "n/a")}
	m, err := New[*testRow]("items", "items", template, control.NewArray(), leafRows)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if _, err := m.AddRow(map[string]any{"qty": 0, "note": ""}, false); err != nil {
		t.Fatalf("add row: %v", err)
	}
	if _, err := m.AddRow(nil, false); err != nil {
		t.Fatalf("add empty row: %v", err)
	}
	want := []any{
		map[string]any{"qty": 0, "note": ""},
		map[string]any{"qty": 1.0, "note": "n/a"},
	}
	if diff := cmp.Diff(want, m.Array().Values()); diff != "" {
		t.Fatalf("row values mismatch (-want +got):\n%s", diff)
	}
	row, _ := m.Row(0)
	if row.Group().Dirty() {
		t.Fatalf("seeded row should be pristine")
	}
}

func TestAddRow_TypeMismatchLeavesStateUntouched(t *testing.T) {
	typed := func(index int, fields []field.Field) (*testRow, error) {
		group := control.NewGroup()
		group.Add("qty", control.NewLeaf(nil, control.OfType(control.TypeNumber)))
		return &testRow{index: index, group: group}, nil
	}
	m, err := New[*testRow]("items", "items", []field.Field{field.Number("qty", 0)}, control.NewArray(), typed)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := m.AddRow(map[string]any{"qty": "many"}, true); !errors.Is(err, control.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if m.Len() != 0 || m.Array().Len() != 0 {
		t.Fatalf("expected no rows after a rejected value")
	}
}

func TestAddRow_EmitsAfterRowIsInPlace(t *testing.T) {
	bus := NewBus()
	m := newManager(t, WithBus(bus))

	var events []Event
	bus.OnAdded(func(evt Event) {
		if m.Len() != evt.Index+1 {
			t.Fatalf("event published before row was appended")
		}
		events = append(events, evt)
	})

	if _, err := m.AddRow(nil, true); err != nil {
		t.Fatalf("add row: %v", err)
	}
	if _, err := m.AddRow(nil, false); err != nil {
		t.Fatalf("add row: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	evt := events[0]
	if evt.Type != EventRowAdded || evt.Field != "items" || evt.Path != "order.items" || evt.Index != 0 {
		t.Fatalf("unexpected event: %+v", evt)
	}
	group, _ := m.Array().At(0)
	if evt.Group != group {
		t.Fatalf("event group does not match the array row")
	}
}

func TestRemoveRow_KeepsAlignment(t *testing.T) {
	m := newManager(t)
	for _, sku := range []string{"a", "b", "c", "d"} {
		if _, err := m.AddRow(map[string]any{"sku": sku}, false); err != nil {
			t.Fatalf("add row: %v", err)
		}
	}

	var removed []int
	m.Bus().OnRemoved(func(evt Event) { removed = append(removed, evt.Index) })

	ops := []struct {
		index int
		ok    bool
	}{
		{index: 1, ok: true},
		{index: 7, ok: false},
		{index: -1, ok: false},
		{index: 2, ok: true},
		{index: 0, ok: true},
	}
	for _, op := range ops {
		if got := m.RemoveRow(op.index); got != op.ok {
			t.Fatalf("RemoveRow(%d) = %v, want %v", op.index, got, op.ok)
		}
		assertAligned(t, m)
	}

	if diff := cmp.Diff([]int{1, 2, 0}, removed); diff != "" {
		t.Fatalf("removal events mismatch (-want +got):\n%s", diff)
	}
	want := []any{map[string]any{"sku": "c", "qty": nil}}
	if diff := cmp.Diff(want, m.Array().Values()); diff != "" {
		t.Fatalf("remaining rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveRow_OutOfRangeIsNoop(t *testing.T) {
	m := newManager(t)
	if _, err := m.AddRow(nil, false); err != nil {
		t.Fatalf("add row: %v", err)
	}
	fired := false
	m.Bus().OnRemoved(func(Event) { fired = true })

	if m.RemoveRow(1) {
		t.Fatalf("expected out-of-range removal to report false")
	}
	if fired {
		t.Fatalf("expected no event for out-of-range removal")
	}
	if m.Len() != 1 {
		t.Fatalf("expected rows untouched, got %d", m.Len())
	}
}

func TestSeed_OrderAndTrailingRow(t *testing.T) {
	records := []map[string]any{{"sku": "x"}, {"sku": "y"}, {"sku": "z"}}

	plain := newManager(t)
	if err := plain.Seed(records, false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if plain.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", plain.Len())
	}

	trailing := newManager(t, WithTrailingRow(true))
	if err := trailing.Seed(records, false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var skus []any
	for _, row := range trailing.Rows() {
		skus = append(skus, row.Group().Values()["sku"])
	}
	if diff := cmp.Diff([]any{"x", "y", "z", nil}, skus); diff != "" {
		t.Fatalf("seeded rows mismatch (-want +got):\n%s", diff)
	}
	assertAligned(t, trailing)
}

func TestAddRow_MaterializeFailureLeavesStateUntouched(t *testing.T) {
	boom := errors.New("boom")
	failing := func(int, []field.Field) (*testRow, error) { return nil, boom }
	m, err := New[*testRow]("items", "items", []field.Field{field.Text("sku", "")}, control.NewArray(), failing)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := m.AddRow(nil, true); !errors.Is(err, boom) {
		t.Fatalf("expected materializer error, got %v", err)
	}
	if m.Len() != 0 || m.Array().Len() != 0 {
		t.Fatalf("expected no rows after failure")
	}
}

func TestNew_RequiresTemplate(t *testing.T) {
	if _, err := New[*testRow]("items", "items", nil, control.NewArray(), leafRows); !errors.Is(err, ErrNoTemplate) {
		t.Fatalf("expected ErrNoTemplate, got %v", err)
	}
}

func TestTemplate_IsACopy(t *testing.T) {
	m := newManager(t)
	tpl := m.Template()
	tpl[0].Name = "mutated"
	if m.Template()[0].Name != "sku" {
		t.Fatalf("template leaked internal state")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsubscribe := bus.OnAdded(func(Event) { calls++ })
	bus.Publish(Event{Type: EventRowAdded})
	unsubscribe()
	unsubscribe()
	bus.Publish(Event{Type: EventRowAdded})
	bus.Publish(Event{Type: EventRowRemoved})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
