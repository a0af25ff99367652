package repeat

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/field"
)

// ErrNoTemplate is returned when a manager is created without row template.
var ErrNoTemplate = errors.New("repeat: empty row template")

// Row is a materialised repeated-group row. The form builder's facade
// satisfies it.
type Row interface {
	Group() *control.Group
}

// Materializer builds a row from a cloned template. Only the records of
// nested groupArrays have been copied into the clone; leaf values are
// assigned to the built row afterwards.
type Materializer[R Row] func(index int, fields []field.Field) (R, error)

// Option configures a Manager.
type Option func(*settings)

type settings struct {
	bus      *Bus
	logger   *zap.Logger
	trailing bool
}

// WithBus publishes row events on bus instead of a private one.
func WithBus(bus *Bus) Option {
	return func(s *settings) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// WithLogger sets the logger used for row lifecycle messages.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTrailingRow appends an empty placeholder row after seeding.
func WithTrailingRow(enabled bool) Option {
	return func(s *settings) {
		s.trailing = enabled
	}
}

// Manager owns the rows of one repeated group. The control array and the row
// list always have the same length and the same order.
//
// A Manager is not safe for concurrent use.
type Manager[R Row] struct {
	name        string
	path        string
	template    []field.Field
	array       *control.Array
	materialize Materializer[R]
	rows        []R

	bus      *Bus
	logger   *zap.Logger
	trailing bool
}

// New creates a manager for the groupArray called name, located at path in
// the form. array must be the control array the builder attached to the form.
func New[R Row](name, path string, template []field.Field, array *control.Array, materialize Materializer[R], options ...Option) (*Manager[R], error) {
	if len(template) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTemplate, path)
	}
	if array == nil {
		return nil, fmt.Errorf("repeat: %s: nil control array", path)
	}
	if materialize == nil {
		return nil, fmt.Errorf("repeat: %s: nil materializer", path)
	}
	s := settings{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(&s)
		}
	}
	if s.bus == nil {
		s.bus = NewBus()
	}
	return &Manager[R]{
		name:        name,
		path:        path,
		template:    field.CloneAll(template),
		array:       array,
		materialize: materialize,
		bus:         s.bus,
		logger:      s.logger.With(zap.String("array", path)),
		trailing:    s.trailing,
	}, nil
}

// Name returns the groupArray name.
func (m *Manager[R]) Name() string { return m.name }

// Path returns the dotted path of the array inside the form.
func (m *Manager[R]) Path() string { return m.path }

// Array returns the control array owned by the manager.
func (m *Manager[R]) Array() *control.Array { return m.array }

// Bus returns the event bus rows are published on.
func (m *Manager[R]) Bus() *Bus { return m.bus }

// Template returns a copy of the row template.
func (m *Manager[R]) Template() []field.Field { return field.CloneAll(m.template) }

// Len reports the number of rows.
func (m *Manager[R]) Len() int { return len(m.rows) }

// Rows returns the rows in order.
func (m *Manager[R]) Rows() []R { return append([]R(nil), m.rows...) }

// Row returns the row at index.
func (m *Manager[R]) Row(index int) (R, bool) {
	var zero R
	if index < 0 || index >= len(m.rows) {
		return zero, false
	}
	return m.rows[index], true
}

// AddRow materialises a new row from the template, sets every named control
// to its entry in values, appends the row to the array and returns its index.
// Keys without a matching control and nil values are ignored; zero values
// such as 0, "" and false are assigned. When emit is true a row-added event
// is published after the row is in place.
func (m *Manager[R]) AddRow(values map[string]any, emit bool) (int, error) {
	fields := field.CloneAll(m.template)
	field.ApplyRecords(fields, values)

	index := len(m.rows)
	row, err := m.materialize(index, fields)
	if err != nil {
		return -1, fmt.Errorf("repeat: %s: row %d: %w", m.path, index, err)
	}
	group := row.Group()
	if group == nil {
		return -1, fmt.Errorf("repeat: %s: row %d: materializer returned no group", m.path, index)
	}
	if err := assign(group, values); err != nil {
		return -1, fmt.Errorf("repeat: %s: row %d: %w", m.path, index, err)
	}
	control.MarkPristine(group)

	m.array.Push(group)
	m.rows = append(m.rows, row)
	m.logger.Debug("row added", zap.Int("index", index), zap.Int("rows", len(m.rows)))

	if emit {
		m.bus.Publish(Event{
			Type:  EventRowAdded,
			Field: m.name,
			Path:  m.path,
			Index: index,
			Group: group,
			Row:   row,
		})
	}
	return index, nil
}

// RemoveRow removes the row at index and publishes a row-removed event.
// Out-of-range indices leave the rows untouched, publish nothing and report
// false.
func (m *Manager[R]) RemoveRow(index int) bool {
	if index < 0 || index >= len(m.rows) {
		m.logger.Warn("row index out of range", zap.Int("index", index), zap.Int("rows", len(m.rows)))
		return false
	}
	group, ok := m.array.RemoveAt(index)
	if !ok {
		return false
	}
	row := m.rows[index]
	m.rows = append(m.rows[:index:index], m.rows[index+1:]...)
	m.logger.Debug("row removed", zap.Int("index", index), zap.Int("rows", len(m.rows)))

	m.bus.Publish(Event{
		Type:  EventRowRemoved,
		Field: m.name,
		Path:  m.path,
		Index: index,
		Group: group,
		Row:   row,
	})
	return true
}

// Seed adds one row per record in order, followed by an empty placeholder row
// when the manager was created WithTrailingRow(true).
func (m *Manager[R]) Seed(records []map[string]any, emit bool) error {
	for _, record := range records {
		if _, err := m.AddRow(record, emit); err != nil {
			return err
		}
	}
	if m.trailing {
		if _, err := m.AddRow(nil, emit); err != nil {
			return err
		}
	}
	return nil
}

// assign sets the controls of group named in values. Nested groups are
// patched key by key; arrays were seeded when the row was materialised.
func assign(group *control.Group, values map[string]any) error {
	for _, name := range group.Names() {
		value, ok := values[name]
		if !ok || value == nil {
			continue
		}
		c, _ := group.Control(name)
		switch node := c.(type) {
		case *control.Array:
			continue
		case *control.Group:
			record, isRecord := value.(map[string]any)
			if !isRecord {
				return fmt.Errorf("%s: %w: group cannot hold %T", name, control.ErrTypeMismatch, value)
			}
			if err := assign(node, record); err != nil {
				return fmt.Errorf("%s.%w", name, err)
			}
		default:
			if err := c.SetValue(value); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return nil
}
