package builder

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/repeat"
)

// Builder turns field descriptors into control trees. A Builder holds no
// per-build state and may be used concurrently.
type Builder struct {
	opts   Options
	layout layout.Distributor
}

// New creates a Builder with the supplied options. Zero-valued options, and
// zero-valued fields of Config, fall back to the defaults.
func New(options Options) (*Builder, error) {
	opts := defaultOptions()
	opts.Config = options.Config.WithDefaults()
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("builder: %w", err)
	}
	if options.Logger != nil {
		opts.Logger = options.Logger
	}
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	if options.IDGenerator != nil {
		opts.IDGenerator = options.IDGenerator
	}
	opts.StrictNames = options.StrictNames
	opts.LazyRows = options.LazyRows
	return &Builder{opts: opts, layout: opts.Config.Distributor()}, nil
}

// Options returns the effective options.
func (b *Builder) Options() Options { return b.opts }

// BuildFields wraps fields in a container div and builds it.
func (b *Builder) BuildFields(fields []field.Field, validators ...control.Validator) (*Facade, error) {
	return b.Build(field.Div(b.opts.Config.ContainerClass, fields...), validators...)
}

// Build annotates a copy of root and builds its control tree. validators are
// attached to the root group. The caller's descriptors are never modified and
// no facade is returned when any descriptor fails to build.
func (b *Builder) Build(root field.Field, validators ...control.Validator) (*Facade, error) {
	working := field.Clone(root)
	b.annotate(&working)

	bus := repeat.NewBus()
	facade := b.newFacade(working, control.NewGroup(validators...), bus)
	facade.RootCSSClass = working.CSSClass

	if err := b.buildNode(facade, facade.Controls, "", "", &working); err != nil {
		return nil, err
	}

	b.opts.Logger.Debug("form built",
		zap.String("id", facade.ID),
		zap.Int("controls", facade.Controls.Len()),
		zap.Strings("arrays", facade.ArrayPaths()),
	)
	return facade, nil
}

func (b *Builder) newFacade(f field.Field, group *control.Group, bus *repeat.Bus) *Facade {
	return &Facade{
		ID:       b.opts.IDGenerator(),
		Controls: group,
		Field:    f,
		Arrays:   make(map[string]*RowSet),
		Events:   bus,
		Config:   b.opts.Config,
		pending:  make(map[string][]map[string]any),
	}
}

// annotate fills row classes, column classes and default labels in place.
func (b *Builder) annotate(f *field.Field) {
	if f.Kind == field.KindRow {
		if f.CSSClass == "" {
			f.CSSClass = b.opts.Config.RowClass
		}
		b.layout.Assign(f.Children)
	}
	if !f.Kind.IsLayout() && f.Name != "" && f.Label == "" && b.opts.Labeler != nil {
		f.Label = b.opts.Labeler(f.Name)
	}
	if opts := f.DateRangeOpts(); opts != nil {
		opts.BeginLabel, opts.EndLabel = opts.Labels()
	}
	for i := range f.Children {
		b.annotate(&f.Children[i])
	}
}

// buildNode adds the control for f to parent. rel is the path relative to the
// facade being built, abs the path inside the whole form.
func (b *Builder) buildNode(facade *Facade, parent *control.Group, rel, abs string, f *field.Field) error {
	if !f.Kind.Known() {
		return buildErr(abs, f, ErrUnsupportedKind, "%q", string(f.Kind))
	}
	if !f.Kind.Accepts(f.Options) {
		return buildErr(abs, f, ErrConfiguration, "options %T do not apply", f.Options)
	}
	if f.Kind.IsLayout() {
		for i := range f.Children {
			if err := b.buildNode(facade, parent, rel, abs, &f.Children[i]); err != nil {
				return err
			}
		}
		return nil
	}

	if f.Name == "" {
		return buildErr(abs, f, ErrConfiguration, "name is required")
	}
	rel = field.JoinPath(rel, f.Name)
	abs = field.JoinPath(abs, f.Name)
	if parent.Has(f.Name) {
		if b.opts.StrictNames {
			return buildErr(abs, f, ErrDuplicateName, "%q", f.Name)
		}
		b.opts.Logger.Debug("control replaced", zap.String("path", abs))
		facade.forget(rel)
	}

	switch f.Kind {
	case field.KindText, field.KindEmail, field.KindPassword, field.KindSearch, field.KindTextarea,
		field.KindNumber, field.KindDate, field.KindSelect, field.KindCheckbox,
		field.KindCustom, field.KindTemplate:
		parent.Add(f.Name, newLeaf(f))
		return nil
	case field.KindDateRange:
		group, err := newDateRange(abs, f)
		if err != nil {
			return err
		}
		parent.Add(f.Name, group)
		return nil
	case field.KindGroup:
		group := control.NewGroup(f.Validators...)
		for i := range f.Children {
			if err := b.buildNode(facade, group, rel, abs, &f.Children[i]); err != nil {
				return err
			}
		}
		parent.Add(f.Name, group)
		return nil
	case field.KindGroupArray:
		return b.buildArray(facade, parent, rel, abs, f)
	default:
		return buildErr(abs, f, ErrUnsupportedKind, "%q", string(f.Kind))
	}
}

func (b *Builder) buildArray(facade *Facade, parent *control.Group, rel, abs string, f *field.Field) error {
	if len(f.Children) == 0 {
		return buildErr(abs, f, ErrConfiguration, "groupArray requires a row template")
	}
	var rowValidators []control.Validator
	if opts := f.GroupArrayOpts(); opts != nil {
		rowValidators = opts.RowValidators
	}

	array := control.NewArray(f.Validators...)
	rowsPath := field.JoinPath(abs, field.RowWildcard)
	materialize := func(index int, fields []field.Field) (*Facade, error) {
		return b.buildRow(facade.Events, f.Name, rowsPath, fields, rowValidators)
	}
	rows, err := repeat.New[*Facade](f.Name, abs, f.Children, array, materialize,
		repeat.WithBus(facade.Events),
		repeat.WithLogger(b.opts.Logger),
		repeat.WithTrailingRow(b.opts.Config.GroupArray.TrailingEmptyRow),
	)
	if err != nil {
		return buildErr(abs, f, ErrConfiguration, "%v", err)
	}

	records := field.Records(f.Initial)
	if !b.opts.LazyRows {
		if err := rows.Seed(records, false); err != nil {
			return &BuildError{Path: abs, Kind: f.Kind, Err: fmt.Errorf("%w: seed rows: %w", ErrConfiguration, err)}
		}
	} else {
		facade.pending[rel] = records
	}

	parent.Add(f.Name, array)
	facade.Arrays[rel] = rows
	return nil
}

// buildRow materialises one repeated-group row. Nested arrays inside the row
// are seeded immediately; the row did not exist before this call.
func (b *Builder) buildRow(bus *repeat.Bus, name, abs string, fields []field.Field, validators []control.Validator) (*Facade, error) {
	row := b.newFacade(field.Group(name, fields), control.NewGroup(validators...), bus)
	for i := range fields {
		if err := b.buildNode(row, row.Controls, "", abs, &fields[i]); err != nil {
			return nil, err
		}
	}
	for _, path := range row.ArrayPaths() {
		if records, ok := row.pending[path]; ok {
			delete(row.pending, path)
			if err := row.Arrays[path].Seed(records, false); err != nil {
				return nil, err
			}
		}
	}
	return row, nil
}

// newLeaf applies the seed rules: a truthy initial produces a non-nullable
// control seeded with it; otherwise HTML-input kinds seed "" (number seeds
// nil) and the rest seed nil, nullable. Checkbox values are strict booleans.
func newLeaf(f *field.Field) *control.Leaf {
	options := []control.LeafOption{control.WithValidators(f.Validators...)}
	present := field.Truthy(f.Initial)
	if present {
		options = append(options, control.NonNullable())
	}

	switch f.Kind {
	case field.KindCheckbox:
		return control.NewLeaf(present, append(options, control.OfType(control.TypeBool))...)
	case field.KindNumber:
		options = append(options, control.OfType(control.TypeNumber))
		if !present {
			return control.NewLeaf(nil, options...)
		}
	case field.KindDate:
		options = append(options, control.OfType(control.TypeDate))
	}

	if present {
		return control.NewLeaf(f.Initial, options...)
	}
	if f.Kind.IsInput() {
		return control.NewLeaf("", options...)
	}
	return control.NewLeaf(nil, options...)
}

func newDateRange(path string, f *field.Field) (*control.Group, error) {
	opts := f.DateRangeOpts()
	if opts == nil || opts.BeginName == "" || opts.EndName == "" {
		return nil, buildErr(path, f, ErrConfiguration, "daterange requires begin and end names")
	}
	if opts.BeginName == opts.EndName {
		return nil, buildErr(path, f, ErrConfiguration, "daterange begin and end share the name %q", opts.BeginName)
	}

	group := control.NewGroup(f.Validators...)
	group.Add(opts.BeginName, rangeSide(f.Initial, opts.BeginName, opts.BeginValidators))
	group.Add(opts.EndName, rangeSide(f.Initial, opts.EndName, opts.EndValidators))
	return group, nil
}

func rangeSide(initial any, key string, validators []control.Validator) *control.Leaf {
	options := []control.LeafOption{
		control.OfType(control.TypeDate),
		control.WithValidators(validators...),
	}
	value, _ := field.Lookup(initial, key)
	if !field.Truthy(value) {
		return control.NewLeaf(nil, options...)
	}
	return control.NewLeaf(value, append(options, control.NonNullable())...)
}
