package definition

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/layout"
)

// Option configures how definitions are resolved.
type Option func(*settings)

type settings struct {
	validators map[string]control.Validator
	components map[string]any
	layout     layout.Distributor
}

// WithValidator registers a named validator. Registered names take precedence
// over the built-in ones.
func WithValidator(name string, v control.Validator) Option {
	return func(s *settings) {
		if name == "" || v == nil {
			return
		}
		s.validators[name] = v
	}
}

// WithComponent registers the component factory a custom field refers to by
// name. Unregistered names are forwarded as plain strings.
func WithComponent(name string, component any) Option {
	return func(s *settings) {
		if name == "" {
			return
		}
		s.components[name] = component
	}
}

// WithLayout sets the distributor used to turn "span" into a column class.
func WithLayout(d layout.Distributor) Option {
	return func(s *settings) {
		s.layout = d
	}
}

func newSettings(options []Option) *settings {
	s := &settings{
		validators: make(map[string]control.Validator),
		components: make(map[string]any),
		layout:     layout.New(0, ""),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// LoadFS walks fsys and parses every JSON, YAML or TOML definition file.
// When fsys is nil or holds no definition files the returned store is empty.
// Form ids must be unique across files.
func LoadFS(fsys fs.FS, options ...Option) (*Store, error) {
	store := &Store{forms: make(map[string]Form)}
	if fsys == nil {
		return store, nil
	}
	s := newSettings(options)

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", path, err)
		}
		doc, err := s.parse(data, path)
		if err != nil {
			return err
		}
		for id, form := range doc.Forms {
			if existing, exists := store.forms[id]; exists {
				return fmt.Errorf("definition: duplicate form %q (files %s and %s)", id, existing.Source, path)
			}
			store.forms[id] = form
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes a single definition document. source names the document in
// errors; its extension selects TOML, otherwise JSON and then YAML are tried.
func Parse(data []byte, source string, options ...Option) (Document, error) {
	return newSettings(options).parse(data, source)
}

// Normalise converts definition nodes into field descriptors using the same
// rules as Parse. It serves callers that assemble nodes in code.
func Normalise(nodes []Node, options ...Option) ([]field.Field, error) {
	fields, err := newSettings(options).normaliseNodes(nodes, "")
	if err != nil {
		return nil, fmt.Errorf("definition: %w", err)
	}
	return fields, nil
}

func (s *settings) parse(data []byte, source string) (Document, error) {
	raw, err := decodeDocument(data, source)
	if err != nil {
		return Document{}, err
	}

	doc := Document{Source: source, Forms: make(map[string]Form, len(raw.Forms))}
	for rawID, rawForm := range raw.Forms {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return Document{}, fmt.Errorf("definition: file %s defines an empty form id", source)
		}
		if _, exists := doc.Forms[id]; exists {
			return Document{}, fmt.Errorf("definition: duplicate form %q (file %s)", id, source)
		}
		fields, err := s.normaliseNodes(rawForm.Fields, "")
		if err != nil {
			return Document{}, fmt.Errorf("definition: form %q (file %s): %w", id, source, err)
		}
		doc.Forms[id] = Form{
			ID:       id,
			Source:   source,
			CSSClass: strings.TrimSpace(rawForm.CSSClass),
			Fields:   fields,
		}
	}
	return doc, nil
}

func decodeDocument(data []byte, source string) (File, error) {
	var doc File
	if len(strings.TrimSpace(string(data))) == 0 {
		return File{}, fmt.Errorf("definition: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".toml") {
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return File{}, fmt.Errorf("definition: parse %s: %w", source, err)
		}
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	doc = File{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return File{}, fmt.Errorf("definition: parse %s: invalid JSON or YAML", source)
}

func (s *settings) normaliseNodes(nodes []Node, parent string) ([]field.Field, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]field.Field, 0, len(nodes))
	for idx, node := range nodes {
		f, err := s.normaliseNode(node, parent, idx)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *settings) normaliseNode(node Node, parent string, idx int) (field.Field, error) {
	kind, ok := field.ParseKind(node.Kind)
	location := nodeLocation(parent, node.Name, idx)
	if !ok {
		return field.Field{}, fmt.Errorf("node %s: unknown kind %q", location, node.Kind)
	}

	f := field.Field{
		Kind:     kind,
		Name:     strings.TrimSpace(node.Name),
		Label:    sanitizeText(node.Label),
		Hint:     sanitizeText(node.Hint),
		CSSClass: strings.TrimSpace(node.CSSClass),
		Metadata: cloneStrings(node.Metadata),
	}
	if node.Span > 0 && f.CSSClass == "" {
		f.CSSClass = s.layout.Class(node.Span)
	}

	validators, err := s.resolveValidators(node.Validators)
	if err != nil {
		return field.Field{}, fmt.Errorf("node %s: %w", location, err)
	}
	f.Validators = validators

	childPath := parent
	if !kind.IsLayout() {
		childPath = field.JoinPath(parent, f.Name)
	}
	children, err := s.normaliseNodes(node.Children, childPath)
	if err != nil {
		return field.Field{}, err
	}
	f.Children = children

	if err := s.applyOptions(&f, node); err != nil {
		return field.Field{}, fmt.Errorf("node %s: %w", location, err)
	}
	if kind == field.KindRow && f.CSSClass == "" {
		f.CSSClass = field.DefaultRowClass
	}

	initial, err := coerce(f, node.Initial)
	if err != nil {
		return field.Field{}, fmt.Errorf("node %s: initial: %w", location, err)
	}
	f.Initial = initial
	return f, nil
}

func (s *settings) applyOptions(f *field.Field, node Node) error {
	switch f.Kind {
	case field.KindSelect:
		opts := &field.SelectOptions{}
		for _, opt := range node.Options {
			opts.Options = append(opts.Options, field.SelectOption{Label: sanitizeText(opt.Label), Value: opt.Value})
		}
		f.Options = opts
	case field.KindDateRange:
		if node.DateRange == nil {
			return fmt.Errorf("daterange requires dateRange.begin and dateRange.end")
		}
		begin, err := s.resolveValidators(node.DateRange.BeginValidators)
		if err != nil {
			return err
		}
		end, err := s.resolveValidators(node.DateRange.EndValidators)
		if err != nil {
			return err
		}
		f.Options = &field.DateRangeOptions{
			BeginName:       strings.TrimSpace(node.DateRange.Begin),
			EndName:         strings.TrimSpace(node.DateRange.End),
			BeginLabel:      sanitizeText(node.DateRange.BeginLabel),
			EndLabel:        sanitizeText(node.DateRange.EndLabel),
			BeginValidators: begin,
			EndValidators:   end,
		}
	case field.KindCustom:
		var component any = node.Component
		if registered, ok := s.components[node.Component]; ok {
			component = registered
		}
		f.Options = &field.CustomOptions{Component: component, Context: node.Context}
	case field.KindTemplate:
		f.Options = &field.TemplateOptions{Context: node.Context}
	case field.KindGroupArray:
		rowValidators, err := s.resolveValidators(node.RowValidators)
		if err != nil {
			return err
		}
		f.Options = &field.GroupArrayOptions{Context: node.Context, RowValidators: rowValidators}
	}
	return nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml", ".toml":
		return true
	default:
		return false
	}
}

func nodeLocation(parent, name string, idx int) string {
	if name == "" {
		return fmt.Sprintf("%s[%d]", parent, idx)
	}
	return field.JoinPath(parent, name)
}

func cloneStrings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
