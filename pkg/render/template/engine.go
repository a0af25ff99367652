package template

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formbuilder/pkg/render"
)

// noTemplates backs engines that only compile inline sources.
var noTemplates embed.FS

// Option configures an Engine before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	globalData map[string]any
}

// WithBaseDir loads template files from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads template files from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the ".tpl" extension appended to file names.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// Engine compiles pongo2 templates for template fields.
type Engine struct {
	mu sync.RWMutex

	set    *pongo2.TemplateSet
	cache  map[string]*pongo2.Template
	tplExt string
}

// New constructs an Engine. Without WithBaseDir or WithFS only inline
// sources can be compiled.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".tpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("template: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	if len(loaders) == 0 {
		loaders = append(loaders, pongo2.NewFSLoader(noTemplates))
	}

	engine := &Engine{
		set:    pongo2.NewSet("formbuilder", loaders...),
		cache:  make(map[string]*pongo2.Template),
		tplExt: cfg.extension,
	}
	registerDefaultFilters()

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("template: apply global data: %w", err)
	}
	return engine, nil
}

// Source compiles an inline template.
func (e *Engine) Source(source string) (render.Template, error) {
	if e == nil || e.set == nil {
		return nil, errors.New("template: engine is nil")
	}
	tpl, err := e.set.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("template: parse inline template: %w", err)
	}
	return &compiled{engine: e, name: "inline", tpl: tpl}, nil
}

// File loads and compiles the named template file. The engine extension is
// appended when missing. Compiled files are cached.
func (e *Engine) File(name string) (render.Template, error) {
	if e == nil || e.set == nil {
		return nil, errors.New("template: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.tplExt) {
		path += e.tplExt
	}
	tpl, err := e.load(path)
	if err != nil {
		return nil, err
	}
	return &compiled{engine: e, name: path, tpl: tpl}, nil
}

// Bind compiles a set of bindings from field path or name to either an
// inline source or a template file name.
func (e *Engine) Bind(bindings map[string]string) (render.Templates, error) {
	if len(bindings) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(bindings))
	for key := range bindings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(render.Templates, len(bindings))
	for _, key := range keys {
		ref := bindings[key]
		var (
			tpl render.Template
			err error
		)
		if isTemplateContent(ref) {
			tpl, err = e.Source(ref)
		} else {
			tpl, err = e.File(ref)
		}
		if err != nil {
			return nil, fmt.Errorf("template: bind %q: %w", key, err)
		}
		out[key] = tpl
	}
	return out, nil
}

// RegisterFilter registers a pongo2 filter. pongo2 filters are process-wide,
// so registering an existing name fails.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("template: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("template: filter %q already exists", name)
	}
	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext merges data into the variables every template sees.
func (e *Engine) GlobalContext(data map[string]any) error {
	if e == nil || e.set == nil {
		return errors.New("template: engine is nil")
	}
	if len(data) == 0 {
		return nil
	}
	globals, err := convertMapToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	e.set.Globals.Update(globals)
	return nil
}

func (e *Engine) load(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tpl, ok := e.cache[path]; ok {
		e.mu.RUnlock()
		return tpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if tpl, ok := e.cache[path]; ok {
		return tpl, nil
	}
	tpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("template: load %q: %w", path, err)
	}
	e.cache[path] = tpl
	return tpl, nil
}

type compiled struct {
	engine *Engine
	name   string
	tpl    *pongo2.Template
}

// Execute renders the template for one field.
func (c *compiled) Execute(ctx context.Context, data render.TemplateData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fieldContext, err := convertMapToContext(data.Context)
	if err != nil {
		return "", fmt.Errorf("template: convert context: %w", err)
	}
	value, err := convertValue(data.Value)
	if err != nil {
		return "", fmt.Errorf("template: convert value: %w", err)
	}
	view := pongo2.Context{
		"path":    data.Path,
		"name":    data.Field.Name,
		"label":   data.Field.Label,
		"hint":    data.Field.Hint,
		"value":   value,
		"context": map[string]any(fieldContext),
	}

	var buf bytes.Buffer
	c.engine.mu.RLock()
	err = c.tpl.ExecuteWriter(view, &buf)
	c.engine.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("template: execute %q: %w", c.name, err)
	}
	return buf.String(), nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func convertMapToContext(in map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

// convertValue flattens structs into maps so templates can address their
// fields by JSON name. Maps, slices, scalars and functions pass through.
func convertValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, entry := range v {
			converted, err := convertValue(entry)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(v))
		for _, entry := range v {
			converted, err := convertValue(entry)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Struct:
		if _, ok := value.(fmt.Stringer); ok {
			return value, nil
		}
		return jsonToAny(value)
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Elem().Kind() == reflect.Struct {
			return jsonToAny(value)
		}
	}
	return value, nil
}

func jsonToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("lowerfirst") {
		_ = pongo2.RegisterFilter("lowerfirst", filterLowerFirst)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterLowerFirst(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	t := in.String()
	for i, r := range t {
		if strings.ContainsRune(" \t\n\r", r) {
			continue
		}
		size := utf8.RuneLen(r)
		return pongo2.AsValue(t[:i] + strings.ToLower(string(r)) + t[i+size:]), nil
	}
	return pongo2.AsValue(t), nil
}
