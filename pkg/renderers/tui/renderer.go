package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/config"
	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/form"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

// Renderer fills a built form from the terminal. Fields are prompted in
// layout order, repeated groups offer to add rows and the collected form
// value is returned as the rendered output.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	logger            *zap.Logger
	maxAttempts       int
}

var _ render.Renderer = (*Renderer)(nil)

var errInvalidAnswer = errors.New("invalid answer")

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render seeds pending rows, applies prefilled values, prompts every enabled
// control and serializes the resulting form value. Controls left invalid are
// reported through the driver; they do not fail the render.
func (r *Renderer) Render(ctx context.Context, facade *form.Facade, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if facade == nil {
		return nil, errors.New("tui: facade is required")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	if err := facade.SeedRows(true); err != nil {
		return nil, fmt.Errorf("tui: seed rows: %w", err)
	}
	unknown, err := render.ApplyValues(facade.Controls, opts.Values)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	for _, path := range unknown {
		r.logger.Debug("ignoring prefill for unknown path", zap.String("path", path))
	}

	s := &session{Renderer: r, opts: opts, cfg: facade.Config}
	for _, msg := range render.MergeFormErrors(opts.FormErrors) {
		s.info(ctx, r.theme.ErrorPrefix+msg)
	}
	if err := s.fill(ctx, facade, facade.Field, "", ""); err != nil {
		return nil, err
	}

	facade.Validate()
	s.reportErrors(ctx, facade)

	values := facade.Value()
	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

type session struct {
	*Renderer
	opts render.RenderOptions
	cfg  config.Config
}

// fill walks node the way the builder does: layout nodes are transparent,
// groups extend the path and repeated groups delegate to their rows. rel is
// the path inside facade, abs the path inside the whole form.
func (s *session) fill(ctx context.Context, facade *form.Facade, node field.Field, rel, abs string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch {
	case node.Kind.IsLayout():
		for _, child := range node.Children {
			if err := s.fill(ctx, facade, child, rel, abs); err != nil {
				return err
			}
		}
		return nil
	case node.Kind == field.KindGroup:
		rel, abs = field.JoinPath(rel, node.Name), field.JoinPath(abs, node.Name)
		if c, ok := facade.Get(rel); ok && c.Disabled() {
			return nil
		}
		s.info(ctx, s.theme.SectionPrefix+labelOf(node))
		for _, child := range node.Children {
			if err := s.fill(ctx, facade, child, rel, abs); err != nil {
				return err
			}
		}
		return nil
	case node.Kind == field.KindGroupArray:
		return s.fillRows(ctx, facade, node, field.JoinPath(rel, node.Name), field.JoinPath(abs, node.Name))
	}

	rel, abs = field.JoinPath(rel, node.Name), field.JoinPath(abs, node.Name)
	c, ok := facade.Get(rel)
	if !ok {
		s.logger.Debug("skipping field without control", zap.String("path", abs))
		return nil
	}
	if c.Disabled() {
		return nil
	}
	return s.fillControl(ctx, node, abs, c)
}

func (s *session) fillRows(ctx context.Context, facade *form.Facade, node field.Field, rel, abs string) error {
	rows, ok := facade.Array(rel)
	if !ok {
		return fmt.Errorf("tui: repeated group %s is not registered", abs)
	}
	if rows.Array().Disabled() {
		return nil
	}
	label := labelOf(node)
	for idx, row := range rows.Rows() {
		if err := s.fillRow(ctx, label, row, idx, abs); err != nil {
			return err
		}
	}

	addLabel := s.addRowLabel(ctx)
	for {
		more, err := s.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("%s: %s?", label, addLabel)})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		idx, err := rows.AddRow(nil, true)
		if err != nil {
			return fmt.Errorf("tui: add row to %s: %w", abs, err)
		}
		row, _ := rows.Row(idx)
		if err := s.fillRow(ctx, label, row, idx, abs); err != nil {
			return err
		}
	}
}

func (s *session) fillRow(ctx context.Context, label string, row *form.Facade, idx int, abs string) error {
	s.info(ctx, fmt.Sprintf("%s%s #%d", s.theme.SectionPrefix, label, idx+1))
	rowPath := field.JoinPath(abs, strconv.Itoa(idx))
	for _, child := range row.Field.Children {
		if err := s.fill(ctx, row, child, "", rowPath); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) fillControl(ctx context.Context, f field.Field, abs string, c control.Control) error {
	for _, msg := range s.opts.Errors[abs] {
		s.info(ctx, fmt.Sprintf("%s%s: %s", s.theme.ErrorPrefix, abs, msg))
	}

	switch f.Kind {
	case field.KindTemplate:
		out, err := s.opts.Templates.Execute(ctx, abs, f, c)
		if errors.Is(err, render.ErrTemplateNotBound) {
			s.info(ctx, fmt.Sprintf("%s%s: %v", s.theme.InfoPrefix, labelOf(f), formatScalar(c.Value())))
			return nil
		}
		if err != nil {
			return err
		}
		s.info(ctx, out)
		return nil
	case field.KindCustom:
		if opts := f.CustomOpts(); opts != nil {
			if prompter, ok := opts.Component.(CustomPrompter); ok {
				return prompter.Prompt(ctx, s.driver, f, c)
			}
		}
		s.logger.Debug("skipping custom field without prompter", zap.String("path", abs))
		return nil
	case field.KindDateRange:
		return s.fillDateRange(ctx, f, abs, c)
	}

	attempts := 0
	for {
		value, err := s.ask(ctx, f, c)
		switch {
		case errors.Is(err, errInvalidAnswer):
			s.info(ctx, fmt.Sprintf("%sInvalid %s: %v", s.theme.ErrorPrefix, abs, err))
		case err != nil:
			return err
		default:
			if err := c.SetValue(value); err != nil {
				s.info(ctx, fmt.Sprintf("%sInvalid %s: %v", s.theme.ErrorPrefix, abs, err))
				break
			}
			c.MarkTouched()
			errs := c.Errors()
			if len(errs) == 0 {
				return nil
			}
			s.info(ctx, fmt.Sprintf("%sInvalid %s: %s", s.theme.ErrorPrefix, abs, strings.Join(errs.Keys(), ", ")))
		}
		attempts++
		if s.maxAttempts > 0 && attempts >= s.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, abs)
		}
	}
}

func (s *session) fillDateRange(ctx context.Context, f field.Field, abs string, c control.Control) error {
	group, ok := c.(*control.Group)
	if !ok {
		return fmt.Errorf("tui: date range %s is not a group", abs)
	}
	opts := f.DateRangeOpts()
	if opts == nil {
		return fmt.Errorf("tui: date range %s has no options", abs)
	}
	beginLabel, endLabel := opts.Labels()
	sides := []struct{ name, label string }{
		{opts.BeginName, beginLabel},
		{opts.EndName, endLabel},
	}
	for _, side := range sides {
		sub, ok := group.Control(side.name)
		if !ok {
			continue
		}
		leaf := field.Field{
			Kind:  field.KindDate,
			Name:  side.name,
			Label: fmt.Sprintf("%s (%s)", labelOf(f), side.label),
			Hint:  f.Hint,
		}
		if err := s.fillControl(ctx, leaf, field.JoinPath(abs, side.name), sub); err != nil {
			return err
		}
	}
	return nil
}

// ask prompts once for the value of a single control.
func (s *session) ask(ctx context.Context, f field.Field, c control.Control) (any, error) {
	message, help := labelOf(f), f.Hint
	current := c.Value()

	switch f.Kind {
	case field.KindCheckbox:
		b, _ := current.(bool)
		return s.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: b, Help: help})
	case field.KindNumber:
		in, err := s.driver.Input(ctx, InputConfig{Message: message, Default: formatScalar(current), Help: help})
		if err != nil {
			return nil, err
		}
		in = strings.TrimSpace(in)
		if in == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(in, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errInvalidAnswer, in)
		}
		return n, nil
	case field.KindDate:
		in, err := s.driver.Input(ctx, InputConfig{Message: message + " (YYYY-MM-DD)", Default: formatScalar(current), Help: help})
		if err != nil {
			return nil, err
		}
		return parseDate(in)
	case field.KindSelect:
		return s.askSelect(ctx, f, current)
	case field.KindPassword:
		return s.driver.Password(ctx, InputConfig{Message: message, Help: help})
	case field.KindTextarea:
		return s.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: formatScalar(current), Help: help})
	default:
		return s.driver.Input(ctx, InputConfig{Message: message, Default: formatScalar(current), Help: help})
	}
}

func (s *session) askSelect(ctx context.Context, f field.Field, current any) (any, error) {
	options, err := selectOptions(ctx, f)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(options))
	defaultIdx := -1
	for i, opt := range options {
		labels[i] = opt.Label
		if current != nil && fmt.Sprint(opt.Value) == fmt.Sprint(current) {
			defaultIdx = i
		}
	}
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      labelOf(f),
		Options:      labels,
		DefaultIndex: defaultIdx,
		Help:         f.Hint,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(options) {
		return nil, fmt.Errorf("%w: selection out of range", errInvalidAnswer)
	}
	return options[idx].Value, nil
}

// selectOptions returns the static options of f or the first list its
// source publishes. Sources are cancelled once a list was received.
func selectOptions(ctx context.Context, f field.Field) ([]field.SelectOption, error) {
	opts := f.SelectOpts()
	if opts == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoOptions, f.Name)
	}
	if len(opts.Options) > 0 || opts.Source == nil {
		if len(opts.Options) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoOptions, f.Name)
		}
		return opts.Options, nil
	}

	sourceCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stream := opts.Source(sourceCtx)
	if stream == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoOptions, f.Name)
	}
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case list, ok := <-stream:
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrNoOptions, f.Name)
			}
			if len(list) > 0 {
				return list, nil
			}
		}
	}
}

func (s *session) addRowLabel(ctx context.Context) string {
	fallback := s.cfg.GroupArray.AddRowText
	if fallback == "" {
		fallback = config.Default().GroupArray.AddRowText
	}
	stream := s.cfg.AddRowLabel(ctx)
	if stream == nil {
		return fallback
	}
	select {
	case label, ok := <-stream:
		if ok && label != "" {
			return label
		}
	case <-ctx.Done():
	}
	return fallback
}

func (s *session) reportErrors(ctx context.Context, facade *form.Facade) {
	collected := render.CollectErrors(facade.Controls)
	if len(collected) == 0 {
		return
	}
	paths := make([]string, 0, len(collected))
	for path := range collected {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		name := path
		if name == "" {
			name = "form"
		}
		s.info(ctx, fmt.Sprintf("%s%s: %s", s.theme.ErrorPrefix, name, strings.Join(collected[path].Keys(), ", ")))
	}
}

func (s *session) info(ctx context.Context, msg string) {
	if err := s.driver.Info(ctx, msg); err != nil {
		s.logger.Debug("info message dropped", zap.Error(err))
	}
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func labelOf(f field.Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func parseDate(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not a date", errInvalidAnswer, trimmed)
}

func formatScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flatten(field.JoinPath(prefix, key), val, out)
		}
	case []any:
		for idx, val := range v {
			flatten(field.JoinPath(prefix, strconv.Itoa(idx)), val, out)
		}
	default:
		out.Set(prefix, formatScalar(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			writePretty(b, field.JoinPath(prefix, key), v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%s\n", prefix, formatScalar(v))
		}
	}
}
