package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/form"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/repeat"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	textAreas []string
	passwords []string

	inputConfigs []InputConfig
	confirmMsgs  []string
	infoMessages []string

	inputPos   int
	selectPos  int
	confirmPos int
	textPos    int
	passPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputConfigs = append(s.inputConfigs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.confirmMsgs = append(s.confirmMsgs, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) sawInfo(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func TestRender_FillsEveryKind(t *testing.T) {
	facade := build(t, []field.Field{
		field.Row([]field.Field{
			field.Text("name", "", field.WithValidators(control.Required())),
			field.Email("email", ""),
		}),
		field.Number("qty", 0, field.WithValidators(control.Min(1))),
		field.Checkbox("agree", false),
		field.Select("currency", []field.SelectOption{{Label: "Euro", Value: "EUR"}, {Label: "Dollar", Value: "USD"}}),
		field.Date("due", time.Time{}),
		field.DateRange("period", field.DateRangeOptions{BeginName: "from", EndName: "to"}, nil),
		field.Textarea("notes", ""),
		field.Password("secret", ""),
		field.Template("summary", nil),
		field.GroupArray("lines", []field.Field{field.Text("description", "")},
			[]map[string]any{{"description": "Design"}}),
	})

	driver := &stubDriver{
		inputs: []string{
			"", "Ada", "ada@example.com",
			"abc", "3",
			"2024-05-01",
			"2024-01-01", "2024-01-31",
			"Design", "Build",
		},
		confirm:   []bool{true, true, false},
		selectIdx: []int{1},
		textAreas: []string{"Some notes"},
		passwords: []string{"s3cret"},
	}
	renderer := newRenderer(t, WithPromptDriver(driver))

	templates := render.Templates{
		"summary": render.TemplateFunc(func(context.Context, render.TemplateData) (string, error) {
			return "Summary ready", nil
		}),
	}
	out, err := renderer.Render(context.Background(), facade, render.RenderOptions{Templates: templates})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := map[string]any{
		"name":     "Ada",
		"email":    "ada@example.com",
		"qty":      3.0,
		"agree":    true,
		"currency": "USD",
		"due":      "2024-05-01T00:00:00Z",
		"period":   map[string]any{"from": "2024-01-01T00:00:00Z", "to": "2024-01-31T00:00:00Z"},
		"notes":    "Some notes",
		"secret":   "s3cret",
		"summary":  nil,
		"lines":    []any{map[string]any{"description": "Design"}, map[string]any{"description": "Build"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collected values mismatch (-want +got):\n%s", diff)
	}

	for _, fragment := range []string{"Invalid name: required", "Invalid qty", "Summary ready", "Lines #2"} {
		if !driver.sawInfo(fragment) {
			t.Fatalf("expected info containing %q, got %v", fragment, driver.infoMessages)
		}
	}
	if driver.confirmMsgs[1] != "Lines: Add Row?" {
		t.Fatalf("add row prompt mismatch: %q", driver.confirmMsgs[1])
	}
	if !facade.Valid() {
		t.Fatalf("filled form should be valid")
	}
}

func TestRender_PrefillErrorsAndDisabled(t *testing.T) {
	facade := build(t, []field.Field{
		field.Text("name", ""),
		field.Text("computed", ""),
	})
	computed, _ := facade.Get("computed")
	computed.Disable()

	driver := &stubDriver{inputs: []string{"Bob"}}
	renderer := newRenderer(t, WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "}))
	_, err := renderer.Render(context.Background(), facade, render.RenderOptions{
		Values:     map[string]any{"name": "Robert", "ghost": 1},
		Errors:     map[string][]string{"name": {"already taken"}},
		FormErrors: []string{"try again"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(driver.inputConfigs) != 1 {
		t.Fatalf("disabled control should not be prompted, got %d prompts", len(driver.inputConfigs))
	}
	if driver.inputConfigs[0].Default != "Robert" {
		t.Fatalf("prefill should become the default: %q", driver.inputConfigs[0].Default)
	}
	for _, fragment := range []string{"! try again", "! name: already taken"} {
		if !driver.sawInfo(fragment) {
			t.Fatalf("expected info containing %q, got %v", fragment, driver.infoMessages)
		}
	}
}

func TestRender_SelectSource(t *testing.T) {
	source := func(ctx context.Context) <-chan []field.SelectOption {
		ch := make(chan []field.SelectOption, 2)
		ch <- nil
		ch <- []field.SelectOption{{Label: "Red", Value: "r"}, {Label: "Blue", Value: "b"}}
		close(ch)
		return ch
	}
	facade := build(t, []field.Field{field.SelectFrom("color", source)})

	driver := &stubDriver{selectIdx: []int{1}}
	out, err := newRenderer(t, WithPromptDriver(driver)).Render(context.Background(), facade, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"color":"b"}` {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestRender_SelectSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := func(context.Context) <-chan []field.SelectOption {
		cancel()
		return make(chan []field.SelectOption)
	}
	facade := build(t, []field.Field{field.SelectFrom("color", source)})

	_, err := newRenderer(t, WithPromptDriver(&stubDriver{})).Render(ctx, facade, render.RenderOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRender_LazyRowsEmitEvents(t *testing.T) {
	b, err := form.NewBuilder(form.WithEagerRows(false))
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	facade, err := b.BuildFields([]field.Field{
		field.GroupArray("items", []field.Field{field.Text("sku", "")},
			[]map[string]any{{"sku": "A"}, {"sku": "B"}}),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var added []int
	facade.Events.OnAdded(func(evt repeat.Event) { added = append(added, evt.Index) })

	driver := &stubDriver{inputs: []string{"A", "B"}, confirm: []bool{false}}
	if _, err := newRenderer(t, WithPromptDriver(driver)).Render(context.Background(), facade, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1}, added); diff != "" {
		t.Fatalf("row events mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_MaxAttempts(t *testing.T) {
	facade := build(t, []field.Field{field.Text("name", "", field.WithValidators(control.Required()))})
	driver := &stubDriver{inputs: []string{"", " "}}
	_, err := newRenderer(t, WithPromptDriver(driver), WithMaxAttempts(2)).Render(context.Background(), facade, render.RenderOptions{})
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

type colorPicker struct{}

func (colorPicker) Prompt(_ context.Context, _ PromptDriver, _ field.Field, c control.Control) error {
	return c.SetValue("#ff0000")
}

func TestRender_CustomPrompter(t *testing.T) {
	facade := build(t, []field.Field{
		field.Custom("color", colorPicker{}, nil),
		field.Custom("opaque", "unknown-component", nil),
	})
	out, err := newRenderer(t, WithPromptDriver(&stubDriver{})).Render(context.Background(), facade, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"color":"#ff0000","opaque":null}` {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestRender_OutputFormats(t *testing.T) {
	fields := []field.Field{
		field.Text("title", "Hello"),
		field.Group("owner", []field.Field{field.Text("name", "Ada")}),
	}
	cases := []struct {
		format      OutputFormat
		contentType string
		want        string
	}{
		{OutputFormatPrettyText, "text/plain", "owner.name=Ada\ntitle=Hello\n"},
		{OutputFormatFormURLEncoded, "application/x-www-form-urlencoded", "owner.name=Ada&title=Hello"},
	}
	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			driver := &stubDriver{inputs: []string{"Hello", "Ada"}}
			renderer := newRenderer(t, WithPromptDriver(driver), WithOutputFormat(tc.format))
			if renderer.ContentType() != tc.contentType {
				t.Fatalf("content type mismatch: %q", renderer.ContentType())
			}
			out, err := renderer.Render(context.Background(), build(t, fields), render.RenderOptions{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if string(out) != tc.want {
				t.Fatalf("output mismatch\nwant: %q\n got: %q", tc.want, out)
			}
		})
	}
}

func TestRender_Preconditions(t *testing.T) {
	renderer := newRenderer(t, WithPromptDriver(&stubDriver{}))
	if _, err := renderer.Render(context.Background(), nil, render.RenderOptions{}); err == nil {
		t.Fatalf("nil facade should fail")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, build(t, nil), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if renderer.Name() != "tui" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
}

func newRenderer(t *testing.T, options ...Option) *Renderer {
	t.Helper()
	r, err := New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func build(t *testing.T, fields []field.Field) *form.Facade {
	t.Helper()
	b, err := form.NewBuilder()
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	facade, err := b.BuildFields(fields)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return facade
}

func TestAnswerValidator(t *testing.T) {
	var seen []string
	validate := answerValidator(func(s string) error {
		seen = append(seen, s)
		if s == "" {
			return errors.New("required")
		}
		return nil
	})

	if err := validate("Ada"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validate(42); err == nil {
		t.Fatalf("non-string answers should validate as empty")
	}
	if diff := cmp.Diff([]string{"Ada", ""}, seen); diff != "" {
		t.Fatalf("validated answers mismatch (-want +got):\n%s", diff)
	}
}
