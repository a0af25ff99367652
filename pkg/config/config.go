package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/goliatone/go-formbuilder/pkg/layout"
)

// EnvPrefix prefixes environment overrides, e.g. FORMBUILDER_COLUMNS_PER_ROW.
const EnvPrefix = "FORMBUILDER"

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

// LabelSource streams the text of the add-row action. Implementations may emit
// several values over time (for example after a locale switch) and close the
// channel when ctx is done.
type LabelSource func(ctx context.Context) <-chan string

// Config represents the form builder configuration.
type Config struct {
	ColumnsPerRow       int              `mapstructure:"columns_per_row"`
	ColumnClassTemplate string           `mapstructure:"column_class_template"`
	ContainerClass      string           `mapstructure:"container_class"`
	RowClass            string           `mapstructure:"row_class"`
	GroupArray          GroupArrayConfig `mapstructure:"group_array"`

	// AddRowLabelSource overrides the static AddRowText when set.
	AddRowLabelSource LabelSource `mapstructure:"-"`
}

// GroupArrayConfig configures repeated groups.
type GroupArrayConfig struct {
	AddRowText       string `mapstructure:"add_row_text"`
	TrailingEmptyRow bool   `mapstructure:"trailing_empty_row"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ColumnsPerRow:       layout.DefaultColumns,
		ColumnClassTemplate: layout.DefaultTemplate,
		ContainerClass:      "container",
		RowClass:            "row",
		GroupArray: GroupArrayConfig{
			AddRowText: "Add Row",
		},
	}
}

// WithDefaults fills the zero-valued fields of c from Default. Booleans and
// the label source are taken from c as they are.
func (c Config) WithDefaults() Config {
	def := Default()
	if c.ColumnsPerRow == 0 {
		c.ColumnsPerRow = def.ColumnsPerRow
	}
	if c.ColumnClassTemplate == "" {
		c.ColumnClassTemplate = def.ColumnClassTemplate
	}
	if c.ContainerClass == "" {
		c.ContainerClass = def.ContainerClass
	}
	if c.RowClass == "" {
		c.RowClass = def.RowClass
	}
	if c.GroupArray.AddRowText == "" {
		c.GroupArray.AddRowText = def.GroupArray.AddRowText
	}
	return c
}

// Validate checks the configuration for values the builder cannot work with.
func (c Config) Validate() error {
	if c.ColumnsPerRow <= 0 {
		return fmt.Errorf("%w: columns_per_row must be positive, got %d", ErrInvalid, c.ColumnsPerRow)
	}
	if !strings.Contains(c.ColumnClassTemplate, layout.WidthPlaceholder) {
		return fmt.Errorf("%w: column_class_template %q must contain %s", ErrInvalid, c.ColumnClassTemplate, layout.WidthPlaceholder)
	}
	return nil
}

// Distributor returns the layout distributor described by the configuration.
func (c Config) Distributor() layout.Distributor {
	return layout.New(c.ColumnsPerRow, c.ColumnClassTemplate)
}

// AddRowLabel returns the label stream for the add-row action.
func (c Config) AddRowLabel(ctx context.Context) <-chan string {
	if c.AddRowLabelSource != nil {
		return c.AddRowLabelSource(ctx)
	}
	return StaticLabel(c.GroupArray.AddRowText)(ctx)
}

// StaticLabel returns a source that emits text once and closes.
func StaticLabel(text string) LabelSource {
	return func(context.Context) <-chan string {
		ch := make(chan string, 1)
		ch <- text
		close(ch)
		return ch
	}
}

// Load reads the configuration from path. An empty path looks for
// formbuilder.{yaml,yml,toml,json} in the working directory and falls back to
// the defaults when none exists. Environment variables prefixed with
// FORMBUILDER_ override file values.
func Load(path string) (Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("columns_per_row", defaults.ColumnsPerRow)
	v.SetDefault("column_class_template", defaults.ColumnClassTemplate)
	v.SetDefault("container_class", defaults.ContainerClass)
	v.SetDefault("row_class", defaults.RowClass)
	v.SetDefault("group_array.add_row_text", defaults.GroupArray.AddRowText)
	v.SetDefault("group_array.trailing_empty_row", defaults.GroupArray.TrailingEmptyRow)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("formbuilder")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
