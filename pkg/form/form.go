package form

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/internal/builder"
	"github.com/goliatone/go-formbuilder/pkg/config"
	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/field"
)

type (
	// Facade is a built form: controls plus the annotated descriptors.
	Facade = builder.Facade
	// RowSet manages the rows of one repeated group.
	RowSet = builder.RowSet
	// BuildError locates a build failure in the descriptor tree.
	BuildError = builder.BuildError
)

var (
	ErrConfiguration   = builder.ErrConfiguration
	ErrUnsupportedKind = builder.ErrUnsupportedKind
	ErrDuplicateName   = builder.ErrDuplicateName
)

// Builder converts field descriptors into facades.
type Builder interface {
	Build(root field.Field, validators ...control.Validator) (*Facade, error)
	BuildFields(fields []field.Field, validators ...control.Validator) (*Facade, error)
}

// Option configures the builder behaviour.
type Option func(*options)

type options struct {
	config      *config.Config
	logger      *zap.Logger
	labeler     func(string) string
	strictNames bool
	lazyRows    bool
	idGenerator func() string
}

// WithConfig overrides the default layout and repeated-group configuration.
// Zero-valued fields of cfg keep their defaults.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.config = &cfg
	}
}

// WithLogger sets the logger used while building and managing rows.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) Option {
	return func(o *options) {
		o.labeler = labeler
	}
}

// WithStrictNames rejects sibling controls that share a name instead of
// letting the later one win.
func WithStrictNames() Option {
	return func(o *options) {
		o.strictNames = true
	}
}

// WithEagerRows controls whether repeated groups are seeded from their initial
// records during Build (the default) or later through Facade.SeedRows.
func WithEagerRows(enabled bool) Option {
	return func(o *options) {
		o.lazyRows = !enabled
	}
}

// WithIDGenerator overrides the facade identifier generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.idGenerator = fn
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(opts ...Option) (Builder, error) {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	internal := builder.Options{
		Logger:      cfg.logger,
		Labeler:     cfg.labeler,
		StrictNames: cfg.strictNames,
		LazyRows:    cfg.lazyRows,
		IDGenerator: cfg.idGenerator,
	}
	if cfg.config != nil {
		internal.Config = *cfg.config
	}
	b, err := builder.New(internal)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DefaultLabeler converts a control name into a human-friendly label.
func DefaultLabeler(name string) string {
	return builder.DefaultLabeler(name)
}
