package builder

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/config"
)

// Options configures the behaviour of the Builder. Options are constructed by
// the public adapter in pkg/form and passed into New.
type Options struct {
	Config      config.Config
	Logger      *zap.Logger
	Labeler     func(string) string
	StrictNames bool
	// LazyRows defers seeding groupArray rows from their initial records to
	// Facade.SeedRows instead of doing it during Build.
	LazyRows    bool
	IDGenerator func() string
}

func defaultOptions() Options {
	return Options{
		Config:      config.Default(),
		Logger:      zap.NewNop(),
		Labeler:     DefaultLabeler,
		IDGenerator: uuid.NewString,
	}
}
