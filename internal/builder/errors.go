package builder

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/field"
)

var (
	// ErrConfiguration reports a descriptor that cannot be built as declared.
	ErrConfiguration = errors.New("builder: invalid field configuration")
	// ErrUnsupportedKind reports a descriptor kind outside the closed set.
	ErrUnsupportedKind = errors.New("builder: unsupported field kind")
	// ErrDuplicateName reports sibling controls sharing a name when strict
	// names are enabled.
	ErrDuplicateName = fmt.Errorf("%w: duplicate control name", ErrConfiguration)
)

// BuildError locates a build failure in the descriptor tree.
type BuildError struct {
	Path string
	Kind field.Kind
	Err  error
}

func (e *BuildError) Error() string {
	path := e.Path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("%v (field %q, kind %q)", e.Err, path, e.Kind)
}

func (e *BuildError) Unwrap() error { return e.Err }

func buildErr(path string, f *field.Field, err error, format string, args ...any) error {
	detail := fmt.Sprintf(format, args...)
	wrapped := err
	if detail != "" {
		wrapped = fmt.Errorf("%w: %s", err, detail)
	}
	return &BuildError{Path: path, Kind: f.Kind, Err: wrapped}
}
