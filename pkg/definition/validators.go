package definition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/control"
)

// ErrUnknownValidator is returned when a definition references a validator
// that is neither built in nor registered through WithValidator.
var ErrUnknownValidator = errors.New("definition: unknown validator")

// builtinValidator resolves the parameterised validators every loader knows:
// required, email, minLength:n, maxLength:n, min:n, max:n and pattern:expr.
func builtinValidator(name, arg string, hasArg bool) (control.Validator, bool, error) {
	switch name {
	case "required":
		return control.Required(), true, nil
	case "email":
		return control.Email(), true, nil
	case "minLength", "maxLength":
		if !hasArg {
			return nil, true, fmt.Errorf("definition: validator %q requires a length", name)
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return nil, true, fmt.Errorf("definition: validator %q: invalid length %q", name, arg)
		}
		if name == "minLength" {
			return control.MinLength(n), true, nil
		}
		return control.MaxLength(n), true, nil
	case "min", "max":
		if !hasArg {
			return nil, true, fmt.Errorf("definition: validator %q requires a limit", name)
		}
		limit, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, true, fmt.Errorf("definition: validator %q: invalid limit %q", name, arg)
		}
		if name == "min" {
			return control.Min(limit), true, nil
		}
		return control.Max(limit), true, nil
	case "pattern":
		if !hasArg {
			return nil, true, fmt.Errorf("definition: validator %q requires an expression", name)
		}
		v, err := control.Pattern(arg)
		return v, true, err
	}
	return nil, false, nil
}

func (s *settings) resolveValidators(refs []string) ([]control.Validator, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]control.Validator, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if v, ok := s.validators[ref]; ok {
			out = append(out, v)
			continue
		}
		name, arg, hasArg := strings.Cut(ref, ":")
		v, known, err := builtinValidator(name, arg, hasArg)
		if err != nil {
			return nil, err
		}
		if !known {
			return nil, fmt.Errorf("%w %q", ErrUnknownValidator, ref)
		}
		out = append(out, v)
	}
	return out, nil
}
