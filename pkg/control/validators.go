package control

import (
	"fmt"
	"net/mail"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Required flags empty values: nil, blank strings, false, the zero time and
// empty collections. Checkboxes use it to demand a tick.
func Required() Validator {
	return func(c Control) Errors {
		if isEmpty(c.Value()) {
			return Errors{"required": true}
		}
		return nil
	}
}

// MinLength flags strings shorter than n runes. Empty values pass; combine
// with Required to reject them.
func MinLength(n int) Validator {
	return func(c Control) Errors {
		s, ok := c.Value().(string)
		if !ok || s == "" {
			return nil
		}
		if got := utf8.RuneCountInString(s); got < n {
			return Errors{"minLength": map[string]any{"requiredLength": n, "actualLength": got}}
		}
		return nil
	}
}

// MaxLength flags strings longer than n runes.
func MaxLength(n int) Validator {
	return func(c Control) Errors {
		s, ok := c.Value().(string)
		if !ok {
			return nil
		}
		if got := utf8.RuneCountInString(s); got > n {
			return Errors{"maxLength": map[string]any{"requiredLength": n, "actualLength": got}}
		}
		return nil
	}
}

// Min flags numbers below limit.
func Min(limit float64) Validator {
	return func(c Control) Errors {
		n, ok := toFloat(c.Value())
		if ok && n < limit {
			return Errors{"min": map[string]any{"min": limit, "actual": n}}
		}
		return nil
	}
}

// Max flags numbers above limit.
func Max(limit float64) Validator {
	return func(c Control) Errors {
		n, ok := toFloat(c.Value())
		if ok && n > limit {
			return Errors{"max": map[string]any{"max": limit, "actual": n}}
		}
		return nil
	}
}

// Pattern flags non-empty strings that do not match the full expression.
func Pattern(expr string) (Validator, error) {
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, fmt.Errorf("control: pattern %q: %w", expr, err)
	}
	return func(c Control) Errors {
		s, ok := c.Value().(string)
		if !ok || s == "" {
			return nil
		}
		if !re.MatchString(s) {
			return Errors{"pattern": map[string]any{"requiredPattern": expr, "actualValue": s}}
		}
		return nil
	}, nil
}

// Email flags non-empty strings that are not a bare address.
func Email() Validator {
	return func(c Control) Errors {
		s, ok := c.Value().(string)
		if !ok || s == "" {
			return nil
		}
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return Errors{"email": true}
		}
		return nil
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case time.Time:
		return v.IsZero()
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func toFloat(value any) (float64, bool) {
	if !isNumber(value) {
		return 0, false
	}
	return reflect.ValueOf(value).Convert(reflect.TypeOf(float64(0))).Float(), true
}
