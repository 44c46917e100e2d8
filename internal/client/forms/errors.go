package forms

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// ErrClientValidation marks input rejected before any network call.
var ErrClientValidation = errors.New("invalid input")

// Error lists the rejected fields with a message each. Keys are the form's
// JSON field names.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrClientValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return ErrClientValidation }

// Field returns the message for one field, or "".
func (e *Error) Field(name string) string {
	return e.Fields[name]
}

// Invalid builds an *Error for a single field.
func Invalid(field, msg string) error {
	return &Error{Fields: map[string]string{field: msg}}
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for k, v := range verrs {
			if v != nil {
				fields[k] = v.Error()
			}
		}
		return &Error{Fields: fields}
	}
	return fmt.Errorf("%w: %v", ErrClientValidation, err)
}
