// internal/form/errors.go
//
// Feleck – Forms subsystem: validation error types.
//
// Context
//   Field validation failure is the only error kind the schema produces, and
//   it is always a value.  validationError exists for the HTTP boundary so
//   handlers can tell user input errors from system failures.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"sort"
)

// ErrUnknownForm is returned when a form ID has no registered definition.
var ErrUnknownForm = errors.New("unknown form")

// ErrUnknownRule is returned when an enabled rule key matches no rule declared
// disabled in the form definition.
var ErrUnknownRule = errors.New("no disabled rule with that key")

// ErrorField describes a single validation failure: the field, the rule that
// failed first, and the message to display.
type ErrorField struct {
	Name    string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// FieldErrors maps field name to its one displayed message.  A missing entry
// means the field is valid.
type FieldErrors map[string]string

// Fields returns the failing field names, sorted.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for k := range fe {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (fe FieldErrors) clone() FieldErrors {
	out := make(FieldErrors, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}

// validationError wraps []ErrorField and satisfies the error interface.
type validationError struct{ Fields []ErrorField }

func (ve validationError) Error() string { return "form validation failed" }

// IsValidationError reports whether err came from a failed submission.
func IsValidationError(err error) bool {
	var ve validationError
	return errors.As(err, &ve)
}

// ErrorFields extracts the per-field failures from a validation error.  It
// returns nil for any other error.
func ErrorFields(err error) []ErrorField {
	var ve validationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
