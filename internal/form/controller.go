// internal/form/controller.go
//
// Feleck – Forms subsystem: form controller.
//
// Context
//   The Controller owns the current field values and the last computed error
//   set for one form instance.  Edits only store values.  Submit runs the
//   Schema over everything and either forwards the narrowed Values to the
//   caller's SubmitHandler or records one message per failing field.
//
//   A Controller belongs to a single caller (one UI session, one HTTP
//   request) and is not safe for concurrent use.
//
//------------------------------------------------------------------------------

package form

// SubmitHandler receives validated values.  meta is whatever the caller
// passed to SubmitWith; Submit passes nil.
type SubmitHandler func(values Values, meta any)

// FieldState tracks one field between edits and submission attempts.
type FieldState int

const (
	Untouched FieldState = iota
	Dirty
	Valid
	Invalid
)

func (s FieldState) String() string {
	switch s {
	case Untouched:
		return "untouched"
	case Dirty:
		return "dirty"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Controller binds input events to a Schema and a SubmitHandler.
type Controller struct {
	schema   *Schema
	onSubmit SubmitHandler

	values map[string]string
	states map[string]FieldState
	errs   FieldErrors
	last   Result
}

// NewController returns a Controller for schema.  A nil onSubmit discards
// validated values.
func NewController(schema *Schema, onSubmit SubmitHandler) *Controller {
	if onSubmit == nil {
		onSubmit = func(Values, any) {}
	}
	return &Controller{
		schema:   schema,
		onSubmit: onSubmit,
		values:   make(map[string]string),
		states:   make(map[string]FieldState),
		errs:     FieldErrors{},
	}
}

// SetFieldValue stores value for field and marks it dirty.  Fields the schema
// does not declare are ignored.
func (c *Controller) SetFieldValue(field, value string) {
	if !c.schema.Declares(field) {
		return
	}
	c.values[field] = value
	c.states[field] = Dirty
}

// Value returns the current raw value of field.
func (c *Controller) Value(field string) string { return c.values[field] }

// Submit validates the current values and, on success, calls the handler
// with a nil meta.  It reports whether the handler ran.
func (c *Controller) Submit() bool { return c.SubmitWith(nil) }

// SubmitWith is Submit with an explicit meta argument for the handler.
func (c *Controller) SubmitWith(meta any) bool {
	res := c.schema.Validate(c.values)
	c.last = res
	c.errs = res.Errors()

	for _, name := range c.schema.Fields() {
		if _, bad := c.errs[name]; bad {
			c.states[name] = Invalid
		} else {
			c.states[name] = Valid
		}
	}

	if !res.OK() {
		return false
	}
	c.onSubmit(res.Values, meta)
	return true
}

// Errors returns a copy of the error set from the last submission attempt.
func (c *Controller) Errors() FieldErrors { return c.errs.clone() }

// Error returns the displayed message for field, if it failed last time.
func (c *Controller) Error(field string) (string, bool) {
	msg, ok := c.errs[field]
	return msg, ok
}

// State returns the current state of field.
func (c *Controller) State(field string) FieldState { return c.states[field] }

// LastResult returns the full result of the last submission attempt.
func (c *Controller) LastResult() Result { return c.last }
