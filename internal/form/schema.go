// internal/form/schema.go
//
// Feleck – Forms subsystem: compiled validation schema.
//
// Context
//   A Schema is the compiled, immutable form of a FormDef: an ordered list of
//   fields, each with an ordered list of rules.  Validate is a pure function
//   of its input.  For every field the first failing rule in declared order
//   decides the single message shown, so users fix one problem at a time.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
)

// Field is one named input and its ordered rules.
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is safe for concurrent use once built.
type Schema struct {
	id     string
	fields []Field
}

// Values is the narrowed result of a successful validation.  It holds
// exactly the fields the schema declares.
type Values map[string]string

func (v Values) Email() string       { return v[FieldEmail] }
func (v Values) Password() string    { return v[FieldPassword] }
func (v Values) PhoneNumber() string { return v[FieldPhoneNumber] }

// Result is the outcome of Schema.Validate.  Violations are ordered by field
// declaration; Values is nil unless every field passed.
type Result struct {
	Values     Values
	Violations []ErrorField
}

// OK reports whether every field passed.
func (r Result) OK() bool { return len(r.Violations) == 0 }

// Errors returns the violations as a field → message map.
func (r Result) Errors() FieldErrors {
	fe := make(FieldErrors, len(r.Violations))
	for _, v := range r.Violations {
		fe[v.Name] = v.Message
	}
	return fe
}

// NewSchema checks the field list and returns a Schema.  Field names must be
// unique, every rule needs a message, and no two rules of one field may share
// a message.
func NewSchema(id string, fields ...Field) (*Schema, error) {
	if id == "" {
		return nil, errors.New("schema id is empty")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("schema %s: no fields", id)
	}

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s: field missing name", id)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %q", id, f.Name)
		}
		seen[f.Name] = struct{}{}

		msgs := make(map[string]string, len(f.Rules))
		for _, r := range f.Rules {
			if r.Check == nil {
				return nil, fmt.Errorf("schema %s: field %q rule %q has no check", id, f.Name, r.Name)
			}
			if r.Message == "" {
				return nil, fmt.Errorf("schema %s: field %q rule %q has no message", id, f.Name, r.Name)
			}
			if prev, dup := msgs[r.Message]; dup {
				return nil, fmt.Errorf("schema %s: field %q rules %q and %q share a message", id, f.Name, prev, r.Name)
			}
			msgs[r.Message] = r.Name
		}
	}

	return &Schema{id: id, fields: fields}, nil
}

// ID returns the form ID the schema was compiled from.
func (s *Schema) ID() string { return s.id }

// Fields returns the declared field names in order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// Declares reports whether the schema has a field called name.
func (s *Schema) Declares(name string) bool {
	for _, f := range s.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Validate runs every field against input.  Missing keys read as "".
func (s *Schema) Validate(input map[string]string) Result {
	var res Result
	for _, f := range s.fields {
		val := input[f.Name]
		for _, r := range f.Rules {
			if !r.Check(val) {
				res.Violations = append(res.Violations, ErrorField{
					Name:    f.Name,
					Rule:    r.Name,
					Message: r.Message,
				})
				break
			}
		}
	}
	if !res.OK() {
		return res
	}

	res.Values = make(Values, len(s.fields))
	for _, f := range s.fields {
		res.Values[f.Name] = input[f.Name]
	}
	return res
}
