// internal/form/submit.go
//
// Feleck – Forms subsystem: consolidated submit helpers.
//
// Context
//   Handlers want one call that feeds request input through a Controller,
//   counts the outcome, and returns either the narrowed Values or a
//   validation error.  SubmitInput serves decoded JSON; HandleSubmit serves
//   an HTML form POST and checks CSRF first.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"net/http"

	"github.com/Feleck-Project/feleck-client/internal/metrics"
)

// ErrBadToken is returned by HandleSubmit when the CSRF token is missing,
// expired, or forged.
var ErrBadToken = errors.New("security token invalid")

// SubmitMeta is the meta value handed to a SubmitHandler by the HTTP helpers.
type SubmitMeta struct {
	Ctx    context.Context
	FormID string
}

// SubmitInput runs input through a fresh Controller for schema.  On success
// onSubmit has been called once and the Values are returned.  On failure the
// error satisfies IsValidationError.
func SubmitInput(ctx context.Context, schema *Schema, input map[string]string, onSubmit SubmitHandler) (Values, error) {
	var got Values
	c := NewController(schema, func(v Values, meta any) {
		got = v
		if onSubmit != nil {
			onSubmit(v, meta)
		}
	})
	for _, name := range schema.Fields() {
		if v, ok := input[name]; ok {
			c.SetFieldValue(name, v)
		}
	}

	if !c.SubmitWith(SubmitMeta{Ctx: ctx, FormID: schema.ID()}) {
		res := c.LastResult()
		observe(schema.ID(), res)
		return nil, validationError{Fields: res.Violations}
	}
	observe(schema.ID(), c.LastResult())
	return got, nil
}

// HandleSubmit parses r, verifies the CSRF token, and submits the posted
// fields.  System failures are returned as plain errors.
func HandleSubmit(schema *Schema, r *http.Request, onSubmit SubmitHandler) (Values, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	if tok := r.PostForm.Get(csrfField); tok == "" || !VerifyToken(tok) {
		metrics.SubmitTotal.WithLabelValues(schema.ID(), "rejected").Inc()
		return nil, ErrBadToken
	}

	input := make(map[string]string, len(schema.Fields()))
	for _, name := range schema.Fields() {
		if vs, ok := r.PostForm[name]; ok && len(vs) > 0 {
			input[name] = vs[0]
		}
	}
	return SubmitInput(r.Context(), schema, input, onSubmit)
}

func observe(formID string, res Result) {
	if res.OK() {
		metrics.SubmitTotal.WithLabelValues(formID, "ok").Inc()
		return
	}
	metrics.SubmitTotal.WithLabelValues(formID, "invalid").Inc()
	for _, v := range res.Violations {
		metrics.FieldErrorsTotal.WithLabelValues(formID, v.Name, v.Rule).Inc()
	}
}
