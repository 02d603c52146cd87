// internal/form/renderer.go
//
// Feleck – Forms subsystem: HTML renderer.
//
// Context
//   Converts a registered FormDef into plain HTML for the web login page.
//   Each input carries id="fld-{name}", a data-testid taken from the
//   definition, and an error span filled from the last submission attempt.
//   A CSRF token (csrf.go) is embedded as a hidden input.
//
// Style
//   Output HTML is deliberately plain so hosts style it with element
//   selectors.  Password inputs are never prefilled.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
)

// RenderOptions bundles optional parameters influencing HTML output.
type RenderOptions struct {
	// Action is the form's POST target.  Empty means the current URL.
	Action string
	// Prefill provides field values keyed by field name.
	Prefill map[string]string
	// Errors holds the message per field from the last submission attempt.
	Errors FieldErrors
}

// RenderForm returns the HTML markup for formID.
func RenderForm(formID string, opts RenderOptions) (template.HTML, error) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return "", fmt.Errorf("RenderForm: %w %q", ErrUnknownForm, formID)
	}

	token, err := GenerateToken()
	if err != nil {
		return "", fmt.Errorf("RenderForm: csrf token: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(`<form class="feleck-form" method="post"`)
	if opts.Action != "" {
		buf.WriteString(` action="` + html.EscapeString(opts.Action) + `"`)
	}
	buf.WriteString(` novalidate>` + "\n")

	if fd.Title != "" {
		buf.WriteString(`<h1` + testIDAttr(fd.TestID) + `>` + html.EscapeString(fd.Title) + `</h1>` + "\n")
	}

	for i := range fd.Fields {
		if err := writeField(&buf, &fd.Fields[i], opts); err != nil {
			return "", err
		}
	}

	buf.WriteString(fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`+"\n", csrfField, token))

	label := fd.Submit.Label
	if label == "" {
		label = "Submit"
	}
	buf.WriteString(`<button type="submit"` + testIDAttr(fd.Submit.TestID) + `>` + html.EscapeString(label) + `</button>` + "\n")
	buf.WriteString(`</form>`)
	return template.HTML(buf.String()), nil
}

// writeField emits one labelled input and its error span.
func writeField(buf *bytes.Buffer, f *FieldDef, opts RenderOptions) error {
	switch f.Type {
	case "text", "email", "tel", "password":
	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	name := html.EscapeString(f.Name)
	buf.WriteString(`<div class="form-field">` + "\n")
	buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(f.Label) + `</label>` + "\n")
	buf.WriteString(`<input id="fld-` + name + `" name="` + name + `" type="` + f.Type + `"`)
	buf.WriteString(testIDAttr(f.TestID))
	if f.Placeholder != "" {
		buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
	}
	if v := opts.Prefill[f.Name]; v != "" && f.Type != "password" {
		buf.WriteString(` value="` + html.EscapeString(v) + `"`)
	}
	msg, bad := opts.Errors[f.Name]
	if bad {
		buf.WriteString(` aria-invalid="true"`)
	}
	buf.WriteString(`>` + "\n")

	buf.WriteString(`<span class="error" aria-live="polite">`)
	if bad {
		buf.WriteString(html.EscapeString(msg))
	}
	buf.WriteString(`</span>` + "\n")
	buf.WriteString(`</div>` + "\n")
	return nil
}

func testIDAttr(id string) string {
	if id == "" {
		return ""
	}
	return ` data-testid="` + html.EscapeString(id) + `"`
}
