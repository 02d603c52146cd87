// components/login/login.go
//
// Feleck login component.
//
// Routes
//   GET  /login      – renders the login page.
//   POST /login      – HTML form submit (CSRF-checked), 303 on success.
//   POST /api/login  – JSON submit for mobile clients.
//
// Every submission that reaches validation is written to the attempt audit.
// The password itself is never logged or stored.
//
//------------------------------------------------------------------------------

package login

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Feleck-Project/feleck-client/internal/attempt"
	"github.com/Feleck-Project/feleck-client/internal/form"
	"github.com/Feleck-Project/feleck-client/internal/logger"
	"github.com/Feleck-Project/feleck-client/internal/metrics"
	"github.com/Feleck-Project/feleck-client/internal/requestinfo"
)

//go:embed templates/login.html
var templates embed.FS

// SuccessPath is where a valid HTML submission is redirected.
var SuccessPath = "/"

// maxBody caps the JSON request body.
const maxBody = 16 << 10

// Component serves the login form for one compiled schema.
type Component struct {
	schema   *form.Schema
	rec      attempt.Recorder
	onSubmit form.SubmitHandler
	page     *template.Template
}

// New builds the component.  A nil rec discards attempts; a nil onSubmit is
// a no-op.
func New(schema *form.Schema, rec attempt.Recorder, onSubmit form.SubmitHandler) (*Component, error) {
	if schema == nil {
		return nil, errors.New("login: nil schema")
	}
	if _, ok := form.GetFormDef(schema.ID()); !ok {
		return nil, form.ErrUnknownForm
	}
	if rec == nil {
		rec = attempt.Nop{}
	}
	page, err := template.ParseFS(templates, "templates/login.html")
	if err != nil {
		return nil, err
	}
	return &Component{schema: schema, rec: rec, onSubmit: onSubmit, page: page}, nil
}

// Routes returns the router mounted at "/".
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/login", c.handleLoginGET)
	r.Post("/login", c.handleLoginPOST)
	r.Post("/api/login", c.handleLoginAPI)
	return r
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleLoginGET(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, form.RenderOptions{})
}

func (c *Component) handleLoginPOST(w http.ResponseWriter, r *http.Request) {
	_, err := form.HandleSubmit(c.schema, r, c.onSubmit)
	switch {
	case err == nil:
		c.record(r, r.PostForm.Get(form.FieldEmail), nil)
		http.Redirect(w, r, SuccessPath, http.StatusSeeOther)
	case errors.Is(err, form.ErrBadToken):
		logger.FromContext(r.Context()).Warnw("login rejected", "reason", "csrf")
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	case form.IsValidationError(err):
		c.record(r, r.PostForm.Get(form.FieldEmail), err)
		prefill := make(map[string]string, len(c.schema.Fields()))
		for _, name := range c.schema.Fields() {
			prefill[name] = r.PostForm.Get(name)
		}
		c.render(w, r, http.StatusUnprocessableEntity, form.RenderOptions{
			Prefill: prefill,
			Errors:  toFieldErrors(form.ErrorFields(err)),
		})
	default:
		logger.FromContext(r.Context()).Errorw("login submit", "err", err)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
	}
}

type apiResponse struct {
	OK     bool              `json:"ok"`
	Errors []form.ErrorField `json:"errors,omitempty"`
}

func (c *Component) handleLoginAPI(w http.ResponseWriter, r *http.Request) {
	var input map[string]string
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed JSON body"})
		return
	}

	_, err := form.SubmitInput(r.Context(), c.schema, input, c.onSubmit)
	c.record(r, input[form.FieldEmail], err)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, apiResponse{Errors: form.ErrorFields(err)})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{OK: true})
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

func (c *Component) render(w http.ResponseWriter, r *http.Request, status int, opts form.RenderOptions) {
	fd, _ := form.GetFormDef(c.schema.ID())
	html, err := form.RenderForm(c.schema.ID(), opts)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("render login form", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.page.Execute(w, map[string]any{"Title": fd.Title, "Form": html}); err != nil {
		logger.FromContext(r.Context()).Errorw("execute login page", "err", err)
	}
}

// record writes the audit row.  Failures are logged and counted; they never
// change the response.
func (c *Component) record(r *http.Request, email string, err error) {
	a := attempt.Attempt{
		FormID:  c.schema.ID(),
		Email:   email,
		Outcome: attempt.OutcomeOK,
	}
	if err != nil {
		a.Outcome = attempt.OutcomeInvalid
		a.FailedRules = attempt.JoinRules(ruleKeys(form.ErrorFields(err)))
	}
	if info := requestinfo.FromContext(r.Context()); info != nil {
		a.Device, a.Browser, a.OS = info.Device, info.Browser, info.OS
		a.Country, a.IsBot = info.Country, info.IsBot
	}

	if rerr := c.rec.Record(context.WithoutCancel(r.Context()), a); rerr != nil {
		metrics.AttemptRecordErrorsTotal.Inc()
		logger.FromContext(r.Context()).Warnw("record login attempt", "err", rerr)
	}
}

func ruleKeys(fs []form.ErrorField) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name + "." + f.Rule
	}
	return out
}

func toFieldErrors(fs []form.ErrorField) form.FieldErrors {
	out := make(form.FieldErrors, len(fs))
	for _, f := range fs {
		out[f.Name] = f.Message
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
