// internal/form/definition.go
//
// Feleck – Forms subsystem: YAML definition loader.
//
// Context
//   Each form is declared in a YAML file: its identifier, title, submit
//   trigger, and an ordered list of fields with ordered rules.  The login
//   definitions ship embedded in the binary (defs/*.yaml).  Operators may drop
//   overrides into “<root>/forms/*.yaml”; a file with the same ID replaces
//   the embedded one.  Parsed definitions live in an in-memory registry so
//   the renderer, the schema compiler, and handlers share one source of truth.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldDef → RuleDef.
//   •  ParseFormDef / LoadFormDef parse one definition and check structure.
//   •  RegisterDefaults loads the embedded definitions.
//   •  RegisterForms walks override directories, in precedence order.
//   •  Compile turns a FormDef into a Schema, resolving default messages and
//      dropping disabled rules unless the caller enables them by key.
//
//------------------------------------------------------------------------------

package form

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defs/*.yaml
var embedded embed.FS

// Well-known definition IDs.
const (
	LoginFormID      = "auth/login"
	LoginPhoneFormID = "auth/login-phone"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
type FormDef struct {
	ID     string     `yaml:"id"`      // Namespaced identifier, e.g. “auth/login”.
	Title  string     `yaml:"title"`   // Display title, optional.
	TestID string     `yaml:"test_id"` // Stable ID of the title element.
	Submit SubmitDef  `yaml:"submit"`  // Submit trigger.
	Fields []FieldDef `yaml:"fields"`  // Ordered fields.
}

// SubmitDef describes the submit trigger.
type SubmitDef struct {
	Label  string `yaml:"label"`
	TestID string `yaml:"test_id"`
}

// FieldDef describes a single input control and its rules.
type FieldDef struct {
	Name        string    `yaml:"name"`        // Submission key.  Required.
	Label       string    `yaml:"label"`       // Human-readable label.  Required.
	Type        string    `yaml:"type"`        // text, email, tel, password.
	Placeholder string    `yaml:"placeholder"` // Optional.
	TestID      string    `yaml:"test_id"`     // Stable ID for UI tests.
	Rules       []RuleDef `yaml:"rules"`       // Evaluated in order.
}

// RuleDef declares one rule.  Name defaults to Rule and must be unique in the
// field; it is what “enable_rules” entries and metrics refer to.
type RuleDef struct {
	Rule     string `yaml:"rule"`
	Name     string `yaml:"name"`
	Min      int    `yaml:"min"`
	Pattern  string `yaml:"pattern"`
	Message  string `yaml:"message"`
	Disabled bool   `yaml:"disabled"`
}

func (rd RuleDef) ruleName() string {
	if rd.Name != "" {
		return rd.Name
	}
	return rd.Rule
}

// Field returns the FieldDef called name.
func (fd *FormDef) Field(name string) (FieldDef, bool) {
	for _, f := range fd.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// declaresDisabled reports whether key (“field.rule”) names a rule of fd
// marked disabled.
func (fd *FormDef) declaresDisabled(key string) bool {
	for _, f := range fd.Fields {
		for _, rd := range f.Rules {
			if rd.Disabled && f.Name+"."+rd.ruleName() == key {
				return true
			}
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*FormDef)
)

// GetFormDef returns a parsed FormDef by ID.  The boolean is false when the ID
// is unknown.
func GetFormDef(id string) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[id]
	return fd, ok
}

func register(fd *FormDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[fd.ID] = fd
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// ParseFormDef parses raw YAML and validates its structure.  source names the
// origin in error messages.
func ParseFormDef(raw []byte, source string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", source, err)
	}
	if err := validateFormDef(&fd, source); err != nil {
		return nil, err
	}
	return &fd, nil
}

// LoadFormDef reads and parses one YAML file.  It never mutates the registry.
func LoadFormDef(path string) (*FormDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}
	return ParseFormDef(raw, path)
}

// RegisterDefaults loads the embedded definitions into the registry.
func RegisterDefaults() error {
	entries, err := fs.ReadDir(embedded, "defs")
	if err != nil {
		return err
	}
	for _, e := range entries {
		p := "defs/" + e.Name()
		raw, err := embedded.ReadFile(p)
		if err != nil {
			return err
		}
		fd, err := ParseFormDef(raw, p)
		if err != nil {
			return err
		}
		register(fd)
	}
	return nil
}

// RegisterForms loads every “*.yaml” under “<base>/forms/”.  baseDirs must be
// ordered lowest precedence first; later files replace earlier IDs.  Missing
// directories are skipped.
func RegisterForms(baseDirs []string) error {
	if len(baseDirs) == 0 {
		return errors.New("RegisterForms: no base directories provided")
	}

	for _, base := range baseDirs {
		root := filepath.Join(base, "forms")
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") {
				return nil
			}
			fd, err := LoadFormDef(path)
			if err != nil {
				return err // fail fast so issues surface loudly.
			}
			register(fd)
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Compilation
// -----------------------------------------------------------------------------

// Compile builds a Schema from fd.  enable lists “field.rule” keys of rules
// declared disabled that should run anyway.  A key naming no disabled rule of
// fd fails with ErrUnknownRule.
func Compile(fd *FormDef, enable ...string) (*Schema, error) {
	on := make(map[string]bool, len(enable))
	for _, k := range enable {
		on[k] = true
	}
	for _, k := range enable {
		if !fd.declaresDisabled(k) {
			return nil, fmt.Errorf("form %s: enable %q: %w", fd.ID, k, ErrUnknownRule)
		}
	}

	fields := make([]Field, 0, len(fd.Fields))
	for _, f := range fd.Fields {
		cf := Field{Name: f.Name}
		for _, rd := range f.Rules {
			if rd.Disabled && !on[f.Name+"."+rd.ruleName()] {
				continue
			}
			msg := rd.Message
			if msg == "" {
				msg, _ = defaultMessage(f.Name, rd.ruleName())
			}
			r, err := compileRule(f.Name, rd, msg)
			if err != nil {
				return nil, fmt.Errorf("form %s: %w", fd.ID, err)
			}
			cf.Rules = append(cf.Rules, r)
		}
		fields = append(fields, cf)
	}
	return NewSchema(fd.ID, fields...)
}

// Lookup compiles the registered form id.
func Lookup(id string, enable ...string) (*Schema, error) {
	fd, ok := GetFormDef(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, id)
	}
	return Compile(fd, enable...)
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

// validateFormDef enforces structural rules YAML tags cannot express.
func validateFormDef(fd *FormDef, src string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", src)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields'", src)
	}

	names := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := validateField(f, src); err != nil {
			return err
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", src, f.Name)
		}
		names[f.Name] = struct{}{}
	}
	return nil
}

// validateField confirms that essential attributes are present and that every
// rule resolves to a message.
func validateField(f *FieldDef, src string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", src)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", src, f.Name)
	}
	if f.Type == "" {
		return fmt.Errorf("form %s: field '%s' missing 'type'", src, f.Name)
	}

	ruleNames := make(map[string]struct{}, len(f.Rules))
	for _, rd := range f.Rules {
		if rd.Rule == "" {
			return fmt.Errorf("form %s: field '%s' has a rule without 'rule'", src, f.Name)
		}
		n := rd.ruleName()
		if _, dup := ruleNames[n]; dup {
			return fmt.Errorf("form %s: field '%s' duplicate rule '%s'", src, f.Name, n)
		}
		ruleNames[n] = struct{}{}

		if rd.Message == "" {
			if _, ok := defaultMessage(f.Name, n); !ok {
				return fmt.Errorf("form %s: field '%s' rule '%s' needs a 'message'", src, f.Name, n)
			}
		}
		// Compile once here so bad patterns fail at load, not at first submit.
		if _, err := compileRule(f.Name, rd, "-"); err != nil {
			return fmt.Errorf("form %s: %w", src, err)
		}
	}
	return nil
}
