// internal/form/definition_test.go
//
// Unit-tests for the YAML loader, override directories, and Compile.

package form

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRegisterDefaults(t *testing.T) {
	if err := RegisterDefaults(); err != nil {
		t.Fatalf("RegisterDefaults: %v", err)
	}
	fd, ok := GetFormDef(LoginFormID)
	if !ok {
		t.Fatalf("%s not registered", LoginFormID)
	}
	if fd.Submit.TestID != "login-button" {
		t.Fatalf("submit test id = %q", fd.Submit.TestID)
	}
	pw, ok := fd.Field("password")
	if !ok || pw.TestID != "password-input" || pw.Type != "password" {
		t.Fatalf("password field = %#v", pw)
	}
	if _, ok := GetFormDef(LoginPhoneFormID); !ok {
		t.Fatalf("%s not registered", LoginPhoneFormID)
	}
}

func TestParseFormDef_Errors(t *testing.T) {
	cases := map[string]string{
		"missing id": `
fields:
  - {name: a, label: A, type: text}`,
		"no fields": `id: x/y`,
		"duplicate field": `
id: x/y
fields:
  - {name: a, label: A, type: text}
  - {name: a, label: A, type: text}`,
		"missing label": `
id: x/y
fields:
  - {name: a, type: text}`,
		"message needed": `
id: x/y
fields:
  - name: nickname
    label: Nick
    type: text
    rules:
      - rule: required`,
		"bad pattern": `
id: x/y
fields:
  - name: a
    label: A
    type: text
    rules:
      - {rule: pattern, pattern: "[", message: bad}`,
		"unknown rule": `
id: x/y
fields:
  - name: a
    label: A
    type: text
    rules:
      - {rule: luhn, message: bad}`,
		"duplicate rule": `
id: x/y
fields:
  - name: a
    label: A
    type: text
    rules:
      - {rule: required, message: one}
      - {rule: required, message: two}`,
	}

	for name, raw := range cases {
		if _, err := ParseFormDef([]byte(raw), name); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestRegisterForms_Override(t *testing.T) {
	if err := RegisterDefaults(); err != nil {
		t.Fatalf("RegisterDefaults: %v", err)
	}
	root := t.TempDir()
	dir := filepath.Join(root, "forms")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	const custom = `
id: test/override
fields:
  - name: email
    label: Email
    type: email
    rules:
      - rule: required
        message: Email is required.
      - rule: email
`
	if err := os.WriteFile(filepath.Join(dir, "override.yaml"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := RegisterForms([]string{filepath.Join(root, "missing"), root}); err != nil {
		t.Fatalf("RegisterForms: %v", err)
	}

	s, err := Lookup("test/override")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	errs := s.Validate(nil).Errors()
	if errs["email"] != "Email is required." {
		t.Fatalf("override message = %q", errs["email"])
	}
	// Unset messages fall back to the catalogue.
	if got := s.Validate(map[string]string{"email": "nope"}).Errors()["email"]; got != MsgEmailInvalid {
		t.Fatalf("fallback message = %q", got)
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("nope/nope")
	if !errors.Is(err, ErrUnknownForm) {
		t.Fatalf("err = %v, want ErrUnknownForm", err)
	}
}

func TestCompile_EnableUnknownKey(t *testing.T) {
	if err := RegisterDefaults(); err != nil {
		t.Fatalf("RegisterDefaults: %v", err)
	}
	for _, key := range []string{"password.digits", "password.special", "email.digit"} {
		_, err := Lookup(LoginFormID, key)
		if !errors.Is(err, ErrUnknownRule) {
			t.Fatalf("Lookup(%q) err = %v, want ErrUnknownRule", key, err)
		}
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error %q does not name %q", err, key)
		}
	}
}
