// internal/config/loader_test.go
//
// Unit-tests for Load: YAML + env layering, defaults, validation, and vault
// reference resolution.
//
// Run: go test ./internal/config -v

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeRoot creates <tmp>/conf/global.yaml and points FELECK_ROOT at it.
func writeRoot(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if yaml != "" {
		if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	t.Setenv("FELECK_ROOT", root)
	return root
}

type fakeResolver map[string]string

func (f fakeResolver) GetKV(_ context.Context, path, key string, _ time.Duration) (string, error) {
	v, ok := f[path+"#"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func TestLoad_Defaults(t *testing.T) {
	root := writeRoot(t, "")

	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":8080" || cfg.Forms.Variant != "email" || cfg.Log.Level != "info" {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
	if cfg.Paths.Root != root {
		t.Fatalf("root = %q, want %q", cfg.Paths.Root, root)
	}
	if cfg.FormID() != "auth/login" {
		t.Fatalf("FormID = %q", cfg.FormID())
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	writeRoot(t, `
http:
  listen_addr: "127.0.0.1:9000"
forms:
  variant: phone
  enable_rules: ["password.digit"]
`)
	t.Setenv("FELECK_HTTP__LISTEN_ADDR", "127.0.0.1:9100")

	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != "127.0.0.1:9100" {
		t.Fatalf("env override ignored: %q", cfg.HTTP.ListenAddr)
	}
	if cfg.FormID() != "auth/login-phone" {
		t.Fatalf("FormID = %q", cfg.FormID())
	}
	if len(cfg.Forms.EnableRules) != 1 || cfg.Forms.EnableRules[0] != "password.digit" {
		t.Fatalf("enable_rules = %#v", cfg.Forms.EnableRules)
	}
}

func TestLoad_InvalidVariant(t *testing.T) {
	writeRoot(t, "forms:\n  variant: sms\n")

	if _, err := Load(context.Background(), nil); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	writeRoot(t, "http:\n  trusted_proxies: [\"10.0.0.0/8\", \"192.0.2.1\"]\n")
	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.HTTP.TrustedProxies) != 2 {
		t.Fatalf("trusted_proxies = %#v", cfg.HTTP.TrustedProxies)
	}

	writeRoot(t, "http:\n  trusted_proxies: [\"proxy.local\"]\n")
	if _, err := Load(context.Background(), nil); err == nil {
		t.Fatalf("expected validation error for non-IP proxy")
	}
}

func TestLoad_VaultReferences(t *testing.T) {
	writeRoot(t, `
database:
  dsn: "vault:secret/feleck#dsn"
`)

	if _, err := Load(context.Background(), nil); !errors.Is(err, ErrNoResolver) {
		t.Fatalf("err = %v, want ErrNoResolver", err)
	}

	cfg, err := Load(context.Background(), fakeResolver{"secret/feleck#dsn": "user:pw@tcp(db:3306)/feleck"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.DSN != "user:pw@tcp(db:3306)/feleck" {
		t.Fatalf("dsn = %q", cfg.Database.DSN)
	}
}

func TestNeedsSecrets(t *testing.T) {
	c := &Config{}
	if needsSecrets(c) {
		t.Fatalf("empty config needs secrets")
	}
	c.Security.CSRFKey = "vault:secret/feleck#csrf"
	if !needsSecrets(c) {
		t.Fatalf("vault reference not detected")
	}
}

func TestResolveSecrets_Malformed(t *testing.T) {
	c := &Config{Database: Database{DSN: "vault:secret/feleck"}}
	if err := resolveSecrets(context.Background(), c, fakeResolver{}); err == nil {
		t.Fatalf("expected malformed reference error")
	}
}
