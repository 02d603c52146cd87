// internal/vault/vault_test.go
//
// Unit-tests for helpers that do not need a live Vault server.

package vault

import (
	"context"
	"testing"
	"time"
)

func TestSplitMount(t *testing.T) {
	cases := map[string][2]string{
		"secret/feleck/db": {"secret", "feleck/db"},
		"secret":           {"secret", ""},
		"":                 {"", ""},
	}
	for in, want := range cases {
		m, r := splitMount(in)
		if m != want[0] || r != want[1] {
			t.Fatalf("splitMount(%q) = %q, %q", in, m, r)
		}
	}
}

func TestGetKV_CacheHit(t *testing.T) {
	c := &Client{cache: map[string]cached{
		"secret/feleck#dsn": {val: "cached-dsn", exp: time.Now().Add(time.Minute)},
	}}
	got, err := c.GetKV(context.Background(), "secret/feleck", "dsn", time.Minute)
	if err != nil || got != "cached-dsn" {
		t.Fatalf("GetKV = %q, %v", got, err)
	}
}

func TestGetKV_Validation(t *testing.T) {
	c := &Client{cache: map[string]cached{}}
	if _, err := c.GetKV(context.Background(), "", "k", 0); err == nil {
		t.Fatalf("empty path accepted")
	}
	if _, err := c.GetKV(context.Background(), "secret", "k", 0); err == nil {
		t.Fatalf("path without mount prefix accepted")
	}
}

func TestConfigured(t *testing.T) {
	t.Setenv("VAULT_ADDR", "")
	if Configured() {
		t.Fatalf("Configured with empty VAULT_ADDR")
	}
	t.Setenv("VAULT_ADDR", "http://127.0.0.1:8200")
	if !Configured() {
		t.Fatalf("not Configured with VAULT_ADDR set")
	}
}
