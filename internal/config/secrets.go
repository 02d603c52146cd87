// internal/config/secrets.go
//
// Resolution of `vault:` references.
//
// A value of the form `vault:<mount>/<path>#<key>` is replaced by the string
// stored under <key> in that KV-v2 secret.  Only fields that may carry
// secrets are inspected.

package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const vaultPrefix = "vault:"

// secretTTL caches resolved values inside the Vault client.
const secretTTL = 10 * time.Minute

// SecretResolver is satisfied by *vault.Client.
type SecretResolver interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// ErrNoResolver is returned when a `vault:` value is present but Load was
// given no resolver.
var ErrNoResolver = errors.New("config references vault but no resolver is configured")

// needsSecrets reports whether any secret-bearing field holds a reference.
func needsSecrets(c *Config) bool {
	for _, p := range secretFields(c) {
		if strings.HasPrefix(*p, vaultPrefix) {
			return true
		}
	}
	return false
}

func secretFields(c *Config) []*string {
	return []*string{&c.Database.DSN, &c.Security.CSRFKey}
}

// resolveSecrets rewrites every `vault:` reference in place.
func resolveSecrets(ctx context.Context, c *Config, r SecretResolver) error {
	for _, p := range secretFields(c) {
		ref, ok := strings.CutPrefix(*p, vaultPrefix)
		if !ok {
			continue
		}
		path, key, ok := strings.Cut(ref, "#")
		if !ok || path == "" || key == "" {
			return fmt.Errorf("malformed vault reference %q, want vault:<path>#<key>", *p)
		}
		val, err := r.GetKV(ctx, path, key, secretTTL)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", ref, err)
		}
		*p = val
	}
	return nil
}
