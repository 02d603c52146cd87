// internal/form/csrf.go
//
// Feleck – Forms subsystem: stateless CSRF tokens for the web login form.
//
// Context
//   The renderer embeds a hidden token; HandleSubmit verifies it on POST.
//   Tokens are stateless:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro) )
//
//   Verification checks the signature and that the timestamp is within
//   maxAge.  The JSON endpoint used by mobile clients carries no cookies and
//   skips this check.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	csrfField  = "csrf_token"
	nonceBytes = 16
	tokenBytes = nonceBytes + 8 + sha256.Size // nonce + ts + sig
	maxAge     = 2 * time.Hour
	maxSkew    = time.Minute
)

var (
	secretMu  sync.Mutex
	secretKey []byte
)

// SetSecret installs the HMAC key.  Keys shorter than 32 bytes are rejected.
func SetSecret(key []byte) error {
	if len(key) < 32 {
		return errors.New("csrf secret must be at least 32 bytes")
	}
	secretMu.Lock()
	secretKey = append([]byte(nil), key...)
	secretMu.Unlock()
	return nil
}

// GenerateToken creates a new CSRF token.  Call once per form render.
func GenerateToken() (string, error) {
	sec := fetchSecret()

	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(time.Now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, sign(sec, nonce, ts)...)
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// VerifyToken returns true if tok passes HMAC and age checks.
func VerifyToken(tok string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}
	nonce := raw[:nonceBytes]
	ts := raw[nonceBytes : nonceBytes+8]
	sig := raw[nonceBytes+8:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(ts)))
	if time.Since(issued) > maxAge || time.Until(issued) > maxSkew {
		return false
	}
	return hmac.Equal(sig, sign(fetchSecret(), nonce, ts))
}

func sign(sec, nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, sec)
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}

// fetchSecret returns the installed key, generating an ephemeral one on first
// use when SetSecret was never called.
func fetchSecret() []byte {
	secretMu.Lock()
	defer secretMu.Unlock()
	if secretKey == nil {
		secretKey = make([]byte, 32)
		_, _ = rand.Read(secretKey)
		zap.S().Warnw("csrf secret not configured, using random key")
	}
	return secretKey
}
