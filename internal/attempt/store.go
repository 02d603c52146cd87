// internal/attempt/store.go
//
// Login attempt audit.
//
// Context
// -------
// Every submission of the login form, valid or not, may be recorded in one
// table so operators can see which rules users trip and from which devices:
//
//	login_attempt (id PK, form_id, email, outcome, failed_rules, device,
//	               browser, os, country, is_bot, created_at)
//
// The password is never part of an Attempt.  Recording is best effort:
// handlers log and count failures but never fail the request over them.
//
// Notes
// -----
// • failed_rules is a comma-separated list of “field.rule” keys.
package attempt

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
)

// Outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
)

// maxEmail matches the column width in characters; longer input is cut on a
// rune boundary.
const maxEmail = 254

// Attempt is one submission.
type Attempt struct {
	FormID      string    `db:"form_id"`
	Email       string    `db:"email"`
	Outcome     string    `db:"outcome"`
	FailedRules string    `db:"failed_rules"`
	Device      string    `db:"device"`
	Browser     string    `db:"browser"`
	OS          string    `db:"os"`
	Country     string    `db:"country"`
	IsBot       bool      `db:"is_bot"`
	CreatedAt   time.Time `db:"created_at"`
}

// JoinRules builds the failed_rules column value.
func JoinRules(keys []string) string { return strings.Join(keys, ",") }

// Recorder persists attempts.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
}

// Nop discards attempts.  Used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, Attempt) error { return nil }

// Store writes attempts through sqlx.
type Store struct{ db *sqlx.DB }

// NewStore wraps db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// Schema creates the audit table.  MySQL dialect.
const Schema = `CREATE TABLE IF NOT EXISTS login_attempt (
  id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  form_id      VARCHAR(64)  NOT NULL,
  email        VARCHAR(254) NOT NULL,
  outcome      VARCHAR(16)  NOT NULL,
  failed_rules VARCHAR(255) NOT NULL DEFAULT '',
  device       VARCHAR(32)  NOT NULL DEFAULT '',
  browser      VARCHAR(64)  NOT NULL DEFAULT '',
  os           VARCHAR(64)  NOT NULL DEFAULT '',
  country      CHAR(2)      NOT NULL DEFAULT '',
  is_bot       BOOLEAN      NOT NULL DEFAULT FALSE,
  created_at   DATETIME(6)  NOT NULL,
  KEY idx_login_attempt_email (email, created_at)
)`

// EnsureSchema runs Schema.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

const insertQ = `INSERT INTO login_attempt (form_id, email, outcome, failed_rules, device, browser, os, country, is_bot, created_at) VALUES (:form_id, :email, :outcome, :failed_rules, :device, :browser, :os, :country, :is_bot, :created_at)`

// Record inserts a. A zero CreatedAt is set to now (UTC).
func (s *Store) Record(ctx context.Context, a Attempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.Email = truncateRunes(a.Email, maxEmail)
	_, err := s.db.NamedExecContext(ctx, insertQ, a)
	return err
}

// truncateRunes keeps at most n runes of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
