// internal/attempt/store_test.go
//
// Unit-tests for the attempt audit store using sqlmock.
//
// Run: go test ./internal/attempt -v

package attempt

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "mysql")), mock
}

func TestRecord(t *testing.T) {
	s, mock := newStore(t)
	at := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO login_attempt (form_id, email, outcome, failed_rules, device, browser, os, country, is_bot, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)).
		WithArgs("auth/login", "yyyyy", OutcomeInvalid, "email.email,password.minlength",
			"Phone", "Safari", "iOS", "KR", false, at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.Record(context.Background(), Attempt{
		FormID:      "auth/login",
		Email:       "yyyyy",
		Outcome:     OutcomeInvalid,
		FailedRules: JoinRules([]string{"email.email", "password.minlength"}),
		Device:      "Phone",
		Browser:     "Safari",
		OS:          "iOS",
		Country:     "KR",
		CreatedAt:   at,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestRecord_TruncatesEmailAndStamps(t *testing.T) {
	cases := []struct {
		name  string
		email string
		want  string
	}{
		{"ascii", strings.Repeat("a", 300), strings.Repeat("a", maxEmail)},
		{"multibyte", "a" + strings.Repeat("한", 300), "a" + strings.Repeat("한", maxEmail-1)},
		{"short multibyte", "a" + strings.Repeat("한", 100), "a" + strings.Repeat("한", 100)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newStore(t)
			mock.ExpectExec(`INSERT INTO login_attempt`).
				WithArgs("auth/login", tc.want, OutcomeOK, "",
					"", "", "", "", false, sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(1, 1))

			if err := s.Record(context.Background(), Attempt{FormID: "auth/login", Email: tc.email, Outcome: OutcomeOK}); err != nil {
				t.Fatalf("Record: %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet SQL expectations: %v", err)
			}
		})
	}
}

func TestTruncateRunes_ValidUTF8(t *testing.T) {
	got := truncateRunes("a"+strings.Repeat("한", 100), 85)
	if !utf8.ValidString(got) || utf8.RuneCountInString(got) != 85 {
		t.Fatalf("truncateRunes: valid=%v runes=%d", utf8.ValidString(got), utf8.RuneCountInString(got))
	}
}

func TestRecord_Error(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(`INSERT INTO login_attempt`).WillReturnError(errors.New("db down"))

	if err := s.Record(context.Background(), Attempt{FormID: "auth/login"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEnsureSchema(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS login_attempt`).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
