package database

import (
	"context"
	"strings"
	"testing"
)

func TestOpen_BadDSN(t *testing.T) {
	_, err := Open(context.Background(), "not a dsn")
	if err == nil || !strings.Contains(err.Error(), "parse dsn") {
		t.Fatalf("err = %v, want parse dsn error", err)
	}
}
