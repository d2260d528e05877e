package credential

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "state", "token"))
}

func TestGet_NoToken(t *testing.T) {
	s := newTestStore(t)
	if tok, ok := s.Get(); ok || tok != "" {
		t.Errorf("expected no token, got %q", tok)
	}
}

func TestSetGet_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("abc.def.ghi"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	tok, ok := s.Get()
	if !ok || tok != "abc.def.ghi" {
		t.Errorf("Get = %q, %v; want stored token", tok, ok)
	}
}

func TestSet_SurvivesNewStoreInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := NewStore(path).Set("persisted"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	// A fresh instance over the same path sees the token, as after a
	// process restart.
	tok, ok := NewStore(path).Get()
	if !ok || tok != "persisted" {
		t.Errorf("Get after reopen = %q, %v", tok, ok)
	}
}

func TestClear_Idempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("tok"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
	if _, ok := s.Get(); ok {
		t.Error("token still present after Clear")
	}
}

func TestGet_IgnoresWhitespaceOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("\n  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok := NewStore(path).Get(); ok {
		t.Error("whitespace-only file should read as absent")
	}
}
