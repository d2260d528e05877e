// Package credential persists the bearer token across client restarts.
// The token file is the only durable state the client keeps.
package credential

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store wraps a single token file. The token is opaque to the client:
// expiry is discovered only when an authorized request comes back 401.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the stored token, or ok=false when none is saved.
func (s *Store) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", false
	}
	return tok, true
}

// Set writes the token to disk, creating the parent directory if needed.
func (s *Store) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear removes the token file. Clearing an absent token is a no-op, so
// Clear is safe to call repeatedly.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
