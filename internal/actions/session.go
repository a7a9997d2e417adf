package actions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SessionStore holds the bearer token of the current session.
type SessionStore interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

// MemorySessionStore keeps the token in memory for the lifetime of the process.
type MemorySessionStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemorySessionStore returns a store seeded with token, which may be empty.
func NewMemorySessionStore(token string) *MemorySessionStore {
	return &MemorySessionStore{token: token}
}

// Token returns the current token or "".
func (s *MemorySessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the current token.
func (s *MemorySessionStore) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear forgets the current token.
func (s *MemorySessionStore) Clear() error {
	return s.SetToken("")
}

// FileSessionStore persists the token in a file readable only by the owner,
// so CLI invocations share one login.
type FileSessionStore struct {
	path string
	mu   sync.Mutex
}

// NewFileSessionStore returns a store backed by path. The file is created on the first SetToken.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// DefaultTokenFile returns ~/.config/resume-studio/token.
func DefaultTokenFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "resume-studio", "token"), nil
}

// Token returns the stored token, or "" if none is stored or the file cannot be read.
func (s *FileSessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetToken writes token to the backing file.
func (s *FileSessionStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Clear removes the backing file. A missing file is not an error.
func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
