// Package credentials provides CredentialStore implementations for the portal
// client: an in-memory store and a JSON file store.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Credentials is the persisted session. The JSON keys match the keys the
// portal front end keeps in local storage.
type Credentials struct {
	AccessToken  string          `json:"accessToken,omitempty"`
	RefreshToken string          `json:"refreshToken,omitempty"`
	User         json.RawMessage `json:"user,omitempty"`
}

// Memory is a CredentialStore held in memory.
type Memory struct {
	mu    sync.RWMutex
	creds Credentials
	clear int
}

// NewMemory returns a store holding creds.
func NewMemory(creds Credentials) *Memory {
	return &Memory{creds: creds}
}

// AccessToken returns the stored access token, or "" when signed out.
func (m *Memory) AccessToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds.AccessToken, nil
}

// Set replaces the stored credentials.
func (m *Memory) Set(creds Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
}

// Clear removes every stored credential.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	m.clear++
	return nil
}

// Clears returns how many times Clear was called.
func (m *Memory) Clears() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clear
}

// FileStore is a CredentialStore persisted as a JSON file.
type FileStore struct {
	fs   afero.Fs
	path string

	mu sync.Mutex
}

// NewFileStore returns a store backed by path on fs.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the stored credentials. A missing file is an empty session.
func (s *FileStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() (Credentials, error) {
	var creds Credentials
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return creds, nil
	}
	if err != nil {
		return creds, fmt.Errorf("failed to read credentials: %w", err)
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("failed to parse credentials %s: %w", s.path, err)
	}
	return creds, nil
}

// Save writes creds, creating the parent directory when needed.
func (s *FileStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// AccessToken returns the stored access token.
func (s *FileStore) AccessToken() (string, error) {
	creds, err := s.Load()
	if err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

// Clear removes the credentials file. Clearing an empty store is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.fs.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
