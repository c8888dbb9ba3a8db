// Package auth persists and inspects the viewer's credential pair.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotAuthenticated indicates no credentials are stored.
var ErrNotAuthenticated = errors.New("not authenticated")

const credentialsFile = "credentials.json"

// Credentials is the access/refresh token pair issued by the backend.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Store persists the credential pair as a JSON file under a config directory.
// It is safe for concurrent use; the pair is the one shared mutable resource
// in the client.
type Store struct {
	dir string

	mu     sync.RWMutex
	cached *Credentials
}

// NewStore creates a credential store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the credential pair to disk and updates the in-memory copy.
func (s *Store) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(s.path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	s.cached = &creds
	return nil
}

// Load returns the stored credential pair, or ErrNotAuthenticated when none
// exists.
func (s *Store) Load() (Credentials, error) {
	s.mu.RLock()
	if s.cached != nil {
		creds := *s.cached
		s.mu.RUnlock()
		return creds, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return *s.cached, nil
	}

	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, ErrNotAuthenticated
		}
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if creds.AccessToken == "" {
		return Credentials{}, ErrNotAuthenticated
	}

	s.cached = &creds
	return creds, nil
}

// Clear removes all stored credentials. Called on logout and on
// unrecoverable refresh failure.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = nil
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// Authenticated reports whether a credential pair is currently stored.
func (s *Store) Authenticated() bool {
	_, err := s.Load()
	return err == nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, credentialsFile)
}
