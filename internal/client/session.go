// Package client implements the FeedlinerX terminal client: a small API
// client, the on-disk session file and the interactive shell.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/indranuj17/FeedlinerX/internal/models"
)

// DefaultSessionFile is where the shell keeps its session token.
const DefaultSessionFile = "session.json"

// Session is the persisted sign-in state.
type Session struct {
	Token string             `json:"token"`
	User  models.SessionUser `json:"user"`
}

// SessionStore loads and saves the session file. The file is readable by
// its owner only.
type SessionStore struct {
	Path string

	mu      sync.Mutex
	current Session
}

// NewSessionStore creates a store backed by path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{Path: path}
}

// Load reads the session file. A missing file means signed out.
func (s *SessionStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.current = Session{}
			return nil
		}
		return err
	}
	defer f.Close()

	var sess Session
	if err := json.NewDecoder(f).Decode(&sess); err != nil {
		return fmt.Errorf("decode session file: %w", err)
	}
	s.current = sess
	return nil
}

// Save persists sess and makes it current.
func (s *SessionStore) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	s.current = sess
	return nil
}

// Clear removes the session file.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Session{}
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Current returns the loaded session.
func (s *SessionStore) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
