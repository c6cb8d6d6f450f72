package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotLoggedIn indicates no user session file exists yet.
var ErrNotLoggedIn = errors.New("not logged in")

// UserSession is the locally persisted login state. Every API client reads
// the bearer token from here.
type UserSession struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Token       string `json:"token"`
}

// FileStore reads and writes the user session at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore for the given session file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted session. A missing file reads as ErrNotLoggedIn.
func (s *FileStore) Load() (*UserSession, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("reading user session: %w", err)
	}
	var sess UserSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decoding user session: %w", err)
	}
	if sess.Token == "" {
		return nil, ErrNotLoggedIn
	}
	return &sess, nil
}

// Save persists the session, creating the parent directory if needed.
// The file is written owner-readable only since it holds a credential.
func (s *FileStore) Save(sess *UserSession) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding user session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing user session: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Clearing an absent session is not
// an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing user session: %w", err)
	}
	return nil
}

// Token implements the log-store TokenSource over the persisted session.
func (s *FileStore) Token() (string, error) {
	sess, err := s.Load()
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}
