// Package session persists the dashboard login flag between CLI runs.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// State is the stored login state.
type State struct {
	LoggedIn   bool      `yaml:"logged_in"`
	BaseURL    string    `yaml:"base_url,omitempty"`
	LoggedInAt time.Time `yaml:"logged_in_at,omitempty"`
}

// ValidFor reports whether the state is a login against baseURL.
func (s State) ValidFor(baseURL string) bool {
	return s.LoggedIn && s.BaseURL == baseURL
}

// Store reads and writes the session file.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore returns a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the session file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored state. A missing file is a logged-out state.
func (s *Store) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("failed to parse session file %s: %w", s.path, err)
	}
	return st, nil
}

// Login records a successful login against baseURL.
func (s *Store) Login(baseURL string) (State, error) {
	st := State{LoggedIn: true, BaseURL: baseURL, LoggedInAt: s.now().UTC().Truncate(time.Second)}
	return st, s.save(st)
}

// Logout clears the login flag. It is not an error to log out twice.
func (s *Store) Logout() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (s *Store) save(st State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
