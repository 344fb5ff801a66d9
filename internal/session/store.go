package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
	userKey         = "user.json"
)

// Store persists the session under three fixed keys in a state directory,
// the durable-storage analogue of the browser's local storage. It never
// touches the network.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Read restores the persisted session. A missing or corrupt profile is
// treated as absent, never as an error.
func (s *Store) Read() State {
	state := State{
		AccessToken:  s.readKey(accessTokenKey),
		RefreshToken: s.readKey(refreshTokenKey),
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, userKey))
	if err != nil {
		return state
	}
	var user UserProfile
	if err := json.Unmarshal(raw, &user); err != nil {
		return state
	}
	state.User = &user
	return state
}

// Write persists tokens, and the profile when one is present.
func (s *Store) Write(state State) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := s.writeKey(accessTokenKey, state.AccessToken); err != nil {
		return err
	}
	if err := s.writeKey(refreshTokenKey, state.RefreshToken); err != nil {
		return err
	}
	if state.User == nil {
		return nil
	}

	encoded, err := json.Marshal(state.User)
	if err != nil {
		return fmt.Errorf("encode user profile: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, userKey), encoded, 0o600); err != nil {
		return fmt.Errorf("persist user profile: %w", err)
	}
	return nil
}

// Clear removes all three keys together.
func (s *Store) Clear() error {
	var failed error
	for _, key := range []string{accessTokenKey, refreshTokenKey, userKey} {
		err := os.Remove(filepath.Join(s.dir, key))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			failed = err
		}
	}
	return failed
}

func (s *Store) readKey(key string) string {
	raw, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (s *Store) writeKey(key, value string) error {
	if err := os.WriteFile(filepath.Join(s.dir, key), []byte(value), 0o600); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
