// Package localstore persists small JSON snapshots across process restarts,
// filling the role the browser's localStorage played for the original shop:
// the auth token, the session snapshot, and the cart fallback state.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Well-known keys. Values under these keys survive reloads; the token and
// session are removed on logout, the cart is never expired automatically.
const (
	KeyToken   = "token"
	KeySession = "session"
	KeyCart    = "cart"
)

// ErrNotFound indicates no value has been persisted under the requested key.
var ErrNotFound = errors.New("localstore: not found")

// Store is a file-per-key JSON store rooted at a state directory. The
// filesystem is abstracted behind afero so tests run against an in-memory fs.
type Store struct {
	fs  afero.Fs
	dir string
}

// New creates the state directory if needed and returns a Store rooted there.
func New(fs afero.Fs, dir string) (*Store, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("localstore: state directory is required")
	}
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("localstore: create state dir: %w", err)
	}
	return &Store{fs: fs, dir: dir}, nil
}

// PutJSON serialises value and writes it under key atomically (temp file +
// rename), so a crash mid-write never corrupts the previous snapshot.
func (s *Store) PutJSON(key string, value any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("localstore: encode %s: %w", key, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("localstore: write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("localstore: commit %s: %w", key, err)
	}
	return nil
}

// GetJSON loads the value stored under key into out. Returns ErrNotFound when
// the key has never been written or was deleted.
func (s *Store) GetJSON(key string, out any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("localstore: read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("localstore: decode %s: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("localstore: delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return "", fmt.Errorf("localstore: invalid key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}
