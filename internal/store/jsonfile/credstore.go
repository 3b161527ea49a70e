// Package jsonfile provides JSON file-backed stores.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/hyeonlog/jangteo/internal/core/auth"
)

// CredStore implements auth.Store using a JSON file for persistence.
// The file is created with owner-only permissions since it holds tokens.
// A file lock guards against concurrent jangteo processes.
type CredStore struct {
	path string
	mu   sync.RWMutex
}

// NewCredStore creates a new JSON file credential store at the given path.
func NewCredStore(path string) *CredStore {
	return &CredStore{path: path}
}

// lockPath returns the path to the lock file.
func (s *CredStore) lockPath() string {
	return s.path + ".lock"
}

// withFileLock acquires a file lock, executes fn, then releases the lock.
func (s *CredStore) withFileLock(lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}()

	return fn()
}

// Load returns the persisted credentials. Returns auth.ErrNotLoggedIn if
// the file does not exist or holds no tokens.
func (s *CredStore) Load(ctx context.Context) (auth.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var creds auth.Credentials
	err := s.withFileLock(syscall.LOCK_SH, func() error {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if os.IsNotExist(err) {
				return auth.ErrNotLoggedIn
			}
			return fmt.Errorf("read credentials file: %w", err)
		}
		if err := json.Unmarshal(data, &creds); err != nil {
			return fmt.Errorf("parse credentials file: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.Credentials{}, err
	}

	if creds.Empty() {
		return auth.Credentials{}, auth.ErrNotLoggedIn
	}
	return creds, nil
}

// Save persists the credentials, replacing any existing ones. The write is
// atomic (temp file + rename) so a crashed process never leaves a torn file.
func (s *CredStore) Save(ctx context.Context, c auth.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(syscall.LOCK_EX, func() error {
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal credentials: %w", err)
		}

		tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*.tmp")
		if err != nil {
			return fmt.Errorf("create temp file: %w", err)
		}
		tmpPath := tmp.Name()
		defer os.Remove(tmpPath)

		if err := tmp.Chmod(0o600); err != nil {
			tmp.Close()
			return fmt.Errorf("chmod temp file: %w", err)
		}
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return fmt.Errorf("write temp file: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("close temp file: %w", err)
		}

		if err := os.Rename(tmpPath, s.path); err != nil {
			return fmt.Errorf("rename credentials file: %w", err)
		}
		return nil
	})
}

// Clear removes any persisted credentials.
func (s *CredStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(syscall.LOCK_EX, func() error {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove credentials file: %w", err)
		}
		return nil
	})
}
