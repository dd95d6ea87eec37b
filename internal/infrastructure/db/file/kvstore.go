// Package file persists key-value pairs to a single JSON document on disk,
// the CLI counterpart of browser local storage.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/autox/marketplace-client/internal/core/domain"
)

// KeyValueStore re-reads the file on every access so that several processes
// sharing one session file observe each other's writes. Writes replace the
// file atomically. A file that does not decode makes Get fail with
// domain.ErrCorruptStorage; Set and Remove overwrite it.
type KeyValueStore struct {
	mu   sync.Mutex
	path string
}

func NewKeyValueStore(path string) *KeyValueStore {
	return &KeyValueStore{path: path}
}

// Path returns the backing file.
func (s *KeyValueStore) Path() string { return s.path }

func (s *KeyValueStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *KeyValueStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil && !errors.Is(err, domain.ErrCorruptStorage) {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *KeyValueStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	corrupt := errors.Is(err, domain.ErrCorruptStorage)
	if err != nil && !corrupt {
		return err
	}
	if _, ok := values[key]; !ok && !corrupt {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

func (s *KeyValueStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return map[string]string{}, fmt.Errorf("decode %s: %w: %w", s.path, domain.ErrCorruptStorage, err)
	}
	return values, nil
}

func (s *KeyValueStore) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
