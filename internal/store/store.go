// Package store implements the durable collaborator behind favorites,
// history and the activity catalog: one JSON document per store with
// load-all/save-all semantics.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/FACorreiaa/go-leisure-bot/internal/types"
)

// JSONFile is a whole-file JSON store. Update serializes every
// read-modify-write sequence under one mutex, so concurrent in-process
// writers cannot lose each other's changes.
type JSONFile struct {
	path string
	name string
	mu   sync.Mutex
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path, name: filepath.Base(path)}
}

// Load reads the whole document into v. A missing file is not an error: v
// is left untouched (callers pass zero-valued maps/structs).
func (s *JSONFile) Load(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(v)
}

// Save writes v as the whole document.
func (s *JSONFile) Save(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(v)
}

// Update runs fn between a load and a save while holding the store lock.
func (s *JSONFile) Update(v any, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(v); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return s.save(v)
}

func (s *JSONFile) load(v any) error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &types.PersistenceError{Store: s.name, Err: fmt.Errorf("read: %w", err)}
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &types.PersistenceError{Store: s.name, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func (s *JSONFile) save(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &types.PersistenceError{Store: s.name, Err: fmt.Errorf("encode: %w", err)}
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &types.PersistenceError{Store: s.name, Err: fmt.Errorf("mkdir: %w", err)}
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return &types.PersistenceError{Store: s.name, Err: fmt.Errorf("write: %w", err)}
	}
	return nil
}
