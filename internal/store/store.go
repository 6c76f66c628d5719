// Package store handles JSON file persistence of the mapping table.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/verte-zerg/wbdrift/internal/model"
)

var (
	// ErrInvalidInput reports a rejected merge payload. The file is not touched.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorage reports a failed read or write of the backing file.
	ErrStorage = errors.New("storage failure")
)

const defaultFileMode os.FileMode = 0o644

// Store wraps the mapping file.
//
// Merges within one process are serialized. Separate processes writing the
// same file still race and the last full write wins.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a Store for path, creating the parent directory.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("mapping path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create mapping dir: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the full mapping table. A missing file yields an empty table.
func (s *Store) Load(ctx context.Context) (model.Mapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Merge validates entries and writes them over the persisted table.
// Keys absent from entries keep their values.
func (s *Store) Merge(ctx context.Context, entries model.Mapping) (model.Mapping, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return nil, err
	}
	for k, v := range entries {
		current[k] = v
	}
	if err := s.write(current); err != nil {
		return nil, err
	}
	return current, nil
}

func validateEntries(entries model.Mapping) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no entries", ErrInvalidInput)
	}
	for k, v := range entries {
		if k == "" {
			return fmt.Errorf("%w: empty key", ErrInvalidInput)
		}
		if v == "" {
			return fmt.Errorf("%w: empty code for %q", ErrInvalidInput, k)
		}
	}
	return nil
}

func (s *Store) read() (model.Mapping, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Mapping{}, nil
		}
		return nil, fmt.Errorf("%w: read mapping: %v", ErrStorage, err)
	}
	mapping := model.Mapping{}
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("%w: parse mapping %s: %v", ErrStorage, s.path, err)
	}
	return mapping, nil
}

func (s *Store) write(mapping model.Mapping) error {
	data, err := encodeMapping(mapping)
	if err != nil {
		return fmt.Errorf("%w: encode mapping: %v", ErrStorage, err)
	}
	mode := defaultFileMode
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(s.path), "wb-mapping-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp mapping: %v", ErrStorage, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	// CreateTemp opens with 0600; the replaced file keeps its own mode.
	if err := tmpFile.Chmod(mode); err != nil {
		return fmt.Errorf("%w: chmod mapping: %v", ErrStorage, err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("%w: write mapping: %v", ErrStorage, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: close mapping: %v", ErrStorage, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: replace mapping: %v", ErrStorage, err)
	}
	return nil
}

// encodeMapping renders the table with 2-space indent and no HTML escaping.
func encodeMapping(mapping model.Mapping) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(mapping); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
