package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"forumdump/pkg/errors"
	"forumdump/pkg/layout"
)

// Manager persists archive artifacts below a root directory
type Manager struct {
	root    string
	written int
	mu      sync.Mutex
}

// NewManager creates a new storage manager rooted at root
func NewManager(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{root: root}, nil
}

// Root returns the directory all keys are resolved against
func (m *Manager) Root() string {
	return m.root
}

// PathOf returns the file path of key
func (m *Manager) PathOf(key layout.Key) string {
	return key.Path(m.root)
}

// Exists reports whether key has already been persisted
func (m *Manager) Exists(key layout.Key) bool {
	return FileExists(m.PathOf(key))
}

// HasFile reports whether path names an existing regular file
func (m *Manager) HasFile(path string) bool {
	return FileExists(path)
}

// FileExists reports whether path names an existing regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadJSON loads the artifact stored under key
func (m *Manager) ReadJSON(key layout.Key) (json.RawMessage, error) {
	return ReadJSONFile(m.PathOf(key))
}

// ReadJSONFile loads a persisted artifact and checks it is well-formed JSON
func ReadJSONFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", errors.ErrDecodeFailure, path)
	}

	return json.RawMessage(data), nil
}

// WriteJSON pretty-prints raw and stores it under key, creating parent directories
func (m *Manager) WriteJSON(key layout.Key, raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrDecodeFailure, err)
	}
	buf.WriteByte('\n')

	path := m.PathOf(key)
	if err := m.SaveFile(path, &buf); err != nil {
		return "", err
	}

	return path, nil
}

// SaveFile writes r to path atomically via a temporary file in the same directory
func (m *Manager) SaveFile(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	out, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.written++
	m.mu.Unlock()

	return nil
}

// WalkJSON calls fn for every .json artifact below dir in lexical order
func (m *Manager) WalkJSON(dir string, fn func(path string) error) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		return fn(path)
	})
}

// GetWrittenCount returns the number of files written by this manager
func (m *Manager) GetWrittenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.written
}
