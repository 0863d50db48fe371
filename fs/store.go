// Package fs persists discovered links to the local filesystem.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fwojciec/sitelinks"
)

// DefaultPath is the artifact written when no output path is configured.
const DefaultPath = "urls.json"

var _ sitelinks.LinkStore = (*JSONStore)(nil)

// JSONStore writes the link set as a sorted, indented JSON array.
// Every Save replaces the whole file: the content goes to a temporary file
// in the same directory which is then renamed over the artifact, so readers
// never observe a partial write.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore creates a store writing to path.
func NewJSONStore(path string) *JSONStore {
	if path == "" {
		path = DefaultPath
	}
	return &JSONStore{path: path}
}

// Path returns the artifact location.
func (s *JSONStore) Path() string {
	return s.path
}

// Save overwrites the artifact with links sorted lexicographically.
func (s *JSONStore) Save(ctx context.Context, links []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(links)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write links: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Load reads the artifact back. A missing file yields an empty list.
func (s *JSONStore) Load(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, sitelinks.Errorf(sitelinks.EPARSE, "invalid link artifact %s: %v", s.path, err)
	}
	if links == nil {
		links = []string{}
	}
	return links, nil
}

// Encode renders links as the artifact format: a lexicographically sorted
// JSON array indented by two spaces, UTF-8 without HTML escaping.
func Encode(links []string) ([]byte, error) {
	sorted := slices.Clone(links)
	if sorted == nil {
		sorted = []string{}
	}
	slices.Sort(sorted)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(sorted); err != nil {
		return nil, fmt.Errorf("encode links: %w", err)
	}
	return buf.Bytes(), nil
}
