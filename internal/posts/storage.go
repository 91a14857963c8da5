package posts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// postExt is the fixed extension of document files.
const postExt = ".md"

// errSlugNotFound is the storage-level "no such document" signal.
var errSlugNotFound = errors.New("no file for slug")

// Storage is the narrow persistence interface the store runs on.
// Implementations map slugs to raw file contents; the store owns all
// parsing and serialization.
type Storage interface {
	// List returns the slugs of every stored document, sorted ascending.
	List() ([]string, error)
	// Read returns the raw bytes for a slug; errSlugNotFound when absent.
	Read(slug string) ([]byte, error)
	// Write stores raw bytes under a slug, overwriting any existing file.
	Write(slug string, data []byte) error
	// Remove deletes the document; errSlugNotFound when absent.
	Remove(slug string) error
}

// FSStorage stores one markdown file per post inside a directory.
type FSStorage struct {
	dir string
}

func NewFSStorage(dir string) *FSStorage {
	return &FSStorage{dir: dir}
}

func (s *FSStorage) path(slug string) string {
	return filepath.Join(s.dir, slug+postExt)
}

func (s *FSStorage) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read content dir: %w", err)
	}
	slugs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), postExt) {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), postExt))
	}
	sort.Strings(slugs)
	return slugs, nil
}

func (s *FSStorage) Read(slug string) ([]byte, error) {
	data, err := os.ReadFile(s.path(slug))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errSlugNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *FSStorage) Write(slug string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}
	return os.WriteFile(s.path(slug), data, 0o644)
}

func (s *FSStorage) Remove(slug string) error {
	err := os.Remove(s.path(slug))
	if errors.Is(err, fs.ErrNotExist) {
		return errSlugNotFound
	}
	return err
}

// MemoryStorage is the in-memory backend used by unit tests.
type MemoryStorage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: make(map[string][]byte)}
}

func (s *MemoryStorage) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slugs := make([]string, 0, len(s.files))
	for slug := range s.files {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs, nil
}

func (s *MemoryStorage) Read(slug string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[slug]
	if !ok {
		return nil, errSlugNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStorage) Write(slug string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.files[slug] = cp
	return nil
}

func (s *MemoryStorage) Remove(slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[slug]; !ok {
		return errSlugNotFound
	}
	delete(s.files, slug)
	return nil
}
