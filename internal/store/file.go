// Package store persists categories.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// Compile-time interface check.
var _ domain.CategoryStore = (*FileStore)(nil)

// FileStore keeps all categories in one JSON document. Every write
// replaces the whole file; writers inside the process are serialized and
// the last writer wins across processes.
type FileStore struct {
	path string
	log  *logger.Logger
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file need not exist
// until the first read.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Seed writes cats when the file does not exist yet. Reports whether it
// wrote anything.
func (s *FileStore) Seed(ctx context.Context, cats []domain.Category) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking %s: %w", s.path, err)
	}

	if err := s.write(cats); err != nil {
		return false, err
	}
	s.log.Info("store: seeded %s with %d categories", s.path, len(cats))
	return true, nil
}

// Categories reads and decodes the whole document.
func (s *FileStore) Categories(ctx context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// ReplaceQuestions replaces one category's questions and returns the
// updated collection. An unknown id returns ErrNotFound and leaves the
// file untouched.
func (s *FileStore) ReplaceQuestions(ctx context.Context, categoryID string, questions []domain.Question) ([]domain.Category, error) {
	if questions == nil {
		questions = []domain.Question{}
	}
	return s.update(categoryID, func(c *domain.Category) {
		c.Questions = questions
	})
}

// Rename changes a category's display name.
func (s *FileStore) Rename(ctx context.Context, categoryID, name string) ([]domain.Category, error) {
	name = strings.TrimSpace(name)
	return s.update(categoryID, func(c *domain.Category) {
		c.Name = name
	})
}

// update is the read-modify-write cycle shared by every mutation.
func (s *FileStore) update(categoryID string, mutate func(*domain.Category)) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.read()
	if err != nil {
		return nil, err
	}

	i := domain.FindCategory(cats, categoryID)
	if i < 0 {
		s.log.Debug("store: category not found: %s", categoryID)
		return nil, fmt.Errorf("category %q: %w", categoryID, domain.ErrNotFound)
	}
	mutate(&cats[i])

	if err := s.write(cats); err != nil {
		return nil, err
	}
	s.log.Debug("store: wrote category %s (%d questions)", categoryID, len(cats[i].Questions))
	return cats, nil
}

func (s *FileStore) read() ([]domain.Category, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var cats []domain.Category
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return cats, nil
}

// write replaces the file atomically: encode to a sibling temp file, then
// rename over the original.
func (s *FileStore) write(cats []domain.Category) error {
	data, err := json.MarshalIndent(cats, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding categories: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
