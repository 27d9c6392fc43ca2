package store

import (
	"context"
	"strings"
	"sync"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// Compile-time interface check.
var _ domain.CategoryStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory category store. Safe for concurrent access.
type MemoryStore struct {
	mu   sync.RWMutex
	cats []domain.Category
	log  *logger.Logger
}

// NewMemoryStore creates a store holding a copy of cats.
func NewMemoryStore(cats []domain.Category, log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		cats: domain.CloneCategories(cats),
		log:  log,
	}
}

// Categories returns a copy of every category.
func (s *MemoryStore) Categories(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneCategories(s.cats), nil
}

// ReplaceQuestions swaps the question list of one category.
func (s *MemoryStore) ReplaceQuestions(ctx context.Context, categoryID string, questions []domain.Question) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := domain.FindCategory(s.cats, categoryID)
	if i < 0 {
		s.log.Debug("store: category not found: %s", categoryID)
		return nil, domain.ErrNotFound
	}
	s.cats[i].Questions = append([]domain.Question(nil), questions...)
	s.log.Debug("store: category %s now has %d questions", categoryID, len(questions))
	return domain.CloneCategories(s.cats), nil
}

// Rename changes a category's display name.
func (s *MemoryStore) Rename(ctx context.Context, categoryID, name string) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := domain.FindCategory(s.cats, categoryID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	s.cats[i].Name = strings.TrimSpace(name)
	return domain.CloneCategories(s.cats), nil
}
