// Package library is the client-side owner of the category list. It reads
// from the category service when one is configured, falls back to the
// on-device copy, and keeps both in step on every edit.
package library

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hammamikhairi/parlons/internal/bulktext"
	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// Service manages categories for the client. Safe for concurrent use.
type Service struct {
	remote domain.CategoryStore // nil in offline mode
	local  domain.CategoryCache
	log    *logger.Logger

	mu      sync.RWMutex
	cats    []domain.Category
	offline bool
}

// New creates a library. remote may be nil to work purely offline.
func New(remote domain.CategoryStore, local domain.CategoryCache, log *logger.Logger) *Service {
	return &Service{
		remote:  remote,
		local:   local,
		log:     log,
		offline: remote == nil,
	}
}

// Load reads the categories, preferring the service. When the service is
// unreachable the on-device copy is used. Load itself never fails.
func (s *Service) Load(ctx context.Context) []domain.Category {
	if s.remote != nil {
		cats, err := s.remote.Categories(ctx)
		if err == nil {
			s.local.Save(ctx, cats)
			s.set(cats, false)
			s.log.Info("library: loaded %d categories from server", len(cats))
			return domain.CloneCategories(cats)
		}
		s.log.Warn("library: server unavailable, using local copy: %v", err)
	}

	cats := s.local.Load(ctx)
	s.set(cats, true)
	s.log.Info("library: loaded %d categories from local copy", len(cats))
	return domain.CloneCategories(cats)
}

// Offline reports whether the last Load fell back to the local copy.
func (s *Service) Offline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offline
}

// Categories returns the current list.
func (s *Service) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneCategories(s.cats)
}

// Category returns one category by id.
func (s *Service) Category(id string) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := domain.FindCategory(s.cats, id)
	if i < 0 {
		return domain.Category{}, fmt.Errorf("category %q: %w", id, domain.ErrNotFound)
	}
	return s.cats[i].Clone(), nil
}

// UpdateQuestions replaces a category's questions. The change is applied
// locally first and kept even if the server write then fails; that
// failure is returned so the caller can tell the user.
func (s *Service) UpdateQuestions(ctx context.Context, id string, questions []domain.Question) error {
	s.mu.Lock()
	i := domain.FindCategory(s.cats, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("category %q: %w", id, domain.ErrNotFound)
	}
	s.cats[i].Questions = append([]domain.Question(nil), questions...)
	snapshot := domain.CloneCategories(s.cats)
	s.mu.Unlock()

	s.local.Save(ctx, snapshot)

	if s.remote == nil {
		return nil
	}
	cats, err := s.remote.ReplaceQuestions(ctx, id, questions)
	if err != nil {
		return fmt.Errorf("saving to server: %w", err)
	}
	s.local.Save(ctx, cats)
	s.set(cats, false)
	return nil
}

// ApplyBulkEdit parses bulk text and, if it yields any question, replaces
// the category's questions with the result. Text with no usable line
// returns ErrInvalidFormat and leaves the previous questions in place.
// Lines left as Format wrote them keep their original card.
func (s *Service) ApplyBulkEdit(ctx context.Context, id, text string) (bulktext.Result, error) {
	res := bulktext.Parse(text)
	if len(res.Questions) == 0 {
		return res, fmt.Errorf("%w: no line of the form \"prompt. answer\"", domain.ErrInvalidFormat)
	}

	s.mu.Lock()
	if i := domain.FindCategory(s.cats, id); i >= 0 {
		res.Questions = bulktext.Restore(s.cats[i].Questions, res.Questions)
	}
	s.mu.Unlock()

	if len(res.Rejected) > 0 {
		s.log.Debug("library: bulk edit of %s skipped %d lines", id, len(res.Rejected))
	}
	return res, s.UpdateQuestions(ctx, id, res.Questions)
}

// Rename changes a category's display name. Blank names are ignored.
func (s *Service) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	s.mu.Lock()
	i := domain.FindCategory(s.cats, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("category %q: %w", id, domain.ErrNotFound)
	}
	s.cats[i].Name = name
	snapshot := domain.CloneCategories(s.cats)
	s.mu.Unlock()

	s.local.Save(ctx, snapshot)

	if s.remote == nil {
		return nil
	}
	cats, err := s.remote.Rename(ctx, id, name)
	if err != nil {
		return fmt.Errorf("renaming on server: %w", err)
	}
	s.local.Save(ctx, cats)
	s.set(cats, false)
	return nil
}

func (s *Service) set(cats []domain.Category, offline bool) {
	s.mu.Lock()
	s.cats = domain.CloneCategories(cats)
	s.offline = offline
	s.mu.Unlock()
}
