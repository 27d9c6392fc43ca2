package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
	"github.com/hammamikhairi/parlons/internal/store"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "local.db"), logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadDefaultsWhenEmpty(t *testing.T) {
	s := openTemp(t)
	cats := s.Load(context.Background())
	if len(cats) != len(store.Defaults()) || cats[0].ID != "sports" {
		t.Fatalf("expected built-in set, got %d categories", len(cats))
	}
}

func TestSaveThenLoad(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	want := []domain.Category{{ID: "verbs", Name: "Verbs", Questions: []domain.Question{{ID: 1, Content: "Aller", Answer: "To go"}}}}
	s.Save(ctx, want)

	got := s.Load(ctx)
	if len(got) != 1 || got[0].ID != "verbs" || got[0].Questions[0].Answer != "To go" {
		t.Fatalf("loaded %+v", got)
	}

	// Saving again replaces the document.
	s.Save(ctx, store.Defaults())
	if got := s.Load(ctx); len(got) != 3 {
		t.Fatalf("expected overwrite, got %d categories", len(got))
	}
}

func TestLoadDefaultsOnCorruptValue(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.Set(ctx, CategoriesKey, "{definitely not json"); err != nil {
		t.Fatal(err)
	}
	if cats := s.Load(ctx); len(cats) != 3 || cats[2].ID != "travel" {
		t.Fatalf("expected defaults on corrupt data, got %+v", cats)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := openTemp(t)
	v, ok, err := s.Get(context.Background(), "absent")
	if err != nil || ok || v != "" {
		t.Fatalf("Get(absent) = %q, %v, %v", v, ok, err)
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	log := logger.New(logger.LevelOff, nil)
	ctx := context.Background()

	s, err := Open(path, log)
	if err != nil {
		t.Fatal(err)
	}
	s.Save(ctx, []domain.Category{{ID: "x", Name: "X"}})
	s.Close()

	s, err = Open(path, log)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if cats := s.Load(ctx); len(cats) != 1 || cats[0].ID != "x" {
		t.Fatalf("reopened store lost data: %+v", cats)
	}
}
