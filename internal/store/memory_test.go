package store

import (
	"context"
	"errors"
	"testing"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
)

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	s := NewMemoryStore(Defaults(), logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	cats, err := s.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	cats[0].Questions[0].Answer = "mutated"

	again, _ := s.Categories(ctx)
	if again[0].Questions[0].Answer == "mutated" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestMemoryStoreUpdates(t *testing.T) {
	s := NewMemoryStore(Defaults(), logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	cats, err := s.ReplaceQuestions(ctx, "food", []domain.Question{{ID: 1, Content: "Le Vin", Answer: "Wine"}})
	if err != nil {
		t.Fatal(err)
	}
	if food := cats[domain.FindCategory(cats, "food")]; len(food.Questions) != 1 {
		t.Fatalf("food = %+v", food)
	}

	if _, err := s.ReplaceQuestions(ctx, "missing", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	cats, err = s.Rename(ctx, "travel", "Voyage")
	if err != nil || cats[domain.FindCategory(cats, "travel")].Name != "Voyage" {
		t.Fatalf("rename: %v", err)
	}
}

func TestDefaultsAreFresh(t *testing.T) {
	a := Defaults()
	a[0].Name = "changed"
	if Defaults()[0].Name != "Sports" {
		t.Fatal("Defaults returned shared data")
	}
	for _, c := range Defaults() {
		if len(c.Questions) == 0 {
			t.Fatalf("category %s has no questions", c.ID)
		}
		for _, q := range c.Questions {
			if q.Type == domain.TypeTranslation && q.Language == "" {
				t.Errorf("translation %q has no prompt language", q.Content)
			}
		}
	}
}
