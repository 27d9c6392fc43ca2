package domain

import "context"

// CategoryStore reads and replaces categories. Implementations can be a
// JSON file, an HTTP service, or in-memory. Writes replace whole question
// lists; there is no partial update and the last writer wins.
type CategoryStore interface {
	Categories(ctx context.Context) ([]Category, error)
	ReplaceQuestions(ctx context.Context, categoryID string, questions []Question) ([]Category, error)
	Rename(ctx context.Context, categoryID, name string) ([]Category, error)
}

// CategoryCache is the on-device fallback copy of the category list.
// Load never fails: it returns the built-in set when nothing usable is
// stored. Save is best effort.
type CategoryCache interface {
	Load(ctx context.Context) []Category
	Save(ctx context.Context, cats []Category)
}

// Speaker speaks one utterance at a time. onComplete fires at most once,
// and never for an utterance superseded by a later Speak or by Cancel.
// Implementations are driven from a single event loop.
type Speaker interface {
	Speak(text, lang string, rate float64, onComplete func())
	Cancel()
}
