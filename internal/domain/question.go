// Package domain defines the core types and interfaces for the drill app.
// All other packages depend on domain; domain depends on nothing.
package domain

import "strings"

// Question types used by the built-in categories and the bulk editor.
const (
	TypeMeaning     = "meaning"
	TypeTranslation = "translation"
	TypeFillBlank   = "fill_blank"
)

// Question is a single card. IDs are only unique within their category.
type Question struct {
	ID          int    `json:"id"`
	Type        string `json:"type,omitempty"`
	Content     string `json:"content"`
	Instruction string `json:"instruction"`
	Answer      string `json:"answer"`
	AudioText   string `json:"audioText,omitempty"` // spoken instead of Content when set
	Language    string `json:"language,omitempty"`  // prompt language, "" = drill language
}

// SpokenPrompt returns the text read aloud for the prompt.
func (q Question) SpokenPrompt() string {
	if strings.TrimSpace(q.AudioText) != "" {
		return q.AudioText
	}
	return q.Content
}

// Category is a named group of questions.
type Category struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Icon      string     `json:"icon,omitempty"`
	Questions []Question `json:"questions"`
}

// Clone returns a deep copy so callers can mutate the result freely.
func (c Category) Clone() Category {
	out := c
	out.Questions = append([]Question(nil), c.Questions...)
	return out
}

// CloneCategories deep-copies a category list.
func CloneCategories(cats []Category) []Category {
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = c.Clone()
	}
	return out
}

// FindCategory returns the index of the category with the given ID, or -1.
func FindCategory(cats []Category, id string) int {
	for i := range cats {
		if cats[i].ID == id {
			return i
		}
	}
	return -1
}

// Voice describes a synthesizer voice.
type Voice struct {
	Name    string
	Lang    string // BCP-47 style tag, e.g. "fr-FR"
	Quality bool   // engine flags it as higher quality (neural, premium, ...)
	Default bool   // engine's default voice
}
