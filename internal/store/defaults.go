package store

import "github.com/hammamikhairi/parlons/internal/domain"

// Defaults returns the built-in categories. Each call returns a fresh
// copy.
func Defaults() []domain.Category {
	return []domain.Category{
		{
			ID:   "sports",
			Name: "Sports",
			Icon: "Trophy",
			Questions: []domain.Question{
				meaning(1, "La Natation", "Swimming"),
				translation(2, "Soccer", "Le Football"),
				{
					ID:          3,
					Type:        domain.TypeFillBlank,
					Content:     "Je ___ au tennis.",
					Instruction: "Fill in the blank (verb: jouer)",
					Answer:      "joue",
					AudioText:   "Je ... au tennis",
				},
				meaning(4, "L'Escalade", "Rock Climbing"),
				translation(5, "To run", "Courir"),
			},
		},
		{
			ID:   "food",
			Name: "Food",
			Icon: "Utensils",
			Questions: []domain.Question{
				meaning(1, "Le Fromage", "Cheese"),
				translation(2, "Bread", "Le Pain"),
				{
					ID:          3,
					Type:        domain.TypeFillBlank,
					Content:     "Je voudrais de ___ (water).",
					Instruction: "Fill in the blank",
					Answer:      "l'eau",
					AudioText:   "Je voudrais de ...",
				},
			},
		},
		{
			ID:   "travel",
			Name: "Travel",
			Icon: "Plane",
			Questions: []domain.Question{
				meaning(1, "La Gare", "Train Station"),
				translation(2, "Airport", "L'Aéroport"),
			},
		},
	}
}

func meaning(id int, french, english string) domain.Question {
	return domain.Question{
		ID:          id,
		Type:        domain.TypeMeaning,
		Content:     french,
		Instruction: "What does this mean?",
		Answer:      english,
		AudioText:   french,
	}
}

// translation prompts are English, so they are read with an English voice.
func translation(id int, english, french string) domain.Question {
	return domain.Question{
		ID:          id,
		Type:        domain.TypeTranslation,
		Content:     english,
		Instruction: "What is the French word for?",
		Answer:      french,
		Language:    "en-US",
	}
}
