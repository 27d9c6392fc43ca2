package domain

import "testing"

func TestSpokenPromptFallsBackToContent(t *testing.T) {
	tests := []struct {
		name string
		q    Question
		want string
	}{
		{"audio text wins", Question{Content: "Je ___ au tennis.", AudioText: "Je ... au tennis"}, "Je ... au tennis"},
		{"empty audio text", Question{Content: "Soccer"}, "Soccer"},
		{"blank audio text", Question{Content: "Bread", AudioText: "  "}, "Bread"},
	}
	for _, tt := range tests {
		if got := tt.q.SpokenPrompt(); got != tt.want {
			t.Errorf("%s: SpokenPrompt() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	cats := []Category{{ID: "a", Questions: []Question{{ID: 1, Content: "x"}}}}
	cp := CloneCategories(cats)
	cp[0].Questions[0].Content = "changed"
	if cats[0].Questions[0].Content != "x" {
		t.Fatal("clone shares question storage with the original")
	}
	if FindCategory(cats, "a") != 0 || FindCategory(cats, "b") != -1 {
		t.Fatal("FindCategory returned wrong index")
	}
}
