package speech

import (
	"testing"

	"github.com/hammamikhairi/parlons/internal/domain"
)

func TestLanguageFamily(t *testing.T) {
	tests := map[string]string{
		"fr-FR": "fr",
		"fr_CA": "fr",
		"EN":    "en",
		"":      "",
	}
	for in, want := range tests {
		if got := LanguageFamily(in); got != want {
			t.Errorf("LanguageFamily(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSelectVoice(t *testing.T) {
	voices := []domain.Voice{
		{Name: "Thomas", Lang: "fr-FR"},
		{Name: "Amelie", Lang: "fr_CA"},
		{Name: "Denise", Lang: "fr-FR", Quality: true},
		{Name: "Anna", Lang: "de-DE", Quality: true},
		{Name: "Hans", Lang: "de-AT"},
		{Name: "Samantha", Lang: "en-US", Default: true},
	}

	tests := []struct {
		name   string
		voices []domain.Voice
		lang   string
		prefer []string
		want   string
		wantOK bool
	}{
		{"quality french wins", voices, "fr-FR", []string{"fr"}, "Denise", true},
		{"quality voice of other region", voices, "fr-BE", []string{"fr"}, "Denise", true},
		{"no preference takes exact tag", voices, "fr-CA", nil, "Amelie", true},
		{"no preference takes first exact", voices, "fr-FR", nil, "Thomas", true},
		{"family not preferred ignores quality", voices, "de-AT", []string{"fr"}, "Hans", true},
		{"family fallback", voices, "de-CH", nil, "Anna", true},
		{"unknown language falls back to default", voices, "ja-JP", []string{"fr"}, "Samantha", true},
		{"empty list", nil, "fr-FR", []string{"fr"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectVoice(tt.voices, tt.lang, tt.prefer)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got.Name != tt.want {
				t.Fatalf("voice = %q, want %q", got.Name, tt.want)
			}
		})
	}
}
