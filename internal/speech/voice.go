package speech

import (
	"strings"

	"github.com/hammamikhairi/parlons/internal/domain"
)

// LanguageFamily returns the primary subtag of a language tag, lowercased:
// "fr-FR" and "fr_CA" both give "fr".
func LanguageFamily(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// normalizeTag makes "fr_CA" and "fr-ca" compare equal to "fr-CA".
func normalizeTag(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}

// SelectVoice picks a voice for lang from voices.
//
// Order of preference:
//  1. when lang's family is in preferQuality, a Quality voice of that family
//  2. a voice whose tag equals lang
//  3. any voice of the same family
//  4. the engine's default voice
//
// ok is false when the list is empty, in which case the engine default
// applies.
func SelectVoice(voices []domain.Voice, lang string, preferQuality []string) (domain.Voice, bool) {
	family := LanguageFamily(lang)
	want := normalizeTag(lang)

	var candidates []domain.Voice
	if family != "" {
		for _, v := range voices {
			if LanguageFamily(v.Lang) == family {
				candidates = append(candidates, v)
			}
		}
	}

	if len(candidates) > 0 {
		if containsFold(preferQuality, family) {
			// Exact-tag quality voice first, then any quality voice.
			for _, v := range candidates {
				if v.Quality && normalizeTag(v.Lang) == want {
					return v, true
				}
			}
			for _, v := range candidates {
				if v.Quality {
					return v, true
				}
			}
		}
		for _, v := range candidates {
			if normalizeTag(v.Lang) == want {
				return v, true
			}
		}
		return candidates[0], true
	}

	for _, v := range voices {
		if v.Default {
			return v, true
		}
	}
	return domain.Voice{}, false
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), s) {
			return true
		}
	}
	return false
}
