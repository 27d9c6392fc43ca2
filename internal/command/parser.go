package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hammamikhairi/parlons/internal/logger"
)

// Parser matches input against keyword patterns, in English and French so
// that spoken commands work either way.
type Parser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex *regexp.Regexp
	kind  Kind
}

// jumpPattern captures the target of "jump 3", "question trois", "go to 12".
var jumpPattern = regexp.MustCompile(`(?i)^(?:(?:jump(?: to)?|go ?to|question|aller à|va à|j)\s+|#\s*)(\S+)$`)

// numberWords maps spoken numbers to digits.
var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"un": 1, "une": 1, "deux": 2, "trois": 3, "quatre": 4, "cinq": 5,
	"sept": 7, "huit": 8, "neuf": 9, "dix": 10,
}

// NewParser creates a command parser.
func NewParser(log *logger.Logger) *Parser {
	p := &Parser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(play|start|auto|go|lecture|commence|démarre)$`), Play},
		{regexp.MustCompile(`(?i)^(stop|pause|arrête|arrete|stoppe)$`), Stop},
		{regexp.MustCompile(`(?i)^(toggle|t|space)$`), Toggle},
		{regexp.MustCompile(`(?i)^(next|n|skip|suivant|suivante|après)$`), Next},
		{regexp.MustCompile(`(?i)^(prev|previous|p|précédent|précédente|precedent|avant)$`), Prev},
		{regexp.MustCompile(`(?i)^(speak|say|repeat|again|listen|s|répète|repete|encore|écoute)$`), Speak},
		{regexp.MustCompile(`(?i)^(reveal|answer|show|r|réponse|reponse|montre)$`), Reveal},
		{regexp.MustCompile(`(?i)^(faster|\+|plus vite|vite)$`), Faster},
		{regexp.MustCompile(`(?i)^(slower|-|plus lent|plus lentement|lentement)$`), Slower},
		{regexp.MustCompile(`(?i)^(edit|e|modifier|édite)$`), Edit},
		{regexp.MustCompile(`(?i)^(back|b|menu|categories|list|retour)$`), Back},
		{regexp.MustCompile(`(?i)^(quit|exit|q|quitter|au revoir)$`), Quit},
		{regexp.MustCompile(`(?i)^(help|h|\?|aide)$`), Help},
	}
	return p
}

// Parse converts input into a command. Unmatched input comes back as
// Unknown with the input as Arg.
func (p *Parser) Parse(input string) Command {
	trimmed := normalize(input)
	if trimmed == "" {
		return Command{Kind: Unknown}
	}

	p.log.Debug("command: parsing %q", trimmed)

	// A bare number is a jump.
	if isDigits(trimmed) {
		return Command{Kind: Jump, Arg: trimmed}
	}

	if m := jumpPattern.FindStringSubmatch(trimmed); m != nil {
		return Command{Kind: Jump, Arg: numberArg(m[1])}
	}

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("command: matched %s", rule.kind)
			return Command{Kind: rule.kind}
		}
	}

	p.log.Debug("command: no match")
	return Command{Kind: Unknown, Arg: trimmed}
}

// normalize trims whitespace and the punctuation speech-to-text adds.
func normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 1 {
		s = strings.TrimRight(s, ".!,")
	}
	return strings.TrimSpace(s)
}

// numberArg turns a spoken number into digits; anything else is returned
// as typed so the jump can reject it.
func numberArg(s string) string {
	if n, ok := numberWords[strings.ToLower(s)]; ok {
		return strconv.Itoa(n)
	}
	return s
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
