// Package bulktext converts between question lists and the one-line-per-
// card text used by the bulk editor:
//
//	Bonjour. Hello
//	Merci. Thank you
//
// Everything before the first period is the prompt, everything after it
// is the answer.
package bulktext

import (
	"fmt"
	"strings"

	"github.com/hammamikhairi/parlons/internal/domain"
)

// Instruction is attached to every question created from bulk text.
const Instruction = "Translate / Meaning"

// Reasons a line is rejected.
const (
	ReasonNoPeriod    = "missing period"
	ReasonEmptyPrompt = "empty prompt"
	ReasonEmptyAnswer = "empty answer"
)

// Rejected is a non-blank line that did not produce a question.
type Rejected struct {
	Line   int // 1-based line number in the input
	Text   string
	Reason string
}

// Result is the outcome of parsing bulk text.
type Result struct {
	Questions []domain.Question
	Rejected  []Rejected
}

// Parse splits text into questions. Blank lines are skipped silently;
// other lines that don't yield a question are reported in Rejected.
// Accepted questions are numbered from 1 in input order.
func Parse(text string) Result {
	var res Result
	text = strings.ReplaceAll(text, "\r\n", "\n")

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		prompt, answer, ok := strings.Cut(line, ".")
		prompt = strings.TrimSpace(prompt)
		answer = strings.TrimSpace(answer)

		reason := ""
		switch {
		case !ok:
			reason = ReasonNoPeriod
		case prompt == "":
			reason = ReasonEmptyPrompt
		case answer == "":
			reason = ReasonEmptyAnswer
		}
		if reason != "" {
			res.Rejected = append(res.Rejected, Rejected{Line: i + 1, Text: line, Reason: reason})
			continue
		}

		res.Questions = append(res.Questions, domain.Question{
			ID:          len(res.Questions) + 1,
			Type:        domain.TypeMeaning,
			Content:     prompt,
			Instruction: Instruction,
			Answer:      answer,
			AudioText:   prompt,
		})
	}
	return res
}

// ParseQuestions is Parse for callers that only need the questions. It
// returns ErrInvalidFormat when no line was usable.
func ParseQuestions(text string) ([]domain.Question, error) {
	res := Parse(text)
	if len(res.Questions) == 0 {
		return nil, fmt.Errorf("%w: no line of the form \"prompt. answer\"", domain.ErrInvalidFormat)
	}
	return res.Questions, nil
}

// Format renders questions as editable bulk text, one per line. Trailing
// periods are dropped from the prompt so the line splits back at the
// right place; Restore recovers the original card.
func Format(questions []domain.Question) string {
	var b strings.Builder
	for _, q := range questions {
		b.WriteString(formatPrompt(q.Content))
		b.WriteString(". ")
		b.WriteString(strings.TrimSpace(q.Answer))
		b.WriteByte('\n')
	}
	return b.String()
}

// Restore replaces each parsed question that matches a previous card's
// formatted line with that card, so saving the editor unchanged keeps
// types, instructions and spoken text. IDs stay those assigned by Parse.
func Restore(previous, parsed []domain.Question) []domain.Question {
	byLine := make(map[string][]domain.Question, len(previous))
	for _, q := range previous {
		k := lineKey(formatPrompt(q.Content), q.Answer)
		byLine[k] = append(byLine[k], q)
	}

	out := make([]domain.Question, len(parsed))
	for i, q := range parsed {
		k := lineKey(q.Content, q.Answer)
		if prev := byLine[k]; len(prev) > 0 {
			restored := prev[0]
			restored.ID = q.ID
			byLine[k] = prev[1:]
			q = restored
		}
		out[i] = q
	}
	return out
}

func formatPrompt(content string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(content), "."))
}

func lineKey(prompt, answer string) string {
	return strings.TrimSpace(prompt) + "\x00" + strings.TrimSpace(answer)
}
