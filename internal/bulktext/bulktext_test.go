package bulktext

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/store"
)

func TestParseTwoLines(t *testing.T) {
	res := Parse("Bonjour. Hello\nMerci. Thank you")
	if len(res.Rejected) != 0 {
		t.Fatalf("unexpected rejections: %+v", res.Rejected)
	}
	if len(res.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(res.Questions))
	}

	want := []struct{ prompt, answer string }{{"Bonjour", "Hello"}, {"Merci", "Thank you"}}
	for i, w := range want {
		q := res.Questions[i]
		if q.Content != w.prompt || q.Answer != w.answer {
			t.Errorf("question %d = %q / %q, want %q / %q", i, q.Content, q.Answer, w.prompt, w.answer)
		}
		if q.ID != i+1 || q.Type != domain.TypeMeaning || q.Instruction != Instruction || q.AudioText != w.prompt {
			t.Errorf("question %d metadata = %+v", i, q)
		}
	}
}

func TestParseRejectsBadLines(t *testing.T) {
	input := "NoDotHere\n\n   \n. no prompt\nNo answer.   \r\nÇa va. It's fine. Really."

	res := Parse(input)
	if len(res.Questions) != 1 {
		t.Fatalf("expected 1 question, got %+v", res.Questions)
	}
	if q := res.Questions[0]; q.Content != "Ça va" || q.Answer != "It's fine. Really." || q.ID != 1 {
		t.Fatalf("split must happen at the first period: %+v", q)
	}

	want := []Rejected{
		{Line: 1, Text: "NoDotHere", Reason: ReasonNoPeriod},
		{Line: 4, Text: ". no prompt", Reason: ReasonEmptyPrompt},
		{Line: 5, Text: "No answer.", Reason: ReasonEmptyAnswer},
	}
	if len(res.Rejected) != len(want) {
		t.Fatalf("rejected = %+v", res.Rejected)
	}
	for i := range want {
		if res.Rejected[i] != want[i] {
			t.Errorf("rejected[%d] = %+v, want %+v", i, res.Rejected[i], want[i])
		}
	}
}

func TestParseQuestionsRejectsEmptyResult(t *testing.T) {
	for _, in := range []string{"", "NoDotHere", "   \n\n"} {
		if _, err := ParseQuestions(in); !errors.Is(err, domain.ErrInvalidFormat) {
			t.Errorf("ParseQuestions(%q) err = %v, want ErrInvalidFormat", in, err)
		}
	}
	qs, err := ParseQuestions("Oui. Yes")
	if err != nil || len(qs) != 1 {
		t.Fatalf("ParseQuestions = %v, %v", qs, err)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	text := Format(Parse("Bonjour. Hello\nMerci. Thank you").Questions)
	if text != "Bonjour. Hello\nMerci. Thank you\n" {
		t.Fatalf("Format = %q", text)
	}
	if got := Parse(text); len(got.Questions) != 2 || len(got.Rejected) != 0 {
		t.Fatalf("formatted text does not parse back: %+v", got)
	}
}

func TestFormatDefaultsSplitsBackCleanly(t *testing.T) {
	for _, cat := range store.Defaults() {
		res := Parse(Format(cat.Questions))
		if len(res.Rejected) != 0 || len(res.Questions) != len(cat.Questions) {
			t.Fatalf("%s: parsed %d questions, rejected %+v", cat.ID, len(res.Questions), res.Rejected)
		}
		for i, q := range res.Questions {
			if q.Answer != cat.Questions[i].Answer {
				t.Errorf("%s #%d: answer = %q, want %q", cat.ID, i+1, q.Answer, cat.Questions[i].Answer)
			}
		}
		if got := Restore(cat.Questions, res.Questions); !reflect.DeepEqual(got, cat.Questions) {
			t.Errorf("%s: unchanged edit altered cards:\n got %+v\nwant %+v", cat.ID, got, cat.Questions)
		}
	}
}

func TestFormatStripsTrailingPeriods(t *testing.T) {
	text := Format([]domain.Question{{Content: "Je ___ au tennis.", Answer: "joue"}})
	if text != "Je ___ au tennis. joue\n" {
		t.Fatalf("Format = %q", text)
	}
}

func TestRestoreKeepsEditedLinesAsParsed(t *testing.T) {
	previous := []domain.Question{
		{ID: 7, Type: domain.TypeFillBlank, Content: "Je ___ au tennis.", Instruction: "Fill in", Answer: "joue", AudioText: "Je ... au tennis"},
		{ID: 8, Type: domain.TypeTranslation, Content: "Bread", Instruction: "Translate", Answer: "Le Pain", Language: "en-US"},
	}
	parsed := Parse("Bread. Du pain\nJe ___ au tennis. joue\nLe lait. milk").Questions

	got := Restore(previous, parsed)
	if len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}
	if got[0].Answer != "Du pain" || got[0].Type != domain.TypeMeaning || got[0].Language != "" {
		t.Errorf("edited line should come from the text: %+v", got[0])
	}
	if got[1].ID != 2 || got[1].Type != domain.TypeFillBlank || got[1].Content != "Je ___ au tennis." || got[1].AudioText != "Je ... au tennis" {
		t.Errorf("unchanged line should keep the card: %+v", got[1])
	}
	if got[2].Content != "Le lait" || got[2].ID != 3 {
		t.Errorf("new line = %+v", got[2])
	}
}
