package speech

import (
	"context"
	"slices"
	"testing"

	"github.com/hammamikhairi/parlons/internal/logger"
)

func TestParseSayVoices(t *testing.T) {
	out := `Alex                en_US    # Most people recognize me by my voice.
Amélie (Enhanced)   fr_CA    # Bonjour, je m’appelle Amélie.
Thomas              fr_FR    # Bonjour, je m’appelle Thomas.

`
	voices := parseSayVoices(out)
	if len(voices) != 3 {
		t.Fatalf("expected 3 voices, got %d: %+v", len(voices), voices)
	}
	if voices[1].Name != "Amélie (Enhanced)" || voices[1].Lang != "fr-CA" || !voices[1].Quality {
		t.Fatalf("bad enhanced voice: %+v", voices[1])
	}
	if voices[2].Quality {
		t.Fatalf("plain voice flagged quality: %+v", voices[2])
	}
}

func TestParseEspeakVoices(t *testing.T) {
	out := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  en              --/M      English            gmw/en
 5  fr-fr           --/M      French_(France)    roa/fr
 5  fr-be           --/M      French_(Belgium)   roa/fr-BE
`
	voices := parseEspeakVoices(out)
	if len(voices) != 3 {
		t.Fatalf("expected 3 voices, got %d", len(voices))
	}
	if voices[1].Name != "fr-fr" || LanguageFamily(voices[1].Lang) != "fr" {
		t.Fatalf("bad french voice: %+v", voices[1])
	}
	if !voices[0].Default {
		t.Fatal("english voice should be the default")
	}
}

func TestCommandEngineArgs(t *testing.T) {
	say := &CommandEngine{program: ProgramSay}
	got := say.args(Utterance{Text: "Bonjour", Voice: "Thomas", Rate: 0.8})
	want := []string{"-v", "Thomas", "-r", "140", "Bonjour"}
	if !slices.Equal(got, want) {
		t.Fatalf("say args = %v, want %v", got, want)
	}

	espeak := &CommandEngine{program: ProgramEspeak}
	got = espeak.args(Utterance{Text: "Bonjour", Lang: "fr-FR", Rate: 1})
	want = []string{"-v", "fr-fr", "-s", "175", "Bonjour"}
	if !slices.Equal(got, want) {
		t.Fatalf("espeak args = %v, want %v", got, want)
	}
}

func TestCommandEngineVoicesUsesProgramListing(t *testing.T) {
	var gotArgs []string
	e := &CommandEngine{
		program: ProgramSay,
		path:    "/usr/bin/say",
		log:     logger.New(logger.LevelOff, nil),
		runOutput: func(_ context.Context, _ string, args ...string) ([]byte, error) {
			gotArgs = args
			return []byte("Thomas              fr_FR    # Bonjour\n"), nil
		},
	}
	voices, err := e.Voices(context.Background())
	if err != nil {
		t.Fatalf("voices: %v", err)
	}
	if !slices.Equal(gotArgs, []string{"-v", "?"}) {
		t.Fatalf("args = %v", gotArgs)
	}
	if len(voices) != 1 || voices[0].Name != "Thomas" {
		t.Fatalf("voices = %+v", voices)
	}
}
