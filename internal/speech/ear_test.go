package speech

import (
	"context"
	"testing"
	"time"

	"github.com/hammamikhairi/parlons/internal/logger"
)

func TestCleanTranscription(t *testing.T) {
	tests := map[string]string{
		"  [BLANK_AUDIO]  ":                    "",
		"(keyboard clicking) suivant":          "suivant",
		"[00:00:00.000 --> 00:00:02.000] stop": "stop",
		"Thank you.":                           "",
		"question\n  cinq":                     "question cinq",
	}
	for in, want := range tests {
		if got := cleanTranscription(in); got != want {
			t.Errorf("cleanTranscription(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEarWakeWordMatching(t *testing.T) {
	e := &Ear{wakeWords: DefaultWakeWords}

	rest, ok := e.afterWakeWord("Hey Parlons, suivant.")
	if !ok || rest != "suivant" {
		t.Fatalf("got %q, %v", rest, ok)
	}
	if rest, ok := e.afterWakeWord("parlons"); !ok || rest != "" {
		t.Fatalf("bare wake phrase: %q, %v", rest, ok)
	}
	if _, ok := e.afterWakeWord("on y va"); ok {
		t.Fatal("matched without a wake phrase")
	}
	if got := e.removeWakeWords("parlons question deux"); got != "question deux" {
		t.Fatalf("removeWakeWords = %q", got)
	}
}

func TestEarSendsImmediateCommand(t *testing.T) {
	woke := make(chan struct{}, 1)
	e := NewEar("whisper-cli-missing", "model.bin", logger.New(logger.LevelOff, nil),
		WithOnWake(func() {
			select {
			case woke <- struct{}{}:
			default:
			}
		}),
	)
	e.record = func(ctx context.Context, _ time.Duration) string {
		return "parlons suivant"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	select {
	case got := <-e.C():
		if got != "suivant" {
			t.Fatalf("command = %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no command received")
	}
	select {
	case <-woke:
	default:
		t.Fatal("wake hook not called")
	}
}

func TestEarListensAfterBareWakePhrase(t *testing.T) {
	clips := []string{"Parlons.", "question", "trois", "", "", "", ""}
	e := NewEar("whisper-cli-missing", "model.bin", logger.New(logger.LevelOff, nil))
	e.record = func(ctx context.Context, _ time.Duration) string {
		if len(clips) == 0 {
			<-ctx.Done()
			return ""
		}
		c := clips[0]
		clips = clips[1:]
		return c
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	select {
	case got := <-e.C():
		if got != "question trois" {
			t.Fatalf("command = %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no command received")
	}
}

func TestEarDiscardsClipsWhileBusy(t *testing.T) {
	e := NewEar("whisper-cli-missing", "model.bin", logger.New(logger.LevelOff, nil),
		WithBusy(func() bool { return true }),
	)
	recorded := make(chan struct{}, 1)
	e.record = func(context.Context, time.Duration) string {
		recorded <- struct{}{}
		return "parlons suivant"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	e.Run(ctx)

	select {
	case <-recorded:
		t.Fatal("recorded while busy")
	default:
	}
}
