package speech

import (
	"context"
	"strings"
	"time"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// Compile-time interface check.
var _ Engine = (*SilentEngine)(nil)

// Speaking pace assumed by the silent engine at rate 1.0.
const silentWordsPerMinute = 150

// SilentEngine makes no sound. It waits roughly as long as the text would
// take to say, so rehearsal keeps a natural pace in text-only mode.
type SilentEngine struct {
	log *logger.Logger
	wpm int
}

// NewSilentEngine creates a silent engine.
func NewSilentEngine(log *logger.Logger) *SilentEngine {
	return &SilentEngine{log: log, wpm: silentWordsPerMinute}
}

// Voices returns no voices.
func (e *SilentEngine) Voices(context.Context) ([]domain.Voice, error) {
	return nil, nil
}

// Speak waits out the simulated speaking time.
func (e *SilentEngine) Speak(ctx context.Context, u Utterance) error {
	d := e.Duration(u)
	e.log.Debug("silent engine: %q for %s", truncate(u.Text, 40), d)

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Duration estimates how long u would take to speak.
func (e *SilentEngine) Duration(u Utterance) time.Duration {
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	words := max(len(strings.Fields(u.Text)), 1)
	perWord := time.Duration(float64(time.Minute) / (float64(e.wpm) * rate))
	return time.Duration(words) * perWord
}
