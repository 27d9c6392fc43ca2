package speech

import (
	"context"

	"github.com/hammamikhairi/parlons/internal/domain"
)

// Engine turns text into audible speech. Speak blocks until the utterance
// has finished playing, returning early with ctx.Err() when ctx is
// cancelled. Implementations must stop audio promptly on cancellation and
// must not play two utterances at once.
type Engine interface {
	Voices(ctx context.Context) ([]domain.Voice, error)
	Speak(ctx context.Context, u Utterance) error
}

// VoiceWatcher is implemented by engines whose voice list can change
// after startup (for example when a voice pack finishes installing).
type VoiceWatcher interface {
	VoicesChanged() <-chan struct{}
}
