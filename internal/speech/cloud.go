package speech

import (
	"context"
	"fmt"
	"sync"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// Synthesizer produces WAV audio for an utterance. AzureClient is the
// production implementation.
type Synthesizer interface {
	ListVoices(ctx context.Context) ([]domain.Voice, error)
	Synthesize(ctx context.Context, u Utterance) ([]byte, error)
}

// Compile-time interface checks.
var (
	_ Synthesizer = (*AzureClient)(nil)
	_ Engine      = (*CloudEngine)(nil)
)

// CloudEngine speaks by synthesizing audio remotely and playing it
// locally. Synthesis results are cached when a cache is given.
type CloudEngine struct {
	synth Synthesizer
	cache *AudioCache // nil disables caching
	sink  AudioSink
	log   *logger.Logger

	mu sync.Mutex // one utterance at a time
}

// NewCloudEngine creates a cloud engine. cache may be nil.
func NewCloudEngine(synth Synthesizer, cache *AudioCache, sink AudioSink, log *logger.Logger) *CloudEngine {
	return &CloudEngine{
		synth: synth,
		cache: cache,
		sink:  sink,
		log:   log,
	}
}

// Voices lists the synthesizer's voices.
func (e *CloudEngine) Voices(ctx context.Context) ([]domain.Voice, error) {
	return e.synth.ListVoices(ctx)
}

// Speak synthesizes (or loads from cache) and plays u. Blocks until the
// audio ends or ctx is cancelled.
func (e *CloudEngine) Speak(ctx context.Context, u Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	audio, err := e.audioFor(ctx, u)
	if err != nil {
		return err
	}

	e.log.Debug("cloud engine: playing %s", truncate(u.Text, 40))
	return e.sink.Play(ctx, audio)
}

// audioFor returns the WAV bytes for u, synthesizing on a cache miss.
func (e *CloudEngine) audioFor(ctx context.Context, u Utterance) ([]byte, error) {
	if e.cache != nil {
		if audio, ok := e.cache.Get(u); ok {
			return audio, nil
		}
	}

	audio, err := e.synth.Synthesize(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("synthesizing: %w", err)
	}

	if e.cache != nil {
		e.cache.Put(u, audio)
	}
	return audio, nil
}
