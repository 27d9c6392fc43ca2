package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// AudioSink plays raw WAV audio until it ends or ctx is cancelled.
type AudioSink interface {
	Play(ctx context.Context, wav []byte) error
}

// Compile-time interface check.
var _ AudioSink = (*Player)(nil)

// Player handles audio playback of WAV/PCM data via oto.
// Only one clip plays at a time; a new Play waits for the previous one.
type Player struct {
	otoCtx *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
}

// NewPlayer creates an audio player. Initializes the system audio context.
// Returns an error if the audio device is unavailable.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("player: initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{otoCtx: otoCtx, log: log}, nil
}

// Play plays WAV audio data synchronously. Blocks until playback finishes
// or ctx is cancelled, in which case the audio is cut and ctx.Err() is
// returned.
func (p *Player) Play(ctx context.Context, wav []byte) error {
	pcm, err := extractPCM(wav)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	player := p.otoCtx.NewPlayer(bytes.NewReader(pcm))
	player.Play()
	p.log.Debug("player: playing %d bytes of PCM (%s)", len(pcm), pcmDuration(len(pcm)))

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			p.log.Debug("player: interrupted")
			_ = player.Close()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return player.Close()
}

// extractPCM strips the WAV/RIFF header and returns raw PCM data.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("wav data too short")
	}

	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	// Walk chunks to find the "data" chunk.
	pos := 12
	for pos < len(wav)-8 {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))

		if chunkID == "data" {
			start := pos + 8
			end := min(start+chunkSize, len(wav))
			return wav[start:end], nil
		}

		pos += 8 + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return nil, errors.New("data chunk not found in WAV")
}

// pcmDuration returns how long a clip of n PCM bytes plays at the
// configured format.
func pcmDuration(n int) time.Duration {
	bytesPerSecond := SampleRate * ChannelCount * BitDepth / 8
	return time.Duration(n) * time.Second / time.Duration(bytesPerSecond)
}
