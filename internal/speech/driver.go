package speech

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/eventloop"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// Compile-time interface check.
var _ domain.Speaker = (*Driver)(nil)

// DriverOption configures the Driver.
type DriverOption func(*Driver)

// WithPreferQuality sets the language families for which a voice flagged
// as higher quality wins over the first matching voice.
func WithPreferQuality(families ...string) DriverOption {
	return func(d *Driver) {
		d.preferQuality = families
	}
}

// WithDefaultLanguage sets the language used when Speak is given none.
func WithDefaultLanguage(lang string) DriverOption {
	return func(d *Driver) {
		d.defaultLang = lang
	}
}

// utterance is the driver's record of one Speak call. The active slot
// holds a pointer to it, and completions are matched by pointer identity,
// so a late event from an older utterance can never complete a newer one.
type utterance struct {
	text       string
	onComplete func()
	cancel     context.CancelFunc
}

// Driver speaks one utterance at a time through an Engine.
//
// Speak, Cancel and Voices must be called on the scheduler's loop; engine
// completions are posted back onto the same loop before any callback
// runs. IsSpeaking may be called from any goroutine.
type Driver struct {
	engine Engine
	sched  eventloop.Scheduler
	log    *logger.Logger

	preferQuality []string
	defaultLang   string

	// loop-owned
	baseCtx context.Context
	active  *utterance
	voices  []domain.Voice

	speaking atomic.Bool
}

// NewDriver creates a speech driver on top of engine.
func NewDriver(engine Engine, sched eventloop.Scheduler, log *logger.Logger, opts ...DriverOption) *Driver {
	d := &Driver{
		engine:        engine,
		sched:         sched,
		log:           log,
		preferQuality: DefaultPreferQuality,
		defaultLang:   DefaultLanguage,
		baseCtx:       context.Background(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start binds the driver to ctx and begins refreshing the voice list in
// the background. Non-blocking. Cancelling ctx stops any playback.
func (d *Driver) Start(ctx context.Context) {
	d.sched.Post(func() { d.baseCtx = ctx })
	go d.watchVoices(ctx)
}

// watchVoices fetches the voice list once, then again every time the
// engine reports a change.
func (d *Driver) watchVoices(ctx context.Context) {
	d.RefreshVoices(ctx)

	w, ok := d.engine.(VoiceWatcher)
	if !ok {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.VoicesChanged():
			d.log.Debug("speech: voice list changed, refreshing")
			d.RefreshVoices(ctx)
		}
	}
}

// RefreshVoices asks the engine for its voices and installs the result on
// the loop. Blocking; safe to call from any goroutine. On error the
// previous list is kept.
func (d *Driver) RefreshVoices(ctx context.Context) {
	voices, err := d.engine.Voices(ctx)
	if err != nil {
		d.log.Warn("speech: listing voices: %v", err)
		return
	}
	d.sched.Post(func() {
		d.voices = voices
		d.log.Debug("speech: %d voices available", len(voices))
	})
}

// Voices returns the voices known so far. The list is empty until the
// engine has answered.
func (d *Driver) Voices() []domain.Voice {
	return append([]domain.Voice(nil), d.voices...)
}

// IsSpeaking reports whether an utterance is active.
func (d *Driver) IsSpeaking() bool {
	return d.speaking.Load()
}

// Speak starts speaking text, superseding whatever was active. Blank text
// is trivially complete: onComplete runs immediately and nothing else
// changes. Otherwise onComplete runs exactly once when the engine finishes
// or fails, unless a later Speak or Cancel supersedes this utterance first.
func (d *Driver) Speak(text, lang string, rate float64, onComplete func()) {
	if strings.TrimSpace(text) == "" {
		if onComplete != nil {
			onComplete()
		}
		return
	}

	d.supersede()

	if lang == "" {
		lang = d.defaultLang
	}
	if rate <= 0 {
		rate = 1
	}
	req := Utterance{Text: text, Lang: lang, Rate: rate}
	if v, ok := SelectVoice(d.voices, lang, d.preferQuality); ok {
		req.Voice = v.Name
	}

	ctx, cancel := context.WithCancel(d.baseCtx)
	utt := &utterance{text: text, onComplete: onComplete, cancel: cancel}
	d.active = utt
	d.speaking.Store(true)

	d.log.Debug("speech: speaking (lang=%s, rate=%.2f, voice=%q): %s", lang, rate, req.Voice, truncate(text, 60))

	go func() {
		err := d.engine.Speak(ctx, req)
		cancel()
		d.sched.Post(func() { d.finish(utt, err) })
	}()
}

// Cancel supersedes the active utterance and stops its audio. No callback
// fires as a result.
func (d *Driver) Cancel() {
	if d.supersede() {
		d.log.Debug("speech: cancelled")
	}
}

// supersede empties the active slot and stops the old utterance's audio.
// Reports whether anything was active.
func (d *Driver) supersede() bool {
	utt := d.active
	if utt == nil {
		return false
	}
	d.active = nil
	d.speaking.Store(false)
	utt.cancel()
	return true
}

// finish runs on the loop when the engine returns for utt.
func (d *Driver) finish(utt *utterance, err error) {
	if d.active != utt {
		d.log.Debug("speech: dropping completion of superseded utterance: %s", truncate(utt.text, 40))
		return
	}
	d.active = nil
	d.speaking.Store(false)

	if err != nil {
		// Treated as complete so the caller's flow never stalls.
		d.log.Error("speech: playback failed: %v", err)
	}
	if utt.onComplete != nil {
		utt.onComplete()
	}
}

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
