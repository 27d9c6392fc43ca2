package speech

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/parlons/internal/logger"
)

// earState represents the Ear's listening mode.
type earState int

const (
	// earDormant: scanning short clips for a wake phrase.
	earDormant earState = iota
	// earListening: wake phrase heard, capturing the command.
	earListening
)

// DefaultWakeWords are matched case-insensitively anywhere in a clip.
// Whisper often mishears the app name, hence the variants.
var DefaultWakeWords = []string{
	"hey parlons",
	"parlons",
	"parlon",
	"par long",
	"ok coach",
}

// envAnnotation matches whisper annotations like "(keyboard clicking)"
// or "[laughter]".
var envAnnotation = regexp.MustCompile(`[\(\[][a-zA-Z_][a-zA-Z_\s]*[\)\]]`)

// hallucinations are whole transcriptions whisper produces from silence.
var hallucinations = []string{
	"...",
	"you",
	"thank you.",
	"thanks for watching!",
	"merci.",
	"sous-titrage st' 501",
	"sous-titres réalisés par la communauté d'amara.org",
}

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithRecordDuration sets how long each active-listening chunk lasts.
func WithRecordDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.recordDuration = d }
}

// WithDormantDuration sets how long each wake-phrase probe lasts.
func WithDormantDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.dormantDuration = d }
}

// WithListenTimeout caps how long one command may take to say.
func WithListenTimeout(d time.Duration) EarOption {
	return func(e *Ear) { e.listenTimeout = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) EarOption {
	return func(e *Ear) { e.tempDir = dir }
}

// WithWakeWords overrides the default wake phrases.
func WithWakeWords(words ...string) EarOption {
	return func(e *Ear) { e.wakeWords = words }
}

// WithBusy installs a check that reports when the app itself is talking.
// Clips recorded while it returns true are discarded.
func WithBusy(fn func() bool) EarOption {
	return func(e *Ear) { e.busy = fn }
}

// WithOnWake installs a hook run when a wake phrase is heard, typically
// to silence playback and show a listening indicator.
func WithOnWake(fn func()) EarOption {
	return func(e *Ear) { e.onWake = fn }
}

// Ear provides wake-phrase-triggered voice commands using a local Whisper
// model. In dormant mode it discards everything that lacks a wake phrase.
// Once woken it records until the speaker goes quiet, then sends the
// command text on C.
type Ear struct {
	whisperBin string
	modelPath  string
	tempDir    string
	log        *logger.Logger

	wakeWords       []string
	recordDuration  time.Duration
	dormantDuration time.Duration
	listenTimeout   time.Duration
	busy            func() bool
	onWake          func()

	// record transcribes one clip; swapped in tests.
	record func(ctx context.Context, d time.Duration) string

	mu     sync.Mutex
	muted  bool
	state  earState
	textCh chan string
}

// NewEar creates a voice command listener.
func NewEar(whisperBin, modelPath string, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin:      whisperBin,
		modelPath:       modelPath,
		tempDir:         ".parlons-stt",
		log:             log,
		wakeWords:       DefaultWakeWords,
		recordDuration:  1 * time.Second,
		dormantDuration: 3 * time.Second,
		listenTimeout:   10 * time.Second,
		busy:            func() bool { return false },
		onWake:          func() {},
		state:           earDormant,
		textCh:          make(chan string, 8),
	}
	e.record = e.recordChunk
	for _, opt := range opts {
		opt(e)
	}

	if _, err := exec.LookPath(e.whisperBin); err != nil {
		log.Error("ear: whisper binary %q not found in PATH: %v", e.whisperBin, err)
	}

	return e
}

// C returns the channel that receives command text.
func (e *Ear) C() <-chan string {
	return e.textCh
}

// Mute temporarily disables listening.
func (e *Ear) Mute() {
	e.mu.Lock()
	e.muted = true
	e.mu.Unlock()
	e.log.Debug("ear: muted")
}

// Unmute re-enables listening.
func (e *Ear) Unmute() {
	e.mu.Lock()
	e.muted = false
	e.mu.Unlock()
	e.log.Debug("ear: unmuted")
}

func (e *Ear) isMuted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// Run listens until ctx is cancelled. Call it in a goroutine.
func (e *Ear) Run(ctx context.Context) {
	e.log.Info("ear: started (dormant=%s, active=%s, timeout=%s, wake=%v)",
		e.dormantDuration, e.recordDuration, e.listenTimeout, e.wakeWords)

	for ctx.Err() == nil {
		if e.isMuted() {
			sleepCtx(ctx, 200*time.Millisecond)
			continue
		}

		switch e.getState() {
		case earDormant:
			e.doDormant(ctx)
		case earListening:
			e.doListening(ctx)
		}
	}
	e.log.Info("ear: stopped")
}

func (e *Ear) getState() earState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Ear) setState(s earState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// doDormant records one probe clip and looks for a wake phrase.
func (e *Ear) doDormant(ctx context.Context) {
	// Don't record our own voice.
	if e.busy() {
		sleepCtx(ctx, 200*time.Millisecond)
		return
	}

	text := e.record(ctx, e.dormantDuration)
	if e.busy() {
		e.log.Debug("ear/dormant: discarding clip, playback started while recording")
		return
	}

	text = cleanTranscription(text)
	if text == "" {
		return
	}
	e.log.Debug("ear/dormant: heard %q", text)

	rest, ok := e.afterWakeWord(text)
	if !ok {
		return
	}

	e.log.Info("ear: wake phrase in %q", text)
	e.onWake()

	// Wake phrase and command in one breath, e.g. "parlons suivant".
	if rest = cleanTranscription(rest); rest != "" {
		e.send(ctx, rest)
		return
	}

	e.setState(earListening)
}

// doListening records chunks until silence or the listen timeout, then
// sends the accumulated command and returns to dormant.
func (e *Ear) doListening(ctx context.Context) {
	defer e.setState(earDormant)
	e.log.Info("ear: listening...")

	// Before the user starts talking, allow more silence. Once they've
	// started, a shorter gap means they're done.
	const (
		graceEmpty      = 4
		postSpeechEmpty = 2
	)

	deadline := time.Now().Add(e.listenTimeout)
	var parts []string
	emptyRuns := 0

	for ctx.Err() == nil && time.Now().Before(deadline) {
		chunk := cleanTranscription(e.record(ctx, e.recordDuration))
		if chunk == "" {
			emptyRuns++
			maxEmpty := graceEmpty
			if len(parts) > 0 {
				maxEmpty = postSpeechEmpty
			}
			if emptyRuns >= maxEmpty {
				break
			}
			continue
		}

		emptyRuns = 0
		if chunk = e.removeWakeWords(chunk); chunk != "" {
			e.log.Debug("ear/listen: chunk: %q", chunk)
			parts = append(parts, chunk)
		}
	}

	combined := strings.TrimSpace(strings.Join(parts, " "))
	if combined == "" {
		e.log.Debug("ear: listening ended with no input")
		return
	}
	e.send(ctx, combined)
}

func (e *Ear) send(ctx context.Context, text string) {
	e.log.Info("ear: heard command: %q", text)
	select {
	case e.textCh <- text:
	case <-ctx.Done():
	}
}

// afterWakeWord reports whether text contains a wake phrase and returns
// whatever follows it, trimmed of punctuation.
func (e *Ear) afterWakeWord(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, w := range e.wakeWords {
		idx := strings.Index(lower, strings.ToLower(w))
		if idx < 0 {
			continue
		}
		end := min(idx+len(w), len(text))
		rest := text[end:]
		return strings.Trim(rest, " ,.!?\n\r\t"), true
	}
	return "", false
}

// removeWakeWords strips repeated wake phrases from a command chunk.
func (e *Ear) removeWakeWords(text string) string {
	lower := strings.ToLower(text)
	for _, w := range e.wakeWords {
		lower = strings.ReplaceAll(lower, strings.ToLower(w), "")
	}
	return strings.Trim(lower, " ,.!?")
}

// recordChunk records for duration and returns whisper's transcription.
func (e *Ear) recordChunk(ctx context.Context, duration time.Duration) string {
	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := e.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		e.whisperBin,
		e.modelPath,
		e.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		e.log.Error("ear: transcriber init failed: %v", err)
		sleepCtx(ctx, 2*time.Second)
		return ""
	}

	if err := t.Start(); err != nil {
		e.log.Error("ear: recording start failed: %v", err)
		sleepCtx(ctx, 2*time.Second)
		return ""
	}

	interrupted := !sleepCtx(ctx, duration)
	t.Stop()
	wg.Wait()

	if interrupted {
		return ""
	}
	return result
}

// cleanTranscription flattens whitespace and removes whisper artifacts.
// Returns "" when nothing meaningful is left.
func cleanTranscription(s string) string {
	s = envAnnotation.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")

	// Timestamp prefixes like "[00:00:00.000 --> 00:00:05.000]".
	if strings.HasPrefix(s, "[") {
		if idx := strings.Index(s, "]"); idx != -1 && idx < 40 {
			s = strings.TrimSpace(s[idx+1:])
		}
	}

	lower := strings.ToLower(s)
	for _, h := range hallucinations {
		if lower == h {
			return ""
		}
	}
	return s
}

// sleepCtx waits for d. Returns false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
