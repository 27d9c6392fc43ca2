// Package rehearsal drives the timed speak, repeat, reveal and advance
// cycle over a list of questions.
package rehearsal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/eventloop"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// Default cycle timing and rate bounds.
const (
	DefaultPromptDelay = 1 * time.Second
	DefaultAnswerDelay = 2 * time.Second
	DefaultNextDelay   = 2 * time.Second

	DefaultRate    = 0.9
	DefaultMinRate = 0.5
	DefaultMaxRate = 1.5
)

// Option configures the sequencer.
type Option func(*Sequencer)

// WithDelays sets the three pauses of the cycle.
func WithDelays(prompt, answer, next time.Duration) Option {
	return func(s *Sequencer) {
		s.promptDelay = prompt
		s.answerDelay = answer
		s.nextDelay = next
	}
}

// WithLanguage sets the drill language, used for answers and for prompts
// that carry no language of their own.
func WithLanguage(tag string) Option {
	return func(s *Sequencer) { s.lang = tag }
}

// WithRateBounds sets the range SetRate clamps to.
func WithRateBounds(lo, hi float64) Option {
	return func(s *Sequencer) {
		s.minRate = lo
		s.maxRate = hi
	}
}

// WithRate sets the initial speech rate.
func WithRate(r float64) Option {
	return func(s *Sequencer) { s.rate = r }
}

// WithObserver registers a func that receives a snapshot after every
// state change. It runs on the loop.
func WithObserver(fn func(State)) Option {
	return func(s *Sequencer) { s.observer = fn }
}

// State is a snapshot of the sequencer.
type State struct {
	Questions int
	Index     int // 0-based; 0 when there are no questions
	Question  domain.Question
	Revealed  bool
	Active    bool
	Phase     Phase
	Rate      float64
	Language  string
}

// Sequencer owns the rehearsal session for one category.
//
// All methods must be called on the scheduler's loop. Every continuation
// (speech completion or phase timer) captures the generation token that
// was live when it was scheduled and does nothing if the token has since
// been bumped.
type Sequencer struct {
	speaker domain.Speaker
	sched   eventloop.Scheduler
	log     *logger.Logger

	promptDelay time.Duration
	answerDelay time.Duration
	nextDelay   time.Duration
	lang        string
	rate        float64
	minRate     float64
	maxRate     float64
	observer    func(State)

	questions []domain.Question
	index     int
	revealed  bool
	active    bool
	closed    bool
	phase     Phase

	gen   eventloop.Generation
	timer eventloop.Timer
	// next is the phase the loop moves to when the current speech ends;
	// PhaseIdle when the loop is not waiting on speech.
	next Phase
}

// New creates a sequencer over questions. Rehearsal starts off.
func New(questions []domain.Question, speaker domain.Speaker, sched eventloop.Scheduler, log *logger.Logger, opts ...Option) *Sequencer {
	s := &Sequencer{
		speaker:     speaker,
		sched:       sched,
		log:         log,
		promptDelay: DefaultPromptDelay,
		answerDelay: DefaultAnswerDelay,
		nextDelay:   DefaultNextDelay,
		lang:        "fr-FR",
		rate:        DefaultRate,
		minRate:     DefaultMinRate,
		maxRate:     DefaultMaxRate,
		questions:   append([]domain.Question(nil), questions...),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rate = s.clamp(s.rate)
	return s
}

// State returns the current snapshot.
func (s *Sequencer) State() State {
	st := State{
		Questions: len(s.questions),
		Index:     s.index,
		Revealed:  s.revealed,
		Active:    s.active,
		Phase:     s.phase,
		Rate:      s.rate,
		Language:  s.lang,
	}
	if len(s.questions) > 0 {
		st.Question = s.questions[s.index]
	}
	return st
}

// SetActive turns rehearsal on or off. Turning it on with no questions,
// or after Close, does nothing. Turning it on starts the cycle at the
// current question. Turning it off always stops speech and the pending
// timer, even when rehearsal was already off, and leaves the revealed
// flag as it is.
func (s *Sequencer) SetActive(on bool) {
	if on && s.active {
		return
	}
	if !on && !s.active {
		s.halt()
		s.phase = PhaseIdle
		return
	}
	if on {
		if s.closed || len(s.questions) == 0 {
			s.log.Debug("rehearsal: nothing to rehearse")
			return
		}
		s.active = true
		s.log.Info("rehearsal: started at question %d/%d", s.index+1, len(s.questions))
		s.restart()
		return
	}

	s.active = false
	s.halt()
	s.phase = PhaseIdle
	s.log.Info("rehearsal: stopped at question %d/%d", s.index+1, len(s.questions))
	s.emit()
}

// Toggle flips rehearsal on or off.
func (s *Sequencer) Toggle() {
	s.SetActive(!s.active)
}

// Next moves to the following question, wrapping after the last.
func (s *Sequencer) Next() {
	if n := len(s.questions); n > 0 {
		s.moveTo((s.index + 1) % n)
	}
}

// Prev moves to the preceding question, wrapping before the first.
func (s *Sequencer) Prev() {
	if n := len(s.questions); n > 0 {
		s.moveTo((s.index - 1 + n) % n)
	}
}

// JumpTo moves to question k, counted from 1. Out-of-range targets return
// ErrInvalidJump and change nothing.
func (s *Sequencer) JumpTo(k int) error {
	if k < 1 || k > len(s.questions) {
		return fmt.Errorf("%w: %d not in [1, %d]", domain.ErrInvalidJump, k, len(s.questions))
	}
	s.moveTo(k - 1)
	return nil
}

// Jump parses user input as a 1-based question number and jumps to it.
func (s *Sequencer) Jump(input string) error {
	k, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidJump, input)
	}
	return s.JumpTo(k)
}

// SpeakPrompt speaks the current prompt on demand without touching the
// rehearsal state. If the cycle is waiting on speech, it resumes when
// this utterance ends instead.
func (s *Sequencer) SpeakPrompt() {
	if len(s.questions) == 0 {
		return
	}
	q := s.questions[s.index]
	s.speaker.Speak(q.SpokenPrompt(), s.promptLang(q), s.rate, s.resume())
}

// RevealAnswer shows the answer and speaks it in the drill language.
func (s *Sequencer) RevealAnswer() {
	if len(s.questions) == 0 {
		return
	}
	s.revealed = true
	s.emit()
	s.speaker.Speak(s.questions[s.index].Answer, s.lang, s.rate, s.resume())
}

// SetRate clamps r to the configured bounds, applies it to the next
// utterance and returns the applied value.
func (s *Sequencer) SetRate(r float64) float64 {
	s.rate = s.clamp(r)
	s.emit()
	return s.rate
}

// AdjustRate changes the rate by delta, rounded to one decimal.
func (s *Sequencer) AdjustRate(delta float64) float64 {
	return s.SetRate(math.Round((s.rate+delta)*10) / 10)
}

// SetQuestions replaces the question list, as after a bulk edit.
// Rehearsal stops, the first question becomes current and its answer is
// hidden.
func (s *Sequencer) SetQuestions(questions []domain.Question) {
	s.active = false
	s.halt()
	s.phase = PhaseIdle
	s.questions = append([]domain.Question(nil), questions...)
	s.index = 0
	s.revealed = false
	s.log.Debug("rehearsal: %d questions loaded", len(s.questions))
	s.emit()
}

// Close stops everything for good. Later calls to SetActive are ignored.
func (s *Sequencer) Close() {
	if s.closed {
		return
	}
	s.active = false
	s.halt()
	s.phase = PhaseIdle
	s.closed = true
	s.emit()
}

// moveTo cancels whatever is playing or pending, selects question i with
// its answer hidden, and restarts the cycle there if rehearsing.
func (s *Sequencer) moveTo(i int) {
	s.halt()
	s.index = i
	s.revealed = false
	if s.active {
		s.restart()
		return
	}
	s.emit()
}

// restart begins a fresh cycle generation at the current question.
func (s *Sequencer) restart() {
	s.halt()
	s.run(s.gen.Current(), PhaseSpeakPrompt)
}

// halt invalidates the running generation, cancels speech and clears the
// pending timer.
func (s *Sequencer) halt() {
	s.gen.Bump()
	s.next = PhaseIdle
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.speaker.Cancel()
}

// live reports whether a continuation holding tok may still act.
func (s *Sequencer) live(tok eventloop.Token) bool {
	return s.active && !s.closed && s.gen.Valid(tok)
}

// run enters phase p for generation tok.
func (s *Sequencer) run(tok eventloop.Token, p Phase) {
	if !s.live(tok) {
		return
	}
	s.phase = p
	q := s.questions[s.index]

	switch p {
	case PhaseSpeakPrompt:
		s.emit()
		s.say(tok, q.SpokenPrompt(), s.promptLang(q), PhasePromptPause)
	case PhasePromptPause:
		s.emit()
		s.wait(tok, s.promptDelay, PhaseRepeatPrompt)
	case PhaseRepeatPrompt:
		s.emit()
		s.say(tok, q.SpokenPrompt(), s.promptLang(q), PhaseAnswerPause)
	case PhaseAnswerPause:
		s.emit()
		s.wait(tok, s.answerDelay, PhaseReveal)
	case PhaseReveal:
		s.revealed = true
		s.emit()
		s.say(tok, q.Answer, s.lang, PhaseNextPause)
	case PhaseNextPause:
		s.emit()
		s.wait(tok, s.nextDelay, PhaseAdvance)
	case PhaseAdvance:
		s.index = (s.index + 1) % len(s.questions)
		s.revealed = false
		s.log.Debug("rehearsal: advancing to question %d/%d", s.index+1, len(s.questions))
		s.run(tok, PhaseSpeakPrompt)
	}
}

// say speaks text and continues with next when the speech ends.
func (s *Sequencer) say(tok eventloop.Token, text, lang string, next Phase) {
	s.next = next
	s.speaker.Speak(text, lang, s.rate, s.then(tok, next))
}

// then returns a speech completion that moves generation tok to next.
func (s *Sequencer) then(tok eventloop.Token, next Phase) func() {
	return func() {
		if !s.live(tok) {
			return
		}
		s.next = PhaseIdle
		s.run(tok, next)
	}
}

// wait arms the phase timer.
func (s *Sequencer) wait(tok eventloop.Token, d time.Duration, next Phase) {
	s.timer = s.sched.AfterFunc(d, func() {
		if !s.live(tok) {
			return
		}
		s.timer = nil
		s.run(tok, next)
	})
}

// resume returns the completion for a manual utterance. A manual utterance
// supersedes the cycle's own speech, so when the cycle is waiting on
// speech it takes over that continuation.
func (s *Sequencer) resume() func() {
	if !s.active || s.next == PhaseIdle {
		return nil
	}
	return s.then(s.gen.Current(), s.next)
}

func (s *Sequencer) promptLang(q domain.Question) string {
	if q.Language != "" {
		return q.Language
	}
	return s.lang
}

func (s *Sequencer) clamp(r float64) float64 {
	if math.IsNaN(r) {
		return s.minRate
	}
	return math.Min(math.Max(r, s.minRate), s.maxRate)
}

func (s *Sequencer) emit() {
	if s.observer != nil {
		s.observer(s.State())
	}
}
