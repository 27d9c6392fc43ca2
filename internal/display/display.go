// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] owns the screen: the category list, the player card, the bulk
// editor and a command line. Rehearsal state is pushed in from the event
// loop through [UI.Notify]; every call into the sequencer is run on the
// loop from a tea.Cmd so the Bubble Tea goroutine never blocks on it.
// Log-style lines (voice input, save results) are printed above the
// rendered area via Program.Println.
package display

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/parlons/internal/bulktext"
	"github.com/hammamikhairi/parlons/internal/command"
	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
	"github.com/hammamikhairi/parlons/internal/rehearsal"
)

// Library is the category data the UI reads and edits.
type Library interface {
	Categories() []domain.Category
	Category(id string) (domain.Category, error)
	ApplyBulkEdit(ctx context.Context, id, text string) (bulktext.Result, error)
	Rename(ctx context.Context, id, name string) error
	Offline() bool
}

// Rehearsal is the sequencer surface the UI drives. Its methods are only
// called from functions posted to the Runner.
type Rehearsal interface {
	SetQuestions(questions []domain.Question)
	SetActive(on bool)
	Toggle()
	Next()
	Prev()
	Jump(input string) error
	SpeakPrompt()
	RevealAnswer()
	AdjustRate(delta float64) float64
	State() rehearsal.State
}

// Runner queues fn on the event loop. Functions run in posting order.
type Runner interface {
	Post(fn func())
}

// Option configures the UI.
type Option func(*UI)

// WithRateStep sets how much faster/slower change the speech rate.
func WithRateStep(step float64) Option {
	return func(u *UI) {
		if step > 0 {
			u.rateStep = step
		}
	}
}

// WithTitle sets the window title prefix.
func WithTitle(title string) Option {
	return func(u *UI) { u.title = title }
}

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may call
// [UI.Notify], [UI.Voice] and the print helpers at any time.
type UI struct {
	lib      Library
	seq      Rehearsal
	run      Runner
	parser   *command.Parser
	log      *logger.Logger
	rateStep float64
	title    string
	ctx      context.Context

	program atomic.Pointer[tea.Program]
	done    atomic.Bool
	readyCh chan struct{}
	quitCh  chan struct{}
}

// NewUI creates the display. Call Run to start.
func NewUI(lib Library, seq Rehearsal, run Runner, log *logger.Logger, opts ...Option) *UI {
	u := &UI{
		lib:      lib,
		seq:      seq,
		run:      run,
		parser:   command.NewParser(log),
		log:      log,
		rateStep: 0.1,
		title:    "parlons",
		ctx:      context.Background(),
		readyCh:  make(chan struct{}),
		quitCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Run starts the Bubble Tea event loop. Blocks until quit or ctx ends.
func (u *UI) Run(ctx context.Context) error {
	u.ctx = ctx
	p := tea.NewProgram(newModel(u), tea.WithContext(ctx))
	u.program.Store(p)
	_, err := p.Run()
	u.done.Store(true)
	close(u.quitCh)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Notify delivers a sequencer snapshot. It is meant to be the sequencer's
// observer and is safe to call from the loop goroutine.
func (u *UI) Notify(st rehearsal.State) {
	u.send(stateMsg(st))
}

// Voice feeds a spoken command into the UI as if typed on the command line.
func (u *UI) Voice(text string) {
	u.send(voiceMsg(text))
}

func (u *UI) send(msg tea.Msg) {
	if p := u.program.Load(); p != nil && !u.done.Load() {
		p.Send(msg)
	}
}

// Println prints a line above the UI. Thread-safe. Before the program
// starts or after it ends, it falls back to fmt.Println.
func (u *UI) Println(a ...any) {
	if p := u.program.Load(); p != nil && !u.done.Load() {
		p.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// PrintHint prints a dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentStyle.Render("  " + text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if p := u.program.Load(); p != nil {
		p.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }
