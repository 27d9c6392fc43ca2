package display

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/parlons/internal/bulktext"
	"github.com/hammamikhairi/parlons/internal/command"
	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/rehearsal"
)

type screen int

const (
	screenCategories screen = iota
	screenPlayer
	screenEdit
)

// inputMode is what the single-line input is currently collecting.
type inputMode int

const (
	modeNone inputMode = iota
	modeJump
	modeRename
	modeCommand
)

var errLoopStopped = errors.New("event loop stopped")

const helpText = "space play/stop · n/p next/prev · s speak · a reveal · +/- rate · g jump · e edit · : command · esc back · q quit"

// Messages.
type (
	stateMsg      rehearsal.State
	voiceMsg      string
	jumpResultMsg struct{ err error }
	editResultMsg struct {
		res bulktext.Result
		err error
	}
	renameResultMsg struct{ err error }
)

type model struct {
	ui *UI

	screen screen
	mode   inputMode
	cursor int
	cats   []domain.Category
	catID  string
	state  rehearsal.State

	input  textinput.Model
	editor textarea.Model

	notice    string
	noticeErr bool
	width     int
	height    int
}

func newModel(u *UI) model {
	ti := textinput.New()
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.CharLimit = 200
	ti.Width = 40

	ta := textarea.New()
	ta.Placeholder = "Le chat. The cat"
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 1000
	ta.SetWidth(76)
	ta.SetHeight(14)

	return model{
		ui:     u,
		cats:   u.lib.Categories(),
		input:  ti,
		editor: ta,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		signalReady(m.ui.readyCh),
		tea.SetWindowTitle(m.ui.title),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if msg.Width > 10 {
			m.editor.SetWidth(msg.Width - 4)
			m.input.Width = msg.Width - 16
		}
		if msg.Height > 12 {
			m.editor.SetHeight(msg.Height - 8)
		}
		return m, nil

	case stateMsg:
		m.state = rehearsal.State(msg)
		return m, tea.SetWindowTitle(m.titleStr())

	case voiceMsg:
		text := string(msg)
		m.ui.Println(secondaryStyle.Render("[voice] ") + primaryStyle.Render(text))
		return m.execute(m.ui.parser.Parse(text))

	case jumpResultMsg:
		if msg.err != nil {
			// Keep what was typed so it can be corrected.
			m.setError(m.jumpError())
			return m, nil
		}
		if m.mode == modeJump {
			m.closeInput()
		}
		m.clearNotice()
		return m, nil

	case editResultMsg:
		return m.editDone(msg)

	case renameResultMsg:
		m.cats = m.ui.lib.Categories()
		if msg.err != nil {
			m.setError("Renamed locally, server update failed")
			m.ui.log.Warn("display: rename: %v", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen == screenEdit {
			return m.updateEditor(msg)
		}
		if m.mode != modeNone {
			return m.updateInput(msg)
		}
		if m.screen == screenPlayer {
			return m.updatePlayer(msg)
		}
		return m.updateCategories(msg)
	}

	return m, nil
}

// ── Categories ───────────────────────────────────────────────────

func (m model) updateCategories(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.cats)-1 {
			m.cursor++
		}
	case "enter", "right", "l":
		return m.open()
	case "r":
		if len(m.cats) > 0 {
			return m.openInput(modeRename, "rename> ", m.cats[m.cursor].Name)
		}
	case ":":
		return m.openInput(modeCommand, ":", "")
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

// open enters the player for the highlighted category.
func (m model) open() (tea.Model, tea.Cmd) {
	if len(m.cats) == 0 {
		return m, nil
	}
	cat := m.cats[m.cursor]
	m.catID = cat.ID
	m.screen = screenPlayer
	m.clearNotice()
	questions := cat.Questions
	m.post(func() { m.ui.seq.SetQuestions(questions) })
	return m, nil
}

// back stops rehearsal and returns to the category list.
func (m model) back() (tea.Model, tea.Cmd) {
	m.screen = screenCategories
	m.mode = modeNone
	m.cats = m.ui.lib.Categories()
	m.clearNotice()
	m.post(func() { m.ui.seq.SetActive(false) })
	return m, nil
}

// ── Player ───────────────────────────────────────────────────────

func (m model) updatePlayer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ", "space":
		return m.execute(command.Command{Kind: command.Toggle})
	case "n", "right", "l":
		return m.execute(command.Command{Kind: command.Next})
	case "p", "left", "h":
		return m.execute(command.Command{Kind: command.Prev})
	case "s":
		return m.execute(command.Command{Kind: command.Speak})
	case "a", "enter":
		return m.execute(command.Command{Kind: command.Reveal})
	case "+", "=":
		return m.execute(command.Command{Kind: command.Faster})
	case "-", "_":
		return m.execute(command.Command{Kind: command.Slower})
	case "g", "j":
		return m.openInput(modeJump, "jump to> ", "")
	case "e":
		return m.execute(command.Command{Kind: command.Edit})
	case "esc", "b", "backspace":
		return m.back()
	case ":":
		return m.openInput(modeCommand, ":", "")
	case "?":
		return m.execute(command.Command{Kind: command.Help})
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

// execute runs a parsed command from the keyboard, the command line or
// the voice listener.
func (m model) execute(c command.Command) (tea.Model, tea.Cmd) {
	seq := m.ui.seq

	switch c.Kind {
	case command.Quit:
		return m, tea.Quit
	case command.Help:
		m.setNotice(helpText)
		return m, nil
	case command.Back:
		if m.screen == screenPlayer {
			return m.back()
		}
		return m, nil
	case command.Unknown:
		if c.Arg != "" {
			m.setError(fmt.Sprintf("Unknown command %q", c.Arg))
		}
		return m, nil
	}

	if m.screen != screenPlayer {
		if c.Kind == command.Play || c.Kind == command.Next || c.Kind == command.Jump {
			// From the list these open the highlighted category.
			return m.open()
		}
		m.setError("Pick a category first")
		return m, nil
	}

	switch c.Kind {
	case command.Play:
		m.post(func() { seq.SetActive(true) })
		return m, nil
	case command.Stop:
		m.post(func() { seq.SetActive(false) })
		return m, nil
	case command.Toggle:
		m.post(seq.Toggle)
		return m, nil
	case command.Next:
		m.post(seq.Next)
		return m, nil
	case command.Prev:
		m.post(seq.Prev)
		return m, nil
	case command.Speak:
		m.post(seq.SpeakPrompt)
		return m, nil
	case command.Reveal:
		m.post(seq.RevealAnswer)
		return m, nil
	case command.Faster:
		step := m.ui.rateStep
		m.post(func() { seq.AdjustRate(step) })
		return m, nil
	case command.Slower:
		step := m.ui.rateStep
		m.post(func() { seq.AdjustRate(-step) })
		return m, nil
	case command.Jump:
		return m, m.jump(c.Arg)
	case command.Edit:
		return m.openEditor()
	}
	return m, nil
}

// post queues fn on the event loop. Posting straight from Update keeps
// sequencer calls in key-press order.
func (m model) post(fn func()) {
	m.ui.run.Post(fn)
}

// jump posts the jump in order with other input and returns a command
// that waits for its outcome.
func (m model) jump(input string) tea.Cmd {
	seq, ctx := m.ui.seq, m.ui.ctx
	res := make(chan error, 1)
	m.ui.run.Post(func() { res <- seq.Jump(input) })
	return func() tea.Msg {
		select {
		case err := <-res:
			return jumpResultMsg{err: err}
		case <-ctx.Done():
			return jumpResultMsg{err: errLoopStopped}
		}
	}
}

func (m model) jumpError() string {
	n := m.state.Questions
	if n == 0 {
		return "There are no questions to jump to"
	}
	return fmt.Sprintf("Enter a number between 1 and %d", n)
}

// ── Single-line input ────────────────────────────────────────────

func (m model) openInput(mode inputMode, prompt, value string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.clearNotice()
	return m, m.input.Focus()
}

func (m *model) closeInput() {
	m.mode = modeNone
	m.input.Reset()
	m.input.Blur()
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		m.clearNotice()
		return m, nil
	case "enter":
		return m.submitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) submitInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()

	switch m.mode {
	case modeJump:
		// The input stays open until the jump is accepted.
		return m, m.jump(value)

	case modeRename:
		m.closeInput()
		if strings.TrimSpace(value) == "" || len(m.cats) == 0 {
			return m, nil
		}
		id := m.cats[m.cursor].ID
		lib := m.ui.lib
		return m, func() tea.Msg {
			return renameResultMsg{err: lib.Rename(context.Background(), id, value)}
		}

	case modeCommand:
		m.closeInput()
		if strings.TrimSpace(value) == "" {
			return m, nil
		}
		return m.execute(m.ui.parser.Parse(value))
	}
	return m, nil
}

// ── Bulk editor ──────────────────────────────────────────────────

func (m model) openEditor() (tea.Model, tea.Cmd) {
	cat, err := m.ui.lib.Category(m.catID)
	if err != nil {
		m.setError("Category not found")
		return m, nil
	}
	m.screen = screenEdit
	m.editor.SetValue(bulktext.Format(cat.Questions))
	m.setNotice("One card per line: prompt. answer")
	m.post(func() { m.ui.seq.SetActive(false) })
	return m, m.editor.Focus()
}

func (m model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editor.Blur()
		m.screen = screenPlayer
		m.clearNotice()
		return m, nil
	case "ctrl+s":
		return m, m.saveEdit(m.editor.Value())
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// saveEdit applies the bulk text and, when it produced questions, loads
// them into the sequencer.
func (m model) saveEdit(text string) tea.Cmd {
	lib, run, seq, id := m.ui.lib, m.ui.run, m.ui.seq, m.catID
	return func() tea.Msg {
		res, err := lib.ApplyBulkEdit(context.Background(), id, text)
		if len(res.Questions) > 0 && !errors.Is(err, domain.ErrInvalidFormat) {
			run.Post(func() { seq.SetQuestions(res.Questions) })
		}
		return editResultMsg{res: res, err: err}
	}
}

func (m model) editDone(msg editResultMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, domain.ErrInvalidFormat) {
		m.setError("Nothing saved: use one \"prompt. answer\" per line")
		return m, nil
	}

	m.editor.Blur()
	m.screen = screenPlayer
	m.cats = m.ui.lib.Categories()

	summary := fmt.Sprintf("Saved %d questions", len(msg.res.Questions))
	if n := len(msg.res.Rejected); n > 0 {
		summary += fmt.Sprintf(", skipped %d lines", n)
		for _, r := range msg.res.Rejected {
			m.ui.log.Debug("display: skipped line %d (%s): %q", r.Line, r.Reason, r.Text)
		}
	}
	if msg.err != nil {
		m.ui.log.Warn("display: bulk edit: %v", msg.err)
		m.setError(summary + " locally, server update failed")
		return m, nil
	}
	m.setNotice(summary)
	return m, nil
}

// ── Notices ──────────────────────────────────────────────────────

func (m *model) setNotice(s string) { m.notice, m.noticeErr = s, false }
func (m *model) setError(s string)  { m.notice, m.noticeErr = s, true }
func (m *model) clearNotice()       { m.notice, m.noticeErr = "", false }

func (m model) titleStr() string {
	if m.screen == screenCategories || m.state.Questions == 0 {
		return m.ui.title
	}
	return fmt.Sprintf("%s · %d/%d", m.ui.title, m.state.Index+1, m.state.Questions)
}
