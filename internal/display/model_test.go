package display

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/eventloop"
	"github.com/hammamikhairi/parlons/internal/library"
	"github.com/hammamikhairi/parlons/internal/logger"
	"github.com/hammamikhairi/parlons/internal/rehearsal"
	"github.com/hammamikhairi/parlons/internal/store"
)

// ── Mocks ────────────────────────────────────────────────────────

type nopCache struct{}

func (nopCache) Load(context.Context) []domain.Category  { return nil }
func (nopCache) Save(context.Context, []domain.Category) {}

// mockSpeaker records utterances and never completes them.
type mockSpeaker struct {
	said    []string
	cancels int
}

func (s *mockSpeaker) Speak(text, _ string, _ float64, _ func()) { s.said = append(s.said, text) }
func (s *mockSpeaker) Cancel()                                   { s.cancels++ }

type harness struct {
	t       *testing.T
	m       model
	loop    *eventloop.Manual
	seq     *rehearsal.Sequencer
	lib     *library.Service
	speaker *mockSpeaker
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	cats := []domain.Category{
		{ID: "food", Name: "Food", Icon: "Utensils", Questions: []domain.Question{
			{ID: 1, Content: "Le pain", Instruction: "Meaning", Answer: "bread"},
			{ID: 2, Content: "Le fromage", Instruction: "Meaning", Answer: "cheese"},
			{ID: 3, Content: "La pomme", Instruction: "Meaning", Answer: "apple"},
		}},
		{ID: "travel", Name: "Travel", Icon: "Plane"},
	}
	lib := library.New(store.NewMemoryStore(cats, log), nopCache{}, log)
	lib.Load(context.Background())

	loop := eventloop.NewManual()
	speaker := &mockSpeaker{}
	seq := rehearsal.New(nil, speaker, loop, log)
	ui := NewUI(lib, seq, loop, log)

	return &harness{t: t, m: newModel(ui), loop: loop, seq: seq, lib: lib, speaker: speaker}
}

// send feeds msg to the model, drains the loop, runs any resulting
// commands, then syncs the sequencer state the way the observer would.
func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(model)
	h.loop.RunPending()
	h.run(cmd)
	next, _ = h.m.Update(stateMsg(h.seq.State()))
	h.m = next.(model)
}

func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(100 * time.Millisecond):
		return // cursor blink and similar timers
	}

	switch msg := msg.(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	case jumpResultMsg, editResultMsg, renameResultMsg, stateMsg:
		next, cmd := h.m.Update(msg)
		h.m = next.(model)
		h.loop.RunPending()
		h.run(cmd)
	}
}

func (h *harness) key(s string) {
	h.t.Helper()
	switch s {
	case "enter":
		h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "ctrl+s":
		h.send(tea.KeyMsg{Type: tea.KeyCtrlS})
	case "down":
		h.send(tea.KeyMsg{Type: tea.KeyDown})
	case " ":
		h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	default:
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}
}

// ── Tests ────────────────────────────────────────────────────────

func TestOpenCategoryLoadsSequencer(t *testing.T) {
	h := newHarness(t)
	h.key("enter")

	if h.m.screen != screenPlayer {
		t.Fatalf("expected player screen, got %d", h.m.screen)
	}
	st := h.seq.State()
	if st.Questions != 3 || st.Index != 0 || st.Revealed {
		t.Fatalf("unexpected state after open: %+v", st)
	}
	view := h.m.View()
	if !strings.Contains(view, "Le pain") || !strings.Contains(view, "1 of 3") {
		t.Errorf("player view missing card or position:\n%s", view)
	}
	if strings.Contains(view, "bread") {
		t.Error("answer shown before reveal")
	}
}

func TestPlayerKeys(t *testing.T) {
	h := newHarness(t)
	h.key("enter")

	h.key("n")
	if h.seq.State().Index != 1 {
		t.Fatalf("next: index = %d", h.seq.State().Index)
	}
	h.key("p")
	h.key("p")
	if h.seq.State().Index != 2 {
		t.Fatalf("prev should wrap to last, index = %d", h.seq.State().Index)
	}

	h.key("a")
	if !h.seq.State().Revealed || !strings.Contains(h.m.View(), "apple") {
		t.Fatal("reveal did not show the answer")
	}

	h.key("+")
	if got := h.seq.State().Rate; got < 0.99 || got > 1.01 {
		t.Fatalf("faster: rate = %v, want 1.0", got)
	}

	h.key(" ")
	if !h.seq.State().Active {
		t.Fatal("space should start rehearsal")
	}
	if !strings.Contains(h.m.View(), "auto") {
		t.Error("auto-play indicator missing")
	}

	h.key("esc")
	if h.m.screen != screenCategories || h.seq.State().Active {
		t.Fatal("back should stop rehearsal and show the list")
	}
}

func TestKeysApplyInPressOrder(t *testing.T) {
	h := newHarness(t)

	// Open and start before the loop gets a chance to run anything.
	next, _ := h.m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	h.m = next.(model)
	next, _ = h.m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	h.m = next.(model)
	next, _ = h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	h.m = next.(model)
	h.loop.RunPending()

	st := h.seq.State()
	if st.Questions != 3 || !st.Active || st.Index != 1 {
		t.Fatalf("keys applied out of order: %+v", st)
	}
}

func TestBackStopsManualSpeech(t *testing.T) {
	h := newHarness(t)
	h.key("enter")
	h.key("s")
	if n := len(h.speaker.said); n != 1 || h.speaker.said[0] != "Le pain" {
		t.Fatalf("speak did not say the prompt: %v", h.speaker.said)
	}

	before := h.speaker.cancels
	h.key("esc")
	if h.speaker.cancels != before+1 {
		t.Fatalf("cancels = %d, want %d", h.speaker.cancels, before+1)
	}
	if h.m.screen != screenCategories || h.seq.State().Active {
		t.Fatal("back should stop rehearsal and show the list")
	}
}

func TestJumpKeepsInvalidInput(t *testing.T) {
	h := newHarness(t)
	h.key("enter")

	h.key("g")
	if h.m.mode != modeJump {
		t.Fatal("g should open the jump input")
	}
	h.key("9")
	h.key("9")
	h.key("enter")

	if h.m.mode != modeJump {
		t.Fatal("invalid jump closed the input")
	}
	if h.m.input.Value() != "99" {
		t.Errorf("input = %q, want the typed value kept", h.m.input.Value())
	}
	if !h.m.noticeErr || !strings.Contains(h.m.notice, "between 1 and 3") {
		t.Errorf("notice = %q", h.m.notice)
	}
	if h.seq.State().Index != 0 {
		t.Fatal("invalid jump moved the index")
	}

	h.m.input.SetValue("3")
	h.key("enter")
	if h.m.mode != modeNone {
		t.Fatal("valid jump should close the input")
	}
	if h.seq.State().Index != 2 {
		t.Fatalf("index = %d, want 2", h.seq.State().Index)
	}
}

func TestBulkEdit(t *testing.T) {
	h := newHarness(t)
	h.key("enter")
	h.key("e")
	if h.m.screen != screenEdit {
		t.Fatal("e should open the editor")
	}
	if !strings.Contains(h.m.editor.Value(), "Le pain. bread") {
		t.Errorf("editor not prefilled: %q", h.m.editor.Value())
	}

	h.m.editor.SetValue("no period here")
	h.key("ctrl+s")
	if h.m.screen != screenEdit || !h.m.noticeErr {
		t.Fatal("invalid text should keep the editor open with an error")
	}
	cat, _ := h.lib.Category("food")
	if len(cat.Questions) != 3 {
		t.Fatal("invalid edit changed the questions")
	}

	h.m.editor.SetValue("Le lait. milk\nbroken line\nL'eau. water")
	h.key("ctrl+s")
	if h.m.screen != screenPlayer {
		t.Fatalf("expected player after save, got %d (%s)", h.m.screen, h.m.notice)
	}
	if !strings.Contains(h.m.notice, "Saved 2 questions, skipped 1 lines") {
		t.Errorf("notice = %q", h.m.notice)
	}
	st := h.seq.State()
	if st.Questions != 2 || st.Question.Content != "Le lait" {
		t.Fatalf("sequencer not reloaded: %+v", st)
	}
}

func TestCommandLineAndVoice(t *testing.T) {
	h := newHarness(t)

	h.send(voiceMsg("suivant"))
	if h.m.screen != screenPlayer {
		t.Fatal("next from the list should open the category")
	}

	h.key(":")
	h.m.input.SetValue("jump 2")
	h.key("enter")
	if h.seq.State().Index != 1 {
		t.Fatalf("index = %d, want 1", h.seq.State().Index)
	}

	h.send(voiceMsg("réponse"))
	if !h.seq.State().Revealed {
		t.Fatal("voice reveal ignored")
	}

	h.send(voiceMsg("répète"))
	if n := len(h.speaker.said); n == 0 || h.speaker.said[n-1] != "Le fromage" {
		t.Fatalf("speak did not say the prompt: %v", h.speaker.said)
	}

	h.send(voiceMsg("chante"))
	if !h.m.noticeErr || !strings.Contains(h.m.notice, "chante") {
		t.Errorf("unknown command notice = %q", h.m.notice)
	}
}

func TestRenameCategory(t *testing.T) {
	h := newHarness(t)
	h.key("down")
	h.key("r")
	if h.m.mode != modeRename || h.m.input.Value() != "Travel" {
		t.Fatalf("rename input not prefilled: mode=%d value=%q", h.m.mode, h.m.input.Value())
	}
	h.m.input.SetValue("Voyages")
	h.key("enter")

	cat, err := h.lib.Category("travel")
	if err != nil || cat.Name != "Voyages" {
		t.Fatalf("rename failed: %+v %v", cat, err)
	}
	if !strings.Contains(h.m.View(), "Voyages") {
		t.Error("list not refreshed after rename")
	}
}

func TestEmptyCategory(t *testing.T) {
	h := newHarness(t)
	h.key("down")
	h.key("enter")
	h.key(" ")

	if h.seq.State().Active {
		t.Fatal("rehearsal started with no questions")
	}
	if !strings.Contains(h.m.View(), "No questions yet") {
		t.Error("empty category hint missing")
	}
}

func TestPosition(t *testing.T) {
	if position(0, 0) != "0 of 0" || position(4, 12) != "5 of 12" {
		t.Fatal("unexpected position text")
	}
}
