package rehearsal

import "fmt"

// Phase is one step of the rehearsal cycle for the current question.
type Phase int

const (
	// PhaseIdle: rehearsal is off.
	PhaseIdle Phase = iota
	// PhaseSpeakPrompt speaks the prompt; the next phase starts when it ends.
	PhaseSpeakPrompt
	// PhasePromptPause waits the short prompt delay.
	PhasePromptPause
	// PhaseRepeatPrompt speaks the prompt again.
	PhaseRepeatPrompt
	// PhaseAnswerPause gives the learner time to answer.
	PhaseAnswerPause
	// PhaseReveal shows the answer and speaks it in the drill language.
	PhaseReveal
	// PhaseNextPause lets the answer sink in.
	PhaseNextPause
	// PhaseAdvance moves to the next question, wrapping after the last.
	PhaseAdvance
)

var phaseNames = map[Phase]string{
	PhaseIdle:         "idle",
	PhaseSpeakPrompt:  "speak-prompt",
	PhasePromptPause:  "prompt-pause",
	PhaseRepeatPrompt: "repeat-prompt",
	PhaseAnswerPause:  "answer-pause",
	PhaseReveal:       "reveal",
	PhaseNextPause:    "next-pause",
	PhaseAdvance:      "advance",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Speaking reports whether the phase waits on speech rather than a timer.
func (p Phase) Speaking() bool {
	return p == PhaseSpeakPrompt || p == PhaseRepeatPrompt || p == PhaseReveal
}
