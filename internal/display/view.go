package display

import (
	"fmt"
	"strings"
)

func (m model) View() string {
	var b strings.Builder

	switch m.screen {
	case screenCategories:
		m.viewCategories(&b)
	case screenPlayer:
		m.viewPlayer(&b)
	case screenEdit:
		m.viewEditor(&b)
	}

	if m.notice != "" {
		style := secondaryStyle
		if m.noticeErr {
			style = urgentStyle
		}
		b.WriteString("\n" + style.Render("  "+m.notice) + "\n")
	}
	if m.mode != modeNone {
		b.WriteString("\n" + m.input.View() + "\n")
	}
	return b.String()
}

func (m model) viewCategories(b *strings.Builder) {
	b.WriteString(RenderBanner(m.width))
	b.WriteByte('\n')

	title := "Categories"
	if m.ui.lib.Offline() {
		title += idleStyle.Render("  (offline)")
	}
	b.WriteString(headerStyle.Render("  "+title) + "\n\n")

	if len(m.cats) == 0 {
		b.WriteString(secondaryStyle.Render("  No categories.") + "\n")
	}
	for i, c := range m.cats {
		line := fmt.Sprintf("%s %s  %s", iconFor(c.Icon), c.Name,
			secondaryStyle.Render(fmt.Sprintf("(%d)", len(c.Questions))))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> ") + selectedStyle.Render(line) + "\n")
		} else {
			b.WriteString("  " + primaryStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + secondaryStyle.Render("  ↑/↓ select · enter open · r rename · : command · q quit") + "\n")
}

func (m model) viewPlayer(b *strings.Builder) {
	st := m.state
	b.WriteString(m.renderBar())
	b.WriteString("\n")

	if st.Questions == 0 {
		b.WriteString("\n" + secondaryStyle.Render("  No questions yet. Press e to add some.") + "\n")
		return
	}

	q := st.Question
	b.WriteString("\n" + instructionStyle.Render("  "+q.Instruction) + "\n")
	b.WriteString(cardStyle.Render(q.Content) + "\n")

	if st.Revealed {
		b.WriteString(labelStyle.Render("  Answer: ") + answerStyle.Render(q.Answer) + "\n")
	} else {
		b.WriteString(hiddenStyle.Render("  Answer: · · ·") + "\n")
	}

	b.WriteString("\n" + secondaryStyle.Render("  "+helpText) + "\n")
}

// renderBar draws the status line: category, position, rate, auto-play.
func (m model) renderBar() string {
	st := m.state

	name := m.catID
	for _, c := range m.cats {
		if c.ID == m.catID {
			name = c.Name
			break
		}
	}

	auto := idleStyle.Render("○ manual")
	if st.Active {
		auto = activeStyle.Render("● auto ") + idleStyle.Render(st.Phase.String())
	}

	parts := []string{
		labelStyle.Render(name),
		labelStyle.Render(position(st.Index, st.Questions)),
		labelStyle.Render(fmt.Sprintf("rate %.1fx", st.Rate)),
		auto,
	}
	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

func (m model) viewEditor(b *strings.Builder) {
	name := m.catID
	if c, err := m.ui.lib.Category(m.catID); err == nil {
		name = c.Name
	}
	b.WriteString(headerStyle.Render("  Editing "+name) + "\n\n")
	b.WriteString(m.editor.View() + "\n")
	b.WriteString(secondaryStyle.Render("  ctrl+s save · esc cancel") + "\n")
}

// position renders "n of N" from a 0-based index.
func position(index, total int) string {
	if total == 0 {
		return "0 of 0"
	}
	return fmt.Sprintf("%d of %d", index+1, total)
}
