package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/bookshelf/internal/record"
	"github.com/five82/bookshelf/internal/state"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// inputPurpose says what a submitted input line is applied to.
type inputPurpose int

const (
	inputFilter inputPurpose = iota
	inputWhere
	inputEdit
)

// inputMsg is emitted when the user submits an input modal.
type inputMsg struct {
	purpose inputPurpose
	value   string
}

// inputModal is a single-line prompt.
type inputModal struct {
	purpose inputPurpose
	title   string
	hint    string
	input   textinput.Model
}

func newInputModal(purpose inputPurpose, title, hint, value string) inputModal {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Width = 60
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	return inputModal{purpose: purpose, title: title, hint: hint, input: ti}
}

func (m inputModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case km.String() == "ctrl+c", key.Matches(km, keys.Escape):
			return m, nil, true
		case key.Matches(km, keys.Confirm):
			submitted := inputMsg{purpose: m.purpose, value: m.input.Value()}
			return m, func() tea.Msg { return submitted }, true
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, false
}

func (m inputModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	if m.hint != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render(m.hint))
	}
	return placeModal(theme, width, height, 68, b.String())
}

// lookupModal lists every lookup table in a scrollable viewport.
type lookupModal struct {
	vp viewport.Model
}

func newLookupModal(snap state.Snapshot, tables []string, width, height int) lookupModal {
	vp := viewport.New(maxInt(width-12, 20), maxInt(height-8, 5))
	vp.SetContent(renderLookups(snap, tables))
	return lookupModal{vp: vp}
}

func (m lookupModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Escape), key.Matches(km, keys.Lookups), key.Matches(km, keys.Quit):
			return m, nil, true
		case key.Matches(km, keys.Top):
			m.vp.GotoTop()
			return m, nil, false
		case key.Matches(km, keys.Bottom):
			m.vp.GotoBottom()
			return m, nil, false
		}
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd, false
}

func (m lookupModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	title := styles.Text.Bold(true).Render("Lookup Tables")
	return placeModal(theme, width, height, m.vp.Width+6, title+"\n\n"+m.vp.View())
}

// renderLookups formats each table as a heading followed by one line per
// entry, fields in their natural order.
func renderLookups(snap state.Snapshot, tables []string) string {
	var b strings.Builder
	for i, name := range tables {
		items := snap.Lookups[name]
		status := "loading"
		if snap.LookupReady[name] {
			status = pluralize(len(items), "entry", "entries")
		}
		b.WriteString(padRight(name, 14))
		b.WriteString(status)
		b.WriteString("\n")
		for _, item := range items {
			b.WriteString("  ")
			b.WriteString(lookupLine(item))
			b.WriteString("\n")
		}
		if i < len(tables)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func lookupLine(r record.Record) string {
	fields := r.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+"="+record.FormatValue(r[f]))
	}
	return strings.Join(parts, "  ")
}

func placeModal(theme Theme, width, height, modalWidth int, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(modalWidth).
		Render(content)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
