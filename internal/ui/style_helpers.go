package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// barLine assembles a single status bar row. lipgloss resets the background
// after every styled segment, so each word and each gap is painted with the
// bar color explicitly.
type barLine struct {
	bg    lipgloss.Color
	space string
	parts []string
}

func newBarLine(bgColor string) *barLine {
	bg := lipgloss.Color(bgColor)
	return &barLine{
		bg:    bg,
		space: lipgloss.NewStyle().Background(bg).Render(" "),
	}
}

// paint renders text in style on the bar background, spaces included.
func (b *barLine) paint(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	style = style.Background(b.bg)
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	return strings.Join(words, b.space)
}

// add appends a pre-rendered segment.
func (b *barLine) add(segment string) *barLine {
	if segment != "" {
		b.parts = append(b.parts, segment)
	}
	return b
}

// text appends text rendered in style.
func (b *barLine) text(text string, style lipgloss.Style) *barLine {
	return b.add(b.paint(text, style))
}

// field appends a "label value" pair.
func (b *barLine) field(label, value string, labelStyle, valueStyle lipgloss.Style) *barLine {
	return b.add(b.paint(label, labelStyle) + b.space + b.paint(value, valueStyle))
}

// String joins the segments with two painted spaces.
func (b *barLine) String() string {
	return strings.Join(b.parts, b.space+b.space)
}
