package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a palette for the catalog browser.
type Theme struct {
	Name string

	Background string // behind modals
	Surface    string // header, footer and table
	Border     string

	SelectionBg   string
	SelectionText string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	Badges Badges
}

// Badges holds the header badge color for each catalog state.
type Badges struct {
	Loading string // a primary fetch is in flight
	Ready   string
	Offline string // two or more consecutive failures
	Error   string // the last fetch failed
	Editing string // an existing record is the edit target
	New     string // the edit target is a record still to be created
}

// color returns the badge color for a status key, or "" when unknown.
func (b Badges) color(status string) string {
	switch status {
	case "loading":
		return b.Loading
	case "ready":
		return b.Ready
	case "offline":
		return b.Offline
	case "error":
		return b.Error
	case "editing":
		return b.Editing
	case "new":
		return b.New
	}
	return ""
}

// Styles contains the lipgloss styles derived from a Theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style

	badges     Badges
	background string
	muted      string
}

// Styles builds the styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	bar := func(c string) lipgloss.Style {
		return fg(c).Background(lipgloss.Color(t.Surface)).Padding(0, 1)
	}
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header: bar(t.Text),
		Footer: bar(t.Muted),
		Logo:   fg(t.Warning).Bold(true),

		badges:     t.Badges,
		background: t.Background,
		muted:      t.Muted,
	}
}

// StatusStyle returns the badge style for a status key. Unknown keys use the
// muted color.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color := s.badges.color(status)
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy whose text styles paint bgColor explicitly,
// so segments joined inside the header keep the bar's background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Header, &out.Footer, &out.Logo,
	} {
		*st = st.Background(bg)
	}
	return out
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

// GetTheme returns a theme by name, falling back to Nightfox.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[themeOrder[0]]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns the available theme names in cycle order.
func ThemeNames() []string {
	return themeOrder
}

// https://github.com/EdenEast/nightfox.nvim
func nightfoxTheme() Theme {
	return Theme{
		Name:          "Nightfox",
		Background:    "#131a24",
		Surface:       "#192330",
		Border:        "#39506d",
		SelectionBg:   "#2b3b51",
		SelectionText: "#cdcecf",
		Text:          "#cdcecf",
		Muted:         "#738091",
		Faint:         "#71839b",
		Accent:        "#719cd6",
		Success:       "#81b29a",
		Warning:       "#dbc074",
		Danger:        "#c94f6d",
		Info:          "#63cdcf",
		Badges: Badges{
			Loading: "#63cdcf",
			Ready:   "#81b29a",
			Offline: "#c94f6d",
			Error:   "#f4a261",
			Editing: "#9d79d6",
			New:     "#dbc074",
		},
	}
}

// https://github.com/rebelot/kanagawa.nvim
func kanagawaTheme() Theme {
	return Theme{
		Name:          "Kanagawa",
		Background:    "#16161D",
		Surface:       "#1F1F28",
		Border:        "#54546D",
		SelectionBg:   "#2D4F67",
		SelectionText: "#DCD7BA",
		Text:          "#DCD7BA",
		Muted:         "#C8C093",
		Faint:         "#727169",
		Accent:        "#7E9CD8",
		Success:       "#98BB6C",
		Warning:       "#E6C384",
		Danger:        "#E46876",
		Info:          "#7FB4CA",
		Badges: Badges{
			Loading: "#7FB4CA",
			Ready:   "#98BB6C",
			Offline: "#E46876",
			Error:   "#FFA066",
			Editing: "#957FB8",
			New:     "#E6C384",
		},
	}
}

// Tailwind slate and sky.
func slateTheme() Theme {
	return Theme{
		Name:          "Slate",
		Background:    "#020617",
		Surface:       "#0f172a",
		Border:        "#334155",
		SelectionBg:   "#0284c7",
		SelectionText: "#f8fafc",
		Text:          "#f1f5f9",
		Muted:         "#94a3b8",
		Faint:         "#64748b",
		Accent:        "#38bdf8",
		Success:       "#22c55e",
		Warning:       "#f59e0b",
		Danger:        "#ef4444",
		Info:          "#06b6d4",
		Badges: Badges{
			Loading: "#38bdf8",
			Ready:   "#22c55e",
			Offline: "#dc2626",
			Error:   "#f97316",
			Editing: "#a78bfa",
			New:     "#f59e0b",
		},
	}
}
