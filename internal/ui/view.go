package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/bookshelf/internal/record"
	"github.com/five82/bookshelf/internal/state"
)

// statusKey names the badge shown for a snapshot.
func statusKey(s state.Snapshot) string {
	switch {
	case s.Loading:
		return "loading"
	case s.IsOffline():
		return "offline"
	case s.LastError != nil:
		return "error"
	case s.HasTarget && s.EditTarget == NewIdentifier:
		return "new"
	case s.HasTarget:
		return "editing"
	default:
		return "ready"
	}
}

func (m Model) renderMain() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.table.View(),
		m.renderFooter(),
	)
}

// renderHeader renders the status bar: badge, query summary and counts.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	line := newBarLine(m.theme.Surface)
	snap := m.snapshot

	status := statusKey(snap)
	badge := styles.StatusStyle(status).Render(status)
	if snap.Loading {
		badge = line.paint(m.spinner.View(), styles.AccentText) + line.space + badge
	}

	line.text("bookshelf", styles.Logo).
		add(badge).
		field("sort", snap.SortKey, styles.FaintText, styles.Text)
	if m.width >= LayoutCompactWidth {
		if len(snap.Params) > 0 {
			line.field("filter", truncateMiddle(snap.Params.String(), 40), styles.FaintText, styles.InfoText)
		}
		if snap.Where != "" {
			whereStyle := ternaryStyle(snap.FilterError != nil, styles.DangerText, styles.InfoText)
			line.field("where", truncateMiddle(snap.Where, 40), styles.FaintText, whereStyle)
		}
	}

	line.text(fmt.Sprintf("%d/%d", len(snap.Visible), len(snap.Collection)), styles.MutedText)
	if snap.HasTarget {
		line.field("target", snap.EditTarget, styles.FaintText, styles.WarningText)
	}
	if !snap.LastUpdated.IsZero() {
		line.text(snap.LastUpdated.Format("15:04:05"), styles.FaintText)
	}

	return styles.Header.Width(m.width).Render(line.String())
}

// renderFooter shows the latest notice or error above the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	var line string
	n := m.notices.current
	switch {
	case n.text != "" && time.Since(n.at) < NoticeLifetime:
		line = ternaryStyle(n.danger, styles.DangerText, styles.SuccessText).Render(truncate(n.text, m.width-2))
	case snap.FilterError != nil:
		line = styles.DangerText.Render(truncate("where: "+snap.FilterError.Error(), m.width-2))
	case snap.LastError != nil:
		retry := ternary(snap.IsOffline(), "offline, retrying", "last refresh failed")
		line = styles.WarningText.Render(truncate(retry+": "+snap.LastError.Error(), m.width-2))
	}

	return styles.Footer.Width(m.width).Render(line + "\n" + m.help.View(m.keys))
}

// refreshTable rebuilds columns and rows from the snapshot.
func (m *Model) refreshTable() {
	cols := m.tableColumns()
	rows := make([]table.Row, 0, len(m.snapshot.Visible))
	for _, rec := range m.snapshot.Visible {
		rows = append(rows, m.tableRow(rec, cols))
	}
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	// SetCursor on an empty table stores -1, so only clamp once rows exist.
	if n, c := len(rows), m.table.Cursor(); n > 0 && (c < 0 || c >= n) {
		m.table.SetCursor(min(max(c, 0), n-1))
	}
}

func (m Model) tableColumns() []table.Column {
	width := MinColumnWidth
	if m.width > 0 {
		// Cells carry one space of padding on each side.
		width = maxInt(m.width/len(m.columns)-2, MinColumnWidth)
	}
	cols := make([]table.Column, 0, len(m.columns))
	for _, name := range m.columns {
		title := name
		if name == m.snapshot.SortKey {
			title += " ▲"
		}
		cols = append(cols, table.Column{Title: title, Width: width})
	}
	return cols
}

func (m Model) tableRow(rec record.Record, cols []table.Column) table.Row {
	row := make(table.Row, len(m.columns))
	for i, name := range m.columns {
		row[i] = truncate(record.FormatValue(rec[name]), cols[i].Width)
	}
	return row
}

// applyTheme restyles the components for the current theme.
func (m *Model) applyTheme() {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		BorderBottom(true).
		Foreground(lipgloss.Color(m.theme.Accent)).
		Bold(true)
	s.Cell = s.Cell.Foreground(lipgloss.Color(m.theme.Text))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(m.theme.SelectionText)).
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Bold(false)
	m.table.SetStyles(s)

	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))

	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning))
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Muted))
	m.help.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Faint))
}

func ternaryStyle(cond bool, a, b lipgloss.Style) lipgloss.Style {
	if cond {
		return a
	}
	return b
}
