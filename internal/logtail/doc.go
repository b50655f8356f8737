// Package logtail reads the tail of the bookshelf log file for the logs
// command.
//
// Read uses a ring buffer of maxLines entries, so memory stays O(maxLines)
// no matter how large the file is. A missing file yields nil, nil.
//
// Lines are expected in log/slog text format:
//
//	time=2026-03-01T10:00:00.000Z level=WARN msg="primary fetch failed" params="Author=Le Guin" error="..."
//
// LevelOf and FilterLevel work on the level= attribute; ColorizeLine tints a
// whole line by level with lipgloss. Malformed lines are passed through.
package logtail
