package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// LevelOf extracts the level=... attribute written by slog's text handler.
// Lines without one report ok=false.
func LevelOf(line string) (slog.Level, bool) {
	for _, field := range strings.Fields(line) {
		value, found := strings.CutPrefix(field, "level=")
		if !found {
			continue
		}
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err != nil {
			return 0, false
		}
		return level, true
	}
	return 0, false
}

// FilterLevel keeps lines at or above min. Lines without a level are kept
// when they follow a kept line, so wrapped values stay with their record.
func FilterLevel(lines []string, min slog.Level) []string {
	out := make([]string, 0, len(lines))
	keep := false
	for _, line := range lines {
		if level, ok := LevelOf(line); ok {
			keep = level >= min
		}
		if keep {
			out = append(out, line)
		}
	}
	return out
}

var (
	debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#63cdcf"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#81b29a"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#dbc074")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#c94f6d")).Bold(true)
)

// ColorizeLine renders a line in the color of its level. Lines without a
// level are returned unchanged.
func ColorizeLine(line string) string {
	level, ok := LevelOf(line)
	if !ok {
		return line
	}
	switch {
	case level >= slog.LevelError:
		return errorStyle.Render(line)
	case level >= slog.LevelWarn:
		return warnStyle.Render(line)
	case level >= slog.LevelInfo:
		return infoStyle.Render(line)
	default:
		return debugStyle.Render(line)
	}
}
