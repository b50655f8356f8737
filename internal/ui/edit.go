package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/bookshelf/internal/record"
)

// Saver writes a record back to the catalog. An empty id in the record's
// id field creates a new record.
type Saver interface {
	SaveRecord(ctx context.Context, idField string, rec record.Record) (record.Record, error)
}

type savedMsg struct {
	rec     record.Record
	created bool
}

type saveErrMsg struct{ err error }

// editSeed renders the editable columns of rec as "Field=value" pairs
// separated by semicolons, the format applyAssignments parses.
func editSeed(rec record.Record, columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, col+"="+record.FormatValue(rec[col]))
	}
	return strings.Join(parts, "; ")
}

// applyAssignments returns a copy of base with every "Field=value" pair in
// input applied. Values keep the kind of the field they replace; an empty
// value clears the field.
func applyAssignments(base record.Record, input string) (record.Record, error) {
	out := base.Clone()
	if out == nil {
		out = record.Record{}
	}
	for _, pair := range strings.Split(input, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		field, raw, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid assignment %q: want Field=value", pair)
		}
		value, err := coerce(out[field], strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		out[field] = value
	}
	return out, nil
}

func coerce(existing any, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	switch existing.(type) {
	case int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("want a whole number, got %q", raw)
		}
		return n, nil
	case float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("want a number, got %q", raw)
		}
		return f, nil
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("want true or false, got %q", raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}

func saveCmd(ctx context.Context, saver Saver, idField string, rec record.Record) tea.Cmd {
	created := rec.ID(idField) == ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, SaveTimeout)
		defer cancel()
		saved, err := saver.SaveRecord(ctx, idField, rec)
		if err != nil {
			return saveErrMsg{err: err}
		}
		return savedMsg{rec: saved, created: created}
	}
}
