package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/five82/bookshelf/internal/catalog"
	"github.com/five82/bookshelf/internal/record"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The catalog could not be read or did not settle
	ExitCommandError = 2 // Command error (bad flags, unreadable config, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

func checkFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", format, ValidFormats))
	}
	return nil
}

// writeRecords prints a collection. Text output shows only columns.
func writeRecords(w io.Writer, format string, columns []string, c record.Collection) error {
	if c == nil {
		c = record.Collection{}
	}
	switch format {
	case "json":
		return writeJSON(w, c)
	case "yaml":
		return writeYAML(w, c)
	}
	if len(c) == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}
	_, err := fmt.Fprintln(w, renderTable(columns, c))
	return err
}

// writeLookups prints every lookup table in configured order.
func writeLookups(w io.Writer, format string, tables []catalog.LookupTable, lookups map[string]record.Collection) error {
	switch format {
	case "json", "yaml":
		out := make(map[string]record.Collection, len(tables))
		for _, t := range tables {
			items := lookups[t.Name]
			if items == nil {
				items = record.Collection{}
			}
			out[t.Name] = items
		}
		if format == "json" {
			return writeJSON(w, out)
		}
		return writeYAML(w, out)
	}

	var b strings.Builder
	for i, t := range tables {
		items := lookups[t.Name]
		fmt.Fprintf(&b, "%s (%d)\n", t.Name, len(items))
		if len(items) > 0 {
			columns := t.Fields
			if len(columns) == 0 {
				columns = items[0].Fields()
			}
			b.WriteString(renderTable(columns, items))
			b.WriteString("\n")
		}
		if i < len(tables)-1 {
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderTable(columns []string, c record.Collection) string {
	rows := make([][]string, 0, len(c))
	for _, rec := range c {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = record.FormatValue(rec[col])
		}
		rows = append(rows, row)
	}
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().PaddingRight(2)
		}).
		Headers(columns...).
		Rows(rows...).
		String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
