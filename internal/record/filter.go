package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrEmptyExpression is returned when compiling a blank filter expression.
var ErrEmptyExpression = errors.New("filter expression is empty")

// Filter is a compiled boolean predicate over record fields, e.g.
// `Year >= 1990 && Category == "Fiction"`. Field names are variables;
// fields a record lacks evaluate to nil.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles source into a Filter.
func CompileFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptyExpression
	}
	program, err := expr.Compile(source, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// Source returns the expression text.
func (f *Filter) Source() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Match evaluates the predicate against r.
func (f *Filter) Match(r Record) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, map[string]any(r))
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Apply returns the records of c that match. Records whose evaluation fails
// are excluded. A nil Filter returns c unchanged.
func (f *Filter) Apply(c Collection) Collection {
	if f == nil {
		return c
	}
	out := make(Collection, 0, len(c))
	for _, r := range c {
		if ok, err := f.Match(r); err == nil && ok {
			out = append(out, r)
		}
	}
	return out
}
