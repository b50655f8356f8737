package record

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sorter orders collections by a single field, ascending. Missing, nil and
// empty-string values sort first. The sort is stable.
//
// A Sorter with a collator is not safe for concurrent use.
type Sorter struct {
	collator *collate.Collator
}

// NewSorter returns a Sorter. An empty locale compares strings by code point;
// otherwise strings are compared with the locale's collation rules.
func NewSorter(locale string) (Sorter, error) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return Sorter{}, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Sorter{}, fmt.Errorf("parse sort locale %q: %w", locale, err)
	}
	return Sorter{collator: collate.New(tag)}, nil
}

// Sort returns a new collection ordered by key. The input is not modified.
func (s Sorter) Sort(c Collection, key string) Collection {
	if c == nil {
		return nil
	}
	out := slices.Clone(c)
	slices.SortStableFunc(out, func(a, b Record) int {
		return s.Compare(a[key], b[key])
	})
	return out
}

// Sort orders c by key with code-point string comparison.
func Sort(c Collection, key string) Collection {
	return Sorter{}.Sort(c, key)
}

// Compare orders two field values. Empty values come first, numbers compare
// numerically, strings lexically (or by collation), booleans false first.
// Values of different kinds order by kind: number, string, bool, other.
func (s Sorter) Compare(a, b any) int {
	ea, eb := isEmpty(a), isEmpty(b)
	switch {
	case ea && eb:
		return 0
	case ea:
		return -1
	case eb:
		return 1
	}

	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case kindNumber:
		return cmp.Compare(toFloat(a), toFloat(b))
	case kindString:
		as, bs := a.(string), b.(string)
		if s.collator != nil {
			return s.collator.CompareString(as, bs)
		}
		return strings.Compare(as, bs)
	case kindBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

const (
	kindNumber = iota
	kindString
	kindBool
	kindOther
)

func kindOf(v any) int {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return kindNumber
	case string:
		return kindString
	case bool:
		return kindBool
	default:
		return kindOther
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
