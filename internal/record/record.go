// Package record models catalog entities without knowing their fields.
//
// A Record is a field-name to scalar mapping decoded from the data source.
// The core only needs two things from it: a value for the active sort key
// and a stable identity. Everything else is carried opaquely to the views.
package record

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultIDField names the identity field when none is configured.
const DefaultIDField = "ID"

// Record is one entity instance with named scalar fields.
type Record map[string]any

// Get returns the value stored under field.
func (r Record) Get(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// String renders the value stored under field for display. Missing and nil
// values render as the empty string.
func (r Record) String(field string) string {
	return FormatValue(r[field])
}

// ID returns the identity of the record as a string using idField.
func (r Record) ID(idField string) string {
	if idField == "" {
		idField = DefaultIDField
	}
	return r.String(idField)
}

// Clone returns a shallow copy. Field values are scalars so this is a full copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Fields returns the record's field names in lexical order.
func (r Record) Fields() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Collection is an ordered sequence of records. It is replaced wholesale,
// never edited in place.
type Collection []Record

// Clone copies the collection and every record in it.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	dup := make(Collection, len(c))
	for i, r := range c {
		dup[i] = r.Clone()
	}
	return dup
}

// Find returns the record whose identity equals id.
func (c Collection) Find(idField, id string) (Record, bool) {
	if id == "" {
		return nil, false
	}
	for _, r := range c {
		if r.ID(idField) == id {
			return r, true
		}
	}
	return nil, false
}

// Decode parses a JSON array of records. A null or empty body yields an
// empty collection. Numbers become int64 when integral and float64 otherwise.
func Decode(data []byte) (Collection, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return Collection{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	out := make(Collection, 0, len(raw))
	for _, m := range raw {
		if m == nil {
			continue
		}
		out = append(out, Normalize(m))
	}
	return out, nil
}

// DecodeRecord parses a single JSON object. A null or empty body yields a
// nil record and no error.
func DecodeRecord(data []byte) (Record, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}

// Normalize converts json.Number values into int64 or float64 so that records
// compare and evaluate the same way regardless of how they were decoded.
func Normalize(m map[string]any) Record {
	r := make(Record, len(m))
	for k, v := range m {
		r[k] = normalizeValue(v)
	}
	return r
}

func normalizeValue(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// FormatValue renders a scalar for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Params is the filter query sent to the data source. Treat it as immutable:
// setters replace the whole value.
type Params map[string]string

// ParseParams builds Params from "key=value" pairs. Empty values are dropped.
func ParseParams(pairs []string) (Params, error) {
	p := Params{}
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: want key=value", pair)
		}
		if value = strings.TrimSpace(value); value != "" {
			p[key] = value
		}
	}
	return p, nil
}

// Clone copies p. A nil Params clones to an empty one.
func (p Params) Clone() Params {
	dup := make(Params, len(p))
	maps.Copy(dup, p)
	return dup
}

// Equal reports structural equality; nil and empty are equal.
func (p Params) Equal(other Params) bool {
	return maps.Equal(p, other)
}

// Values encodes p as URL query values.
func (p Params) Values() url.Values {
	values := url.Values{}
	for k, v := range p {
		if strings.TrimSpace(v) == "" {
			continue
		}
		values.Set(k, v)
	}
	return values
}

// String renders p as sorted "k=v" pairs separated by spaces.
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+p[k])
	}
	return strings.Join(parts, " ")
}
