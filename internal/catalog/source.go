package catalog

import (
	"context"
	"errors"

	"github.com/five82/bookshelf/internal/record"
)

// ErrMalformedResponse marks a response whose body could not be decoded.
// Synchronizers treat it the same as an empty result, not as a failure.
var ErrMalformedResponse = errors.New("malformed response body")

// Source is the remote data source. Implementations must report transport
// failures as errors and an absent body as an empty collection.
type Source interface {
	FetchRecords(ctx context.Context, params record.Params) (record.Collection, error)
	FetchLookup(ctx context.Context, table string) (record.Collection, error)
}

// Notifier reports a user-visible failure message.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Notify calls f(message).
func (f NotifierFunc) Notify(message string) { f(message) }

// LookupTable describes one auxiliary table fetched at mount.
type LookupTable struct {
	Name string `toml:"name"`
	// Sort orders the table's records; empty keeps the source order.
	Sort string `toml:"sort"`
	// Fields lists the columns shown when the table is opened on its own.
	Fields []string `toml:"fields"`
}

// DefaultLookupTables are the catalog's reference tables.
func DefaultLookupTables() []LookupTable {
	return []LookupTable{
		{Name: "Categories", Sort: "Category", Fields: []string{"Category"}},
		{Name: "Publishers", Sort: "Publisher", Fields: []string{"Publisher"}},
		{Name: "Formats", Sort: "Format", Fields: []string{"Format"}},
		{Name: "Conditions", Sort: "ID", Fields: []string{"Code", "Condition"}},
	}
}

// TableNames returns the names of tables in order.
func TableNames(tables []LookupTable) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}
