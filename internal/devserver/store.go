package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/five82/bookshelf/internal/record"
)

var (
	// ErrNotFound is returned when a book id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnknownTable is returned for a lookup table that is not served.
	ErrUnknownTable = errors.New("unknown lookup table")
	// ErrUnknownField is returned when a filter or record names a column
	// the books table does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrTitleRequired is returned when a new book has no Title.
	ErrTitleRequired = errors.New("book title is required")
)

// bookColumns lists the books table columns in display order. Text columns
// match filters by case-insensitive substring; the rest match exactly.
var bookColumns = []struct {
	name string
	text bool
}{
	{"ID", false},
	{"Title", true},
	{"Author", true},
	{"Category", true},
	{"Publisher", true},
	{"Format", true},
	{"Condition", true},
	{"ISBN", true},
	{"Year", false},
	{"Price", false},
	{"Notes", true},
}

// lookupTables maps the lower-cased table name used in URLs to its SQL
// table and ordered column list.
var lookupTables = map[string]struct {
	table   string
	columns []string
}{
	"categories": {"categories", []string{"ID", "Category"}},
	"publishers": {"publishers", []string{"ID", "Publisher"}},
	"formats":    {"formats", []string{"ID", "Format"}},
	"conditions": {"conditions", []string{"ID", "Code", "Condition"}},
}

// Store reads and writes catalog records.
type Store struct {
	db *DB
}

// NewStore creates a Store backed by db.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func bookColumn(name string) (string, bool, bool) {
	for _, c := range bookColumns {
		if strings.EqualFold(c.name, name) {
			return c.name, c.text, true
		}
	}
	return "", false, false
}

func bookColumnList() string {
	names := make([]string, len(bookColumns))
	for i, c := range bookColumns {
		names[i] = c.name
	}
	return strings.Join(names, ", ")
}

// Books returns every book matching filters, ordered by ID. Blank filter
// values are ignored.
func (s *Store) Books(ctx context.Context, filters map[string]string) (record.Collection, error) {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var where []string
	var args []any
	for _, key := range keys {
		value := strings.TrimSpace(filters[key])
		if value == "" {
			continue
		}
		column, text, ok := bookColumn(key)
		if !ok {
			return nil, fmt.Errorf("filter %q: %w", key, ErrUnknownField)
		}
		if text {
			where = append(where, fmt.Sprintf("lower(%s) LIKE '%%' || lower(?) || '%%'", column))
		} else {
			where = append(where, fmt.Sprintf("%s = ?", column))
		}
		args = append(args, value)
	}

	query := "SELECT " + bookColumnList() + " FROM books"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ID"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	return scanRecords(rows)
}

// Book returns a single book by id.
func (s *Store) Book(ctx context.Context, id string) (record.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+bookColumnList()+" FROM books WHERE ID = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	items, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

// UpdateBook writes the fields present in rec to the book with id. Fields
// not present are left unchanged.
func (s *Store) UpdateBook(ctx context.Context, id string, rec record.Record) (record.Record, error) {
	columns, values, err := writableFields(rec)
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		sets := make([]string, len(columns))
		for i, c := range columns {
			sets[i] = c + " = ?"
		}
		query := "UPDATE books SET " + strings.Join(sets, ", ") + " WHERE ID = ?"
		res, err := s.db.ExecContext(ctx, query, append(values, id)...)
		if err != nil {
			return nil, fmt.Errorf("failed to update book: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, ErrNotFound
		}
	}
	return s.Book(ctx, id)
}

// CreateBook inserts rec as a new book and returns it with its assigned id.
func (s *Store) CreateBook(ctx context.Context, rec record.Record) (record.Record, error) {
	columns, values, err := writableFields(rec)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(columns, "Title") {
		return nil, ErrTitleRequired
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := "INSERT INTO books (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders + ")"
	res, err := s.db.ExecContext(ctx, query, values...)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new book id: %w", err)
	}
	return s.Book(ctx, fmt.Sprint(id))
}

// Lookup returns every row of a lookup table. The name is case-insensitive.
func (s *Store) Lookup(ctx context.Context, name string) (record.Collection, error) {
	t, ok := lookupTables[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownTable)
	}
	query := "SELECT " + strings.Join(t.columns, ", ") + " FROM " + t.table + " ORDER BY ID"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.table, err)
	}
	return scanRecords(rows)
}

// writableFields returns the known book columns in rec, excluding ID, in a
// stable order together with their values.
func writableFields(rec record.Record) ([]string, []any, error) {
	var columns []string
	var values []any
	for _, field := range rec.Fields() {
		column, _, ok := bookColumn(field)
		if !ok {
			return nil, nil, fmt.Errorf("field %q: %w", field, ErrUnknownField)
		}
		if column == "ID" {
			continue
		}
		columns = append(columns, column)
		values = append(values, rec[field])
	}
	return columns, values, nil
}

// scanRecords converts every row into a record keyed by column name and
// closes rows.
func scanRecords(rows *sql.Rows) (record.Collection, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	out := record.Collection{}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := make(record.Record, len(columns))
		for i, name := range columns {
			switch v := values[i].(type) {
			case []byte:
				rec[name] = string(v)
			case int:
				rec[name] = int64(v)
			default:
				rec[name] = v
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}
