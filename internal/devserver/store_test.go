package devserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/bookshelf/internal/record"
)

// newTestStore creates a seeded in-memory catalog.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() {
		db.Close()
	})

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx), "failed to run migrations")
	require.NoError(t, db.Seed(ctx), "failed to seed")
	return NewStore(db)
}

func titles(c record.Collection) []string {
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = r.String("Title")
	}
	return out
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))

	for _, table := range []string{"books", "categories", "publishers", "formats", "conditions"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

func TestSeedOnlyOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	before, err := store.Books(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	require.NoError(t, store.db.Seed(ctx))
	after, err := store.Books(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestBooks_FiltersTextBySubstring(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Books(context.Background(), map[string]string{"author": "LE GUIN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Left Hand of Darkness", "The Dispossessed"}, titles(got))
}

func TestBooks_FiltersNumbersExactly(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Books(context.Background(), map[string]string{"Year": "1965", "Category": ""})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dune", got[0]["Title"])
	assert.Equal(t, int64(1965), got[0]["Year"])
	assert.Equal(t, 9.99, got[0]["Price"])
}

func TestBooks_NoMatchIsEmptyNotNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Books(context.Background(), map[string]string{"Title": "no such book"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBooks_UnknownFilterRejected(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Books(context.Background(), map[string]string{"Colour": "red"})
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestBook_NullColumnsDecodeAsNil(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.Books(ctx, map[string]string{"Category": "reference"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0]["Author"])

	_, err = store.Book(ctx, "9999")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_CaseInsensitiveName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.Lookup(ctx, "conditions")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "F", got[0]["Code"])
	assert.Equal(t, "Fine", got[0]["Condition"])

	upper, err := store.Lookup(ctx, "CONDITIONS")
	require.NoError(t, err)
	assert.Equal(t, got, upper)

	_, err = store.Lookup(ctx, "shelves")
	require.ErrorIs(t, err, ErrUnknownTable)
}

func TestUpdateAndCreateBook(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	updated, err := store.UpdateBook(ctx, "2", record.Record{"ID": int64(2), "Notes": "signed", "Price": 12.5})
	require.NoError(t, err)
	assert.Equal(t, "Dune", updated["Title"])
	assert.Equal(t, "signed", updated["Notes"])
	assert.Equal(t, 12.5, updated["Price"])

	_, err = store.UpdateBook(ctx, "9999", record.Record{"Notes": "x"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.UpdateBook(ctx, "2", record.Record{"Colour": "red"})
	require.ErrorIs(t, err, ErrUnknownField)

	created, err := store.CreateBook(ctx, record.Record{"Title": "Kindred", "Author": "Octavia E. Butler", "Year": int64(1979)})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID("ID"))
	assert.Equal(t, "Kindred", created["Title"])

	_, err = store.CreateBook(ctx, record.Record{"Author": "Anonymous"})
	require.ErrorIs(t, err, ErrTitleRequired)
}
