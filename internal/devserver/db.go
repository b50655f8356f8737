package devserver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	*sql.DB
}

// Open creates a SQLite connection. In-memory databases are pinned to a
// single connection so every query sees the same data.
func Open(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(dataSourceName, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return &DB{db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS categories (
    ID INTEGER PRIMARY KEY AUTOINCREMENT,
    Category TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS publishers (
    ID INTEGER PRIMARY KEY AUTOINCREMENT,
    Publisher TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS formats (
    ID INTEGER PRIMARY KEY AUTOINCREMENT,
    Format TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS conditions (
    ID INTEGER PRIMARY KEY AUTOINCREMENT,
    Code TEXT NOT NULL UNIQUE,
    Condition TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
    ID INTEGER PRIMARY KEY AUTOINCREMENT,
    Title TEXT NOT NULL,
    Author TEXT,
    Category TEXT,
    Publisher TEXT,
    Format TEXT,
    Condition TEXT,
    ISBN TEXT,
    Year INTEGER,
    Price REAL,
    Notes TEXT
);
CREATE INDEX IF NOT EXISTS idx_books_title ON books(Title);
CREATE INDEX IF NOT EXISTS idx_books_author ON books(Author);
`

// Migrate creates the catalog schema. It is safe to run repeatedly.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Seed loads a small sample catalog when the books table is empty.
func (db *DB) Seed(ctx context.Context) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&count); err != nil {
		return fmt.Errorf("failed to count books: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, name := range []string{"Fiction", "Science Fiction", "History", "Poetry", "Reference"} {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO categories (Category) VALUES (?)", name); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
	}
	for _, name := range []string{"Penguin", "Ace Books", "Vintage", "Faber & Faber", "Oxford University Press"} {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO publishers (Publisher) VALUES (?)", name); err != nil {
			return fmt.Errorf("failed to seed publishers: %w", err)
		}
	}
	for _, name := range []string{"Hardcover", "Paperback", "Trade Paperback", "Leather"} {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO formats (Format) VALUES (?)", name); err != nil {
			return fmt.Errorf("failed to seed formats: %w", err)
		}
	}
	conditions := [][2]string{
		{"F", "Fine"},
		{"VG", "Very Good"},
		{"G", "Good"},
		{"P", "Poor"},
	}
	for _, c := range conditions {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO conditions (Code, Condition) VALUES (?, ?)", c[0], c[1]); err != nil {
			return fmt.Errorf("failed to seed conditions: %w", err)
		}
	}

	books := []struct {
		title, author, category, publisher, format, condition, isbn string
		year                                                         int
		price                                                        float64
	}{
		{"The Left Hand of Darkness", "Ursula K. Le Guin", "Science Fiction", "Ace Books", "Paperback", "VG", "9780441478125", 1969, 8.99},
		{"Dune", "Frank Herbert", "Science Fiction", "Ace Books", "Paperback", "G", "9780441172719", 1965, 9.99},
		{"Middlemarch", "George Eliot", "Fiction", "Penguin", "Paperback", "F", "9780141439549", 1871, 12.00},
		{"The Waste Land", "T. S. Eliot", "Poetry", "Faber & Faber", "Hardcover", "VG", "9780571097128", 1922, 24.50},
		{"SPQR", "Mary Beard", "History", "Vintage", "Trade Paperback", "F", "9781631492228", 2015, 18.95},
		{"The Dispossessed", "Ursula K. Le Guin", "Science Fiction", "Penguin", "Paperback", "G", "9780061054884", 1974, 10.50},
		{"Oxford English Dictionary", "", "Reference", "Oxford University Press", "Leather", "P", "", 1989, 150},
	}
	for _, b := range books {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (Title, Author, Category, Publisher, Format, Condition, ISBN, Year, Price)
			VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, NULLIF(?, ''), ?, ?)
		`, b.title, b.author, b.category, b.publisher, b.format, b.condition, b.isbn, b.year, b.price)
		if err != nil {
			return fmt.Errorf("failed to seed books: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}
