package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"bookrec/internal/domain"
	"bookrec/internal/logging"
)

// DriverName is the pure Go SQLite driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS books (
	position    INTEGER PRIMARY KEY,
	book_id     TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	author      TEXT NOT NULL,
	rating      REAL,
	description TEXT NOT NULL,
	isbn        TEXT NOT NULL,
	genres_raw  TEXT NOT NULL,
	genres      TEXT NOT NULL,
	cover_url   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_books_title ON books(title);
`

func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	return db, nil
}

// SQLiteSource reads a catalog previously written by SaveSQLite.
type SQLiteSource struct {
	Path string
}

func NewSQLiteSource(path string) *SQLiteSource { return &SQLiteSource{Path: path} }

// Load returns the stored rows ordered by their original position.
func (s *SQLiteSource) Load(ctx context.Context) ([]domain.Book, error) {
	db, err := openDatabase(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT book_id, title, author, rating, description, isbn, genres_raw, genres, cover_url
		FROM books ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var (
			b      domain.Book
			rating sql.NullFloat64
			genres string
		)
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &rating, &b.Description, &b.ISBN, &b.GenresRaw, &genres, &b.CoverURL); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		b.Rating = math.NaN()
		if rating.Valid {
			b.Rating = rating.Float64
		}
		if err := json.Unmarshal([]byte(genres), &b.Genres); err != nil {
			return nil, fmt.Errorf("decode genres for %s: %w", b.ID, err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// SaveSQLite replaces the books table at path with the given books, preserving order.
func SaveSQLite(ctx context.Context, path string, books []domain.Book) error {
	db, err := openDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM books"); err != nil {
		return fmt.Errorf("clear books: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO books (position, book_id, title, author, rating, description, isbn, genres_raw, genres, cover_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range books {
		genres := b.Genres
		if genres == nil {
			genres = []string{}
		}
		data, err := json.Marshal(genres)
		if err != nil {
			return fmt.Errorf("encode genres for %s: %w", b.ID, err)
		}
		var rating sql.NullFloat64
		if !math.IsNaN(b.Rating) {
			rating = sql.NullFloat64{Float64: b.Rating, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, b.ID, b.Title, b.Author, rating, b.Description, b.ISBN, b.GenresRaw, string(data), b.CoverURL); err != nil {
			return fmt.Errorf("insert %s: %w", b.ID, err)
		}
	}
	return tx.Commit()
}

// ImportCSV converts a CSV catalog into a SQLite database, keeping only complete rows.
func ImportCSV(ctx context.Context, csvPath, dbPath string) (int, error) {
	rows, err := NewCSVSource(csvPath).Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrCatalogLoad, err)
	}
	kept, dropped := Filter(rows)
	if len(kept) == 0 {
		return 0, domain.ErrEmptyCatalog
	}
	if err := SaveSQLite(ctx, dbPath, kept); err != nil {
		return 0, err
	}
	logging.WithComponent("catalog").Info().
		Str("csv", csvPath).
		Str("db", dbPath).
		Int("books", len(kept)).
		Int("dropped", dropped).
		Msg("catalog imported")
	return len(kept), nil
}
