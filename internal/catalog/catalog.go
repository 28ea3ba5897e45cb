// Package catalog loads the book table and keeps it in source row order.
//
// Row order matters: similarity indexes are built positionally from Books(), and
// title resolution breaks ties by the first matching row.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"bookrec/internal/domain"
	"bookrec/internal/logging"
	"bookrec/internal/metrics"
)

// Catalog is an immutable, ordered collection of complete books keyed by identifier.
type Catalog struct {
	books []domain.Book
	byID  map[string]int
}

// New builds a catalog from books that are already complete and uniquely identified.
func New(books []domain.Book) (*Catalog, error) {
	if len(books) == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	c := &Catalog{
		books: make([]domain.Book, len(books)),
		byID:  make(map[string]int, len(books)),
	}
	for i, b := range books {
		if !Complete(b) {
			return nil, fmt.Errorf("book %q at row %d is incomplete", b.ID, i)
		}
		if _, dup := c.byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate book id %q at row %d", b.ID, i)
		}
		c.byID[b.ID] = i
		c.books[i] = b
	}
	return c, nil
}

// Load reads candidate rows from src, drops incomplete and duplicate rows, and returns the
// resulting catalog. Any source error is fatal and wraps domain.ErrCatalogLoad.
func Load(ctx context.Context, src domain.CatalogSource) (*Catalog, error) {
	log := logging.WithComponent("catalog")
	rows, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogLoad, err)
	}
	kept, dropped := Filter(rows)
	metrics.CatalogRowsDropped.Add(float64(dropped))
	c, err := New(kept)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCatalog) {
			return nil, fmt.Errorf("%w: %d rows read, all incomplete", err, len(rows))
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogLoad, err)
	}
	metrics.CatalogBooks.Set(float64(c.Len()))
	log.Info().Int("rows", len(rows)).Int("books", c.Len()).Int("dropped", dropped).Msg("catalog loaded")
	return c, nil
}

// Filter keeps complete rows whose identifier has not been seen yet, in order.
func Filter(rows []domain.Book) ([]domain.Book, int) {
	kept := make([]domain.Book, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	dropped := 0
	for _, b := range rows {
		if !Complete(b) {
			dropped++
			continue
		}
		if _, dup := seen[b.ID]; dup {
			dropped++
			continue
		}
		seen[b.ID] = struct{}{}
		kept = append(kept, b)
	}
	return kept, dropped
}

// Complete reports whether every required field is populated. A NaN rating counts as missing.
func Complete(b domain.Book) bool {
	for _, s := range []string{b.ID, b.Title, b.Author, b.Description, b.ISBN, b.GenresRaw, b.CoverURL} {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return !math.IsNaN(b.Rating) && !math.IsInf(b.Rating, 0)
}

// Len returns the number of books.
func (c *Catalog) Len() int { return len(c.books) }

// Books returns the books in source order. Callers must not modify the returned slice.
func (c *Catalog) Books() []domain.Book { return c.books }

// At returns the book at a row position.
func (c *Catalog) At(row int) domain.Book { return c.books[row] }

// Book looks a book up by identifier.
func (c *Catalog) Book(id string) (domain.Book, bool) {
	row, ok := c.byID[id]
	if !ok {
		return domain.Book{}, false
	}
	return c.books[row], true
}

// Row returns the source position of a book.
func (c *Catalog) Row(id string) (int, bool) {
	row, ok := c.byID[id]
	return row, ok
}

// Lookup resolves identifiers to books, failing on the first unknown id.
func (c *Catalog) Lookup(ids []string) ([]domain.Book, error) {
	out := make([]domain.Book, 0, len(ids))
	for _, id := range ids {
		b, ok := c.Book(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownBook, id)
		}
		out = append(out, b)
	}
	return out, nil
}

// OpenSource returns the catalog source for a configured kind ("csv" or "sqlite").
func OpenSource(kind, path string) (domain.CatalogSource, error) {
	switch strings.ToLower(kind) {
	case "", "csv":
		return NewCSVSource(path), nil
	case "sqlite":
		return NewSQLiteSource(path), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", kind)
	}
}
