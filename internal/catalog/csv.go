package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"bookrec/internal/domain"
)

// Required CSV header names.
const (
	ColID          = "bookId"
	ColAuthor      = "author"
	ColTitle       = "title"
	ColRating      = "rating"
	ColDescription = "description"
	ColISBN        = "isbn"
	ColGenres      = "genres"
	ColCover       = "coverImg"
)

var requiredColumns = []string{ColID, ColAuthor, ColTitle, ColRating, ColDescription, ColISBN, ColGenres, ColCover}

// CSVSource reads the book table from a CSV file with a header row.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource { return &CSVSource{Path: path} }

// Load returns every data row as a candidate book, in file order.
func (s *CSVSource) Load(ctx context.Context) ([]domain.Book, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(ctx, f)
}

// ReadCSV parses a CSV stream. Columns are located by header name; extra columns are ignored.
// Unparseable ratings become NaN so the row is later treated as incomplete.
func ReadCSV(ctx context.Context, r io.Reader) ([]domain.Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := cols[h]; !ok {
			cols[h] = i
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var books []domain.Book
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(name string) string {
			i := cols[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		genresRaw := field(ColGenres)
		books = append(books, domain.Book{
			ID:          field(ColID),
			Title:       field(ColTitle),
			Author:      field(ColAuthor),
			Rating:      parseRating(field(ColRating)),
			Description: field(ColDescription),
			ISBN:        field(ColISBN),
			GenresRaw:   genresRaw,
			Genres:      ParseGenres(genresRaw),
			CoverURL:    field(ColCover),
		})
	}
	return books, nil
}

func parseRating(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
