package catalog

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrec/internal/domain"
)

type stubSource struct {
	books []domain.Book
	err   error
}

func (s stubSource) Load(context.Context) ([]domain.Book, error) { return s.books, s.err }

func book(id, title string) domain.Book {
	return domain.Book{
		ID:          id,
		Title:       title,
		Author:      "Author " + id,
		Rating:      4,
		Description: "A story about " + title,
		ISBN:        "978" + id,
		GenresRaw:   "['Fiction']",
		Genres:      []string{"Fiction"},
		CoverURL:    "https://example.com/" + id + ".jpg",
	}
}

func TestLoadCSVDropsIncompleteRows(t *testing.T) {
	c, err := Load(context.Background(), NewCSVSource(filepath.Join("testdata", "books.csv")))
	require.NoError(t, err)

	assert.Equal(t, 8, c.Len())
	_, ok := c.Book("4.Missing")
	assert.False(t, ok)
	_, ok = c.Book("6.Blank")
	assert.False(t, ok)

	first := c.At(0)
	assert.Equal(t, "1.Pride_and_Prejudice", first.ID)
	assert.Equal(t, "Jane Austen", first.Author)
	assert.InDelta(t, 4.28, first.Rating, 1e-9)
	assert.Equal(t, []string{"Classics", "Fiction", "Romance"}, first.Genres)
	assert.Equal(t, "['Classics', 'Fiction', 'Romance']", first.GenresRaw)

	p, ok := c.Book("8.Persuasion")
	require.True(t, ok)
	assert.Equal(t, []string{"Children's", "Classics"}, p.Genres)

	row, ok := c.Row("5.Hobbit")
	require.True(t, ok)
	assert.Equal(t, 3, row)
}

func TestLoadMissingFileWrapsCatalogLoad(t *testing.T) {
	_, err := Load(context.Background(), NewCSVSource(filepath.Join(t.TempDir(), "nope.csv")))
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)
}

func TestLoadAllIncompleteIsEmptyCatalog(t *testing.T) {
	b := book("1", "Only")
	b.Description = ""
	_, err := Load(context.Background(), stubSource{books: []domain.Book{b}})
	assert.ErrorIs(t, err, domain.ErrEmptyCatalog)
}

func TestLoadSourceError(t *testing.T) {
	_, err := Load(context.Background(), stubSource{err: errors.New("boom")})
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)
}

func TestFilterKeepsFirstDuplicate(t *testing.T) {
	a := book("1", "First")
	dup := book("1", "Second")
	nan := book("2", "Unrated")
	nan.Rating = math.NaN()

	kept, dropped := Filter([]domain.Book{a, dup, nan, book("3", "Third")})

	assert.Equal(t, 2, dropped)
	require.Len(t, kept, 2)
	assert.Equal(t, "First", kept[0].Title)
	assert.Equal(t, "3", kept[1].ID)
}

func TestReadCSVMissingColumns(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("bookId,title\n1,A\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "author")
	assert.Contains(t, err.Error(), "coverImg")
}

func TestReadCSVBadRatingIsMissing(t *testing.T) {
	in := "bookId,author,title,rating,description,isbn,genres,coverImg\n" +
		"1,A,T,n/a,D,I,['X'],http://c\n"
	rows, err := ReadCSV(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, math.IsNaN(rows[0].Rating))
	assert.False(t, Complete(rows[0]))
}

func TestLookupUnknownID(t *testing.T) {
	c, err := New([]domain.Book{book("1", "A")})
	require.NoError(t, err)

	got, err := c.Lookup([]string{"1"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = c.Lookup([]string{"1", "9"})
	assert.ErrorIs(t, err, domain.ErrUnknownBook)
}

func TestParseGenres(t *testing.T) {
	cases := map[string][]string{
		"['Classics', 'Fiction']":        {"Classics", "Fiction"},
		`["Children's", 'Young Adult']`:  {"Children's", "Young Adult"},
		"[]":                             nil,
		"":                               nil,
		"Fantasy, Science Fiction":       {"Fantasy", "Science Fiction"},
		"[Horror, Gothic]":               {"Horror", "Gothic"},
		`['It\'s Complicated', 'Drama']`: {"It's Complicated", "Drama"},
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseGenres(in), in)
	}
}

func TestSQLiteRoundTripPreservesOrder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db := filepath.Join(dir, "books.db")

	n, err := ImportCSV(ctx, filepath.Join("testdata", "books.csv"), db)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	fromCSV, err := Load(ctx, NewCSVSource(filepath.Join("testdata", "books.csv")))
	require.NoError(t, err)
	fromDB, err := Load(ctx, NewSQLiteSource(db))
	require.NoError(t, err)

	assert.Equal(t, fromCSV.Books(), fromDB.Books())
}

func TestOpenSource(t *testing.T) {
	src, err := OpenSource("csv", "x.csv")
	require.NoError(t, err)
	assert.IsType(t, &CSVSource{}, src)

	src, err = OpenSource("sqlite", "x.db")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteSource{}, src)

	_, err = OpenSource("parquet", "x")
	assert.Error(t, err)
}
