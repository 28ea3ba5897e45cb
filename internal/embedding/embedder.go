package embedding

import (
	"fmt"
	"strings"

	"bookrec/internal/domain"
	"bookrec/internal/embedding/tfidf"
)

// Embedder converts free text into a sparse vector representation.
// Implementations require a preparation phase over the corpus.
type Embedder = domain.Embedder

// Field names the book field an embedder vectorizes.
type Field string

const (
	FieldDescription Field = "description"
	FieldGenres      Field = "genres"
)

// New returns an unprepared embedder for the given book field.
func New(field Field) (Embedder, error) {
	switch field {
	case FieldDescription:
		return tfidf.NewEmbedder(), nil
	case FieldGenres:
		return tfidf.NewEmbedder(tfidf.WithAnalyzer(tfidf.GenreAnalyzer)), nil
	default:
		return nil, fmt.Errorf("unknown embedding field: %s", field)
	}
}

// Text extracts the text of a book that an embedder for field consumes.
func Text(field Field, b domain.Book) string {
	if field == FieldGenres {
		return strings.Join(b.Genres, ",")
	}
	return b.Description
}
