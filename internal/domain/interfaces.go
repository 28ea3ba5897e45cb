package domain

import "context"

// Book is a single catalog entry. Every loaded book has all fields populated.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Rating      float64  `json:"rating"`
	Description string   `json:"description"`
	ISBN        string   `json:"isbn"`
	GenresRaw   string   `json:"genres_raw"`
	Genres      []string `json:"genres"`
	CoverURL    string   `json:"cover_url"`
}

// SparseVector is a term-weighted row. Indices are strictly increasing.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// IsZero reports whether the vector has no non-zero weights.
func (v SparseVector) IsZero() bool { return len(v.Indices) == 0 }

// ScoredBook is a ranked neighbour of a query book.
type ScoredBook struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Embedder converts free text into a sparse vector representation.
// Implementations require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) (SparseVector, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// CatalogSource loads books in source order.
type CatalogSource interface {
	Load(ctx context.Context) ([]Book, error)
}
