package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"bookrec/internal/domain"
)

// ErrEmptyVocabulary is returned by Prepare when no corpus document yields a term.
var ErrEmptyVocabulary = errors.New("no terms found in corpus")

// Analyzer turns a document into the terms that are counted for it.
type Analyzer func(text string) []string

// Option configures an Embedder.
type Option func(*Embedder)

// WithAnalyzer replaces the default word tokenizer. Stop words are not applied to
// analyzer output.
func WithAnalyzer(a Analyzer) Option {
	return func(e *Embedder) { e.analyzer = a }
}

// WithStopWords replaces the English stop-word list used by the default tokenizer.
func WithStopWords(words map[string]struct{}) Option {
	return func(e *Embedder) { e.stopwords = words }
}

// Embedder implements a TF-IDF vectorizer producing sparse, L2-normalized rows.
// It builds a vocabulary from the corpus and computes smoothed IDF values.
type Embedder struct {
	vocabulary   map[string]int
	idf          []float64
	dimension    int
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	analyzer     Analyzer
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder(opts ...Option) *Embedder {
	e := &Embedder{
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]{2,}`),
		stopwords:    EnglishStopWords(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.analyzer == nil {
		e.analyzer = e.tokenize
	}
	return e
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.analyzer(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Create stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return ErrEmptyVocabulary
	}
	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	N := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		// Smoothed IDF
		e.idf[i] = math.Log((1+N)/(1+float64(df[term]))) + 1.0
	}
	e.dimension = len(terms)
	e.prepared = true
	return nil
}

// Dimension returns the vocabulary size.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the TF-IDF row for the given text. Terms outside the vocabulary are ignored;
// text with no known terms yields a zero vector.
func (e *Embedder) Embed(text string) (domain.SparseVector, error) {
	if !e.prepared {
		return domain.SparseVector{}, errors.New("tfidf embedder not prepared")
	}
	tf := make(map[int]int)
	for _, tok := range e.analyzer(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return domain.SparseVector{}, nil
	}
	indices := make([]int, 0, len(tf))
	for idx := range tf {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	values := make([]float64, len(indices))
	norm := 0.0
	for i, idx := range indices {
		values[i] = float64(tf[idx]) * e.idf[idx]
		norm += values[i] * values[i]
	}
	// L2 normalize
	norm = math.Sqrt(norm)
	for i := range values {
		values[i] /= norm
	}
	return domain.SparseVector{Indices: indices, Values: values}, nil
}

// Terms returns the terms the analyzer extracts from text, after stop-word removal.
func (e *Embedder) Terms(text string) []string { return e.analyzer(text) }

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// GenreAnalyzer treats each comma-separated genre name as a single lowercase term.
func GenreAnalyzer(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.Join(strings.Fields(p), " "))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
