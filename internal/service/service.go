// Package service is the recommender session: the loaded catalog, its similarity indexes and
// the title resolver, built once and shared read-only by every surface.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"bookrec/internal/catalog"
	"bookrec/internal/domain"
	"bookrec/internal/embedding"
	"bookrec/internal/logging"
	"bookrec/internal/metrics"
	"bookrec/internal/resolver"
	"bookrec/internal/vectorstore"
	"bookrec/internal/vectorstore/memory"
)

// GenreStrategy selects how genre similarity is computed.
type GenreStrategy string

const (
	// GenreVectors ranks books over an independent TF-IDF index of genre names.
	GenreVectors GenreStrategy = "vectors"
	// GenreSharedWindow reuses the description ranking and takes ranks k+1..2k.
	GenreSharedWindow GenreStrategy = "shared_window"
)

// Options tune a Service. Zero values fall back to DefaultOptions.
type Options struct {
	GenreStrategy GenreStrategy
	DefaultK      int
	MaxK          int
}

func DefaultOptions() Options {
	return Options{GenreStrategy: GenreVectors, DefaultK: 5, MaxK: 100}
}

type index struct {
	field    embedding.Field
	embedder domain.Embedder
	store    vectorstore.Storage
}

// Service answers resolution and recommendation queries. It is safe for concurrent use.
type Service struct {
	catalog      *catalog.Catalog
	resolver     *resolver.Resolver
	descriptions *index
	genres       *index
	opts         Options
}

// New builds the description index (and the genre index for GenreVectors) concurrently.
func New(ctx context.Context, cat *catalog.Catalog, opts Options) (*Service, error) {
	def := DefaultOptions()
	if opts.GenreStrategy == "" {
		opts.GenreStrategy = def.GenreStrategy
	}
	if opts.DefaultK <= 0 {
		opts.DefaultK = def.DefaultK
	}
	if opts.MaxK <= 0 {
		opts.MaxK = def.MaxK
	}
	if opts.DefaultK > opts.MaxK {
		return nil, fmt.Errorf("default k %d exceeds max k %d", opts.DefaultK, opts.MaxK)
	}
	if opts.GenreStrategy != GenreVectors && opts.GenreStrategy != GenreSharedWindow {
		return nil, fmt.Errorf("unknown genre strategy %q", opts.GenreStrategy)
	}

	s := &Service{catalog: cat, opts: opts}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		idx, err := buildIndex(gctx, cat.Books(), embedding.FieldDescription)
		s.descriptions = idx
		return err
	})
	if opts.GenreStrategy == GenreVectors {
		g.Go(func() error {
			idx, err := buildIndex(gctx, cat.Books(), embedding.FieldGenres)
			s.genres = idx
			return err
		})
	}
	g.Go(func() error {
		s.resolver = resolver.New(cat.Books())
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.WithComponent("service").Info().
		Int("books", cat.Len()).
		Str("genre_strategy", string(opts.GenreStrategy)).
		Int("description_terms", s.descriptions.embedder.Dimension()).
		Msg("recommender ready")
	return s, nil
}

func buildIndex(ctx context.Context, books []domain.Book, field embedding.Field) (*index, error) {
	start := time.Now()
	emb, err := embedding.New(field)
	if err != nil {
		return nil, err
	}
	corpus := make([]string, len(books))
	ids := make([]string, len(books))
	for i, b := range books {
		corpus[i] = embedding.Text(field, b)
		ids[i] = b.ID
	}
	if err := emb.Prepare(corpus); err != nil {
		return nil, fmt.Errorf("build %s index: %w", field, err)
	}
	store := memory.NewStorage()
	if err := store.Init(emb.Dimension()); err != nil {
		return nil, err
	}
	vectors := make([]domain.SparseVector, len(books))
	for i, text := range corpus {
		if i%512 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if vectors[i], err = emb.Embed(text); err != nil {
			return nil, fmt.Errorf("embed %s of %s: %w", field, ids[i], err)
		}
	}
	if err := store.Upsert(ids, vectors); err != nil {
		return nil, err
	}
	metrics.ObserveIndexBuild(string(field), start)
	logging.WithComponent("service").Debug().
		Str("index", string(field)).
		Int("terms", emb.Dimension()).
		Dur("took", time.Since(start)).
		Msg("index built")
	return &index{field: field, embedder: emb, store: store}, nil
}

// Catalog returns the catalog the service was built from.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Options returns the effective options.
func (s *Service) Options() Options { return s.opts }

// Book looks up a book by identifier.
func (s *Service) Book(id string) (domain.Book, error) {
	b, ok := s.catalog.Book(id)
	if !ok {
		return domain.Book{}, fmt.Errorf("%w: %s", domain.ErrUnknownBook, id)
	}
	return b, nil
}

// Books resolves identifiers to books in the given order.
func (s *Service) Books(ids []string) ([]domain.Book, error) {
	return s.catalog.Lookup(ids)
}

// Resolve maps a free-text title to a resolution. Only malformed input returns an error.
func (s *Service) Resolve(query string) (domain.Resolution, error) {
	res, err := s.resolver.Resolve(query)
	if err != nil {
		metrics.Resolutions.WithLabelValues(domain.ErrorKind(err)).Inc()
		return res, err
	}
	metrics.Resolutions.WithLabelValues(string(res.Outcome)).Inc()
	return res, nil
}

// ResolveID resolves a title to exactly one identifier, returning a *domain.ResolutionError
// for not_found and ambiguous outcomes.
func (s *Service) ResolveID(query string) (string, error) {
	res, err := s.Resolve(query)
	if err != nil {
		return "", err
	}
	if !res.Found() {
		return "", &domain.ResolutionError{Resolution: res}
	}
	return res.ID, nil
}

// K validates a requested result count; 0 means the default.
func (s *Service) K(k int) (int, error) {
	switch {
	case k == 0:
		return s.opts.DefaultK, nil
	case k < 0:
		return 0, fmt.Errorf("%w: k must be positive, got %d", domain.ErrMalformedQuery, k)
	case k > s.opts.MaxK:
		return 0, fmt.Errorf("%w: k %d exceeds maximum %d", domain.ErrMalformedQuery, k, s.opts.MaxK)
	}
	return k, nil
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return domain.ErrorKind(err)
}
