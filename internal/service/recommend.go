package service

import (
	"context"
	"fmt"
	"time"

	"bookrec/internal/domain"
	"bookrec/internal/logging"
	"bookrec/internal/metrics"
)

// SimilarSummary ranks books by description similarity to id and returns the top k,
// never including id itself. Fewer than k are returned only when the catalog is smaller.
func (s *Service) SimilarSummary(id string, k int) ([]domain.ScoredBook, error) {
	k, err := s.K(k)
	if err != nil {
		return nil, err
	}
	return s.rank(s.descriptions, id, k)
}

// SimilarGenre ranks books by genre similarity to id using the configured strategy.
func (s *Service) SimilarGenre(id string, k int) ([]domain.ScoredBook, error) {
	k, err := s.K(k)
	if err != nil {
		return nil, err
	}
	if s.opts.GenreStrategy == GenreSharedWindow {
		res, err := s.rank(s.descriptions, id, 2*k)
		if err != nil {
			return nil, err
		}
		if len(res) <= k {
			return []domain.ScoredBook{}, nil
		}
		return res[k:], nil
	}
	return s.rank(s.genres, id, k)
}

// Similar returns the ranking for a mode. ModeBoth lists summary results first, then genre
// results not already present, so it never repeats an id and holds at most 2k books.
func (s *Service) Similar(id string, mode domain.Mode, k int) ([]domain.ScoredBook, error) {
	switch mode {
	case domain.ModeSummary:
		return s.SimilarSummary(id, k)
	case domain.ModeGenres:
		return s.SimilarGenre(id, k)
	case domain.ModeBoth, "":
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrMalformedQuery, mode)
	}

	summary, err := s.SimilarSummary(id, k)
	if err != nil {
		return nil, err
	}
	genres, err := s.SimilarGenre(id, k)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ScoredBook, 0, len(summary)+len(genres))
	seen := make(map[string]struct{}, cap(out))
	for _, list := range [][]domain.ScoredBook{summary, genres} {
		for _, sb := range list {
			if _, dup := seen[sb.ID]; dup {
				continue
			}
			seen[sb.ID] = struct{}{}
			out = append(out, sb)
		}
	}
	return out, nil
}

// Recommend resolves req.Title and ranks similar books. A title that does not resolve to one
// book aborts with a *domain.ResolutionError.
func (s *Service) Recommend(ctx context.Context, req domain.Request) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, err
	}
	id, err := s.ResolveID(req.Title)
	if err != nil {
		metrics.Recommendations.WithLabelValues(modeLabel(req.Mode), resultLabel(err)).Inc()
		logging.Ctx(ctx).Debug().Str("title", req.Title).Err(err).Msg("title did not resolve")
		return domain.Recommendation{}, err
	}
	return s.RecommendByID(ctx, id, req.Mode, req.K)
}

// RecommendByID ranks books similar to a known identifier.
func (s *Service) RecommendByID(ctx context.Context, id string, mode domain.Mode, k int) (rec domain.Recommendation, err error) {
	start := time.Now()
	if mode == "" {
		mode = domain.ModeBoth
	}
	defer func() {
		metrics.RecordRecommendation(modeLabel(mode), resultLabel(err), start)
	}()

	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, err
	}
	book, err := s.Book(id)
	if err != nil {
		return domain.Recommendation{}, err
	}
	k, err = s.K(k)
	if err != nil {
		return domain.Recommendation{}, err
	}
	items, err := s.Similar(id, mode, k)
	if err != nil {
		return domain.Recommendation{}, err
	}
	logging.Ctx(ctx).Debug().
		Str("book_id", id).
		Str("mode", string(mode)).
		Int("k", k).
		Int("results", len(items)).
		Msg("recommendation ranked")
	return domain.Recommendation{Query: book, Mode: mode, K: k, Items: items}, nil
}

// modeLabel bounds the metrics mode label to the known modes.
func modeLabel(mode domain.Mode) string {
	switch mode {
	case "":
		return string(domain.ModeBoth)
	case domain.ModeSummary, domain.ModeGenres, domain.ModeBoth:
		return string(mode)
	default:
		return "invalid"
	}
}

func (s *Service) rank(idx *index, id string, k int) ([]domain.ScoredBook, error) {
	if idx == nil {
		return nil, fmt.Errorf("no index for this strategy")
	}
	vec, ok := idx.store.Vector(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownBook, id)
	}
	res, err := idx.store.Search(vec, k, id)
	if err != nil {
		return nil, fmt.Errorf("search %s index: %w", idx.field, err)
	}
	return res, nil
}
