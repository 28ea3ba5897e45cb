package service

import (
	"context"
	"errors"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrec/internal/catalog"
	"bookrec/internal/domain"
	"bookrec/internal/metrics"
	"bookrec/internal/testutil"
)

const prideID = "1885.Pride_and_Prejudice"

func newService(t *testing.T, opts Options) *Service {
	t.Helper()
	cat, err := catalog.New(testutil.Books())
	require.NoError(t, err)
	s, err := New(context.Background(), cat, opts)
	require.NoError(t, err)
	return s
}

func ids(items []domain.ScoredBook) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestRecommendPrideAndPrejudiceByGenre(t *testing.T) {
	s := newService(t, Options{})

	rec, err := s.Recommend(context.Background(), domain.Request{Title: "Pride and Prejudice", Mode: domain.ModeGenres, K: 5})
	require.NoError(t, err)

	got := rec.IDs()
	assert.Len(t, got, 5)
	assert.NotContains(t, got, prideID)
	seen := map[string]bool{}
	for _, id := range got {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.Equal(t, prideID, rec.Query.ID)
	assert.Equal(t, 5, rec.K)
}

func TestSimilarGenreRanksIdenticalGenreSetsFirst(t *testing.T) {
	s := newService(t, Options{})

	res, err := s.SimilarGenre(prideID, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"6185.Emma", "14935.Sense_and_Sensibility", "18405.Gone_with_the_Wind"}, ids(res))
	for _, r := range res {
		assert.InDelta(t, 1.0, r.Score, 1e-9)
	}
}

func TestSimilarSummaryFindsSharedCharacters(t *testing.T) {
	s := newService(t, Options{})

	res, err := s.SimilarSummary(prideID, 5)
	require.NoError(t, err)
	require.Len(t, res, 5)
	assert.Equal(t, "5470.Pride_and_Prejudice_and_Zombies", res[0].ID)
	for i := 1; i < len(res); i++ {
		assert.GreaterOrEqual(t, res[i-1].Score, res[i].Score)
	}
}

func TestSimilarNeverReturnsQueryBook(t *testing.T) {
	s := newService(t, Options{})
	for _, b := range testutil.Books() {
		for _, mode := range []domain.Mode{domain.ModeSummary, domain.ModeGenres} {
			res, err := s.Similar(b.ID, mode, 5)
			require.NoError(t, err)
			assert.Len(t, res, 5, "%s %s", b.ID, mode)
			assert.NotContains(t, ids(res), b.ID)
		}
	}
}

func TestSimilarSelfScoresHighest(t *testing.T) {
	s := newService(t, Options{})
	for _, b := range testutil.Books() {
		vec, ok := s.descriptions.store.Vector(b.ID)
		require.True(t, ok)
		res, err := s.descriptions.store.Search(vec, 1)
		require.NoError(t, err)
		assert.Equal(t, b.ID, res[0].ID)
		assert.InDelta(t, 1.0, res[0].Score, 1e-9)
	}
}

func TestSimilarBothIsDedupedUnion(t *testing.T) {
	s := newService(t, Options{})

	summary, err := s.SimilarSummary(prideID, 4)
	require.NoError(t, err)
	both, err := s.Similar(prideID, domain.ModeBoth, 4)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(both), 8)
	assert.Equal(t, ids(summary), ids(both)[:len(summary)])
	seen := map[string]bool{}
	for _, id := range ids(both) {
		assert.False(t, seen[id], "duplicate %s", id)
		assert.NotEqual(t, prideID, id)
		seen[id] = true
	}
}

func TestSharedWindowStrategy(t *testing.T) {
	s := newService(t, Options{GenreStrategy: GenreSharedWindow})
	assert.Nil(t, s.genres)

	wide, err := s.SimilarSummary(prideID, 6)
	require.NoError(t, err)
	window, err := s.SimilarGenre(prideID, 3)
	require.NoError(t, err)

	assert.Equal(t, ids(wide)[3:6], ids(window))
}

func TestSharedWindowNearCatalogBoundary(t *testing.T) {
	s := newService(t, Options{GenreStrategy: GenreSharedWindow})

	res, err := s.SimilarGenre(prideID, 10)
	require.NoError(t, err)
	// 13 other books: ranks 11..13 remain.
	assert.Len(t, res, 3)
}

func TestKValidation(t *testing.T) {
	s := newService(t, Options{MaxK: 10})

	k, err := s.K(0)
	require.NoError(t, err)
	assert.Equal(t, 5, k)

	_, err = s.K(-1)
	assert.ErrorIs(t, err, domain.ErrMalformedQuery)
	_, err = s.K(11)
	assert.ErrorIs(t, err, domain.ErrMalformedQuery)
}

func TestRecommendAmbiguousTitle(t *testing.T) {
	s := newService(t, Options{})

	_, err := s.Recommend(context.Background(), domain.Request{Title: "pride", K: 5})
	require.ErrorIs(t, err, domain.ErrAmbiguousTitle)

	var rerr *domain.ResolutionError
	require.True(t, errors.As(err, &rerr))
	assert.Len(t, rerr.Resolution.Candidates, 2)
}

func TestRecommendUnknownTitle(t *testing.T) {
	s := newService(t, Options{})

	_, err := s.Recommend(context.Background(), domain.Request{Title: "No Such Book Anywhere"})
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestRecommendBlankTitle(t *testing.T) {
	s := newService(t, Options{})

	_, err := s.Recommend(context.Background(), domain.Request{Title: " "})
	assert.ErrorIs(t, err, domain.ErrMalformedQuery)
}

func TestRecommendByUnknownID(t *testing.T) {
	s := newService(t, Options{})

	_, err := s.RecommendByID(context.Background(), "nope", domain.ModeSummary, 5)
	assert.ErrorIs(t, err, domain.ErrUnknownBook)
}

func TestRecommendCanceledContext(t *testing.T) {
	s := newService(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Recommend(ctx, domain.Request{Title: "Dune"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsBadOptions(t *testing.T) {
	cat, err := catalog.New(testutil.Books())
	require.NoError(t, err)

	_, err = New(context.Background(), cat, Options{GenreStrategy: "random"})
	assert.Error(t, err)
	_, err = New(context.Background(), cat, Options{DefaultK: 20, MaxK: 10})
	assert.Error(t, err)
}

func TestNewFailsOnEmptyGenreVocabulary(t *testing.T) {
	books := testutil.Books()[:2]
	for i := range books {
		books[i].Genres = nil
	}
	cat, err := catalog.New(books)
	require.NoError(t, err)

	_, err = New(context.Background(), cat, Options{})
	assert.Error(t, err)

	_, err = New(context.Background(), cat, Options{GenreStrategy: GenreSharedWindow})
	assert.NoError(t, err)
}

func TestUnknownModeIsLabelledInvalid(t *testing.T) {
	s := newService(t, Options{})
	counter := metrics.Recommendations.WithLabelValues("invalid", "malformed_query")
	before := promtest.ToFloat64(counter)

	_, err := s.RecommendByID(context.Background(), prideID, domain.Mode("romcom"), 5)
	require.ErrorIs(t, err, domain.ErrMalformedQuery)
	assert.Equal(t, before+1, promtest.ToFloat64(counter))
}

func TestModeLabel(t *testing.T) {
	assert.Equal(t, "both", modeLabel(""))
	assert.Equal(t, "summary", modeLabel(domain.ModeSummary))
	assert.Equal(t, "genres", modeLabel(domain.ModeGenres))
	assert.Equal(t, "invalid", modeLabel("anything else"))
}
