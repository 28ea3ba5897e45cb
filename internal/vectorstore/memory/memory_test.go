package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrec/internal/domain"
)

func vec(pairs ...float64) domain.SparseVector {
	v := domain.SparseVector{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Indices = append(v.Indices, int(pairs[i]))
		v.Values = append(v.Values, pairs[i+1])
	}
	return v
}

func newStore(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage()
	require.NoError(t, s.Init(4))
	require.NoError(t, s.Upsert(
		[]string{"a", "b", "c", "d"},
		[]domain.SparseVector{
			vec(0, 1),
			vec(0, 0.6, 1, 0.8),
			vec(2, 1),
			vec(0, 0.6, 1, 0.8),
		},
	))
	return s
}

func TestSearchRanksByCosineWithStableTies(t *testing.T) {
	s := newStore(t)

	res, err := s.Search(vec(0, 0.6, 1, 0.8), 0)
	require.NoError(t, err)
	require.Len(t, res, 4)
	assert.Equal(t, "b", res[0].ID, "tie between b and d keeps insertion order")
	assert.Equal(t, "d", res[1].ID)
	assert.Equal(t, "a", res[2].ID)
	assert.InDelta(t, 0.6, res[2].Score, 1e-12)
	assert.Equal(t, "c", res[3].ID)
	assert.Zero(t, res[3].Score)
}

func TestSearchExcludesIDsAndBoundsTopK(t *testing.T) {
	s := newStore(t)

	res, err := s.Search(vec(0, 1), 2, "a")
	require.NoError(t, err)
	require.Len(t, res, 2)
	for _, r := range res {
		assert.NotEqual(t, "a", r.ID)
	}

	res, err = s.Search(vec(0, 1), 10, "a", "missing")
	require.NoError(t, err)
	assert.Len(t, res, 3)
}

func TestSearchRejectsOutOfRangeQuery(t *testing.T) {
	s := newStore(t)
	_, err := s.Search(vec(9, 1), 1)
	assert.Error(t, err)
}

func TestUpsertValidatesInput(t *testing.T) {
	s := NewStorage()
	assert.Error(t, s.Upsert([]string{"a"}, []domain.SparseVector{vec(0, 1)}), "not initialized")
	assert.Error(t, s.Init(0))

	require.NoError(t, s.Init(2))
	assert.Error(t, s.Upsert([]string{"a", "b"}, []domain.SparseVector{vec(0, 1)}))
	assert.Error(t, s.Upsert([]string{"a"}, []domain.SparseVector{vec(5, 1)}))
	assert.Error(t, s.Upsert([]string{"a"}, []domain.SparseVector{{Indices: []int{0}}}))
}

func TestUpsertReplacesExistingRow(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Upsert([]string{"c"}, []domain.SparseVector{vec(3, 1)}))
	assert.Equal(t, 4, s.Len())

	v, ok := s.Vector("c")
	require.True(t, ok)
	assert.Equal(t, []int{3}, v.Indices)
}

func TestClear(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Clear())
	assert.Zero(t, s.Len())
	_, ok := s.Vector("a")
	assert.False(t, ok)
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 0.48, Dot(vec(0, 0.6, 1, 0.8), vec(1, 0.6, 3, 0.8)), 1e-12)
	assert.Zero(t, Dot(vec(), vec(0, 1)))
}
