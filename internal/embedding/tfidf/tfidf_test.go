package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v * v
	}
	return math.Sqrt(s)
}

func TestEmbedderExcludesStopWords(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{
		"The dragon and the knight",
		"A knight rides into the castle",
	}))

	assert.Equal(t, 4, e.Dimension(), "vocabulary should be dragon, knight, rides, castle")
	_, hasThe := e.vocabulary["the"]
	assert.False(t, hasThe)
	_, hasInto := e.vocabulary["into"]
	assert.False(t, hasInto)
}

func TestEmbedderSkipsSingleCharacterTokens(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"x y z wizard"}))
	assert.Equal(t, 1, e.Dimension())
}

func TestEmbedderSmoothedIDF(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"wizard school", "wizard war", "space war"}))

	// wizard appears in 2 of 3 docs: ln(4/3)+1
	assert.InDelta(t, math.Log(4.0/3.0)+1, e.idf[e.vocabulary["wizard"]], 1e-12)
	// school appears in 1 of 3 docs: ln(4/2)+1
	assert.InDelta(t, math.Log(2)+1, e.idf[e.vocabulary["school"]], 1e-12)
}

func TestEmbedProducesSortedNormalizedSparseRows(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"zebra apple mango", "apple banana"}))

	v, err := e.Embed("zebra apple apple mango")
	require.NoError(t, err)
	require.Len(t, v.Indices, 3)
	require.Len(t, v.Values, 3)
	for i := 1; i < len(v.Indices); i++ {
		assert.Less(t, v.Indices[i-1], v.Indices[i])
	}
	assert.InDelta(t, 1.0, norm(v.Values), 1e-12)
}

func TestEmbedUnknownTermsYieldZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"apple banana"}))

	v, err := e.Embed("cherry durian")
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestEmbedBeforePrepareFails(t *testing.T) {
	_, err := NewEmbedder().Embed("anything")
	assert.Error(t, err)
}

func TestPrepareRejectsEmptyInput(t *testing.T) {
	assert.Error(t, NewEmbedder().Prepare(nil))
	assert.ErrorIs(t, NewEmbedder().Prepare([]string{"the and of"}), ErrEmptyVocabulary)
}

func TestGenreAnalyzerKeepsWholeGenreNames(t *testing.T) {
	assert.Equal(t,
		[]string{"historical fiction", "romance", "classics"},
		GenreAnalyzer("Historical  Fiction, Romance,,Classics "))

	e := NewEmbedder(WithAnalyzer(GenreAnalyzer))
	require.NoError(t, e.Prepare([]string{"Fiction,Romance", "Science Fiction,Fiction"}))
	assert.Equal(t, 3, e.Dimension())
	_, ok := e.vocabulary["science fiction"]
	assert.True(t, ok)
}

func TestWithStopWordsOverridesList(t *testing.T) {
	e := NewEmbedder(WithStopWords(map[string]struct{}{"wizard": {}}))
	assert.Equal(t, []string{"the", "school"}, e.Terms("The wizard school"))
}
