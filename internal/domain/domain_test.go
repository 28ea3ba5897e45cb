package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", ModeBoth},
		{"both", ModeBoth},
		{" Summary ", ModeSummary},
		{"genres", ModeGenres},
		{"genre", ModeGenres},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseMode("vibes")
	assert.ErrorIs(t, err, ErrMalformedQuery)
}

func TestModeNextCycles(t *testing.T) {
	assert.Equal(t, ModeSummary, ModeBoth.Next())
	assert.Equal(t, ModeGenres, ModeSummary.Next())
	assert.Equal(t, ModeBoth, ModeGenres.Next())
}

func TestResolutionErrorMatchesSentinels(t *testing.T) {
	ambiguous := &ResolutionError{Resolution: Resolution{
		Query:      "pride",
		Outcome:    OutcomeAmbiguous,
		Candidates: []Candidate{{ID: "a"}, {ID: "b"}},
	}}
	assert.ErrorIs(t, ambiguous, ErrAmbiguousTitle)
	assert.NotErrorIs(t, ambiguous, ErrBookNotFound)
	assert.Contains(t, ambiguous.Error(), "2 titles")

	missing := fmt.Errorf("recommend: %w", &ResolutionError{Resolution: Resolution{Query: "zzz", Outcome: OutcomeNotFound}})
	assert.ErrorIs(t, missing, ErrBookNotFound)

	var rerr *ResolutionError
	require.ErrorAs(t, missing, &rerr)
	assert.Equal(t, "zzz", rerr.Resolution.Query)
	assert.False(t, rerr.Resolution.Found())
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&ResolutionError{Resolution: Resolution{Outcome: OutcomeAmbiguous}}, "ambiguous"},
		{&ResolutionError{Resolution: Resolution{Outcome: OutcomeNotFound}}, "not_found"},
		{fmt.Errorf("%w: k", ErrMalformedQuery), "malformed_query"},
		{ErrUnknownBook, "unknown_book"},
		{fmt.Errorf("%w: timeout", ErrCoverFetch), "network"},
		{ErrCoverDecode, "decode"},
		{ErrEmptyCatalog, "catalog"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err))
	}
}

func TestRecommendationIDs(t *testing.T) {
	rec := Recommendation{Items: []ScoredBook{{ID: "x", Score: 0.9}, {ID: "y", Score: 0.1}}}
	assert.Equal(t, []string{"x", "y"}, rec.IDs())
	assert.True(t, SparseVector{}.IsZero())
}
