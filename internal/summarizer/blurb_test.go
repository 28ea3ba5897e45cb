package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeKeepsShortTextWhole(t *testing.T) {
	got, err := NewBlurb().Summarize("  One sentence only.\n Two at most! ", 2)
	require.NoError(t, err)
	assert.Equal(t, "One sentence only. Two at most!", got)
}

func TestSummarizePicksFrequentSentencesInOrder(t *testing.T) {
	text := "Dragons rule the northern sky. " +
		"The weather was mild. " +
		"A young rider bonds with dragons and learns dragon lore. " +
		"Lunch was served at noon."

	got, err := NewBlurb().Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "Dragons rule the northern sky. A young rider bonds with dragons and learns dragon lore.", got)
}

func TestSummarizeDisabled(t *testing.T) {
	got, err := NewBlurb().Summarize("Anything at all.", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSplitSentencesKeepsTrailingFragment(t *testing.T) {
	assert.Equal(t,
		[]string{`He said "stop!"`, "Then silence"},
		splitSentences(`He said "stop!" Then silence`),
	)
	assert.Nil(t, splitSentences("   "))
}
