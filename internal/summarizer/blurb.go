// Package summarizer condenses book descriptions into short blurbs.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"bookrec/internal/domain"
	"bookrec/internal/embedding/tfidf"
)

var (
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+["'”’)]*`)
	wordRe     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// Blurb picks the most representative sentences of a description by word frequency,
// keeping them in their original order.
type Blurb struct {
	stopwords map[string]struct{}
}

var _ domain.Summarizer = (*Blurb)(nil)

func NewBlurb() *Blurb {
	return &Blurb{stopwords: tfidf.EnglishStopWords()}
}

// Summarize returns at most maxSentences sentences of text. A text that is already short
// enough is returned trimmed; maxSentences <= 0 returns an empty blurb.
func (s *Blurb) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		return "", nil
	}
	sentences := splitSentences(text)
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, " "), nil
	}

	tokens := make([][]string, len(sentences))
	freq := map[string]float64{}
	for i, sent := range sentences {
		tokens[i] = wordRe.FindAllString(strings.ToLower(sent), -1)
		for _, tok := range tokens[i] {
			if _, stop := s.stopwords[tok]; !stop {
				freq[tok]++
			}
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}

	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, toks := range tokens {
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		if maxF > 0 {
			score /= maxF
		}
		if len(toks) > 0 {
			score /= math.Sqrt(float64(len(toks)))
		}
		scores[i] = pair{i, score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " "), nil
}

func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	var out []string
	end := 0
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			out = append(out, s)
		}
		end = loc[1]
	}
	if rest := strings.TrimSpace(text[end:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
