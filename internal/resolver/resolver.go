// Package resolver maps free-text titles to catalog identifiers.
package resolver

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"bookrec/internal/domain"
)

// MaxSuggestions caps the near-miss titles attached to a not_found resolution.
const MaxSuggestions = 5

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

type entry struct {
	book   domain.Book
	folded string
	tokens map[string]struct{}
}

// Resolver holds case-folded titles in catalog order. It is read-only after New.
type Resolver struct {
	entries []entry
	exact   map[string]int
}

// New indexes titles for resolution. books must be in catalog order.
func New(books []domain.Book) *Resolver {
	r := &Resolver{
		entries: make([]entry, len(books)),
		exact:   make(map[string]int, len(books)),
	}
	for i, b := range books {
		f := fold(b.Title)
		r.entries[i] = entry{book: b, folded: f, tokens: tokenSet(f)}
		if _, ok := r.exact[f]; !ok {
			r.exact[f] = i
		}
	}
	return r
}

// Resolve returns the resolution for query. Only a blank query is an error;
// not_found and ambiguous are ordinary outcomes.
func (r *Resolver) Resolve(query string) (domain.Resolution, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return domain.Resolution{}, fmt.Errorf("%w: title is blank", domain.ErrMalformedQuery)
	}
	res := domain.Resolution{Query: q}
	f := fold(q)

	if i, ok := r.exact[f]; ok {
		b := r.entries[i].book
		res.Outcome, res.ID, res.Title = domain.OutcomeFound, b.ID, b.Title
		return res, nil
	}

	var hits []int
	for i, e := range r.entries {
		if strings.Contains(e.folded, f) {
			hits = append(hits, i)
		}
	}
	switch len(hits) {
	case 0:
		res.Outcome = domain.OutcomeNotFound
		res.Suggestions = r.suggest(f)
	case 1:
		b := r.entries[hits[0]].book
		res.Outcome, res.ID, res.Title = domain.OutcomeFound, b.ID, b.Title
	default:
		res.Outcome = domain.OutcomeAmbiguous
		res.Candidates = make([]domain.Candidate, len(hits))
		for j, i := range hits {
			res.Candidates[j] = candidate(r.entries[i].book)
		}
	}
	return res, nil
}

// suggest ranks titles by word overlap with the query (Ochiai coefficient).
func (r *Resolver) suggest(folded string) []domain.Candidate {
	qset := tokenSet(folded)
	if len(qset) == 0 {
		return nil
	}
	type pair struct {
		idx   int
		score float64
	}
	var scores []pair
	for i, e := range r.entries {
		if s := ochiai(qset, e.tokens); s > 0 {
			scores = append(scores, pair{i, s})
		}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if len(scores) > MaxSuggestions {
		scores = scores[:MaxSuggestions]
	}
	out := make([]domain.Candidate, len(scores))
	for i, p := range scores {
		out[i] = candidate(r.entries[p.idx].book)
	}
	return out
}

func candidate(b domain.Book) domain.Candidate {
	return domain.Candidate{ID: b.ID, Title: b.Title, Author: b.Author}
}

// A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(s, -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// |A∩B| / sqrt(|A||B|)
func ochiai(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(a))*float64(len(b)))
}
