package domain

import (
	"fmt"
	"strings"
)

// Mode selects which similarity ranking a recommendation uses.
type Mode string

const (
	ModeSummary Mode = "summary"
	ModeGenres  Mode = "genres"
	// ModeBoth is the union of summary and genre results. It is also what an unset mode means.
	ModeBoth Mode = "both"
)

// ParseMode accepts "summary", "genres", "both" or an empty string (both).
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeBoth:
		return ModeBoth, nil
	case ModeSummary:
		return ModeSummary, nil
	case ModeGenres, "genre":
		return ModeGenres, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q (want summary, genres or both)", ErrMalformedQuery, s)
	}
}

// Next cycles both -> summary -> genres -> both.
func (m Mode) Next() Mode {
	switch m {
	case ModeSummary:
		return ModeGenres
	case ModeGenres:
		return ModeBoth
	default:
		return ModeSummary
	}
}

// Request is a title-based recommendation query. K of 0 means the configured default.
type Request struct {
	Title string `json:"title"`
	Mode  Mode   `json:"mode"`
	K     int    `json:"k"`
}

// Recommendation is an ordered result for one query book.
type Recommendation struct {
	Query Book         `json:"query"`
	Mode  Mode         `json:"mode"`
	K     int          `json:"k"`
	Items []ScoredBook `json:"items"`
}

// IDs returns the recommended identifiers in order.
func (r Recommendation) IDs() []string {
	ids := make([]string, len(r.Items))
	for i, it := range r.Items {
		ids[i] = it.ID
	}
	return ids
}

// Outcome is the tag of a title resolution.
type Outcome string

const (
	OutcomeFound     Outcome = "found"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeAmbiguous Outcome = "ambiguous"
)

// Candidate is a catalog title offered for disambiguation.
type Candidate struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Resolution is the result of mapping a free-text title to a catalog identifier.
// ID is set only when Outcome is OutcomeFound.
type Resolution struct {
	Query       string      `json:"query"`
	Outcome     Outcome     `json:"outcome"`
	ID          string      `json:"id,omitempty"`
	Title       string      `json:"title,omitempty"`
	Candidates  []Candidate `json:"candidates,omitempty"`
	Suggestions []Candidate `json:"suggestions,omitempty"`
}

// Found reports whether the resolution produced an identifier.
func (r Resolution) Found() bool { return r.Outcome == OutcomeFound }
