package memory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"bookrec/internal/domain"
	"bookrec/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// Storage is an in-memory vector store using brute-force cosine similarity over sparse rows.
// Rows are ranked by score, ties broken by insertion order.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   []domain.SparseVector
	ids       []string
	rows      map[string]int
}

func NewStorage() *Storage { return &Storage{rows: make(map[string]int)} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.ids = nil
	s.rows = make(map[string]int)
	return nil
}

// Upsert appends new rows and replaces rows whose id is already stored.
func (s *Storage) Upsert(ids []string, vectors []domain.SparseVector) error {
	if len(ids) != len(vectors) {
		return errors.New("ids and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return errors.New("store not initialized")
	}
	for _, v := range vectors {
		if len(v.Indices) != len(v.Values) {
			return errors.New("malformed sparse vector")
		}
		if n := len(v.Indices); n > 0 && v.Indices[n-1] >= s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for i, id := range ids {
		if row, ok := s.rows[id]; ok {
			s.vectors[row] = vectors[i]
			continue
		}
		s.rows[id] = len(s.ids)
		s.ids = append(s.ids, id)
		s.vectors = append(s.vectors, vectors[i])
	}
	return nil
}

func (s *Storage) Vector(id string) (domain.SparseVector, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return domain.SparseVector{}, false
	}
	return s.vectors[row], true
}

// Search returns the topK rows most similar to vector, skipping excluded ids.
// A non-positive topK returns the full ranking.
func (s *Storage) Search(vector domain.SparseVector, topK int, exclude ...string) ([]domain.ScoredBook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := len(vector.Indices); n > 0 && vector.Indices[n-1] >= s.dimension {
		return nil, fmt.Errorf("query vector dimension mismatch: index %d >= %d", vector.Indices[n-1], s.dimension)
	}
	skip := make(map[int]struct{}, len(exclude))
	for _, id := range exclude {
		if row, ok := s.rows[id]; ok {
			skip[row] = struct{}{}
		}
	}
	// vectors are L2-normalized, so the dot product is the cosine similarity
	scores := make([]float64, len(s.vectors))
	idxs := make([]int, 0, len(s.vectors))
	for i := range s.vectors {
		if _, ok := skip[i]; ok {
			continue
		}
		scores[i] = Dot(s.vectors[i], vector)
		idxs = append(idxs, i)
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if topK <= 0 || topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.ScoredBook, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.ScoredBook{ID: s.ids[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.ids = nil
	s.rows = make(map[string]int)
	return nil
}

// Dot merges two sparse vectors with sorted indices.
func Dot(a, b domain.SparseVector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}
