package vectorstore

import "bookrec/internal/domain"

// Storage holds one vector per book, in insertion order, and ranks them by cosine similarity.
type Storage interface {
	Init(dimension int) error
	Upsert(ids []string, vectors []domain.SparseVector) error
	Vector(id string) (domain.SparseVector, bool)
	Search(vector domain.SparseVector, topK int, exclude ...string) ([]domain.ScoredBook, error)
	Len() int
	Clear() error
}
