// Package vectorstore persists embedded documents and answers similarity
// queries over them.
package vectorstore

import (
	"context"

	"github.com/jurisol/jurisol/internal/domain"
)

// Point is one embedded document ready for storage.
type Point struct {
	ID       string
	Vector   []float64
	Content  string
	Metadata map[string]string
}

// Store is a vector database of legal documents.
type Store interface {
	// Init prepares the backing collection for vectors of the given
	// dimension. Safe to call more than once.
	Init(ctx context.Context, dimension int) error
	// Upsert inserts or replaces points by ID.
	Upsert(ctx context.Context, points []Point) error
	// Search returns up to topK documents nearest to vector, most similar
	// first. A non-empty filter restricts results to documents whose
	// metadata matches every key/value pair exactly.
	Search(ctx context.Context, vector []float64, topK int, filter map[string]string) ([]domain.RetrievedDocument, error)
}
