// Package embedding converts free text into numeric vectors for similarity
// search. The remote embedder talks to any OpenAI-compatible embeddings
// endpoint; the local embedder is an offline stand-in for development and
// tests.
package embedding

import "context"

// Embedder produces a fixed-length vector for a piece of text.
type Embedder interface {
	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float64, error)
	// Dimension reports the vector length, 0 until known.
	Dimension() int
}
