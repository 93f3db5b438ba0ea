package port

import "context"

// VectorStore stores and searches dense embedding vectors.
type VectorStore interface {
	// Upsert adds or updates vectors in the store.
	Upsert(ctx context.Context, items []VectorItem) error

	// Search finds the k nearest vectors to the query.
	Search(ctx context.Context, query []float32, k int) ([]VectorResult, error)

	// Count returns the number of vectors in the store.
	Count(ctx context.Context) (int, error)
}

// VectorItem represents a vector to be stored.
type VectorItem struct {
	ID     string    // entry ID
	Vector []float32 // embedding vector
}

// VectorResult represents a dense search hit.
type VectorResult struct {
	ID    string  // entry ID
	Score float64 // similarity score, higher is better
}
