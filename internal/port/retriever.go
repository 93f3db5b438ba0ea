package port

import (
	"context"

	"wpsearch/internal/domain"
)

// Retriever searches the indexed corpus and returns top-k scored entries.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]domain.ScoredEntry, error)
}
