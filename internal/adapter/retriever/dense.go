package retriever

import (
	"context"
	"fmt"

	"wpsearch/internal/domain"
	"wpsearch/internal/port"
)

// DenseRetriever embeds the query and runs nearest-neighbor search against
// the vector store. This is the semantic half of the hybrid engine.
type DenseRetriever struct {
	vectorStore port.VectorStore
	embedder    port.Embedder
	entryStore  port.EntryStore
}

// NewDenseRetriever creates a dense similarity retriever.
func NewDenseRetriever(vectorStore port.VectorStore, embedder port.Embedder, entryStore port.EntryStore) *DenseRetriever {
	return &DenseRetriever{
		vectorStore: vectorStore,
		embedder:    embedder,
		entryStore:  entryStore,
	}
}

// Search returns the top-k entries by vector similarity.
func (r *DenseRetriever) Search(ctx context.Context, query string, k int) ([]domain.ScoredEntry, error) {
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := r.vectorStore.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]domain.ScoredEntry, 0, len(hits))
	for _, hit := range hits {
		entry, err := r.entryStore.GetEntry(hit.ID)
		if err != nil {
			continue
		}
		results = append(results, domain.ScoredEntry{
			Entry: entry,
			Score: hit.Score,
		})
	}

	return results, nil
}
