package usecase

import (
	"context"

	"wpsearch/internal/domain"
)

// QueryEngine is the retrieval pipeline behind the query use case.
// Satisfied by the hybrid retriever.
type QueryEngine interface {
	Query(ctx context.Context, query string, p domain.QueryParams) ([]domain.ScoredEntry, error)
}

// QueryUseCase runs a search and shapes the hits for presentation.
type QueryUseCase struct {
	engine QueryEngine
}

// NewQueryUseCase creates a query use case.
func NewQueryUseCase(engine QueryEngine) *QueryUseCase {
	return &QueryUseCase{engine: engine}
}

// Query executes the hybrid pipeline and assembles results: display text,
// fused score, and the metadata map. Entries without provenance fall back
// to an empty map rather than nil.
func (u *QueryUseCase) Query(ctx context.Context, query string, p domain.QueryParams) ([]domain.QueryResult, error) {
	hits, err := u.engine.Query(ctx, query, p)
	if err != nil {
		return nil, err
	}

	results := make([]domain.QueryResult, 0, len(hits))
	for _, hit := range hits {
		score := hit.Score
		meta := map[string]string{}
		if hit.Entry.Meta != (domain.Metadata{}) {
			meta = hit.Entry.Meta.Map()
		}
		results = append(results, domain.QueryResult{
			Text:     hit.Entry.Text,
			Score:    &score,
			Metadata: meta,
		})
	}

	return results, nil
}
