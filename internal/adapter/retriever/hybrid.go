package retriever

import (
	"context"
	"fmt"

	"wpsearch/internal/domain"
)

// HybridRetriever fuses dense similarity search and sparse BM25 search into
// one ranked list via alpha-weighted score combination. Alpha 1 reduces to
// pure dense ranking, alpha 0 to pure sparse ranking; values in between
// combine min-max normalized scores from both lists, with an entry missing
// from one list contributing 0 for that term.
type HybridRetriever struct {
	dense  *DenseRetriever
	sparse *SparseRetriever
}

// NewHybridRetriever creates the hybrid query engine.
func NewHybridRetriever(dense *DenseRetriever, sparse *SparseRetriever) *HybridRetriever {
	return &HybridRetriever{dense: dense, sparse: sparse}
}

// Query runs the hybrid retrieval pipeline. K and SparseK must be at least
// 1; Alpha is clamped into [0,1]. The final result count is capped at K.
// An empty or unbuilt store yields an empty list, not an error.
func (r *HybridRetriever) Query(ctx context.Context, query string, p domain.QueryParams) ([]domain.ScoredEntry, error) {
	if p.K < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", p.K)
	}
	if p.SparseK < 1 {
		return nil, fmt.Errorf("sparse_k must be at least 1, got %d", p.SparseK)
	}
	alpha := p.Alpha
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}

	// The extremes delegate to a single path so the ranking is identical
	// to the underlying retriever's.
	if alpha == 1 {
		results, err := r.dense.Search(ctx, query, p.K)
		if err != nil {
			return nil, err
		}
		return truncate(filterBySite(results, p.Site), p.K), nil
	}
	if alpha == 0 {
		results, err := r.sparse.Search(ctx, query, p.SparseK)
		if err != nil {
			return nil, err
		}
		return truncate(filterBySite(results, p.Site), p.K), nil
	}

	denseResults, err := r.dense.Search(ctx, query, p.K)
	if err != nil {
		return nil, err
	}
	sparseResults, err := r.sparse.Search(ctx, query, p.SparseK)
	if err != nil {
		return nil, err
	}

	fused := fuse(denseResults, sparseResults, alpha)
	return truncate(filterBySite(fused, p.Site), p.K), nil
}

// fuse combines the two ranked lists: each list's scores are min-max
// normalized to [0,1], then fused = alpha*dense + (1-alpha)*sparse.
func fuse(denseResults, sparseResults []domain.ScoredEntry, alpha float64) []domain.ScoredEntry {
	denseNorm := normalize(denseResults)
	sparseNorm := normalize(sparseResults)

	fusedScores := make(map[string]float64)
	entries := make(map[string]domain.Entry)

	for i, res := range denseResults {
		fusedScores[res.Entry.ID] += alpha * denseNorm[i]
		entries[res.Entry.ID] = res.Entry
	}
	for i, res := range sparseResults {
		fusedScores[res.Entry.ID] += (1 - alpha) * sparseNorm[i]
		if _, ok := entries[res.Entry.ID]; !ok {
			entries[res.Entry.ID] = res.Entry
		}
	}

	fused := make([]domain.ScoredEntry, 0, len(fusedScores))
	for id, score := range fusedScores {
		fused = append(fused, domain.ScoredEntry{
			Entry: entries[id],
			Score: score,
		})
	}

	sortByScore(fused)
	return fused
}

// normalize min-max scales a list's scores to [0,1]. A constant-score list
// maps to all 1s so presence in the list still counts.
func normalize(results []domain.ScoredEntry) []float64 {
	norm := make([]float64, len(results))
	if len(results) == 0 {
		return norm
	}

	min, max := results[0].Score, results[0].Score
	for _, r := range results[1:] {
		if r.Score < min {
			min = r.Score
		}
		if r.Score > max {
			max = r.Score
		}
	}

	for i, r := range results {
		if max == min {
			norm[i] = 1
		} else {
			norm[i] = (r.Score - min) / (max - min)
		}
	}
	return norm
}

// filterBySite keeps only entries whose metadata site matches. An empty
// site keeps everything.
func filterBySite(results []domain.ScoredEntry, site string) []domain.ScoredEntry {
	if site == "" {
		return results
	}
	filtered := make([]domain.ScoredEntry, 0, len(results))
	for _, r := range results {
		if r.Entry.Meta.Site == site {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func truncate(results []domain.ScoredEntry, k int) []domain.ScoredEntry {
	if len(results) > k {
		return results[:k]
	}
	return results
}
