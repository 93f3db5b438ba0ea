package retriever

import (
	"context"
	"math"
	"sort"

	"wpsearch/internal/adapter/analyzer"
	"wpsearch/internal/domain"
	"wpsearch/internal/port"
)

// SparseRetriever ranks entries by BM25 over the term postings index. This
// is the lexical half of the hybrid engine.
type SparseRetriever struct {
	store     port.EntryStore
	tokenizer *analyzer.Tokenizer
	k1        float64
	b         float64
}

// NewSparseRetriever creates a BM25 retriever.
func NewSparseRetriever(store port.EntryStore, tokenizer *analyzer.Tokenizer, k1, b float64) *SparseRetriever {
	return &SparseRetriever{
		store:     store,
		tokenizer: tokenizer,
		k1:        k1,
		b:         b,
	}
}

// Search returns the top-k entries by BM25 score.
func (r *SparseRetriever) Search(_ context.Context, query string, k int) ([]domain.ScoredEntry, error) {
	queryTokens := r.tokenizer.Tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	stats, err := r.store.GetStats()
	if err != nil {
		return nil, err
	}
	if stats.TotalEntries == 0 {
		return nil, nil
	}

	entryScores := make(map[string]float64)
	entryCache := make(map[string]domain.Entry)

	for _, term := range queryTokens {
		postings, err := r.store.GetPostings(term)
		if err != nil {
			continue
		}

		n := float64(len(postings))
		N := float64(stats.TotalEntries)
		idf := math.Log((N-n+0.5)/(n+0.5) + 1)

		for _, posting := range postings {
			entry, ok := entryCache[posting.EntryID]
			if !ok {
				entry, err = r.store.GetEntry(posting.EntryID)
				if err != nil {
					continue
				}
				entryCache[posting.EntryID] = entry
			}

			dl := float64(len(entry.Tokens))
			avgDl := stats.AvgEntryLen
			tf := float64(posting.TF)

			score := idf * (tf * (r.k1 + 1)) / (tf + r.k1*(1-r.b+r.b*dl/avgDl))
			entryScores[posting.EntryID] += score
		}
	}

	results := make([]domain.ScoredEntry, 0, len(entryScores))
	for id, score := range entryScores {
		results = append(results, domain.ScoredEntry{
			Entry: entryCache[id],
			Score: score,
		})
	}

	sortByScore(results)

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// sortByScore orders descending by score, breaking ties by insertion
// sequence so equal-scored entries keep a stable store order.
func sortByScore(results []domain.ScoredEntry) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry.Seq < results[j].Entry.Seq
	})
}
