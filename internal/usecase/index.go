package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"wpsearch/internal/adapter/analyzer"
	"wpsearch/internal/domain"
	"wpsearch/internal/port"
)

// IndexBuilder writes normalized documents into the hybrid store: one
// entry per document, carrying a dense embedding, the sparse term
// postings, the text, and the metadata. Indexing is additive.
type IndexBuilder struct {
	entries   port.EntryStore
	vectors   port.VectorStore
	embedder  port.Embedder
	tokenizer *analyzer.Tokenizer
	batchSize int
	chunkSize int
	logger    *slog.Logger
}

// NewIndexBuilder creates an index builder. batchSize controls how many
// documents are embedded and committed per transaction (default 32);
// chunkSize caps the number of words fed to the embedder per entry.
func NewIndexBuilder(
	entries port.EntryStore,
	vectors port.VectorStore,
	embedder port.Embedder,
	tokenizer *analyzer.Tokenizer,
	batchSize int,
	chunkSize int,
	logger *slog.Logger,
) *IndexBuilder {
	if batchSize <= 0 {
		batchSize = 32
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexBuilder{
		entries:   entries,
		vectors:   vectors,
		embedder:  embedder,
		tokenizer: tokenizer,
		batchSize: batchSize,
		chunkSize: chunkSize,
		logger:    logger.With("component", "index-builder"),
	}
}

// Progress is called after each committed batch with the running count.
type Progress func(indexed, total int)

// Build indexes the documents, dropping any with empty text, and returns
// the number of entries written. Empty input is a legal no-op. Each batch
// of entries and postings commits in one store transaction; an embedding
// failure aborts the build with earlier batches already committed.
func (b *IndexBuilder) Build(ctx context.Context, docs []domain.Document, progress Progress) (int, error) {
	kept := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) != "" {
			kept = append(kept, doc)
		}
	}
	if len(kept) == 0 {
		return 0, nil
	}

	stats, err := b.entries.GetStats()
	if err != nil {
		return 0, fmt.Errorf("failed to read corpus stats: %w", err)
	}
	totalTokens := stats.AvgEntryLen * float64(stats.TotalEntries)

	indexed := 0
	for start := 0; start < len(kept); start += b.batchSize {
		end := start + b.batchSize
		if end > len(kept) {
			end = len(kept)
		}
		batch := kept[start:end]

		entries := make([]domain.Entry, len(batch))
		texts := make([]string, len(batch))
		postings := make(map[string]map[string]int)

		for i, doc := range batch {
			id := uuid.NewString()
			tokens := b.tokenizer.Tokenize(doc.Text)
			entries[i] = domain.Entry{
				ID:     id,
				Text:   doc.Text,
				Tokens: tokens,
				Meta:   doc.Meta,
			}
			texts[i] = truncateWords(doc.Text, b.chunkSize)
			totalTokens += float64(len(tokens))

			for _, token := range tokens {
				if postings[token] == nil {
					postings[token] = make(map[string]int)
				}
				postings[token][id]++
			}
		}

		vecs, err := b.embedder.Embed(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(vecs) != len(batch) {
			return indexed, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(batch))
		}

		stored, err := b.entries.PutEntries(entries, postings)
		if err != nil {
			return indexed, fmt.Errorf("failed to store entries: %w", err)
		}

		items := make([]port.VectorItem, len(stored))
		for i, entry := range stored {
			items[i] = port.VectorItem{ID: entry.ID, Vector: vecs[i]}
		}
		if err := b.vectors.Upsert(ctx, items); err != nil {
			return indexed, fmt.Errorf("failed to store vectors: %w", err)
		}

		indexed += len(batch)
		if progress != nil {
			progress(indexed, len(kept))
		}
	}

	newTotal := stats.TotalEntries + indexed
	if err := b.entries.UpdateStats(domain.Stats{
		TotalEntries: newTotal,
		AvgEntryLen:  totalTokens / float64(newTotal),
	}); err != nil {
		return indexed, fmt.Errorf("failed to update corpus stats: %w", err)
	}

	b.logger.Info("index build complete", "indexed", indexed, "dropped", len(docs)-len(kept))
	return indexed, nil
}

// truncateWords caps text at n whitespace-separated words; n <= 0 keeps
// the full text.
func truncateWords(text string, n int) string {
	if n <= 0 {
		return text
	}
	fields := strings.Fields(text)
	if len(fields) <= n {
		return text
	}
	return strings.Join(fields[:n], " ")
}
