package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"wpsearch/internal/port"
)

// Reindexer orchestrates a full crawl-and-index pass: REST first, sitemap
// fallback, then the index builder. Reindexing is additive; it never
// removes prior entries.
type Reindexer struct {
	source  port.DocumentSource
	builder *IndexBuilder
	logger  *slog.Logger

	// Serializes writers. Readers are never blocked, so a query racing a
	// reindex may observe a partially-written addition; acceptable for an
	// additive index.
	mu sync.Mutex
}

// NewReindexer creates a reindexer.
func NewReindexer(source port.DocumentSource, builder *IndexBuilder, logger *slog.Logger) *Reindexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reindexer{
		source:  source,
		builder: builder,
		logger:  logger.With("component", "reindexer"),
	}
}

// Reindex crawls the site and indexes the result, returning the number of
// documents indexed. Returns ErrNoContent when both paths yield zero
// documents.
func (r *Reindexer) Reindex(ctx context.Context, site string, includePages, sitemapFallback bool, progress Progress) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.source.FetchContent(ctx, site, includePages)
	if err != nil {
		return 0, fmt.Errorf("REST ingestion failed: %w", err)
	}

	if len(docs) == 0 && sitemapFallback {
		r.logger.Info("REST yielded no documents, trying sitemap", "site", site)
		docs, err = r.source.FetchSitemap(ctx, site)
		if err != nil {
			return 0, fmt.Errorf("sitemap ingestion failed: %w", err)
		}
	}

	if len(docs) == 0 {
		return 0, ErrNoContent
	}

	count, err := r.builder.Build(ctx, docs, progress)
	if err != nil {
		return count, err
	}

	r.logger.Info("reindex complete", "site", site, "count", count)
	return count, nil
}
