package port

import (
	"context"

	"wpsearch/internal/domain"
)

// DocumentSource fetches normalized documents from a content site.
type DocumentSource interface {
	// FetchContent returns documents from the site's REST API, paginating
	// until exhaustion. includePages controls whether static pages are
	// fetched in addition to posts.
	FetchContent(ctx context.Context, site string, includePages bool) ([]domain.Document, error)

	// FetchSitemap returns documents built by crawling the site's sitemap.
	FetchSitemap(ctx context.Context, site string) ([]domain.Document, error)
}
