package usecase

import "errors"

// ErrNoContent is returned by Reindex when both the REST API and the
// sitemap fallback yield zero documents.
var ErrNoContent = errors.New("no content found from WP REST or sitemap")
