package wp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wpsearch/internal/domain"
)

const (
	routePosts = "/wp-json/wp/v2/posts"
	routePages = "/wp-json/wp/v2/pages"

	// WordPress returns 400 with this code when the page number runs past
	// the end of the collection; it is a natural end of pagination.
	invalidPageMarker = "rest_post_invalid_page_number"
)

// Client fetches site content over the WordPress REST API, with a sitemap
// fallback for sites where the API is blocked or empty.
type Client struct {
	httpClient   *http.Client
	perPage      int
	maxPages     int
	sitemapLimit int
	fetchDelay   time.Duration
	excludeURLs  []string
	logger       *slog.Logger
}

// ClientConfig holds crawl parameters.
type ClientConfig struct {
	PerPage      int
	MaxPages     int
	SitemapLimit int
	FetchDelay   time.Duration
	Timeout      time.Duration
	ExcludeURLs  []string // glob patterns matched against sitemap URL paths
}

// NewClient creates a WordPress content client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 50
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 200
	}
	if cfg.SitemapLimit <= 0 {
		cfg.SitemapLimit = 200
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		perPage:      cfg.PerPage,
		maxPages:     cfg.MaxPages,
		sitemapLimit: cfg.SitemapLimit,
		fetchDelay:   cfg.FetchDelay,
		excludeURLs:  cfg.ExcludeURLs,
		logger:       logger.With("component", "wp-client"),
	}
}

// wpItem is the subset of a WordPress REST content item we consume.
type wpItem struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Link     string `json:"link"`
	Date     string `json:"date"`
	Modified string `json:"modified"`
	Title    struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Content struct {
		Rendered string `json:"rendered"`
	} `json:"content"`
}

// FetchContent returns documents for all posts (and optionally pages) on
// the site, paginating until exhaustion. Items with empty normalized text
// are dropped.
func (c *Client) FetchContent(ctx context.Context, site string, includePages bool) ([]domain.Document, error) {
	items, err := c.fetchAll(ctx, site, routePosts)
	if err != nil {
		return nil, err
	}

	if includePages {
		pages, err := c.fetchAll(ctx, site, routePages)
		if err != nil {
			return nil, err
		}
		items = append(items, pages...)
	}

	docs := make([]domain.Document, 0, len(items))
	for _, item := range items {
		title := StripHTML(item.Title.Rendered)
		content := StripHTML(item.Content.Rendered)
		text := BuildText(title, content)
		if text == "" {
			continue
		}
		docs = append(docs, domain.Document{
			Text: text,
			Meta: domain.Metadata{
				Source:   domain.SourceREST,
				Title:    title,
				URL:      item.Link,
				Site:     site,
				WPID:     item.ID,
				WPType:   item.Type,
				Date:     item.Date,
				Modified: item.Modified,
			},
		})
	}

	c.logger.Info("fetched REST content", "site", site, "items", len(items), "documents", len(docs))
	return docs, nil
}

// fetchAll paginates a REST collection route until an empty page, a 404,
// an invalid-page-number 400, or the page cap. Any other non-2xx status
// aborts the call.
func (c *Client) fetchAll(ctx context.Context, site, route string) ([]wpItem, error) {
	var items []wpItem

	for page := 1; page <= c.maxPages; page++ {
		reqURL := fmt.Sprintf("%s%s?per_page=%d&page=%d",
			strings.TrimRight(site, "/"), route, c.perPage, page)

		status, body, err := c.get(ctx, reqURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s page %d: %w", route, page, err)
		}

		if status == http.StatusBadRequest && strings.Contains(string(body), invalidPageMarker) {
			break
		}
		if status == http.StatusNotFound {
			break
		}
		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("unexpected status %d fetching %s page %d", status, route, page)
		}

		var batch []wpItem
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("failed to decode %s page %d: %w", route, page, err)
		}
		if len(batch) == 0 {
			break
		}

		items = append(items, batch...)
		c.sleep(ctx)
	}

	return items, nil
}

func (c *Client) get(ctx context.Context, reqURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// sleep applies the fixed inter-request delay, respecting cancellation.
func (c *Client) sleep(ctx context.Context) {
	if c.fetchDelay <= 0 {
		return
	}
	select {
	case <-time.After(c.fetchDelay):
	case <-ctx.Done():
	}
}

// pathOf returns the path component of a URL for exclude matching.
func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}
