package wp

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"wpsearch/internal/domain"
)

// sitemapURLSet matches the sitemaps.org urlset schema.
type sitemapURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// FetchSitemap builds documents by crawling the site's sitemap. It is the
// fallback path when the REST API yields nothing: the sitemap itself must
// fetch and parse, but per-page failures are skipped silently so partial
// results survive a flaky site.
func (c *Client) FetchSitemap(ctx context.Context, site string) ([]domain.Document, error) {
	sitemapURL := strings.TrimRight(site, "/") + "/sitemap.xml"

	status, body, err := c.get(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("unexpected status %d fetching sitemap", status)
	}

	var urlset sitemapURLSet
	if err := xml.Unmarshal(body, &urlset); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	var docs []domain.Document
	fetched := 0
	for _, entry := range urlset.URLs {
		if fetched >= c.sitemapLimit {
			break
		}
		pageURL := strings.TrimSpace(entry.Loc)
		if pageURL == "" || c.excluded(pageURL) {
			continue
		}
		fetched++

		status, body, err := c.get(ctx, pageURL)
		if err != nil || status != http.StatusOK {
			c.logger.Debug("skipping sitemap page", "url", pageURL, "status", status, "err", err)
			c.sleep(ctx)
			continue
		}

		page := string(body)
		title := ExtractTitle(page)
		text := BuildText(title, StripHTML(page))
		if text != "" {
			docs = append(docs, domain.Document{
				Text: text,
				Meta: domain.Metadata{
					Source: domain.SourceSitemap,
					Title:  title,
					URL:    pageURL,
					Site:   site,
				},
			})
		}
		c.sleep(ctx)
	}

	c.logger.Info("fetched sitemap content", "site", site, "urls", len(urlset.URLs), "documents", len(docs))
	return docs, nil
}

// excluded reports whether a sitemap URL's path matches any configured
// exclude glob.
func (c *Client) excluded(pageURL string) bool {
	path := pathOf(pageURL)
	for _, pattern := range c.excludeURLs {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
