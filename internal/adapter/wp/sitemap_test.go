package wp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wpsearch/internal/domain"
)

// sitemapServer serves /sitemap.xml listing the given paths, and an HTML
// page for each path via the pages map (path -> body). Paths absent from
// the map return 404.
func sitemapServer(t *testing.T, paths []string, pages map[string]string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sitemap.xml" {
			fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
			for _, p := range paths {
				fmt.Fprintf(w, "<url><loc>%s%s</loc></url>", srv.URL, p)
			}
			fmt.Fprint(w, "</urlset>")
			return
		}
		if hits != nil {
			hits.Add(1)
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func page(title, body string) string {
	return fmt.Sprintf("<html><head><title>%s</title></head><body><p>%s</p></body></html>", title, body)
}

func TestFetchSitemap_BuildsDocuments(t *testing.T) {
	var hits atomic.Int32
	srv := sitemapServer(t,
		[]string{"/services/", "/about/", "/contact/"},
		map[string]string{
			"/services/": page("Services", "what we do"),
			"/about/":    page("About", "who we are"),
			"/contact/":  page("Contact", "where we are"),
		},
		&hits,
	)

	docs, err := testClient().FetchSitemap(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, int32(3), hits.Load(), "every listed URL is fetched once")

	first := docs[0]
	assert.Equal(t, domain.SourceSitemap, first.Meta.Source)
	assert.Equal(t, "Services", first.Meta.Title)
	assert.Equal(t, srv.URL+"/services/", first.Meta.URL)
	assert.Equal(t, srv.URL, first.Meta.Site)
	assert.Contains(t, first.Text, "what we do")
}

func TestFetchSitemap_SkipsFailedPages(t *testing.T) {
	srv := sitemapServer(t,
		[]string{"/ok/", "/gone/", "/also-ok/"},
		map[string]string{
			"/ok/":      page("OK", "fine"),
			"/also-ok/": page("Also OK", "fine too"),
		},
		nil,
	)

	docs, err := testClient().FetchSitemap(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, docs, 2, "a failing page is skipped, not fatal")
}

func TestFetchSitemap_ExcludeGlobs(t *testing.T) {
	var hits atomic.Int32
	srv := sitemapServer(t,
		[]string{"/tag/landfill/", "/services/"},
		map[string]string{
			"/tag/landfill/": page("Tag", "tag page"),
			"/services/":     page("Services", "content"),
		},
		&hits,
	)

	c := NewClient(ClientConfig{ExcludeURLs: []string{"/tag/**"}}, nil)
	docs, err := c.FetchSitemap(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Services", docs[0].Meta.Title)
	assert.Equal(t, int32(1), hits.Load(), "excluded URLs are never fetched")
}

func TestFetchSitemap_RespectsLimit(t *testing.T) {
	srv := sitemapServer(t,
		[]string{"/a/", "/b/", "/c/"},
		map[string]string{
			"/a/": page("A", "a"),
			"/b/": page("B", "b"),
			"/c/": page("C", "c"),
		},
		nil,
	)

	c := NewClient(ClientConfig{SitemapLimit: 2}, nil)
	docs, err := c.FetchSitemap(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestFetchSitemap_MissingSitemap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient().FetchSitemap(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchSitemap_MalformedXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not xml at all <<<<")
	}))
	defer srv.Close()

	_, err := testClient().FetchSitemap(context.Background(), srv.URL)
	assert.Error(t, err)
}
