package wp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wpsearch/internal/domain"
)

func testClient() *Client {
	return NewClient(ClientConfig{PerPage: 50, MaxPages: 200}, nil)
}

// restItems renders n WordPress REST items as the API would.
func restItems(t *testing.T, typ string, startID, n int) []byte {
	t.Helper()
	items := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		id := startID + i
		items[i] = map[string]any{
			"id":       id,
			"type":     typ,
			"link":     fmt.Sprintf("https://example.com/%s-%d/", typ, id),
			"date":     "2024-01-15T10:00:00",
			"modified": "2024-02-01T09:30:00",
			"title":    map[string]string{"rendered": fmt.Sprintf("%s %d &amp; more", typ, id)},
			"content":  map[string]string{"rendered": fmt.Sprintf("<p>Body of %s %d</p>", typ, id)},
		}
	}
	data, err := json.Marshal(items)
	require.NoError(t, err)
	return data
}

func TestFetchContent_PaginatesUntilEmptyPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, routePosts, r.URL.Path)
		calls.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			w.Write(restItems(t, "post", 1, 50))
		case 2:
			w.Write(restItems(t, "post", 51, 50))
		default:
			w.Write([]byte("[]"))
		}
	}))
	defer srv.Close()

	docs, err := testClient().FetchContent(context.Background(), srv.URL, false)
	require.NoError(t, err)
	assert.Len(t, docs, 100)
	assert.Equal(t, int32(3), calls.Load(), "two full pages plus the terminating empty page")
}

func TestFetchContent_StopsOnInvalidPageNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":"rest_post_invalid_page_number","message":"The page number requested is larger than the number of pages available."}`))
			return
		}
		w.Write(restItems(t, "post", 1, 10))
	}))
	defer srv.Close()

	docs, err := testClient().FetchContent(context.Background(), srv.URL, false)
	require.NoError(t, err)
	assert.Len(t, docs, 10)
}

func TestFetchContent_IncludesPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			w.Write([]byte("[]"))
			return
		}
		switch r.URL.Path {
		case routePosts:
			w.Write(restItems(t, "post", 1, 3))
		case routePages:
			w.Write(restItems(t, "page", 100, 2))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	docs, err := testClient().FetchContent(context.Background(), srv.URL, true)
	require.NoError(t, err)
	assert.Len(t, docs, 5)

	docs, err = testClient().FetchContent(context.Background(), srv.URL, false)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestFetchContent_PagesRouteMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == routePages {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			w.Write([]byte("[]"))
			return
		}
		w.Write(restItems(t, "post", 1, 4))
	}))
	defer srv.Close()

	docs, err := testClient().FetchContent(context.Background(), srv.URL, true)
	require.NoError(t, err)
	assert.Len(t, docs, 4, "a missing pages route ends that collection without failing the crawl")
}

func TestFetchContent_ServerErrorAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient().FetchContent(context.Background(), srv.URL, false)
	assert.Error(t, err)
}

func TestFetchContent_DropsEmptyItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			w.Write([]byte("[]"))
			return
		}
		w.Write([]byte(`[
			{"id":1,"type":"post","link":"https://example.com/a/","title":{"rendered":"Real Post"},"content":{"rendered":"<p>text</p>"}},
			{"id":2,"type":"post","link":"https://example.com/b/","title":{"rendered":""},"content":{"rendered":"<script>only script</script>"}}
		]`))
	}))
	defer srv.Close()

	docs, err := testClient().FetchContent(context.Background(), srv.URL, false)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Real Post", docs[0].Meta.Title)
}

func TestFetchContent_Metadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			w.Write([]byte("[]"))
			return
		}
		w.Write(restItems(t, "post", 7, 1))
	}))
	defer srv.Close()

	docs, err := testClient().FetchContent(context.Background(), srv.URL, false)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	meta := docs[0].Meta
	assert.Equal(t, domain.SourceREST, meta.Source)
	assert.Equal(t, "post 7 & more", meta.Title, "HTML entities in titles are decoded")
	assert.Equal(t, "https://example.com/post-7/", meta.URL)
	assert.Equal(t, srv.URL, meta.Site)
	assert.Equal(t, 7, meta.WPID)
	assert.Equal(t, "post", meta.WPType)
	assert.Equal(t, "2024-01-15T10:00:00", meta.Date)
	assert.Equal(t, "2024-02-01T09:30:00", meta.Modified)
	assert.Equal(t, "post 7 & more\n\nBody of post 7", docs[0].Text)
}
