package usecase

import (
	"context"
	"errors"
	"testing"

	"wpsearch/internal/domain"
)

// fakeSource is a scriptable DocumentSource.
type fakeSource struct {
	restDocs    []domain.Document
	restErr     error
	sitemapDocs []domain.Document
	sitemapErr  error

	sitemapCalled bool
}

func (f *fakeSource) FetchContent(_ context.Context, _ string, _ bool) ([]domain.Document, error) {
	return f.restDocs, f.restErr
}

func (f *fakeSource) FetchSitemap(_ context.Context, _ string) ([]domain.Document, error) {
	f.sitemapCalled = true
	return f.sitemapDocs, f.sitemapErr
}

func newReindexer(t *testing.T, source *fakeSource) *Reindexer {
	t.Helper()
	f := newFixture(t, nil, 32)
	return NewReindexer(source, f.builder, nil)
}

func TestReindexUsesRESTContent(t *testing.T) {
	source := &fakeSource{
		restDocs: []domain.Document{doc("post one"), doc("post two")},
	}
	r := newReindexer(t, source)

	count, err := r.Reindex(context.Background(), "https://example.com", true, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 indexed, got %d", count)
	}
	if source.sitemapCalled {
		t.Error("sitemap should not be consulted when REST yields documents")
	}
}

func TestReindexFallsBackToSitemap(t *testing.T) {
	source := &fakeSource{
		sitemapDocs: []domain.Document{doc("page one"), doc("page two"), doc("page three")},
	}
	r := newReindexer(t, source)

	count, err := r.Reindex(context.Background(), "https://example.com", true, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("expected 3 indexed via sitemap, got %d", count)
	}
	if !source.sitemapCalled {
		t.Error("expected sitemap fallback to run")
	}
}

func TestReindexNoFallbackWhenDisabled(t *testing.T) {
	source := &fakeSource{
		sitemapDocs: []domain.Document{doc("page one")},
	}
	r := newReindexer(t, source)

	_, err := r.Reindex(context.Background(), "https://example.com", true, false, nil)
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent with fallback disabled, got %v", err)
	}
	if source.sitemapCalled {
		t.Error("sitemap must not run when the fallback is disabled")
	}
}

func TestReindexNoContent(t *testing.T) {
	r := newReindexer(t, &fakeSource{})

	_, err := r.Reindex(context.Background(), "https://example.com", true, true, nil)
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestReindexRESTError(t *testing.T) {
	source := &fakeSource{restErr: errors.New("connection refused")}
	r := newReindexer(t, source)

	_, err := r.Reindex(context.Background(), "https://example.com", true, true, nil)
	if err == nil || errors.Is(err, ErrNoContent) {
		t.Errorf("expected the transport error to surface, got %v", err)
	}
}

func TestReindexSitemapError(t *testing.T) {
	source := &fakeSource{sitemapErr: errors.New("sitemap gone")}
	r := newReindexer(t, source)

	_, err := r.Reindex(context.Background(), "https://example.com", true, true, nil)
	if err == nil || errors.Is(err, ErrNoContent) {
		t.Errorf("expected the sitemap error to surface, got %v", err)
	}
}
