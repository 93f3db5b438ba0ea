package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"wpsearch/internal/domain"
	"wpsearch/internal/usecase"
)

//go:embed templates/search.html
var templateFS embed.FS

// Searcher runs a query and returns presentation-ready results.
type Searcher interface {
	Query(ctx context.Context, query string, p domain.QueryParams) ([]domain.QueryResult, error)
}

// Reindexer rebuilds the index for a site.
type Reindexer interface {
	Reindex(ctx context.Context, site string, includePages, sitemapFallback bool, progress usecase.Progress) (int, error)
}

// Config holds the server's presentation defaults.
type Config struct {
	PageTitle   string
	DefaultSite string
	Defaults    domain.QueryParams
}

// Server exposes the search service over HTTP: a demo UI on /, a JSON
// search API on /search, and a reindex trigger on /reindex.
type Server struct {
	searcher  Searcher
	reindexer Reindexer
	cfg       Config
	tmpl      *template.Template
	logger    *slog.Logger
}

// New creates the HTTP server.
func New(searcher Searcher, reindexer Reindexer, cfg Config, logger *slog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/search.html")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		searcher:  searcher,
		reindexer: reindexer,
		cfg:       cfg,
		tmpl:      tmpl,
		logger:    logger.With("component", "http"),
	}, nil
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/reindex", s.handleReindex)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// queryParams reads k, sparse_k, alpha, and site from the request,
// falling back to the configured defaults.
func (s *Server) queryParams(r *http.Request) domain.QueryParams {
	p := s.cfg.Defaults
	q := r.URL.Query()

	if v := q.Get("k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.K = n
		}
	}
	if v := q.Get("sparse_k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.SparseK = n
		}
	}
	if v := q.Get("alpha"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			p.Alpha = f
		}
	}
	p.Site = q.Get("site")
	return p
}

type searchResponse struct {
	Query   string               `json:"query"`
	Results []domain.QueryResult `json:"results"`
	K       int                  `json:"k"`
	SparseK int                  `json:"sparse_k"`
	Alpha   float64              `json:"alpha"`
}

// handleSearch is the JSON read path. q is required and non-empty;
// retrieval failures surface as a 500.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "q is required"})
		return
	}

	p := s.queryParams(r)
	if p.K < 1 || p.SparseK < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "k and sparse_k must be at least 1"})
		return
	}

	results, err := s.searcher.Query(r.Context(), query, p)
	if err != nil {
		s.logger.Error("search failed", "query", query, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Results: results,
		K:       p.K,
		SparseK: p.SparseK,
		Alpha:   p.Alpha,
	})
}

type reindexResponse struct {
	Site  string `json:"site"`
	Count int    `json:"count"`
}

// handleReindex is the write path. A crawl that finds nothing on either
// path is a 404, matching the not-found contract.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	site := q.Get("site")
	if site == "" {
		site = s.cfg.DefaultSite
	}
	includePages := boolParam(q.Get("include_pages"), true)
	sitemapFallback := boolParam(q.Get("use_sitemap_fallback"), true)

	count, err := s.reindexer.Reindex(r.Context(), site, includePages, sitemapFallback, nil)
	if err != nil {
		if errors.Is(err, usecase.ErrNoContent) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": err.Error()})
			return
		}
		s.logger.Error("reindex failed", "site", site, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, reindexResponse{Site: site, Count: count})
}

func boolParam(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

type rootView struct {
	Title   string
	Query   string
	K       int
	SparseK int
	Alpha   float64
	Results []domain.QueryResult
	Error   string
}

// handleRoot serves the demo UI. Retrieval errors render inline rather
// than failing the page.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := s.queryParams(r)
	view := rootView{
		Title:   s.cfg.PageTitle,
		Query:   r.URL.Query().Get("q"),
		K:       p.K,
		SparseK: p.SparseK,
		Alpha:   p.Alpha,
	}

	if view.Query != "" {
		results, err := s.searcher.Query(r.Context(), view.Query, p)
		if err != nil {
			s.logger.Error("search failed", "query", view.Query, "err", err)
			view.Error = err.Error()
		} else {
			view.Results = results
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, view); err != nil {
		s.logger.Error("template render failed", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
