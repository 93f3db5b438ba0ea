package domain

import "strconv"

// Source identifies which ingestion path produced a document.
type Source string

const (
	SourceREST    Source = "rest"
	SourceSitemap Source = "sitemap"
)

// Metadata carries provenance for a document. REST-derived documents carry
// the full WordPress field set; sitemap-derived documents carry only
// url/title/site. Map emits the keys belonging to the variant.
type Metadata struct {
	Source   Source `json:"source"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Site     string `json:"site"`
	WPID     int    `json:"wp_id,omitempty"`
	WPType   string `json:"wp_type,omitempty"`
	Date     string `json:"date,omitempty"`
	Modified string `json:"modified,omitempty"`
}

// Map returns the metadata as a flat string map with only the keys that
// belong to the source variant.
func (m Metadata) Map() map[string]string {
	out := map[string]string{
		"title": m.Title,
		"url":   m.URL,
		"site":  m.Site,
	}
	if m.Source == SourceREST {
		out["wp_id"] = strconv.Itoa(m.WPID)
		out["wp_type"] = m.WPType
		out["date"] = m.Date
		out["modified"] = m.Modified
	}
	return out
}

// Document is a normalized unit of site content ready for indexing.
// Text is the title concatenated with the cleaned body; documents with
// empty text are dropped before indexing.
type Document struct {
	Text string
	Meta Metadata
}

// Entry is the persisted unit inside the hybrid store. ID is opaque and
// store-assigned; Seq is the insertion sequence used as the stable
// tie-break key during fusion.
type Entry struct {
	ID     string
	Seq    uint64
	Text   string
	Tokens []string
	Meta   Metadata
}

// Posting maps a term to an entry with its term frequency.
type Posting struct {
	EntryID string
	TF      int
}

// Stats holds corpus-level statistics used by BM25 scoring.
type Stats struct {
	TotalEntries int
	AvgEntryLen  float64
}

// ScoredEntry is a retrieval hit with its relevance score.
type ScoredEntry struct {
	Entry Entry
	Score float64
}

// QueryParams is the per-query retrieval configuration.
type QueryParams struct {
	K       int     // dense top-N, caps the final result count
	SparseK int     // sparse top-N
	Alpha   float64 // fusion weight: 1 = pure dense, 0 = pure sparse
	Site    string  // optional filter against Metadata.Site
}

// DefaultQueryParams returns the standard retrieval parameters.
func DefaultQueryParams() QueryParams {
	return QueryParams{K: 10, SparseK: 50, Alpha: 0.5}
}

// QueryResult is a ranked hit shaped for presentation. Score is nil when
// the engine does not report one.
type QueryResult struct {
	Text     string            `json:"text"`
	Score    *float64          `json:"score"`
	Metadata map[string]string `json:"metadata"`
}
