package port

import "wpsearch/internal/domain"

// EntryStore persists indexed entries, term postings, and corpus stats.
type EntryStore interface {
	// PutEntries writes a batch of entries and their postings in a single
	// transaction. Sequence numbers are assigned by the store in insertion
	// order. The returned entries carry their assigned Seq.
	PutEntries(entries []domain.Entry, postings map[string]map[string]int) ([]domain.Entry, error)

	GetEntry(id string) (domain.Entry, error)

	GetPostings(term string) ([]domain.Posting, error)

	GetStats() (domain.Stats, error)

	UpdateStats(stats domain.Stats) error

	Count() (int, error)

	Close() error
}
