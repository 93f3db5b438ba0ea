package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
	"wpsearch/internal/domain"
)

var (
	bucketEntries = []byte("entries")
	bucketBlobs   = []byte("blobs")
	bucketTerms   = []byte("terms")
	bucketStats   = []byte("stats")
	keyStats      = []byte("corpus_stats")
)

// BoltStore persists indexed entries, term postings, and corpus stats in a
// single bbolt file. Writes are additive: reindex appends entries, it never
// updates or deletes existing ones.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the store at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketEntries, bucketBlobs, bucketTerms, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// DB exposes the underlying handle so the dense vector store can share the
// same file.
func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

type entryMeta struct {
	Seq    uint64          `json:"seq"`
	Tokens []string        `json:"tokens"`
	Meta   domain.Metadata `json:"meta"`
}

// PutEntries writes a batch of entries and their postings in one
// transaction; either the whole batch commits or none of it does.
// Sequence numbers are assigned in insertion order.
func (s *BoltStore) PutEntries(entries []domain.Entry, postings map[string]map[string]int) ([]domain.Entry, error) {
	out := make([]domain.Entry, len(entries))
	copy(out, entries)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		entriesBucket := tx.Bucket(bucketEntries)
		blobsBucket := tx.Bucket(bucketBlobs)
		termsBucket := tx.Bucket(bucketTerms)

		for i := range out {
			seq, err := entriesBucket.NextSequence()
			if err != nil {
				return err
			}
			out[i].Seq = seq

			meta := entryMeta{
				Seq:    seq,
				Tokens: out[i].Tokens,
				Meta:   out[i].Meta,
			}
			data, err := json.Marshal(meta)
			if err != nil {
				return err
			}
			if err := entriesBucket.Put([]byte(out[i].ID), data); err != nil {
				return err
			}
			if err := blobsBucket.Put([]byte(out[i].ID), []byte(out[i].Text)); err != nil {
				return err
			}
		}

		for term, entryTFs := range postings {
			var existing []domain.Posting
			if data := termsBucket.Get([]byte(term)); data != nil {
				json.Unmarshal(data, &existing)
			}
			for entryID, tf := range entryTFs {
				existing = append(existing, domain.Posting{EntryID: entryID, TF: tf})
			}
			data, err := json.Marshal(existing)
			if err != nil {
				return err
			}
			if err := termsBucket.Put([]byte(term), data); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *BoltStore) GetEntry(id string) (domain.Entry, error) {
	var entry domain.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEntries).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("entry not found: %s", id)
		}
		var meta entryMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		text := tx.Bucket(bucketBlobs).Get([]byte(id))
		entry = domain.Entry{
			ID:     id,
			Seq:    meta.Seq,
			Text:   string(text),
			Tokens: meta.Tokens,
			Meta:   meta.Meta,
		}
		return nil
	})
	return entry, err
}

func (s *BoltStore) GetPostings(term string) ([]domain.Posting, error) {
	var postings []domain.Posting
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketTerms).Get([]byte(term))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &postings)
	})
	return postings, err
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) UpdateStats(stats domain.Stats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltStore) Count() (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketEntries).Stats().KeyN
		return nil
	})
	return count, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
