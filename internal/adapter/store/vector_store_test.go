package store

import (
	"context"
	"path/filepath"
	"testing"

	"wpsearch/internal/port"
)

func newTestVectorStore(t *testing.T, dim int) *BoltVectorStore {
	t.Helper()
	s := newTestStore(t)
	vs, err := NewBoltVectorStore(s.DB(), dim)
	if err != nil {
		t.Fatal(err)
	}
	return vs
}

func TestVectorSearchRanksBySimilarity(t *testing.T) {
	vs := newTestVectorStore(t, 3)
	ctx := context.Background()

	err := vs.Upsert(ctx, []port.VectorItem{
		{ID: "x", Vector: []float32{1, 0, 0}},
		{ID: "y", Vector: []float32{0, 1, 0}},
		{ID: "diag", Vector: []float32{1, 1, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := vs.Search(ctx, []float32{1, 0.1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ID != "x" {
		t.Errorf("expected nearest vector first, got %s", results[0].ID)
	}
	if results[2].ID != "y" {
		t.Errorf("expected orthogonal vector last, got %s", results[2].ID)
	}
}

func TestVectorSearchCapsAtK(t *testing.T) {
	vs := newTestVectorStore(t, 2)
	ctx := context.Background()

	err := vs.Upsert(ctx, []port.VectorItem{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Vector: []float32{0, 1}},
		{ID: "c", Vector: []float32{1, 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := vs.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestVectorDimensionMismatch(t *testing.T) {
	vs := newTestVectorStore(t, 3)
	ctx := context.Background()

	err := vs.Upsert(ctx, []port.VectorItem{{ID: "bad", Vector: []float32{1, 0}}})
	if err == nil {
		t.Error("expected error for wrong upsert dimension")
	}

	if _, err := vs.Search(ctx, []float32{1, 0}, 1); err == nil {
		t.Error("expected error for wrong query dimension")
	}
}

func TestVectorStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	vs, err := NewBoltVectorStore(s.DB(), 2)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := vs.Upsert(ctx, []port.VectorItem{{ID: "p", Vector: []float32{0.5, 0.5}}}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: the vector should load back from disk.
	s2, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	vs2, err := NewBoltVectorStore(s2.DB(), 2)
	if err != nil {
		t.Fatal(err)
	}
	n, err := vs2.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 vector after reopen, got %d", n)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors should score ~1, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors should score 0, got %f", got)
	}
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero vector should score 0, got %f", got)
	}
}
