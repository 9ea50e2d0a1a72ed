package memoryDB

import (
	"context"
	"testing"

	"github.com/synthiquery/api/internal/rag/vectorDB"
)

func entry(chunkId, docId string, seq int, vector []float32) vectorDB.Entry {
	return vectorDB.Entry{
		ChunkId: chunkId,
		Vector:  vector,
		Payload: vectorDB.Payload{
			DocumentId:   docId,
			DocumentName: docId + ".pdf",
			Seq:          seq,
			Text:         "chunk " + chunkId,
		},
	}
}

func TestUpsert_Idempotent(t *testing.T) {
	store := InitStore()
	ctx := context.Background()

	first := entry("c1", "doc-a", 0, []float32{1, 0})
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Same chunk id again, new vector. Latest write wins, count stays 1.
	second := entry("c1", "doc-a", 0, []float32{0, 1})
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 entry after re-upsert, got %d", count)
	}

	matches, err := store.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if matches[0].Score != 1 {
		t.Errorf("Expected the re-upserted vector to be stored, score %f", matches[0].Score)
	}
}

func TestSearch_OrdersByScore(t *testing.T) {
	store := InitStore()
	ctx := context.Background()

	store.UpsertBatch(ctx, []vectorDB.Entry{
		entry("low", "doc-a", 0, []float32{0, 1}),
		entry("high", "doc-a", 1, []float32{1, 0}),
		entry("mid", "doc-a", 2, []float32{0.7, 0.7}),
	})

	matches, err := store.Search(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	expected := []string{"high", "mid", "low"}
	for i, want := range expected {
		if matches[i].ChunkId != want {
			t.Errorf("Position %d got %s, want %s", i, matches[i].ChunkId, want)
		}
	}
}

func TestSearch_TieBreaks(t *testing.T) {
	store := InitStore()
	ctx := context.Background()

	// doc-a ingested before doc-b, identical vectors everywhere
	same := []float32{1, 0}
	store.UpsertBatch(ctx, []vectorDB.Entry{
		entry("a2", "doc-a", 2, same),
		entry("a0", "doc-a", 0, same),
	})
	store.UpsertBatch(ctx, []vectorDB.Entry{
		entry("b0", "doc-b", 0, same),
	})

	matches, err := store.Search(ctx, same, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// equal scores: lower seq first, then earlier document
	expected := []string{"a0", "b0", "a2"}
	for i, want := range expected {
		if matches[i].ChunkId != want {
			t.Errorf("Position %d got %s, want %s", i, matches[i].ChunkId, want)
		}
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	store := InitStore()

	matches, err := store.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search on empty index failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected no matches, got %d", len(matches))
	}
}

func TestSearch_TruncatesToK(t *testing.T) {
	store := InitStore()
	ctx := context.Background()

	store.UpsertBatch(ctx, []vectorDB.Entry{
		entry("c0", "doc-a", 0, []float32{1, 0}),
		entry("c1", "doc-a", 1, []float32{0.9, 0.1}),
		entry("c2", "doc-a", 2, []float32{0.8, 0.2}),
	})

	matches, err := store.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Expected 2 matches, got %d", len(matches))
	}
}

func TestDeleteByDocument(t *testing.T) {
	store := InitStore()
	ctx := context.Background()

	store.UpsertBatch(ctx, []vectorDB.Entry{
		entry("a0", "doc-a", 0, []float32{1, 0}),
		entry("a1", "doc-a", 1, []float32{0, 1}),
		entry("b0", "doc-b", 0, []float32{1, 0}),
	})

	if err := store.DeleteByDocument(ctx, "doc-a"); err != nil {
		t.Fatalf("DeleteByDocument failed: %v", err)
	}

	remaining, _ := store.Count(ctx)
	if remaining != 1 {
		t.Errorf("Expected 1 entry after delete, got %d", remaining)
	}
	perDoc, _ := store.CountByDocument(ctx, "doc-a")
	if perDoc != 0 {
		t.Errorf("Expected 0 entries for deleted document, got %d", perDoc)
	}

	// deleting an unknown document is a no-op
	if err := store.DeleteByDocument(ctx, "doc-missing"); err != nil {
		t.Errorf("Delete of unknown document should not error: %v", err)
	}
}

func TestReset(t *testing.T) {
	store := InitStore()
	ctx := context.Background()

	store.UpsertBatch(ctx, []vectorDB.Entry{
		entry("a0", "doc-a", 0, []float32{1, 0}),
		entry("b0", "doc-b", 0, []float32{0, 1}),
	})

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("Expected empty index after reset, got %d entries", count)
	}

	// insertion ranks restart after reset
	store.Upsert(ctx, entry("b0", "doc-b", 0, []float32{1, 0}))
	store.Upsert(ctx, entry("a0", "doc-a", 0, []float32{1, 0}))

	matches, _ := store.Search(ctx, []float32{1, 0}, 2)
	if matches[0].ChunkId != "b0" {
		t.Errorf("Expected doc-b first after reset reordering, got %s", matches[0].ChunkId)
	}
}
