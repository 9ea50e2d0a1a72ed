package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/domain/docModel"
	"github.com/synthiquery/api/internal/domain/jobModel"
	"github.com/synthiquery/api/internal/domain/ragerror"
	"github.com/synthiquery/api/internal/rag/embedding"
	"github.com/synthiquery/api/internal/rag/vectorDB"
	"github.com/synthiquery/api/internal/rag/vectorDB/memoryDB"
	"github.com/synthiquery/api/internal/registry"
)

// --- Mocks ---

type mockExtractor struct {
	extractFunc func(path string) (string, error)
}

func (m *mockExtractor) Extract(path string) (string, error) {
	return m.extractFunc(path)
}

type mockEmbedder struct {
	batchFunc func(ctx context.Context, chunks []string) ([]embedding.Result, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) (embedding.Result, error) {
	results, err := m.batchFunc(ctx, []string{query})
	if err != nil {
		return embedding.Result{}, err
	}
	return results[0], nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([]embedding.Result, error) {
	return m.batchFunc(ctx, chunks)
}

type failingIndex struct {
	vectorDB.Index
	upsertErr error
}

func (f *failingIndex) UpsertBatch(ctx context.Context, entries []vectorDB.Entry) error {
	return f.upsertErr
}

func okEmbedder() *mockEmbedder {
	return &mockEmbedder{
		batchFunc: func(ctx context.Context, chunks []string) ([]embedding.Result, error) {
			results := make([]embedding.Result, len(chunks))
			for i := range results {
				results[i] = embedding.Result{Vector: []float32{1, 0}}
			}
			return results, nil
		},
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.pdf")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("could not write temp file: %v", err)
	}
	return path
}

func testPipeline(extractor TextExtractor, embedder embedding.Embedder, index vectorDB.Index) (*Pipeline, *registry.Registry) {
	reg := registry.New(registry.InitInMemoryDocumentStore(), index)
	return NewPipeline(extractor, embedder, index, reg, NewCoordinator()), reg
}

// --- Tests ---

func TestIngestFile_Success(t *testing.T) {
	ctx := context.Background()
	// 2500 runes with W=1000, O=200 gives 4 pieces
	text := strings.Repeat("a", 2500)
	extractor := &mockExtractor{extractFunc: func(string) (string, error) { return text, nil }}
	index := memoryDB.InitStore()
	pipeline, reg := testPipeline(extractor, okEmbedder(), index)

	path := writeTempFile(t, "%PDF-1.4 fake")
	var steps []jobModel.InternalStatus
	doc, err := pipeline.IngestFile(ctx, "report.pdf", path, func(s jobModel.InternalStatus) {
		steps = append(steps, s)
	})
	if err != nil {
		t.Fatalf("IngestFile failed: %v", err)
	}

	if doc.Status != docModel.StatusProcessed {
		t.Errorf("Expected processed, got %s", doc.Status)
	}
	if doc.ChunkCount != 4 {
		t.Errorf("Expected 4 chunks, got %d", doc.ChunkCount)
	}
	if doc.TextLength != 2500 {
		t.Errorf("Expected text length 2500, got %d", doc.TextLength)
	}

	indexed, _ := index.CountByDocument(ctx, doc.Id)
	if indexed != 4 {
		t.Errorf("Expected 4 index entries, got %d", indexed)
	}
	if err := reg.CheckConsistency(ctx); err != nil {
		t.Errorf("Registry and index disagree after ingest: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Temp file should be removed after ingestion")
	}
	if len(steps) == 0 || steps[0] != jobModel.IngestExtracting {
		t.Errorf("Expected extracting as first step, got %v", steps)
	}
}

func TestIngestFile_Idempotent(t *testing.T) {
	ctx := context.Background()
	text := strings.Repeat("b", 2500)
	extractor := &mockExtractor{extractFunc: func(string) (string, error) { return text, nil }}
	index := memoryDB.InitStore()
	pipeline, _ := testPipeline(extractor, okEmbedder(), index)

	first, err := pipeline.IngestFile(ctx, "report.pdf", writeTempFile(t, "same bytes"), nil)
	if err != nil {
		t.Fatalf("First ingest failed: %v", err)
	}
	second, err := pipeline.IngestFile(ctx, "report.pdf", writeTempFile(t, "same bytes"), nil)
	if err != nil {
		t.Fatalf("Second ingest failed: %v", err)
	}

	if first.Id != second.Id {
		t.Errorf("Same name and bytes must map to one id: %s vs %s", first.Id, second.Id)
	}
	indexed, _ := index.CountByDocument(ctx, first.Id)
	if indexed != first.ChunkCount {
		t.Errorf("Re-ingest duplicated entries: %d vs %d chunks", indexed, first.ChunkCount)
	}
}

func TestIngestFile_AlreadyProcessing(t *testing.T) {
	ctx := context.Background()
	extractor := &mockExtractor{extractFunc: func(string) (string, error) { return "text", nil }}
	pipeline, _ := testPipeline(extractor, okEmbedder(), memoryDB.InitStore())

	content := "locked bytes"
	docId := docModel.DocumentId("report.pdf", docModel.ContentHash([]byte(content)))
	if !pipeline.Locks().TryAcquire(docId) {
		t.Fatal("Could not pre-acquire lock")
	}
	defer pipeline.Locks().Release(docId)

	_, err := pipeline.IngestFile(ctx, "report.pdf", writeTempFile(t, content), nil)
	if !errors.Is(err, ragerror.ErrAlreadyProcessing) {
		t.Fatalf("Expected ErrAlreadyProcessing, got %v", err)
	}
}

func TestIngestFile_ExtractionFailure(t *testing.T) {
	ctx := context.Background()
	extractor := &mockExtractor{extractFunc: func(string) (string, error) {
		return "", &ragerror.ExtractionError{Reason: ragerror.ReasonCorrupt, Err: errors.New("bad xref")}
	}}
	index := memoryDB.InitStore()
	pipeline, reg := testPipeline(extractor, okEmbedder(), index)

	doc, err := pipeline.IngestFile(ctx, "broken.pdf", writeTempFile(t, "junk"), nil)

	var extractionErr *ragerror.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("Expected ExtractionError, got %v", err)
	}

	record, found := reg.Get(ctx, doc.Id)
	if !found || record.Status != docModel.StatusFailed {
		t.Errorf("Expected a failed record, got found=%v status=%s", found, record.Status)
	}
	if count, _ := index.Count(ctx); count != 0 {
		t.Errorf("Index must be untouched, has %d entries", count)
	}
}

func TestIngestFile_EmbeddingFatalRollsBack(t *testing.T) {
	ctx := context.Background()
	text := strings.Repeat("c", 2500)
	extractor := &mockExtractor{extractFunc: func(string) (string, error) { return text, nil }}
	embedder := &mockEmbedder{
		batchFunc: func(ctx context.Context, chunks []string) ([]embedding.Result, error) {
			return nil, &ragerror.EmbeddingFatalError{Err: errors.New("bad api key")}
		},
	}
	index := memoryDB.InitStore()
	pipeline, reg := testPipeline(extractor, embedder, index)

	doc, err := pipeline.IngestFile(ctx, "report.pdf", writeTempFile(t, "bytes"), nil)

	var fatal *ragerror.EmbeddingFatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("Expected EmbeddingFatalError, got %v", err)
	}
	if count, _ := index.CountByDocument(ctx, doc.Id); count != 0 {
		t.Errorf("Rollback left %d entries behind", count)
	}
	record, _ := reg.Get(ctx, doc.Id)
	if record.Status != docModel.StatusFailed {
		t.Errorf("Expected failed record, got %s", record.Status)
	}
}

func TestIngestFile_UpsertFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	text := strings.Repeat("d", 2500)
	extractor := &mockExtractor{extractFunc: func(string) (string, error) { return text, nil }}
	index := &failingIndex{Index: memoryDB.InitStore(), upsertErr: errors.New("qdrant down")}
	pipeline, reg := testPipeline(extractor, okEmbedder(), index)

	doc, err := pipeline.IngestFile(ctx, "report.pdf", writeTempFile(t, "bytes"), nil)
	if err == nil {
		t.Fatal("Expected upsert error")
	}

	record, _ := reg.Get(ctx, doc.Id)
	if record.Status != docModel.StatusFailed {
		t.Errorf("Expected failed record, got %s", record.Status)
	}
}

func TestIngestFile_AllFallbackStillProcessed(t *testing.T) {
	ctx := context.Background()
	text := strings.Repeat("e", 2500)
	extractor := &mockExtractor{extractFunc: func(string) (string, error) { return text, nil }}
	embedder := &mockEmbedder{
		batchFunc: func(ctx context.Context, chunks []string) ([]embedding.Result, error) {
			results := make([]embedding.Result, len(chunks))
			for i := range results {
				results[i] = embedding.Result{Vector: []float32{0, 1}, Fallback: true}
			}
			return results, nil
		},
	}
	index := memoryDB.InitStore()
	pipeline, _ := testPipeline(extractor, embedder, index)

	doc, err := pipeline.IngestFile(ctx, "report.pdf", writeTempFile(t, "bytes"), nil)
	if err != nil {
		t.Fatalf("All-fallback ingest must still succeed: %v", err)
	}
	if doc.Status != docModel.StatusProcessed {
		t.Errorf("Expected processed, got %s", doc.Status)
	}
	if doc.FallbackChunks != doc.ChunkCount {
		t.Errorf("Expected every chunk flagged fallback: %d of %d", doc.FallbackChunks, doc.ChunkCount)
	}
}

func TestIngestFile_EmptyDocument(t *testing.T) {
	ctx := context.Background()
	extractor := &mockExtractor{extractFunc: func(string) (string, error) { return "", nil }}
	index := memoryDB.InitStore()
	pipeline, reg := testPipeline(extractor, okEmbedder(), index)

	doc, err := pipeline.IngestFile(ctx, "blank.pdf", writeTempFile(t, "blank"), nil)
	if err != nil {
		t.Fatalf("Empty document should not error: %v", err)
	}
	if doc.Status != docModel.StatusProcessed || doc.ChunkCount != 0 {
		t.Errorf("Expected processed with 0 chunks, got %+v", doc)
	}
	if err := reg.CheckConsistency(ctx); err != nil {
		t.Errorf("Zero-chunk document broke consistency: %v", err)
	}
}

func TestIngestFile_ChunkConfigSanity(t *testing.T) {
	// the pipeline depends on the documented defaults, pin them
	if config.ChunkWindow != 1000 || config.ChunkOverlap != 200 {
		t.Errorf("Unexpected chunking defaults: W=%d O=%d", config.ChunkWindow, config.ChunkOverlap)
	}
}
