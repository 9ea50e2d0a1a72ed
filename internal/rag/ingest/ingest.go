package ingest

import (
	"context"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/domain/docModel"
	"github.com/synthiquery/api/internal/domain/jobModel"
	"github.com/synthiquery/api/internal/domain/ragerror"
	"github.com/synthiquery/api/internal/rag/chunker"
	"github.com/synthiquery/api/internal/rag/embedding"
	"github.com/synthiquery/api/internal/rag/vectorDB"
	"github.com/synthiquery/api/internal/registry"
	"github.com/synthiquery/api/pkg/logger_i"
)

// TextExtractor turns a PDF on disk into plain text.
type TextExtractor interface {
	Extract(path string) (string, error)
}

const embedBatchSize = 100

// Pipeline runs one document through extract -> chunk -> embed -> upsert
// as a transaction: either the document ends up fully indexed and marked
// processed, or its partial index entries are rolled back and the record
// is marked failed. Other documents are never touched.
type Pipeline struct {
	extractor TextExtractor
	embedder  embedding.Embedder
	index     vectorDB.Index
	registry  *registry.Registry
	locks     *Coordinator
	logger    *logger_i.Logger
}

func NewPipeline(extractor TextExtractor, embedder embedding.Embedder, index vectorDB.Index, reg *registry.Registry, locks *Coordinator) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		embedder:  embedder,
		index:     index,
		registry:  reg,
		locks:     locks,
		logger:    logger_i.NewLogger("Document Ingestion"),
	}
}

func (p *Pipeline) Locks() *Coordinator {
	return p.locks
}

// IngestFile ingests the uploaded file at path under the given display
// name. onStep may be nil; when set it receives coarse progress for the
// async job status endpoint. The temp file is removed on every exit path.
func (p *Pipeline) IngestFile(ctx context.Context, name string, path string, onStep func(jobModel.InternalStatus)) (docModel.Document, error) {
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "filename", name)
	step := func(s jobModel.InternalStatus) {
		if onStep != nil {
			onStep(s)
		}
	}

	defer func() {
		if err := os.Remove(path); err != nil {
			log.Error("Error removing temp file", "error", err)
		}
	}()

	content, err := os.ReadFile(path)
	if err != nil {
		log.Error("Error reading uploaded file", "error", err)
		return docModel.Document{}, &ragerror.ExtractionError{Reason: ragerror.ReasonCorrupt, Err: err}
	}

	doc := docModel.Document{
		Id:          docModel.DocumentId(name, docModel.ContentHash(content)),
		Name:        name,
		ContentHash: docModel.ContentHash(content),
		ByteSize:    int64(len(content)),
		UploadedAt:  time.Now(),
		Status:      docModel.StatusPending,
	}
	log = log.With("documentId", doc.Id)

	// same identity, one ingestion at a time
	if !p.locks.TryAcquire(doc.Id) {
		log.Warn("Document is already being ingested")
		return doc, ragerror.ErrAlreadyProcessing
	}
	defer p.locks.Release(doc.Id)

	if err := p.registry.Register(ctx, doc); err != nil {
		return doc, err
	}

	step(jobModel.IngestExtracting)
	text, err := p.extractor.Extract(path)
	if err != nil {
		log.Error("Extraction failed", "error", err)
		p.markFailed(ctx, &doc)
		return doc, err
	}
	doc.TextLength = utf8.RuneCountInString(text)

	step(jobModel.IngestChunking)
	pieces := chunker.Split(text, config.ChunkWindow, config.ChunkOverlap, config.MinChunkLength)

	// a blank but well-formed PDF is a processed document with no chunks
	if len(pieces) == 0 {
		log.Info("Document produced no chunks, marking processed")
		doc.Status = docModel.StatusProcessed
		if err := p.registry.Register(ctx, doc); err != nil {
			return doc, err
		}
		return doc, nil
	}

	// a re-upload of a known identity replaces its entries wholesale, so a
	// shorter new version cannot leave stale tail chunks behind
	if err := p.index.DeleteByDocument(ctx, doc.Id); err != nil {
		p.markFailed(ctx, &doc)
		return doc, err
	}

	ingestedAt := time.Now().Unix()
	fallbackCount := 0

	for start := 0; start < len(pieces); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pieces) {
			end = len(pieces)
		}
		batch := pieces[start:end]

		texts := make([]string, len(batch))
		for i, piece := range batch {
			texts[i] = piece.Text
		}

		step(jobModel.IngestEmbedding)
		log.Debug("Embedding batch", "size", len(batch))
		results, err := p.embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			log.Error("Embedding batch failed, rolling back", "error", err)
			p.rollback(ctx, &doc)
			return doc, err
		}

		entries := make([]vectorDB.Entry, len(batch))
		for i, piece := range batch {
			if results[i].Fallback {
				fallbackCount++
			}
			entries[i] = vectorDB.Entry{
				ChunkId: docModel.ChunkPointId(doc.Id, piece.Seq),
				Vector:  results[i].Vector,
				Payload: vectorDB.Payload{
					DocumentId:   doc.Id,
					DocumentName: doc.Name,
					Seq:          piece.Seq,
					Text:         piece.Text,
					Fallback:     results[i].Fallback,
					IngestedAt:   ingestedAt,
				},
			}
		}

		step(jobModel.IngestUpserting)
		if err := p.index.UpsertBatch(ctx, entries); err != nil {
			log.Error("Upsert failed, rolling back", "error", err)
			p.rollback(ctx, &doc)
			return doc, fmt.Errorf("upserting batch failed: %w", err)
		}
	}

	doc.Status = docModel.StatusProcessed
	doc.ChunkCount = len(pieces)
	doc.FallbackChunks = fallbackCount
	if err := p.registry.Register(ctx, doc); err != nil {
		return doc, err
	}

	log.Info("Document ingested", "chunks", doc.ChunkCount, "fallbackChunks", doc.FallbackChunks)
	return doc, nil
}

// rollback removes whatever this transaction already pushed to the index
// and leaves a failed record behind.
func (p *Pipeline) rollback(ctx context.Context, doc *docModel.Document) {
	if err := p.index.DeleteByDocument(ctx, doc.Id); err != nil {
		p.logger.Error("Rollback delete failed", "documentId", doc.Id, "error", err)
	}
	p.markFailed(ctx, doc)
}

func (p *Pipeline) markFailed(ctx context.Context, doc *docModel.Document) {
	doc.Status = docModel.StatusFailed
	doc.ChunkCount = 0
	doc.FallbackChunks = 0
	if err := p.registry.Register(ctx, *doc); err != nil {
		p.logger.Error("Could not record failed ingestion", "documentId", doc.Id, "error", err)
	}
}
