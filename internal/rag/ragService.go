package rag

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/synthiquery/api/internal/adapter/utils"
	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/domain/docModel"
	"github.com/synthiquery/api/internal/domain/jobModel"
	"github.com/synthiquery/api/internal/domain/ragerror"
	"github.com/synthiquery/api/internal/metrics"
	"github.com/synthiquery/api/internal/rag/ingest"
	"github.com/synthiquery/api/internal/rag/retrieve"
	"github.com/synthiquery/api/internal/rag/synth"
	"github.com/synthiquery/api/internal/rag/vectorDB"
	"github.com/synthiquery/api/internal/registry"
	"github.com/synthiquery/api/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - This is the PUBLIC contract.
  - It defines the "behavior" (what the worker and handlers can do).
  - We expose this to keep callers decoupled from our specific logic.

2. service (Private Struct):
  - This is the PRIVATE implementation.
  - It holds the "state" (retriever, synthesizer, pipeline, registry).
  - It is lowercase to prevent external packages from accessing our
    internal dependencies directly.

3. Pointer Receiver (*service):
  - By defining methods on (*service), the struct IMPLICITLY satisfies
    the Service interface.

4. Dependency Injection (NewService):
  - This constructor links the private struct to the public interface.
  - It allows us to swap real stores for mocks during testing without
    changing the worker's code.
*/

// Service is everything the worker and the HTTP handlers can ask of the
// RAG core. They never see the index, the embedder or the LLM directly.
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	ListDocuments(ctx context.Context) ([]docModel.Document, error)
	DeleteDocument(ctx context.Context, documentId string) (bool, error)
	Reset(ctx context.Context) error
	Diagnostics(ctx context.Context) (registry.Report, error)
}

type service struct {
	retriever   *retrieve.Retriever
	synthesizer *synth.Synthesizer
	pipeline    *ingest.Pipeline
	registry    *registry.Registry
	cache       vectorDB.AnswerCache // nil disables the answer cache
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(retriever *retrieve.Retriever, synthesizer *synth.Synthesizer, pipeline *ingest.Pipeline, reg *registry.Registry, cache vectorDB.AnswerCache) Service {
	return &service{
		retriever:   retriever,
		synthesizer: synthesizer,
		pipeline:    pipeline,
		registry:    reg,
		cache:       cache,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id)

	jobt.CurrentStep = jobModel.RAGCall

	// Embed + Search
	matches, queryEmbedding, err := s.executeRetrievalStep(ctx, inMethodLogger, &jobt)
	if err != nil {
		var fatal *ragerror.EmbeddingFatalError
		if errors.As(err, &fatal) {
			return s.jobError(jobt, err, "EMBEDDING_FAILURE", http.StatusInternalServerError, false)
		}
		return s.jobError(jobt, err, "RETRIEVAL_FAILURE", http.StatusInternalServerError, true)
	}

	// Cache Check
	cachedAnswer, found := s.executeCacheCheckStep(ctx, inMethodLogger, &jobt, queryEmbedding.Vector)
	if found {
		return returnOutput(jobt, synth.Answer{Text: cachedAnswer})
	}

	// Synthesis (degrades internally, never errors)
	answer := s.executeSynthesisStep(ctx, inMethodLogger, &jobt, matches, messageHistory)

	// Background Cache Save, real answers only
	if s.cache != nil && len(answer.Citations) > 0 {
		go func() {
			err := s.cache.SaveToCache(ctx, utils.GetNewUUID(), queryEmbedding.Vector, answer.Text)
			if err != nil {
				s.logger.Error("Failed to save to cache")
			}
		}()
	}

	return returnOutput(jobt, answer)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()

	job.CurrentStep = jobModel.IngestInit
	doc, err := s.pipeline.IngestFile(ctx, job.JobPayload.IngestFileName, job.JobPayload.IngestURL, func(step jobModel.InternalStatus) {
		job.CurrentStep = step
	})

	job.JobPayload.DocumentId = doc.Id
	job.JobPayload.ChunkCount = doc.ChunkCount

	if err != nil {
		metrics.CountDocumentIngested(string(docModel.StatusFailed))
		if errors.Is(err, ragerror.ErrAlreadyProcessing) {
			return s.jobError(job, err, "ALREADY_PROCESSING", http.StatusConflict, true)
		}
		var extraction *ragerror.ExtractionError
		if errors.As(err, &extraction) {
			return s.jobError(job, err, "EXTRACTION_FAILURE", http.StatusUnprocessableEntity, false)
		}
		return s.jobError(job, err, "INGESTION_FAILURE", http.StatusInternalServerError, true)
	}

	metrics.CountDocumentIngested(string(doc.Status))
	s.refreshIndexMetrics(ctx)
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) ListDocuments(ctx context.Context) ([]docModel.Document, error) {
	return s.registry.List(ctx)
}

func (s *service) DeleteDocument(ctx context.Context, documentId string) (bool, error) {
	if !s.pipeline.Locks().TryAcquire(documentId) {
		return false, ragerror.ErrAlreadyProcessing
	}
	defer s.pipeline.Locks().Release(documentId)

	found, err := s.registry.Delete(ctx, documentId)
	if err == nil {
		s.refreshIndexMetrics(ctx)
	}
	return found, err
}

// Reset wipes the whole knowledge base. It holds the coordinator
// exclusively for the duration, so it is refused while any ingestion is in
// flight and no ingestion can start mid-wipe; callers retry once uploads
// have drained.
func (s *service) Reset(ctx context.Context) error {
	if !s.pipeline.Locks().TryAcquireAll() {
		return ragerror.ErrAlreadyProcessing
	}
	defer s.pipeline.Locks().ReleaseAll()

	if err := s.registry.ResetAll(ctx); err != nil {
		return err
	}
	s.refreshIndexMetrics(ctx)
	return nil
}

func (s *service) Diagnostics(ctx context.Context) (registry.Report, error) {
	report, err := s.registry.Diagnose(ctx)
	if err != nil {
		return report, err
	}
	metrics.SetIndexEntryCount(report.IndexEntryCount)
	metrics.SetFallbackChunkRatio(report.FallbackFraction)
	metrics.SetIndexConsistency(report.Consistent)
	return report, nil
}

func (s *service) refreshIndexMetrics(ctx context.Context) {
	if report, err := s.registry.Diagnose(ctx); err == nil {
		metrics.SetIndexEntryCount(report.IndexEntryCount)
		metrics.SetFallbackChunkRatio(report.FallbackFraction)
		metrics.SetIndexConsistency(report.Consistent)
	}
}
