package rag

import (
	"context"
	"time"

	"github.com/synthiquery/api/internal/domain/jobModel"
	"github.com/synthiquery/api/internal/metrics"
	"github.com/synthiquery/api/internal/rag/embedding"
	"github.com/synthiquery/api/internal/rag/synth"
	"github.com/synthiquery/api/internal/rag/vectorDB"
	"github.com/synthiquery/api/pkg/logger_i"
)

func returnOutput(job jobModel.Job, answer synth.Answer) jobModel.Job {
	job.JobPayload.Answer = answer.Text
	job.JobPayload.Citations = answer.Citations
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, code int, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    code,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]vectorDB.Match, embedding.Result, error) {
	*job = logOutput(*job, jobModel.VectorDBCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()

	return s.retriever.Retrieve(ctx, job.JobPayload.Question, 0)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.cache.GetCachedAnswer(ctx, emb)
	return ans, found
}

func (s *service) executeSynthesisStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, matches []vectorDB.Match, history []string) synth.Answer {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.synthesizer.Synthesize(ctx, job.JobPayload.Question, matches, history)
}
