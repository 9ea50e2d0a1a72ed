package embedding

import (
	"context"
	"time"

	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/domain/ragerror"
	"github.com/synthiquery/api/pkg/logger_i"
)

// LocalFunc computes a deterministic local vector of the given dimension.
type LocalFunc func(text string, dim int) []float32

// Provider is the resilient embedder: remote API first, one retry after
// backoff, then the local hashed fallback. Only auth failures escape as
// errors; everything else degrades to fallback vectors so ingestion and
// retrieval keep working while the API is down.
type Provider struct {
	remote  RemoteClient
	local   LocalFunc
	dim     int
	timeout time.Duration
	backoff time.Duration
	sleep   func(time.Duration)
	logger  *logger_i.Logger
}

func NewProvider(remote RemoteClient, local LocalFunc) *Provider {
	return &Provider{
		remote:  remote,
		local:   local,
		dim:     int(config.EmbeddingOutputDimensionality),
		timeout: config.EmbedTimeout,
		backoff: config.EmbedRetryBackoff,
		sleep:   time.Sleep,
		logger:  logger_i.NewLogger("Embedding Provider"),
	}
}

func (p *Provider) GetEmbedding(ctx context.Context, query string) (Result, error) {
	results, err := p.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

func (p *Provider) BatchEmbedding(ctx context.Context, chunks []string) ([]Result, error) {
	// no remote client configured, run fully local
	if p.remote == nil {
		return p.collectLocal(chunks), nil
	}

	for attempt := 0; ; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		out := p.remote.EmbedBatch(callCtx, chunks)
		cancel()

		if out.Kind == OutcomeSuccess {
			return p.collectRemote(chunks, out), nil
		}

		switch Decide(out.Kind, attempt) {
		case ActionRetry:
			p.logger.Warn("Embedding call failed, retrying after backoff", "error", out.Err)
			p.sleep(p.backoff)

		case ActionFatal:
			p.logger.Error("Embedding API rejected credentials", "error", out.Err)
			return nil, &ragerror.EmbeddingFatalError{Err: out.Err}

		case ActionFallback:
			transient := &ragerror.EmbeddingTransientError{Err: out.Err}
			p.logger.Warn("Falling back to local embeddings for batch", "size", len(chunks), "cause", transient)
			return p.collectLocal(chunks), nil
		}
	}
}

func (p *Provider) collectRemote(chunks []string, out RemoteOutcome) []Result {
	results := make([]Result, len(chunks))
	for i := range chunks {
		var vec []float32
		if i < len(out.Vectors) {
			vec = out.Vectors[i]
		}
		if vec == nil {
			// a single entry failed inside an otherwise good batch
			p.logger.Warn("Remote batch is missing one vector, using local fallback", "index", i)
			results[i] = Result{Vector: p.local(chunks[i], p.dim), Fallback: true}
			continue
		}
		results[i] = Result{Vector: Normalize(vec)}
	}
	return results
}

func (p *Provider) collectLocal(chunks []string) []Result {
	results := make([]Result, len(chunks))
	for i, text := range chunks {
		results[i] = Result{Vector: p.local(text, p.dim), Fallback: true}
	}
	return results
}
