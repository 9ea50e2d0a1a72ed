package embedding

import (
	"context"
	"math"
)

// Result is one embedded text. Fallback marks vectors computed locally
// instead of by the remote API; callers persist the flag so diagnostics
// can report embedding-quality risk.
type Result struct {
	Vector   []float32
	Fallback bool
}

type Embedder interface {
	GetEmbedding(ctx context.Context, query string) (Result, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([]Result, error)
}

// OutcomeKind enumerates what the remote embedding API did. The remote
// client converts its response/error into exactly one of these at the
// boundary; nothing downstream re-inspects raw API errors.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRateLimited
	OutcomeAuthError
	OutcomeTimeout
	OutcomeTransient
)

// RemoteOutcome carries either the vectors (Success) or the failure kind.
// Vectors are positional: Vectors[i] belongs to texts[i] and may be nil
// when the API failed that single entry.
type RemoteOutcome struct {
	Kind    OutcomeKind
	Vectors [][]float32
	Err     error
}

// RemoteClient is the narrow boundary to the external embedding service.
type RemoteClient interface {
	EmbedBatch(ctx context.Context, texts []string) RemoteOutcome
}

// Action is what the provider does about a non-success outcome.
type Action int

const (
	ActionRetry Action = iota
	ActionFallback
	ActionFatal
)

// Decide is the retry/fallback decision table. attempt is 0-based: every
// transient failure kind gets one retry after backoff, then the local
// fallback. Auth failures are fatal immediately; substituting a local
// vector would mask a misconfiguration.
func Decide(kind OutcomeKind, attempt int) Action {
	switch kind {
	case OutcomeAuthError:
		return ActionFatal
	case OutcomeRateLimited, OutcomeTimeout, OutcomeTransient:
		if attempt == 0 {
			return ActionRetry
		}
		return ActionFallback
	default:
		return ActionFallback
	}
}

// Normalize scales v to unit length in place and returns it. Cosine
// scoring is only correct on unit vectors, so every vector that reaches
// the index goes through here. The zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}
