package googleEmbedding

import (
	"context"
	"errors"

	"github.com/synthiquery/api/internal/rag/embedding"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// classify converts a transport error into the one RemoteOutcome it maps
// to. This is the only place that looks at raw API errors.
func classify(err error) embedding.RemoteOutcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return embedding.RemoteOutcome{Kind: embedding.OutcomeTimeout, Err: err}
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted:
			return embedding.RemoteOutcome{Kind: embedding.OutcomeRateLimited, Err: err}
		case codes.Unauthenticated, codes.PermissionDenied:
			return embedding.RemoteOutcome{Kind: embedding.OutcomeAuthError, Err: err}
		case codes.DeadlineExceeded:
			return embedding.RemoteOutcome{Kind: embedding.OutcomeTimeout, Err: err}
		}
	}
	return embedding.RemoteOutcome{Kind: embedding.OutcomeTransient, Err: err}
}
