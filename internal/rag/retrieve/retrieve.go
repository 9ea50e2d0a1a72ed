package retrieve

import (
	"context"
	"sort"

	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/rag/embedding"
	"github.com/synthiquery/api/internal/rag/vectorDB"
	"github.com/synthiquery/api/pkg/logger_i"
)

// Retriever embeds a question and pulls the best-matching chunks out of
// the index. Results below the score threshold are dropped rather than
// padded, a thin result set is information the synthesizer uses.
type Retriever struct {
	embedder embedding.Embedder
	index    vectorDB.Index
	logger   *logger_i.Logger
}

func New(embedder embedding.Embedder, index vectorDB.Index) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		logger:   logger_i.NewLogger("Retriever"),
	}
}

// Retrieve returns up to k matches ordered by score, plus the query
// embedding so callers can reuse it for the answer cache. k <= 0 selects
// the default.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]vectorDB.Match, embedding.Result, error) {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if k <= 0 {
		k = config.TopKDefault
	}

	queryEmbedding, err := r.embedder.GetEmbedding(ctx, question)
	if err != nil {
		return nil, embedding.Result{}, err
	}
	if queryEmbedding.Fallback {
		log.Warn("Query embedded with local fallback, scores will be weak")
	}

	matches, err := r.index.Search(ctx, queryEmbedding.Vector, k)
	if err != nil {
		return nil, queryEmbedding, err
	}

	kept := matches[:0]
	for _, m := range matches {
		if m.Score >= config.ScoreThreshold {
			kept = append(kept, m)
		}
	}

	orderMatches(kept)
	if len(kept) > k {
		kept = kept[:k]
	}

	log.Debug("Retrieval done", "candidates", len(matches), "kept", len(kept))
	return kept, queryEmbedding, nil
}

// orderMatches makes result order identical across index backends: score
// descending, then chunk sequence, then ingestion time, then document id.
func orderMatches(matches []vectorDB.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Payload.Seq != matches[j].Payload.Seq {
			return matches[i].Payload.Seq < matches[j].Payload.Seq
		}
		if matches[i].Payload.IngestedAt != matches[j].Payload.IngestedAt {
			return matches[i].Payload.IngestedAt < matches[j].Payload.IngestedAt
		}
		return matches[i].Payload.DocumentId < matches[j].Payload.DocumentId
	})
}
