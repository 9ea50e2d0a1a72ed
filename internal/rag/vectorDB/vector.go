package vectorDB

import "context"

// Payload is the metadata stored alongside every chunk vector. The index
// owns the vectors; the registry only references entries by document id.
type Payload struct {
	DocumentId   string
	DocumentName string
	Seq          int
	Text         string
	Fallback     bool
	IngestedAt   int64
}

type Entry struct {
	ChunkId string
	Vector  []float32
	Payload Payload
}

// Match is one search hit. Score is cosine similarity on unit vectors,
// so it lives in [-1, 1].
type Match struct {
	ChunkId string
	Score   float32
	Payload Payload
}

// Index is the persisted vector store contract. Upserts are idempotent
// by chunk id; deleting an unknown document id is a no-op; searching an
// empty index returns an empty result, not an error.
type Index interface {
	Upsert(ctx context.Context, entry Entry) error
	UpsertBatch(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, vector []float32, k int) ([]Match, error)
	DeleteByDocument(ctx context.Context, documentId string) error
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	CountByDocument(ctx context.Context, documentId string) (int, error)
}

// AnswerCache stores previously generated answers keyed by their query
// vector, for near-duplicate question short-circuiting.
type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
}
