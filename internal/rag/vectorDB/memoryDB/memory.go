package memoryDB

import (
	"context"
	"sort"
	"sync"

	"github.com/synthiquery/api/internal/rag/vectorDB"
	"github.com/synthiquery/api/pkg/logger_i"
)

// Store is the in-process vector index. It serves two jobs: the offline
// fallback when Qdrant is unreachable at startup, and the reference
// implementation of the search contract (exact cosine scores, exact tie
// ordering) that the tests pin down.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]vectorDB.Entry
	docOrder map[string]int // document id -> insertion rank, for tie-breaking
	nextRank int
	logger   *logger_i.Logger
}

func InitStore() *Store {
	return &Store{
		entries:  make(map[string]vectorDB.Entry),
		docOrder: make(map[string]int),
		logger:   logger_i.NewLogger("InMem VectorIndex"),
	}
}

func (s *Store) Upsert(ctx context.Context, entry vectorDB.Entry) error {
	return s.UpsertBatch(ctx, []vectorDB.Entry{entry})
}

func (s *Store) UpsertBatch(ctx context.Context, entries []vectorDB.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if _, seen := s.docOrder[e.Payload.DocumentId]; !seen {
			s.docOrder[e.Payload.DocumentId] = s.nextRank
			s.nextRank++
		}
		s.entries[e.ChunkId] = e
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]vectorDB.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 || len(s.entries) == 0 {
		return []vectorDB.Match{}, nil
	}

	matches := make([]vectorDB.Match, 0, len(s.entries))
	for _, e := range s.entries {
		matches = append(matches, vectorDB.Match{
			ChunkId: e.ChunkId,
			Score:   dot(vector, e.Vector),
			Payload: e.Payload,
		})
	}

	// score desc, then lower seq, then earlier-ingested document
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Payload.Seq != matches[j].Payload.Seq {
			return matches[i].Payload.Seq < matches[j].Payload.Seq
		}
		return s.docOrder[matches[i].Payload.DocumentId] < s.docOrder[matches[j].Payload.DocumentId]
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *Store) DeleteByDocument(ctx context.Context, documentId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.Payload.DocumentId == documentId {
			delete(s.entries, id)
		}
	}
	delete(s.docOrder, documentId)
	return nil
}

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]vectorDB.Entry)
	s.docOrder = make(map[string]int)
	s.nextRank = 0
	s.logger.Info("Vector index reset")
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *Store) CountByDocument(ctx context.Context, documentId string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, e := range s.entries {
		if e.Payload.DocumentId == documentId {
			count++
		}
	}
	return count, nil
}

// dot is cosine similarity here because every stored and query vector is
// unit-normalized before it reaches the index.
func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
