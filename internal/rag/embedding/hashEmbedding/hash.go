package hashEmbedding

import (
	"hash/fnv"
	"strings"

	"github.com/synthiquery/api/internal/rag/embedding"
)

// Deterministic local embeddings: hashed trigram counts projected into a
// fixed number of buckets. These live in the same vector space dimension
// as the remote embeddings so both can share one collection, but they are
// only self-consistent - a fallback vector is comparable to other
// fallback vectors from this same scheme, not semantically to remote
// ones. That approximation is the whole point: retrieval keeps working
// while the embedding API is down.

// Embed computes the unit-normalized feature-hash vector of text.
// Identical input always produces the identical vector. Empty or
// whitespace-only text yields the zero vector.
func Embed(text string, dim int) []float32 {
	vec := make([]float32, dim)
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if normalized == "" {
		return vec
	}

	runes := []rune(normalized)
	if len(runes) < 3 {
		accumulate(vec, string(runes))
		return embedding.Normalize(vec)
	}

	for i := 0; i+3 <= len(runes); i++ {
		accumulate(vec, string(runes[i:i+3]))
	}
	return embedding.Normalize(vec)
}

// accumulate hashes one feature into its bucket. One hash bit picks the
// sign so opposing features cancel instead of everything drifting
// positive.
func accumulate(vec []float32, feature string) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(len(vec)))
	if sum&(1<<63) != 0 {
		vec[bucket] -= 1
	} else {
		vec[bucket] += 1
	}
}
