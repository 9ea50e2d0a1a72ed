package docModel

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type IngestStatus string

const (
	StatusPending   IngestStatus = "pending"
	StatusProcessed IngestStatus = "processed"
	StatusFailed    IngestStatus = "failed"
)

type Document struct {
	Id             string       `json:"source_doc_id"`
	Name           string       `json:"doc_name"`
	ContentHash    string       `json:"content_hash"`
	ByteSize       int64        `json:"byte_size"`
	UploadedAt     time.Time    `json:"ingested_at"`
	TextLength     int          `json:"text_length"`
	ChunkCount     int          `json:"chunk_count"`
	FallbackChunks int          `json:"fallback_chunks"`
	Status         IngestStatus `json:"status"`
}

// pointNamespace keys the UUIDv5 derivation of chunk point ids.
var pointNamespace = uuid.MustParse("8f2c1d6e-1d33-4f3a-9c45-2a0b6d8e5a10")

// ContentHash returns the hex SHA-256 of the raw document bytes.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// DocumentId derives a stable document id from the identity pair
// (filename, content hash). Re-uploading identical bytes under the same
// name yields the same id, which is what makes upserts overwrite instead
// of duplicating.
func DocumentId(name string, contentHash string) string {
	sum := sha256.Sum256([]byte(name + "\x00" + contentHash))
	return "doc-" + hex.EncodeToString(sum[:12])
}

// ChunkPointId derives a deterministic UUID for the vector index entry of
// chunk seq of the given document. Deterministic ids are what make
// re-ingestion idempotent at the index level.
func ChunkPointId(documentId string, seq int) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("%s:%d", documentId, seq))).String()
}
