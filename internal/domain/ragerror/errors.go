package ragerror

import (
	"errors"
	"fmt"
)

// Failure kinds are converted once at the provider/index boundaries and
// matched with errors.As / errors.Is downstream, never re-derived from
// response shapes.

const (
	ReasonProtected = "protected"
	ReasonCorrupt   = "corrupt"
	ReasonEmpty     = "empty"
)

// ExtractionError means a single document could not be turned into text.
// It is recoverable: the document is marked failed, other documents are
// unaffected.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingTransientError triggers the local fallback embedding and is
// never surfaced to the user.
type EmbeddingTransientError struct {
	Err error
}

func (e *EmbeddingTransientError) Error() string {
	return fmt.Sprintf("transient embedding failure: %v", e.Err)
}

func (e *EmbeddingTransientError) Unwrap() error { return e.Err }

// EmbeddingFatalError covers auth/config failures of the embedding API.
// It halts the call and is surfaced to the operator; substituting a
// fallback vector would hide a misconfiguration.
type EmbeddingFatalError struct {
	Err error
}

func (e *EmbeddingFatalError) Error() string {
	return fmt.Sprintf("fatal embedding failure: %v", e.Err)
}

func (e *EmbeddingFatalError) Unwrap() error { return e.Err }

// IndexConsistencyError is produced by diagnostics when the registry and
// the vector index disagree. It is reported, never auto-corrected.
type IndexConsistencyError struct {
	RegistryCount int
	IndexCount    int
}

func (e *IndexConsistencyError) Error() string {
	return fmt.Sprintf("index inconsistency: registry says %d chunks, index holds %d entries", e.RegistryCount, e.IndexCount)
}

// GenerationError is recoverable: synthesis returns a fallback answer and
// the session continues.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ErrAlreadyProcessing rejects a concurrent ingestion of the same document
// identity.
var ErrAlreadyProcessing = errors.New("document is already being ingested")
