package registry

import (
	"context"
	"errors"

	"github.com/synthiquery/api/internal/domain/ragerror"
)

type DocumentHealth struct {
	DocumentId       string `json:"document_id"`
	DocumentName     string `json:"document_name"`
	Status           string `json:"status"`
	RegisteredChunks int    `json:"registered_chunks"`
	IndexedChunks    int    `json:"indexed_chunks"`
	FallbackChunks   int    `json:"fallback_chunks"`
}

type Report struct {
	DocumentCount    int              `json:"document_count"`
	IndexEntryCount  int              `json:"index_entry_count"`
	FallbackFraction float64          `json:"fallback_fraction"`
	Consistent       bool             `json:"consistent"`
	Inconsistency    string           `json:"inconsistency,omitempty"`
	Documents        []DocumentHealth `json:"documents"`
}

// Diagnose builds the health report operators read when retrieval quality
// looks off. It is read-only.
func (r *Registry) Diagnose(ctx context.Context) (Report, error) {
	docs, err := r.store.List(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		DocumentCount: len(docs),
		Documents:     make([]DocumentHealth, 0, len(docs)),
		Consistent:    true,
	}

	totalChunks := 0
	fallbackChunks := 0
	for _, doc := range docs {
		indexed, err := r.index.CountByDocument(ctx, doc.Id)
		if err != nil {
			return Report{}, err
		}
		report.Documents = append(report.Documents, DocumentHealth{
			DocumentId:       doc.Id,
			DocumentName:     doc.Name,
			Status:           string(doc.Status),
			RegisteredChunks: doc.ChunkCount,
			IndexedChunks:    indexed,
			FallbackChunks:   doc.FallbackChunks,
		})
		totalChunks += doc.ChunkCount
		fallbackChunks += doc.FallbackChunks
	}

	if totalChunks > 0 {
		report.FallbackFraction = float64(fallbackChunks) / float64(totalChunks)
	}

	entryCount, err := r.index.Count(ctx)
	if err != nil {
		return Report{}, err
	}
	report.IndexEntryCount = entryCount

	if err := r.CheckConsistency(ctx); err != nil {
		var mismatch *ragerror.IndexConsistencyError
		if errors.As(err, &mismatch) {
			report.Consistent = false
			report.Inconsistency = mismatch.Error()
		} else {
			return Report{}, err
		}
	}

	return report, nil
}
