package registry

import (
	"context"

	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/domain/docModel"
	"github.com/synthiquery/api/internal/domain/ragerror"
	"github.com/synthiquery/api/internal/rag/vectorDB"
	"github.com/synthiquery/api/pkg/logger_i"
)

// Registry tracks which documents are in the knowledge base and keeps the
// vector index in lockstep with that list. Every mutation cascades to the
// index before the record changes, so a crash mid-delete leaves a record
// whose missing vectors the consistency check can spot.
type Registry struct {
	store  DocumentStore
	index  vectorDB.Index
	logger *logger_i.Logger
}

func New(store DocumentStore, index vectorDB.Index) *Registry {
	return &Registry{
		store:  store,
		index:  index,
		logger: logger_i.NewLogger("Registry"),
	}
}

func (r *Registry) Register(ctx context.Context, doc docModel.Document) error {
	return r.store.Save(ctx, doc)
}

func (r *Registry) Get(ctx context.Context, documentId string) (docModel.Document, bool) {
	return r.store.Get(ctx, documentId)
}

func (r *Registry) List(ctx context.Context) ([]docModel.Document, error) {
	return r.store.List(ctx)
}

// Delete removes a document and all of its index entries. Returns false
// when the id was never registered; the index is left untouched in that
// case.
func (r *Registry) Delete(ctx context.Context, documentId string) (bool, error) {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId)

	if _, found := r.store.Get(ctx, documentId); !found {
		log.Debug("Delete of unknown document, nothing to do")
		return false, nil
	}

	// index first: an orphaned record is detectable, orphaned vectors are not
	if err := r.index.DeleteByDocument(ctx, documentId); err != nil {
		return true, err
	}
	if err := r.store.Delete(ctx, documentId); err != nil {
		return true, err
	}

	log.Info("Document deleted")
	return true, nil
}

// ResetAll wipes the index and the document records together.
func (r *Registry) ResetAll(ctx context.Context) error {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if err := r.index.Reset(ctx); err != nil {
		return err
	}
	if err := r.store.Clear(ctx); err != nil {
		return err
	}

	log.Info("Knowledge base reset")
	return nil
}

// CheckConsistency compares the chunk counts the records claim against
// what the index actually holds. A mismatch is reported, never repaired.
func (r *Registry) CheckConsistency(ctx context.Context) error {
	docs, err := r.store.List(ctx)
	if err != nil {
		return err
	}

	registered := 0
	for _, doc := range docs {
		if doc.Status == docModel.StatusProcessed {
			registered += doc.ChunkCount
		}
	}

	indexed, err := r.index.Count(ctx)
	if err != nil {
		return err
	}

	if registered != indexed {
		return &ragerror.IndexConsistencyError{
			RegistryCount: registered,
			IndexCount:    indexed,
		}
	}
	return nil
}
