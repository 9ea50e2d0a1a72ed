package registry

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/data/redisStore"
	"github.com/synthiquery/api/internal/domain/docModel"
	"github.com/synthiquery/api/pkg/logger_i"
)

const docKeyPrefix = "doc:"
const docOrderKey = "doc:order"

// DocumentStore persists document records. List returns documents in
// first-registration order; that order is also the final search tie-break.
type DocumentStore interface {
	Save(ctx context.Context, doc docModel.Document) error
	Get(ctx context.Context, documentId string) (docModel.Document, bool)
	Delete(ctx context.Context, documentId string) error
	List(ctx context.Context) ([]docModel.Document, error)
	Clear(ctx context.Context) error
}

type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	store := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if store == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test doc store"),
	}
}

func (s *RedisDocumentStore) Save(ctx context.Context, doc docModel.Document) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", doc.Id)

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	// push to the order list only on first registration, re-saves keep rank
	known, err := s.store.Exists(ctx, docKeyPrefix+doc.Id)
	if err != nil {
		return err
	}
	if !known {
		if err := s.store.ListPush(ctx, docOrderKey, doc.Id); err != nil {
			log.Error("error recording document order", "error:", err)
			return err
		}
	}

	err = s.store.Set(ctx, docKeyPrefix+doc.Id, data, 0)
	if err == nil {
		log.Debug("Saved document record")
	}
	return err
}

func (s *RedisDocumentStore) Get(ctx context.Context, documentId string) (docModel.Document, bool) {
	var doc docModel.Document
	val, err := s.store.Get(ctx, docKeyPrefix+documentId)
	if s.store.IsNil(err) {
		return doc, false
	} else if err != nil {
		return doc, false
	}

	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) Delete(ctx context.Context, documentId string) error {
	if err := s.store.Del(ctx, docKeyPrefix+documentId); err != nil {
		return err
	}
	return s.store.ListRemove(ctx, docOrderKey, documentId)
}

func (s *RedisDocumentStore) List(ctx context.Context) ([]docModel.Document, error) {
	ids, err := s.store.ListGetAll(ctx, docOrderKey)
	if err != nil {
		return nil, err
	}

	docs := make([]docModel.Document, 0, len(ids))
	for _, id := range ids {
		if doc, found := s.Get(ctx, id); found {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *RedisDocumentStore) Clear(ctx context.Context) error {
	return s.store.FlushDB(ctx)
}

type InMemoryDocumentStore struct {
	mu    sync.RWMutex
	docs  map[string]docModel.Document
	order []string
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		docs: make(map[string]docModel.Document),
	}
}

func (s *InMemoryDocumentStore) Save(ctx context.Context, doc docModel.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.docs[doc.Id]; !known {
		s.order = append(s.order, doc.Id)
	}
	s.docs[doc.Id] = doc
	return nil
}

func (s *InMemoryDocumentStore) Get(ctx context.Context, documentId string) (docModel.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, found := s.docs[documentId]
	return doc, found
}

func (s *InMemoryDocumentStore) Delete(ctx context.Context, documentId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, documentId)
	for i, id := range s.order {
		if id == documentId {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemoryDocumentStore) List(ctx context.Context) ([]docModel.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]docModel.Document, 0, len(s.order))
	for _, id := range s.order {
		if doc, found := s.docs[id]; found {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *InMemoryDocumentStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]docModel.Document)
	s.order = nil
	return nil
}
