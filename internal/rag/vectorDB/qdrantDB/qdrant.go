package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/qdrant/go-client/qdrant"
	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/rag/vectorDB"
	"github.com/synthiquery/api/pkg/logger_i"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once

// chunkCollection and vectorDimension are read per call, never cached at
// package init: config.Load() runs after this package is initialized.
func chunkCollection() string {
	return config.CollectionName
}

func vectorDimension() uint64 {
	return uint64(config.EmbeddingOutputDimensionality)
}

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			initCacheCollection(ctx, qdrantInstance)
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient() *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
	}

	err = createCollection(context.Background(), client, chunkCollection())
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", chunkCollection(), "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Upsert(ctx context.Context, entry vectorDB.Entry) error {
	return db.UpsertBatch(ctx, []vectorDB.Entry{entry})
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, entries []vectorDB.Entry) error {
	qdrantPoints := make([]*qdrant.PointStruct, len(entries))

	for i, entry := range entries {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(entry.ChunkId),
			Vectors: qdrant.NewVectors(entry.Vector...),

			Payload: qdrant.NewValueMap(map[string]any{
				"content":       entry.Payload.Text,
				"seq":           int64(entry.Payload.Seq),
				"source_doc_id": entry.Payload.DocumentId,
				"doc_name":      entry.Payload.DocumentName,
				"fallback":      entry.Payload.Fallback,
				"ingested_at":   entry.Payload.IngestedAt,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: chunkCollection(),
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})

	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	return nil
}

func (db *ClientHolder) Search(ctx context.Context, vectorFloat []float32, k int) ([]vectorDB.Match, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if k <= 0 {
		return []vectorDB.Match{}, nil
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: chunkCollection(),
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]vectorDB.Match, 0, len(result))
	for _, hit := range result {
		matches = append(matches, vectorDB.Match{
			ChunkId: hit.Id.GetUuid(),
			Score:   hit.Score,
			Payload: vectorDB.Payload{
				DocumentId:   hit.Payload["source_doc_id"].GetStringValue(),
				DocumentName: hit.Payload["doc_name"].GetStringValue(),
				Seq:          int(hit.Payload["seq"].GetIntegerValue()),
				Text:         hit.Payload["content"].GetStringValue(),
				Fallback:     hit.Payload["fallback"].GetBoolValue(),
				IngestedAt:   hit.Payload["ingested_at"].GetIntegerValue(),
			},
		})
	}

	loggr.Debug("Qdrant search done", "matches", len(matches))
	return matches, nil
}

func (db *ClientHolder) DeleteByDocument(ctx context.Context, documentId string) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: chunkCollection(),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("source_doc_id", documentId),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		loggr.Error("Deleting document points failed", "documentId", documentId, "error", err)
		return fmt.Errorf("qdrant delete failed: %w", err)
	}

	loggr.Info("Deleted document points", "documentId", documentId)
	return nil
}

// Reset drops and recreates the chunk collection. The cache collection
// goes with it so stale answers cannot cite deleted documents.
func (db *ClientHolder) Reset(ctx context.Context) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	for _, name := range []string{chunkCollection(), config.CacheCollectionName} {
		if err := db.QObj.DeleteCollection(ctx, name); err != nil {
			loggr.Error("Dropping collection failed", "collection", name, "error", err)
			return err
		}
		if err := createCollection(ctx, db.QObj, name); err != nil {
			loggr.Error("Recreating collection failed", "collection", name, "error", err)
			return err
		}
	}

	loggr.Info("Vector index reset")
	return nil
}

func (db *ClientHolder) Count(ctx context.Context) (int, error) {
	count, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: chunkCollection(),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (db *ClientHolder) CountByDocument(ctx context.Context, documentId string) (int, error) {
	count, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: chunkCollection(),
		Exact:          qdrant.PtrOf(true),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("source_doc_id", documentId),
			},
		},
	})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {

		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorDimension(),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
