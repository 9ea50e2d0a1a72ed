package rag_test

import (
	"context"

	"github.com/synthiquery/api/internal/rag/embedding"
)

// mockEmbedder implements embedding.Embedder
type mockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, query string) (embedding.Result, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([]embedding.Result, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) (embedding.Result, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return embedding.Result{Vector: []float32{1, 0, 0}}, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([]embedding.Result, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	results := make([]embedding.Result, len(chunks))
	for i := range results {
		results[i] = embedding.Result{Vector: []float32{1, 0, 0}}
	}
	return results, nil
}

// mockLLM implements llm.Provider
type mockLLM struct {
	OnGenerate func(ctx context.Context, query string, contextBlocks []string, messageHistory []string) (string, error)
}

func (m *mockLLM) Generate(ctx context.Context, query string, contextBlocks []string, messageHistory []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, query, contextBlocks, messageHistory)
	}
	return "mocked llm response", nil
}

// mockCache implements vectorDB.AnswerCache
type mockCache struct {
	OnGetCachedAnswer func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache     func(ctx context.Context, id string, vector []float32, answer string) error
}

func (m *mockCache) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, queryVector)
	}
	return "", false, nil
}

func (m *mockCache) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, vector, answer)
	}
	return nil
}

// mockExtractor implements ingest.TextExtractor
type mockExtractor struct {
	OnExtract func(path string) (string, error)
}

func (m *mockExtractor) Extract(path string) (string, error) {
	if m.OnExtract != nil {
		return m.OnExtract(path)
	}
	return "extracted document text", nil
}
