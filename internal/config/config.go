package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//job execution deadlines, ingest embeds every chunk so it gets more room
	JobQueryTimeout  = 2 * time.Minute
	JobIngestTimeout = 10 * time.Minute

	//uploads
	MaxUploadSizeBytes int64 = 32 << 20

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis has 16 DBs we can use
	RedisJobStore      = 0
	RedisMessageStore  = 1
	RedisDocumentStore = 2

	//redis timeouts
	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour
)

// Tunables below have documented defaults and can be overridden by
// synthiquery.yaml or environment variables, see load.go.
var (
	// chunking: window/overlap are counted in runes, stride is window-overlap
	ChunkWindow    = 1000
	ChunkOverlap   = 200
	MinChunkLength = 20

	// retrieval
	TopKDefault    = 5
	ScoreThreshold = float32(0.15)

	// embeddings share one vector space, so the remote model and the local
	// fallback must agree on this dimension
	EmbeddingOutputDimensionality int32 = 384
	GoogleEmbeddingModel                = "gemini-embedding-001"
	GoogleEmbeddingAPIKey               = ""
	EmbedTimeout                        = 30 * time.Second
	EmbedRetryBackoff                   = 5 * time.Second

	// generation (OpenAI chat-completions protocol; Groq by default)
	GenerationBaseURL = "https://api.groq.com/openai/v1"
	GenerationModel   = "llama-3.3-70b-8192"
	GenerationAPIKey  = ""
	GenerateTimeout   = 60 * time.Second

	SystemPrompt = "You are a helpful assistant that answers questions using only the provided document excerpts. " +
		"Each excerpt is tagged [Document N] with its source file and chunk position. " +
		"Answer from the context alone and cite the [Document N] tags you used. " +
		"If the context does not contain the answer, say so plainly instead of guessing."
	NoContextAnswer = "I couldn't find relevant information in the uploaded documents to answer your question."
	FallbackAnswer  = "I found relevant passages but couldn't generate an answer right now. Please try again."

	CitationSnippetRunes = 200

	// vector index
	CollectionName        = "pdf_documents"
	CacheCollectionName   = "semantic-cache"
	CacheSimilarityCutoff = float32(0.97)
	QdrantHost            = "localhost"
	QdrantGrpcPort        = 6334
	QdrantUseTLS          = false
	QdrantPoolSize        = 1 //2-5 is preferred for prod according to documentation

	//redis
	RedisAddr     = "127.0.0.1:6379"
	RedisPassword = ""

	//auth
	AuthToken    = ""
	NoAuthBypass = true //no token configured yet, flip once AuthToken is set
)
