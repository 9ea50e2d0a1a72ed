// @title           SynthiQuery API
// @version         1.0
// @description     Ask questions about your uploaded PDFs. Asynchronous ingestion and query jobs with citations.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/data/store"
	jobmodel "github.com/synthiquery/api/internal/domain/jobModel"
	"github.com/synthiquery/api/internal/handlers"
	"github.com/synthiquery/api/internal/job"
	"github.com/synthiquery/api/internal/rag"
	"github.com/synthiquery/api/internal/rag/embedding"
	"github.com/synthiquery/api/internal/rag/embedding/googleEmbedding"
	"github.com/synthiquery/api/internal/rag/embedding/hashEmbedding"
	"github.com/synthiquery/api/internal/rag/extract"
	"github.com/synthiquery/api/internal/rag/ingest"
	"github.com/synthiquery/api/internal/rag/llm/groq"
	"github.com/synthiquery/api/internal/rag/retrieve"
	"github.com/synthiquery/api/internal/rag/synth"
	"github.com/synthiquery/api/internal/rag/vectorDB"
	"github.com/synthiquery/api/internal/rag/vectorDB/memoryDB"
	"github.com/synthiquery/api/internal/rag/vectorDB/qdrantDB"
	"github.com/synthiquery/api/internal/registry"
	"github.com/synthiquery/api/internal/server"
	"github.com/synthiquery/api/internal/worker"
	"github.com/synthiquery/api/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	if err := config.Load(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		return
	}
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	jobStore := store.GetRedisJobStore(serviceContext)
	messageStore := store.GetRedisMessageStore(serviceContext)
	if jobStore == nil || messageStore == nil {
		logger.Error("Redis stores are offline, using in-memory stores")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.MessageStore = messageStore
	}
	service := job.InitJobService(serviceConfig)

	//vector index, falls back to the in-process store when Qdrant is down
	var index vectorDB.Index
	var answerCache vectorDB.AnswerCache
	if qdrantHolder := qdrantDB.GetQdrantClient(serviceContext); qdrantHolder != nil {
		index = qdrantHolder
		answerCache = qdrantHolder
	} else {
		logger.Error("Qdrant is offline, using the in-memory index. Data will not survive a restart.")
		index = memoryDB.InitStore()
	}

	//document registry, same fallback rule as the job stores
	var docStore registry.DocumentStore
	if redisDocs := registry.GetRedisDocumentStore(serviceContext); redisDocs != nil {
		docStore = redisDocs
	} else {
		docStore = registry.InitInMemoryDocumentStore()
	}
	docRegistry := registry.New(docStore, index)

	//embeddings: remote API with the local hashed fallback
	remoteEmbedder := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleEmbeddingAPIKey)
	if remoteEmbedder == nil {
		logger.Error("Remote embedding client unavailable, all vectors will use the local fallback")
	}
	embedder := embedding.NewProvider(remoteEmbedder, hashEmbedding.Embed)

	llmProvider := groq.GetGroqClient(serviceContext, config.GenerationModel, config.GenerationAPIKey)
	if llmProvider == nil {
		logger.Error("LLM provider unavailable, answers will degrade to the fallback message")
	}

	pipeline := ingest.NewPipeline(extract.New(), embedder, index, docRegistry, ingest.NewCoordinator())
	retriever := retrieve.New(embedder, index)
	synthesizer := synth.New(llmProvider)

	ragService := rag.NewService(retriever, synthesizer, pipeline, docRegistry, answerCache)

	handlers.InitJobHandler(service, ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
