package bootstrap

import (
	"context"
	"log"

	"rag-assistant-be/internal/config"
	"rag-assistant-be/internal/constant"
	"rag-assistant-be/internal/controller"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/internal/repository/implementation"
	sessionmem "rag-assistant-be/internal/repository/memory"
	"rag-assistant-be/internal/repository/unitofwork"
	"rag-assistant-be/internal/service"
	"rag-assistant-be/pkg/analytics"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/llm/factory"
	"rag-assistant-be/pkg/rag/analyzer"
	ragmemory "rag-assistant-be/pkg/rag/memory"
	"rag-assistant-be/pkg/rag/pipeline"
	"rag-assistant-be/pkg/rag/rank"
	"rag-assistant-be/pkg/rag/response"
	"rag-assistant-be/pkg/rag/retrieval"

	pktNats "rag-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	QueryController    controller.IQueryController
	MemoryController   controller.IMemoryController
	DocumentController controller.IDocumentController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Session janitor inputs
	SessionStore *sessionmem.SessionStore
	Logger       logger.ILogger

	natsPublisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
		cfg.Ai.CallTimeout,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 5. Memory tiers
	sessionStore := sessionmem.NewSessionStore(
		cfg.Memory.SessionTimeout,
		cfg.Memory.SessionCleanupInterval,
		cfg.Memory.MaxConversationHistory,
	)
	shortTermStore := ragmemory.NewShortTermStore(rdb, cfg.Memory.ShortTermTTL, cfg.Memory.MaxRecentInteractions, sysLogger)
	longTermStore := ragmemory.NewLongTermStore(uowFactory, sysLogger)

	chunkRepo := implementation.NewDocumentChunkRepository(db)
	conversationMemory := ragmemory.NewConversationMemory(
		chunkRepo,
		embeddingProvider,
		cfg.Rag.MemoryCorpusID,
		cfg.Rag.SimilarityThreshold,
		sysLogger,
	)

	composer := ragmemory.NewComposer(
		sessionStore,
		shortTermStore,
		longTermStore,
		conversationMemory,
		cfg.Memory.MaxRecentInteractions,
		cfg.Memory.MaxConversationHistory,
		cfg.Rag.MaxResults,
		sysLogger,
	)

	// 6. Pipeline stages
	queryAnalyzer := analyzer.NewAnalyzer(llmProvider, sysLogger)
	searcher := retrieval.NewSearcher(chunkRepo, embeddingProvider, cfg.Rag.SimilarityThreshold, sysLogger)
	retriever := retrieval.NewRetriever(searcher, cfg.Rag.DocumentCorpusID, cfg.Rag.HybridAlpha, cfg.Rag.TopK, sysLogger)
	ranker := rank.NewRanker(cfg.Rag.EnableReranking, cfg.Rag.MaxRetrievalDocs, sysLogger)
	generator := response.NewGenerator(llmProvider, sysLogger)

	publisherService := service.NewPublisherService(constant.TopicInteractionLogged, pubSub)

	queryPipeline := pipeline.New(
		composer,
		queryAnalyzer,
		retriever,
		ranker,
		generator,
		sessionStore,
		shortTermStore,
		longTermStore,
		conversationMemory,
		publisherService,
		pipeline.Config{
			MaxResults:     cfg.Rag.MaxResults,
			SnippetLength:  cfg.Rag.SnippetLength,
			RequestTimeout: cfg.App.RequestTimeout,
		},
		sysLogger,
	)

	// 7. Analytics sink
	var sink analytics.Sink = analytics.NoopSink{}
	if natsPub != nil {
		sink = analytics.NewNatsSink(natsPub, cfg.Rag.AnalyticsSubject, sysLogger)
	}
	consumerService := service.NewConsumerService(pubSub, constant.TopicInteractionLogged, sink, sysLogger)

	// 8. Services and controllers
	queryService := service.NewQueryService(queryPipeline, sessionStore, sysLogger)
	memoryService := service.NewMemoryService(longTermStore, shortTermStore, sysLogger)
	documentService := service.NewDocumentService(uowFactory, embeddingProvider, cfg.Rag.DocumentCorpusID, sysLogger)

	return &Container{
		QueryController:    controller.NewQueryController(queryService),
		MemoryController:   controller.NewMemoryController(memoryService),
		DocumentController: controller.NewDocumentController(documentService),
		ConsumerService:    consumerService,
		SessionStore:       sessionStore,
		Logger:             sysLogger,
		natsPublisher:      natsPub,
	}
}

// Close releases external connections on shutdown.
func (c *Container) Close() {
	if c.natsPublisher != nil {
		c.natsPublisher.Close()
	}
}
