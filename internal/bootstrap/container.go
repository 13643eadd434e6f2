package bootstrap

import (
	"context"
	"log"
	"time"

	"vault-copilot-be/internal/config"
	"vault-copilot-be/internal/controller"
	"vault-copilot-be/internal/pkg/logger"
	"vault-copilot-be/internal/repository"
	repoMemory "vault-copilot-be/internal/repository/memory"
	"vault-copilot-be/internal/service"
	"vault-copilot-be/pkg/agent"
	"vault-copilot-be/pkg/embedding"
	"vault-copilot-be/pkg/llm"
	"vault-copilot-be/pkg/llm/factory"
	pktNats "vault-copilot-be/pkg/nats"
	"vault-copilot-be/pkg/retrieval"
	"vault-copilot-be/pkg/vaultfs"
	"vault-copilot-be/pkg/vectorstore/pgvector"
	"vault-copilot-be/pkg/websearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	ToolsController controller.IToolsController

	// Background services (exposed for main.go to run)
	IndexingService service.IIndexingService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	conversationRepo := repository.NewConversationRepository(db)
	goalRepo := repoMemory.NewGoalRepository()

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	embeddingProvider := embedding.NewOllamaProvider(
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.EmbeddingModel,
	)
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	baseLLM, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// All model traffic (classifier and agents included) goes through the
	// isolated LLM log, not the application log.
	llmTraffic := logger.NewLLMLogger(cfg.App.LLMLogFilePath)
	llmProvider := llm.NewLoggedProvider(baseLLM, llmTraffic)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
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

	vectorStore := pgvector.NewStore(db)
	fs := vaultfs.NewLocal(cfg.App.VaultRoot)

	webClient := websearch.NewCachedClient(
		websearch.NewDuckDuckGoClient(),
		rdb,
		time.Duration(cfg.Retrieval.WebCacheTTLMinutes)*time.Minute,
	)

	// 5. Retrieval
	vaultRetriever := retrieval.NewVaultRetriever(embeddingProvider, vectorStore)
	retrievalService := retrieval.NewService(
		embeddingProvider,
		vectorStore,
		nil, // no reranker wired yet
		webClient,
		retrieval.Config{
			SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
			TopK:                cfg.Retrieval.TopK,
			WebMaxResults:       cfg.Retrieval.WebMaxResults,
		},
		sysLogger,
	)

	// 6. Agent pipeline
	publisherService := service.NewPublisherService(pubSub, natsPub, sysLogger)
	studyPlanner := service.NewStudyPlannerService(llmProvider, vaultRetriever, goalRepo, publisherService, sysLogger)

	createNoteAgent := agent.NewCreateNoteAgent(fs, llmProvider, publisherService, sysLogger)
	searchNoteAgent := agent.NewSearchNoteAgent(vaultRetriever, fs, sysLogger)
	summarizeAgent := agent.NewSummarizeAgent(llmProvider, fs, vaultRetriever, sysLogger)
	flashcardAgent := agent.NewFlashcardAgent(fs, llmProvider, vaultRetriever, publisherService, sysLogger)
	studyAgent := agent.NewStudyAgent(studyPlanner, sysLogger)

	classifier := agent.NewClassifier(llmProvider, sysLogger)
	master := agent.NewMaster(
		classifier,
		createNoteAgent,
		searchNoteAgent,
		summarizeAgent,
		flashcardAgent,
		studyAgent,
		sysLogger,
	)

	// 7. Services
	chatService := service.NewChatService(cfg, conversationRepo, master, retrievalService, llmProvider, sysLogger)
	toolsService := service.NewToolsService(cfg, createNoteAgent, searchNoteAgent, summarizeAgent, flashcardAgent, studyAgent, fs, publisherService)
	indexingService := service.NewIndexingService(pubSub, fs, embeddingProvider, vectorStore, sysLogger)

	return &Container{
		ChatController:  controller.NewChatController(chatService),
		ToolsController: controller.NewToolsController(toolsService),
		IndexingService: indexingService,
	}
}
