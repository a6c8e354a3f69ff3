package bootstrap

import (
	"context"
	"log"

	"ai-studypartner-be/internal/config"
	"ai-studypartner-be/internal/controller"
	"ai-studypartner-be/internal/handler"
	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/internal/repository/implementation"
	"ai-studypartner-be/internal/repository/indexstore"
	"ai-studypartner-be/internal/repository/memory"
	"ai-studypartner-be/internal/repository/unitofwork"
	"ai-studypartner-be/internal/service"
	"ai-studypartner-be/internal/websocket"
	"ai-studypartner-be/pkg/agent/classifier"
	"ai-studypartner-be/pkg/agent/engine"
	"ai-studypartner-be/pkg/agent/generator"
	"ai-studypartner-be/pkg/agent/toolloop"
	"ai-studypartner-be/pkg/agent/tools"
	"ai-studypartner-be/pkg/embedding"
	"ai-studypartner-be/pkg/embedding/jina"
	"ai-studypartner-be/pkg/extract"
	"ai-studypartner-be/pkg/index"
	"ai-studypartner-be/pkg/llm/factory"

	pktNats "ai-studypartner-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController   controller.IAuthController
	ChatController   controller.IChatController
	UploadController controller.IUploadController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	FacultyService  service.IFacultyService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.Anthropic,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-memory session state (mode, sticky route, uploaded text, answer key)
	sessionRepo := memory.NewSessionRepository()

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
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

	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Content Index (two scopes: per-session uploads, durable reference)
	contentStore := indexstore.NewStore(db)
	registry := index.NewRegistry(embeddingProvider, contentStore, sysLogger)

	// 6. Turn Engine
	toolRegistry := tools.NewRegistry(
		tools.NewWebSearchTool(),
		tools.NewScrapeTool(),
		tools.NewCalculateTool(),
		tools.NewDescribeImageTool(cfg.Ai.OllamaBaseURL, cfg.Ai.VisionModel),
		tools.NewFacultyLookupTool(cfg.Corpus.FacultySite),
	)
	loop := toolloop.NewLoop(llmProvider, toolRegistry, sysLogger)
	intentClassifier := classifier.NewClassifier(llmProvider, sysLogger)

	turnEngine := engine.New(
		intentClassifier,
		registry,
		sysLogger,
		generator.NewQueryGenerator(loop, llmProvider),
		generator.NewSummarizerGenerator(llmProvider),
		generator.NewSimplifierGenerator(loop),
		generator.NewQuizSetterGenerator(llmProvider),
		generator.NewQuizGraderGenerator(llmProvider),
		generator.NewAdvisorGenerator(loop),
	)

	// 7. Services
	authService := service.NewAuthService(uowFactory, natsPub)
	chatService := service.NewChatService(uowFactory, turnEngine, registry, sessionRepo, natsPub, sysLogger)
	uploadService := service.NewUploadService(uowFactory, extract.NewTextExtractor(), sessionRepo, registry, pubSub, sysLogger)
	consumerService := service.NewConsumerService(pubSub, service.TopicIndexDocument, registry, natsPub, sysLogger)
	facultyService := service.NewFacultyService(registry, natsPub, sysLogger)

	// 8. Notification System
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger)

	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	return &Container{
		AuthController:   controller.NewAuthController(authService),
		ChatController:   controller.NewChatController(chatService),
		UploadController: controller.NewUploadController(uploadService),

		ConsumerService: consumerService,
		FacultyService:  facultyService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
