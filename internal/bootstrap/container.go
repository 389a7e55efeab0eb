package bootstrap

import (
	"context"
	"fmt"
	"time"

	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/controller"
	"ai-chatbot-be/internal/metrics"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/internal/repository/rediscache"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/llm/factory"
	"ai-chatbot-be/pkg/llm/gateway"
	"ai-chatbot-be/pkg/rag/executor"
	"ai-chatbot-be/pkg/rag/intent"
	"ai-chatbot-be/pkg/rag/prompt"
	"ai-chatbot-be/pkg/rag/response"
	"ai-chatbot-be/pkg/rag/search"
	"ai-chatbot-be/pkg/rag/session"

	pktNats "ai-chatbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger    logger.ILogger
	LLMLogger logger.ILogger

	// Controllers
	ChatbotController   controller.IChatbotController
	ConfigController    controller.IConfigController
	KnowledgeController controller.IKnowledgeController

	// Exposed for main.go to run
	ConsumerService  service.IConsumerService
	ConfigService    service.IConfigService
	EmbeddingService service.IEmbeddingService
	Gateway          *gateway.Gateway

	// EventSubscriber is nil when NATS is not configured.
	EventSubscriber *pktNats.Subscriber

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	ctx := context.Background()

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)

	c := &Container{
		Logger:    sysLogger,
		LLMLogger: llmLogger,
	}

	// 2. Job queue (INDEX_SEGMENT)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Event bus
	var eventPublisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS publisher unavailable, events are dropped", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS subscriber unavailable, mode changes are not synced", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			c.EventSubscriber = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// 4. Embeddings and vector index
	embeddingModel := cfg.Ai.EmbeddingModel
	embeddingBaseURL := cfg.Ai.EmbeddingBaseURL
	if cfg.Ai.EmbeddingProvider == constant.EmbeddingProviderOllama {
		embeddingModel = cfg.Ai.OllamaEmbeddingModel
		embeddingBaseURL = cfg.Ai.OllamaBaseURL
	}
	embeddingProvider, err := factory.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		embeddingBaseURL,
		cfg.Ai.EmbeddingAPIKey,
		embeddingModel,
		cfg.Ai.EmbeddingTimeout,
	)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
		"provider": embeddingProvider.Name(),
	})

	embeddingService := service.NewEmbeddingService(
		embeddingProvider,
		uowFactory,
		eventPublisher,
		service.EmbeddingServiceConfig{
			Dimension:     cfg.Ai.EmbeddingDimension,
			Timeout:       cfg.Ai.EmbeddingTimeout,
			VectorBackend: cfg.Ai.VectorBackend,
			Concurrency:   cfg.Ai.ReindexConcurrency,
			RatePerSec:    cfg.Ai.ReindexRatePerSec,
		},
		sysLogger,
	)

	// 5. LLM gateway
	fragments := service.ResolvePromptFragments(ctx, uowFactory, defaultFragments(cfg.Prompt), sysLogger)
	llmGateway, localBackend, err := factory.NewGateway(factory.Settings{
		ChatMode:          cfg.Ai.ChatMode,
		OllamaBaseURL:     cfg.Ai.OllamaBaseURL,
		OllamaModel:       cfg.Ai.OllamaModel,
		RemoteBaseURL:     cfg.Ai.RemoteBaseURL,
		RemoteAPIKey:      cfg.Ai.RemoteAPIKey,
		RemoteModel:       cfg.Ai.RemoteModel,
		RemoteTemperature: cfg.Ai.RemoteTemperature,
		RemoteMaxTokens:   cfg.Ai.RemoteMaxTokens,
		Timeout:           cfg.Ai.GenerationTimeout,
		BreakerCooldown:   cfg.Ai.BreakerCooldown,
		Fragments:         fragments,
	}, llmLogger, metrics.InstrumentBackend)
	if err != nil {
		return nil, fmt.Errorf("llm gateway: %w", err)
	}
	c.Gateway = llmGateway

	if err := metrics.RegisterGaugeFuncs(localBackend.Breaker(), embeddingService.IndexSize); err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to register gauges", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// 6. Sessions
	sessionRepo, closeSessions := newSessionRepository(ctx, cfg, sysLogger)
	c.closers = append(c.closers, closeSessions)
	sessionManager := session.NewManager(sessionRepo, sysLogger)

	// 7. RAG pipeline
	retriever := search.NewOrchestrator(embeddingService, embeddingService, embeddingService, sysLogger)
	pipeline := executor.NewPipelineExecutor(retriever, executor.Config{
		Search: search.Config{
			TopK:          cfg.Ai.TopK,
			MinSimilarity: cfg.Ai.SimilarityThreshold,
		},
		HistoryPairs: constant.ContextWindowPairs,
	}, sysLogger)

	// 8. Services
	publisherService := service.NewPublisherService(cfg.Keys.IndexTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IndexTopicName,
		uowFactory,
		embeddingService,
		sysLogger,
	)

	configService := service.NewConfigService(uowFactory, llmGateway, fragments, eventPublisher, cfg.App.InstanceID, sysLogger)
	knowledgeService := service.NewKnowledgeService(uowFactory, embeddingService, publisherService, eventPublisher, sysLogger)
	chatbotService := service.NewChatbotService(
		uowFactory,
		sessionManager,
		llmGateway,
		intent.NewClassifier(llmLogger),
		pipeline,
		response.NewPicker(),
		eventPublisher,
		sysLogger,
		llmLogger,
	)

	c.ConsumerService = consumerService
	c.ConfigService = configService
	c.EmbeddingService = embeddingService

	// 9. Controllers
	c.ChatbotController = controller.NewChatbotController(chatbotService, cfg.Keys.JwtSecret)
	c.ConfigController = controller.NewConfigController(configService, cfg.Keys.JwtSecret)
	c.KnowledgeController = controller.NewKnowledgeController(knowledgeService, cfg.Keys.JwtSecret)

	return c, nil
}

// Close releases queues and connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
	_ = c.LLMLogger.Sync()
}

// defaultFragments applies env overrides on top of the built-in prompts.
func defaultFragments(p config.PromptConfig) prompt.Fragments {
	pick := func(override, fallback string) string {
		if override != "" {
			return override
		}
		return fallback
	}
	return prompt.Fragments{
		System:               pick(p.System, constant.DefaultSystemPrompt),
		PreventHallucination: pick(p.PreventHallucination, constant.DefaultPreventHallucinationPrompt),
		Citation:             pick(p.Citation, constant.DefaultCitationPrompt),
		FormatInstruction:    pick(p.FormatInstruction, constant.DefaultFormatInstruction),
	}
}

func newSessionRepository(ctx context.Context, cfg *config.Config, log logger.ILogger) (session.Repository, func()) {
	noop := func() {}
	if cfg.Session.Store != constant.SessionStoreRedis {
		return memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.CleanupInterval), noop
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as address", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		log.Warn("BOOTSTRAP", "Redis unavailable, sessions kept in memory", map[string]interface{}{
			"error": err.Error(),
		})
		_ = rdb.Close()
		return memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.CleanupInterval), noop
	}

	return rediscache.NewSessionRepository(rdb, cfg.Session.TTL), func() { _ = rdb.Close() }
}
