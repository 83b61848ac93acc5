package main

import (
	"context"
	"log"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/adapters/datasource/postgres"
	"github.com/quipu-ai/quipu-engine/pkg/config"
	"github.com/quipu-ai/quipu-engine/pkg/handlers"
	"github.com/quipu-ai/quipu-engine/pkg/llm"
	"github.com/quipu-ai/quipu-engine/pkg/logging"
	"github.com/quipu-ai/quipu-engine/pkg/middleware"
	"github.com/quipu-ai/quipu-engine/pkg/models"
	"github.com/quipu-ai/quipu-engine/pkg/rag"
	"github.com/quipu-ai/quipu-engine/pkg/schema"
	"github.com/quipu-ai/quipu-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model))

	ctx := context.Background()

	dbCfg := &postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	}

	introspector, err := postgres.NewIntrospector(ctx, dbCfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = introspector.Close() }()

	// Fail-soft: an unreachable database at boot shows up on /health and in
	// degraded answers; the service still comes up.
	if err := introspector.TestConnection(ctx); err != nil {
		logger.Warn("database unreachable at startup", zap.Error(err))
	}

	executor, err := postgres.NewExecutor(ctx, dbCfg, cfg.Pipeline.QueryRowLimit, logger)
	if err != nil {
		logger.Fatal("failed to create query executor", zap.Error(err))
	}
	defer func() { _ = executor.Close() }()

	provider := schema.NewProvider(introspector, cfg.Pipeline.IgnoredTables, logger)

	client, err := llm.NewClient(&cfg.AI, logger)
	if err != nil {
		logger.Fatal("failed to create language model client", zap.Error(err))
	}

	var retriever *rag.Retriever
	if cfg.RAG.Enabled {
		docs, err := rag.LoadDocuments(cfg.RAG.DocsDir, logger)
		if err != nil {
			logger.Warn("document loading failed, retrieval disabled", zap.Error(err))
		} else {
			retriever = rag.NewRetriever(client, docs, rag.Options{
				EmbeddingModel: cfg.AI.EmbeddingModel,
				ChunkSize:      cfg.RAG.ChunkSize,
				ChunkOverlap:   cfg.RAG.ChunkOverlap,
				PreviewLength:  cfg.RAG.PreviewLength,
			}, logger)
			// Index construction embeds every chunk; do it off the
			// serving path.
			go retriever.BuildIndex(ctx)
		}
	}

	generation := services.NewQueryGenerationChain(provider, retriever, client, services.GenerationOptions{
		TokenCeiling: cfg.Pipeline.TokenCeiling,
		MaxChunks:    cfg.Pipeline.MaxSchemaChunks,
		RAGTopK:      cfg.RAG.TopK,
		Temperature:  cfg.AI.Temperature,
	}, logger)

	insights := services.NewInsightsService(introspector, client, cfg.AI.Temperature, logger)
	synthesis := services.NewResponseSynthesisChain(executor, insights, client, cfg.AI.Temperature, logger)
	engine := services.NewEngine(generation, synthesis, logger)

	session := models.NewSession()

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, introspector, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(engine, session, logger).RegisterRoutes(mux)
	handlers.NewSchemaHandler(provider, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("starting quipu-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
