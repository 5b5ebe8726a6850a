package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/firstaidguide/firstaid-api/internal/api/router"
	appconfig "github.com/firstaidguide/firstaid-api/internal/config"
	"github.com/firstaidguide/firstaid-api/internal/conversation"
	"github.com/firstaidguide/firstaid-api/internal/guardrails"
	"github.com/firstaidguide/firstaid-api/internal/llm"
	"github.com/firstaidguide/firstaid-api/internal/observability/metrics"
	"github.com/firstaidguide/firstaid-api/internal/rag"
	"github.com/firstaidguide/firstaid-api/internal/tools"
	"github.com/firstaidguide/firstaid-api/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting firstaid-api server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	policy := guardrails.Load(cfg.GuardrailsPath, logger)

	// Bedrock is the primary generation provider; without it the pipeline
	// runs purely on the rule-based fallbacks.
	var bedrockClient *bedrockruntime.Client
	if cfg.HasBedrock() || cfg.BedrockEmbeddingModelID != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		bedrockClient = bedrockruntime.NewFromConfig(awsCfg)
	}

	var primary, fallback llm.Client
	if cfg.HasBedrock() && bedrockClient != nil {
		primary = llm.NewBedrockClient(bedrockClient)
	}
	if cfg.HasGemini() {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		fallback = gemini
	}

	var client llm.Client
	switch {
	case primary != nil:
		client = llm.NewFallbackClient(primary, fallback, logger)
	case fallback != nil:
		client = fallback
	}

	var retriever llm.Retriever
	var knowledgePassages int
	if bedrockClient != nil && cfg.HasBedrock() {
		store := rag.NewMemoryStore(rag.NewTitanEmbedder(bedrockClient, cfg.BedrockEmbeddingModelID), logger)
		seedCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		if err := rag.Seed(seedCtx, store, cfg.KnowledgeDir); err != nil {
			logger.Warn("knowledge base seeding failed, continuing without retrieval", "error", err)
		} else {
			retriever = store
			knowledgePassages = store.Len()
		}
		cancel()
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}
	directory := tools.NewDirectory(rdb, cfg.DirectoryCacheTTL, logger)

	triageMetrics := metrics.NewTriageMetrics(nil)

	var classifier conversation.TriageClassifier
	if client != nil {
		classifier = llm.NewTriageClassifier(client, cfg.BedrockModelID)
	}
	generator := llm.NewInstructionGenerator(client, cfg.BedrockModelID, retriever, cfg.RAGTopK, logger)

	pipeline := conversation.NewPipeline(conversation.PipelineConfig{
		DenyTopics:          policy.DisallowedTopics,
		AppName:             policy.AppName,
		Classifier:          classifier,
		Generator:           generator,
		Verifier:            policy,
		Directory:           directory,
		CollaboratorTimeout: cfg.CollaboratorTimeout,
		DefaultCountry:      cfg.DefaultCountry,
		Logger:              logger,
		Metrics:             triageMetrics,
	})

	chatHandler := conversation.NewHandler(pipeline, conversation.HealthInfo{
		Env:               cfg.Env,
		HasBedrock:        cfg.HasBedrock(),
		HasGemini:         cfg.HasGemini(),
		HasRedis:          rdb != nil,
		KnowledgePassages: knowledgePassages,
		GuardrailsTopics:  len(policy.DisallowedTopics),
	}, logger)

	var corsOrigins []string
	if cfg.CORSOrigins != "" {
		corsOrigins = []string{cfg.CORSOrigins}
	}
	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: corsOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
