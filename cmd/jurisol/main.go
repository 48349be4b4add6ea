package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jurisol/jurisol/internal/adapter/embedding"
	"github.com/jurisol/jurisol/internal/adapter/llm"
	"github.com/jurisol/jurisol/internal/config"
	"github.com/jurisol/jurisol/internal/extract"
	"github.com/jurisol/jurisol/internal/policy"
	"github.com/jurisol/jurisol/internal/retrieval"
	"github.com/jurisol/jurisol/internal/service"
	"github.com/jurisol/jurisol/internal/session"
	"github.com/jurisol/jurisol/internal/summarize"
	v1 "github.com/jurisol/jurisol/internal/transport/http/v1"
	"github.com/jurisol/jurisol/internal/vectorstore"
	"github.com/jurisol/jurisol/internal/websearch"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting jurisol...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Vector store: %s", cfg.VectorStore)
	log.Printf("Session store: %s", cfg.SessionStore)

	ctx := context.Background()

	// Embeddings and vector store
	var embedder embedding.Embedder
	if cfg.Mode == llm.ModeMock {
		embedder = embedding.NewLocal(256)
	} else {
		embedder = embedding.NewOpenAI(cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel)
	}

	var store vectorstore.Store
	switch cfg.VectorStore {
	case "memory":
		store = vectorstore.NewMemory()
	default:
		store = vectorstore.NewQdrant(vectorstore.QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
		})
	}

	// Session store
	var sessions session.Store
	switch cfg.SessionStore {
	case "sqlite":
		sessions, err = session.NewSQLiteStore(cfg.SessionDB)
		if err != nil {
			log.Fatalf("Failed to initialize session store: %v", err)
		}
	default:
		sessions = session.NewMemoryStore(cfg.SessionMaxAge())
	}
	defer sessions.Close()

	// LLM client
	llmClient := llm.NewFromMode(cfg.Mode, cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)

	// Search policy
	policyEngine, err := policy.NewEngineFromFile(ctx, cfg.PolicyPath)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Tools
	fetcher := extract.NewFetcher(
		extract.WithTimeout(cfg.FetchTimeout()),
		extract.WithCacheTTL(cfg.FetchCacheTTL()),
	)
	searchTool := websearch.NewTool(
		websearch.NewTavily(cfg.TavilyAPIKey, cfg.TavilyBaseURL),
		fetcher,
		policyEngine,
		cfg.AllowedDomains,
		websearch.WithAttemptTimeout(cfg.SearchTimeout()),
		websearch.WithQueryCacheTTL(cfg.SearchCacheTTL()),
	)
	summarizeTool := summarize.NewTool(llmClient, fetcher, cfg.SummaryWorkers)
	retriever := retrieval.New(embedder, store)

	svc := service.New(llmClient, retriever, searchTool, summarizeTool, sessions, service.Options{
		ProcessTimeout:      cfg.ProcessTimeout(),
		StatusRetain:        cfg.StatusRetain(),
		SessionMaxAge:       cfg.SessionMaxAge(),
		HistoryTokenBudget:  cfg.HistoryTokenBudget,
		MinContentLength:    cfg.MinContentLength,
		RetrievalMaxResults: cfg.RetrievalMaxResults,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		MaxWorkers:          cfg.MaxWorkers,
	})

	h := v1.NewHandler(svc)

	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Logger())
	server.Use(middleware.Recover())
	server.Use(middleware.CORS())

	h.RegisterRoutes(server)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down jurisol...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Jurisol stopped")
}
