package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wsyeabsera/clear-ai-sub006/internal/chromem"
	"github.com/wsyeabsera/clear-ai-sub006/internal/config"
	"github.com/wsyeabsera/clear-ai-sub006/internal/docker"
	"github.com/wsyeabsera/clear-ai-sub006/internal/embed"
	"github.com/wsyeabsera/clear-ai-sub006/internal/extract"
	mcpserver "github.com/wsyeabsera/clear-ai-sub006/internal/mcp"
	"github.com/wsyeabsera/clear-ai-sub006/internal/memory"
	"github.com/wsyeabsera/clear-ai-sub006/internal/models"
	"github.com/wsyeabsera/clear-ai-sub006/internal/neo4j"
)

// disabledExtractor stands in when no Anthropic key is configured; extraction
// runs fail with a clear message while the rest of the engine keeps working.
type disabledExtractor struct{}

func (disabledExtractor) ExtractConcepts(context.Context, []models.EpisodicMemory) ([]models.ConceptCandidate, error) {
	return nil, fmt.Errorf("semantic extraction is disabled: ANTHROPIC_API_KEY is not configured")
}

func main() {
	// Parse flags
	httpMode := flag.Bool("http", false, "Run as HTTP server (default: stdio for MCP)")
	port := flag.Int("port", 8080, "HTTP port to listen on (only used with -http)")
	waitForDB := flag.Bool("wait", true, "Wait for Neo4j to be available (with retries)")
	bootstrap := flag.Bool("bootstrap", false, "Start the Neo4j container via Docker if it is not running")
	configDir := flag.String("config", ".", "Directory containing the .env file")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down...")
		cancel()
	}()

	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if *bootstrap {
		containerCfg := &docker.ContainerConfig{
			Name:     cfg.ContainerName,
			Image:    cfg.Neo4jImage,
			Username: cfg.Neo4jUsername,
			Password: cfg.Neo4jPassword,
		}
		created, err := docker.EnsureContainer(containerCfg)
		if err != nil {
			logger.Error("failed to bootstrap Neo4j container", "error", err)
			os.Exit(1)
		}
		if created {
			logger.Info("created Neo4j container", "name", cfg.ContainerName)
		}
		if err := docker.WaitForContainer(cfg.ContainerName, 60*time.Second); err != nil {
			logger.Error("Neo4j container did not become ready", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Neo4j
	neoCfg := neo4j.Config{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUsername,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	}
	logger.Info("connecting to Neo4j", "uri", neoCfg.URI, "database", neoCfg.Database)

	var client *neo4j.Client
	if *waitForDB {
		logger.Info("waiting for Neo4j to be available...")
		client, err = neo4j.NewClientWithRetry(ctx, neoCfg, neo4j.ConnectRetryPolicy())
	} else {
		client, err = neo4j.NewClient(ctx, neoCfg)
	}
	if err != nil {
		logger.Error("failed to connect to Neo4j", "error", err)
		os.Exit(1)
	}
	defer client.Close(ctx)

	logger.Info("connected to Neo4j")

	// Vector index: in-memory by default, persisted when a path is set
	var vector *chromem.Store
	if cfg.VectorDataPath != "" {
		vector, err = chromem.NewPersistent(cfg.VectorDataPath)
		if err != nil {
			logger.Error("failed to open vector store", "path", cfg.VectorDataPath, "error", err)
			os.Exit(1)
		}
		logger.Info("vector store persisted", "path", cfg.VectorDataPath)
	} else {
		vector = chromem.New()
	}

	opts := cfg.EngineOptions()

	// Embeddings: OpenAI behind a read-through cache, or a deterministic
	// mock for offline use
	var embedder memory.EmbeddingProvider
	if cfg.MockEmbeddings {
		logger.Warn("using mock embeddings; similarity scores are not meaningful")
		embedder = embed.NewMock(opts.Dimensions)
	} else {
		provider, err := embed.NewOpenAI(embed.OpenAIConfig{
			APIKey:     cfg.OpenAIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.EmbeddingModel,
			Dimensions: opts.Dimensions,
		})
		if err != nil {
			logger.Error("failed to create embedding provider", "error", err)
			os.Exit(1)
		}
		cached, err := embed.NewCached(provider, 0)
		if err != nil {
			logger.Error("failed to create embedding cache", "error", err)
			os.Exit(1)
		}
		defer cached.Close()
		embedder = cached
	}

	// Concept extraction is optional; without a key the rest of the engine
	// still serves reads and writes
	var extractor memory.ConceptExtractor = disabledExtractor{}
	if cfg.AnthropicKey != "" {
		extractor, err = extract.New(extract.Config{
			APIKey: cfg.AnthropicKey,
			Model:  cfg.ExtractionModel,
		})
		if err != nil {
			logger.Error("failed to create concept extractor", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("no ANTHROPIC_API_KEY configured; semantic extraction is disabled")
	}

	service := memory.NewService(neo4j.NewStore(client), vector, embedder, extractor, opts, logger)
	server := mcpserver.NewServer(service, logger)

	if *httpMode {
		// Run as HTTP server
		addr := fmt.Sprintf(":%d", *port)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           server.HTTPHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()

		logger.Info("starting HTTP server", "addr", addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	} else {
		// Run as stdio server
		logger.Info("starting MCP server on stdio")
		if err := server.Run(ctx); err != nil {
			logger.Error("MCP server error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
