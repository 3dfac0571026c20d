package main

import (
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cargaflow/carga-agent/internal/agent"
	"github.com/cargaflow/carga-agent/internal/classifier"
	"github.com/cargaflow/carga-agent/internal/memory"
	"github.com/cargaflow/carga-agent/internal/server"
	"github.com/cargaflow/carga-agent/internal/storage"
	"github.com/cargaflow/carga-agent/internal/synthesizer"
	"github.com/cargaflow/carga-agent/pkg/config"
)

func newLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return cfg.Build()
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	// Initialize the retrieval store
	repo, err := storage.NewPostgresRepository(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer repo.Close()
	logger.Info("Connected to PostgreSQL")

	// Initialize conversation memory; a failed Redis probe degrades to the
	// in-process tier.
	mem := memory.NewManager(cfg.Redis.URL, cfg.Agent.MemoryWindow, logger)

	// Initialize the OpenAI-backed collaborators
	client := openai.NewClient(cfg.OpenAI.APIKey)
	clf := classifier.NewGPTClassifier(client, cfg.OpenAI.Model, logger)
	synth := synthesizer.NewGPTSynthesizer(
		client,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		float32(cfg.OpenAI.Temperature),
		logger,
	)

	// Initialize the orchestrator
	ag := agent.New(repo, clf, synth, mem, client, agent.Options{
		Mode:          cfg.Agent.Mode,
		Model:         cfg.OpenAI.Model,
		MaxIterations: cfg.Agent.MaxIterations,
	}, logger)
	logger.Info("Agent initialized", zap.String("mode", cfg.Agent.Mode))

	// Start the HTTP server
	handler := server.NewHandler(ag, repo, mem, logger)
	srv := server.New(cfg.Server.Host, cfg.Server.Port, handler, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
