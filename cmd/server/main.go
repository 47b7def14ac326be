package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/DhruvJain7/ChatBot/internal/api"
	"github.com/DhruvJain7/ChatBot/internal/chat"
	"github.com/DhruvJain7/ChatBot/internal/config"
	"github.com/DhruvJain7/ChatBot/internal/db"
	"github.com/DhruvJain7/ChatBot/internal/llm"
	"github.com/DhruvJain7/ChatBot/internal/prompt"
)

func main() {
	gotenv.Load()
	cfg := config.Load()

	var logger *zap.Logger
	if cfg.Debug {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	database, err := db.New(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.DBPath))
	}
	defer database.Close()

	backend, err := newBackend(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize generation backend",
			zap.Error(err),
			zap.String("backend", cfg.Backend))
	}

	orchestrator := chat.New(database, backend, logger)
	handler := api.NewHandler(orchestrator, logger)

	http.HandleFunc("/chat", handler.WithLogging(handler.HandleChat))
	http.HandleFunc("/reset", handler.WithLogging(handler.HandleReset))
	http.HandleFunc("/history", handler.WithLogging(handler.HandleHistory))
	http.HandleFunc("/healthz", handler.HandleHealth)

	logger.Info("starting server",
		zap.String("addr", cfg.ListenAddr),
		zap.String("backend", cfg.Backend),
		zap.String("model", cfg.Model))
	if err := http.ListenAndServe(cfg.ListenAddr, nil); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func newBackend(cfg config.Config, logger *zap.Logger) (llm.Backend, error) {
	kind, err := prompt.ParseBackendKind(cfg.Backend)
	if err != nil {
		return nil, err
	}

	opts := llm.Options{
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Timeout:        cfg.GenTimeout,
		TokenWarnLimit: cfg.TokenWarnLimit,
	}

	switch kind {
	case prompt.BackendLocal:
		opts.Token = cfg.OpenAIAPIKey
		if opts.Token == "" {
			// Local servers ignore the token but the client
			// requires one.
			opts.Token = "unused"
		}
		return llm.NewLocal(opts, logger)
	case prompt.BackendOpenAI:
		opts.Token = cfg.OpenAIAPIKey
		return llm.NewOpenAI(opts, logger)
	case prompt.BackendGemini:
		opts.Token = cfg.GeminiAPIKey
		return llm.NewGemini(context.Background(), opts, logger)
	}
	return nil, fmt.Errorf("unhandled backend kind %q", kind)
}
