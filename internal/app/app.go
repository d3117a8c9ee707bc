package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/brevio/internal/common"
	"github.com/ternarybob/brevio/internal/handlers"
	"github.com/ternarybob/brevio/internal/interfaces"
	"github.com/ternarybob/brevio/internal/services/llm"
	"github.com/ternarybob/brevio/internal/services/summarizer"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// LLM backend (Gemini or Claude per config)
	LLMService interfaces.LLMService

	// Map-reduce summarization pipeline
	SummarizerService interfaces.SummarizerService

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	SummarizeHandler *handlers.SummarizeHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize LLM service (Gemini or Claude per config)
	llmService, err := llm.NewLLMService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM service: %w", err)
	}
	app.LLMService = llmService

	// Initialize summarizer service
	app.SummarizerService = summarizer.NewService(&cfg.Summarizer, llmService, logger)

	// Initialize HTTP handlers
	app.APIHandler = handlers.NewAPIHandler(llmService, logger)
	app.SummarizeHandler = handlers.NewSummarizeHandler(app.SummarizerService, logger)

	logger.Info().
		Str("provider", llmService.Provider()).
		Int("batch_size", cfg.Summarizer.BatchSize).
		Int("max_concurrency", cfg.Summarizer.MaxConcurrency).
		Msg("Application initialized")

	return app, nil
}

// Close releases application resources
func (a *App) Close() error {
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			return fmt.Errorf("failed to close LLM service: %w", err)
		}
	}
	return nil
}
