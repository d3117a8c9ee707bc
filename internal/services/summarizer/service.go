package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/brevio/internal/common"
	"github.com/ternarybob/brevio/internal/interfaces"
	"github.com/ternarybob/brevio/internal/models"
)

// Service orchestrates query-aware map-reduce summarization:
// chunks -> batches -> concurrent per-batch summaries -> single synthesis.
type Service struct {
	llm            interfaces.LLMService
	logger         arbor.ILogger
	batchSize      int
	maxConcurrency int
	workerTimeout  time.Duration
	charLimit      int
}

// NewService creates a summarizer service from configuration. Invalid or
// missing pipeline settings fall back to defaults rather than failing.
func NewService(cfg *common.SummarizerConfig, llmService interfaces.LLMService, logger arbor.ILogger) *Service {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 7
	}

	charLimit := cfg.SummaryCharLimit
	if charLimit <= 0 {
		charLimit = DefaultSummaryCharLimit
	}

	workerTimeout, err := time.ParseDuration(cfg.WorkerTimeout)
	if err != nil {
		workerTimeout = 2 * time.Minute
	}

	return &Service{
		llm:            llmService,
		logger:         logger,
		batchSize:      batchSize,
		maxConcurrency: cfg.MaxConcurrency,
		workerTimeout:  workerTimeout,
		charLimit:      charLimit,
	}
}

// SummarizeChunks runs the full pipeline over the given chunks. An empty
// query selects the generic executive-summary mode.
//
// Batch ordering is preserved end-to-end: the Nth batch's summary occupies
// position N in the reduce input regardless of which worker finishes first.
func (s *Service) SummarizeChunks(ctx context.Context, chunks []string, query string) (*models.SummaryResult, error) {
	runID := uuid.New().String()
	startTime := time.Now()

	logger := s.logger.WithCorrelationId(runID)
	logger.Info().
		Int("chunks", len(chunks)).
		Int("batch_size", s.batchSize).
		Bool("query_aware", query != "").
		Msg("Starting map-reduce summarization run")

	batches, err := GroupChunks(chunks, s.batchSize)
	if err != nil {
		return nil, &Error{Kind: FailureInput, Err: err}
	}
	if len(batches) == 0 {
		return nil, &Error{Kind: FailureInput, Err: fmt.Errorf("no content chunks to summarize")}
	}

	logger.Info().Int("batches", len(batches)).Msg("Map phase starting")
	summaries, failedBatches := s.mapPhase(ctx, batches, query)
	logger.Info().
		Int("batches", len(batches)).
		Int("failed", len(failedBatches)).
		Msg("Map phase complete")

	finalSummary, err := s.reducePhase(ctx, summaries, query)
	if err != nil {
		return nil, err
	}

	duration := time.Since(startTime)
	logger.Info().
		Dur("duration", duration).
		Int("summary_length", len(finalSummary)).
		Msg("Summarization run complete")

	return &models.SummaryResult{
		RunID:         runID,
		Summary:       finalSummary,
		Query:         query,
		BatchCount:    len(batches),
		FailedBatches: failedBatches,
		Provider:      s.llm.Provider(),
		Duration:      duration,
	}, nil
}

// SummarizeFile reads a chunk document from a JSON file and delegates to
// SummarizeChunks. Input problems short-circuit before any backend call.
func (s *Service) SummarizeFile(ctx context.Context, path string, query string) (*models.SummaryResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: FailureInput, Err: fmt.Errorf("failed to read chunk file %s: %w", path, err)}
	}

	var chunkFile models.ChunkFile
	if err := json.Unmarshal(data, &chunkFile); err != nil {
		return nil, &Error{Kind: FailureInput, Err: fmt.Errorf("failed to parse chunk file %s: %w", path, err)}
	}

	chunks := chunkFile.Contents()
	if len(chunks) == 0 {
		return nil, &Error{Kind: FailureInput, Err: fmt.Errorf("no content data found in %s", path)}
	}

	// A query embedded in the file is used when the caller didn't supply one.
	if query == "" {
		query = chunkFile.Query
	}

	return s.SummarizeChunks(ctx, chunks, query)
}
