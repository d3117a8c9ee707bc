package summarizer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ternarybob/brevio/internal/models"
)

// failedBatchPlaceholder is the degraded summary substituted when a map
// worker's backend call fails, so one bad batch never aborts the run.
func failedBatchPlaceholder(index int) string {
	return fmt.Sprintf("[Failed to summarize batch %d]", index)
}

// mapPhase fans out one worker per batch, bounded by the configured
// concurrency limit, waits for every worker to resolve, and restores the
// original batch order by sorting results by index.
//
// Returns the ordered summaries and the 1-based indices of batches that
// degraded to placeholder text.
func (s *Service) mapPhase(ctx context.Context, batches []string, query string) ([]string, []int) {
	results := make(chan models.MapResult, len(batches))

	// Semaphore gating simultaneous backend calls. MaxConcurrency <= 0
	// falls back to one slot per batch (unbounded fan-out).
	slots := s.maxConcurrency
	if slots <= 0 {
		slots = len(batches)
	}
	sem := make(chan struct{}, slots)

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(index int, content string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results <- s.summarizeBatch(ctx, content, index, query)
		}(i+1, batch)
	}

	// Full barrier: the reduce phase must not start until every worker has
	// resolved, successfully or with a degraded placeholder.
	wg.Wait()
	close(results)

	mapResults := make([]models.MapResult, 0, len(batches))
	for result := range results {
		mapResults = append(mapResults, result)
	}

	// Completion order is nondeterministic; the explicit re-sort by batch
	// index is what guarantees end-to-end ordering.
	sort.Slice(mapResults, func(a, b int) bool {
		return mapResults[a].Index < mapResults[b].Index
	})

	summaries := make([]string, 0, len(mapResults))
	var failed []int
	for _, result := range mapResults {
		summaries = append(summaries, result.Summary)
		if result.Failed {
			failed = append(failed, result.Index)
		}
	}

	return summaries, failed
}

// summarizeBatch is one map worker: it builds the per-batch prompt, invokes
// the backend once, and returns the trimmed response paired with the batch
// index. Backend failures are contained here and degrade to a placeholder.
func (s *Service) summarizeBatch(ctx context.Context, batchContent string, index int, query string) models.MapResult {
	s.logger.Debug().
		Int("batch", index).
		Int("content_length", len(batchContent)).
		Msg("Starting batch summarization")

	workerCtx := ctx
	if s.workerTimeout > 0 {
		var cancel context.CancelFunc
		workerCtx, cancel = context.WithTimeout(ctx, s.workerTimeout)
		defer cancel()
	}

	prompt := buildMapPrompt(batchContent, query, s.charLimit)
	response, err := s.llm.Generate(workerCtx, prompt)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int("batch", index).
			Msg("Batch summarization failed, substituting placeholder")
		return models.MapResult{Index: index, Summary: failedBatchPlaceholder(index), Failed: true}
	}

	s.logger.Debug().
		Int("batch", index).
		Int("summary_length", len(response)).
		Msg("Finished batch summarization")

	return models.MapResult{Index: index, Summary: strings.TrimSpace(response)}
}
