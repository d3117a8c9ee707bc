package interfaces

import (
	"context"

	"github.com/ternarybob/brevio/internal/models"
)

// SummarizerService orchestrates map-reduce summarization runs.
// Chunk order is preserved end-to-end: the Nth batch's summary always
// occupies position N in the reduce input regardless of completion order.
type SummarizerService interface {
	// SummarizeChunks batches the given chunks, summarizes each batch
	// concurrently, and synthesizes a final summary. An empty query selects
	// the generic executive-summary mode; a non-empty query biases both
	// phases toward answering it.
	//
	// Individual batch failures degrade to placeholder text and never fail
	// the run. A reduce-phase failure returns a summarizer.Error with kind
	// FailureReduce.
	SummarizeChunks(ctx context.Context, chunks []string, query string) (*models.SummaryResult, error)

	// SummarizeFile loads a chunk document from a JSON file (shape:
	// {"data": [{"content": "..."}]}), extracts the chunk contents, and
	// delegates to SummarizeChunks. Missing, unreadable, or unparsable
	// files and files with zero extractable contents return a
	// summarizer.Error with kind FailureInput before any backend call.
	SummarizeFile(ctx context.Context, path string, query string) (*models.SummaryResult, error)
}
