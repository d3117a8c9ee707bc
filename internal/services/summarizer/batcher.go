package summarizer

import (
	"errors"
	"strings"
)

// ChunkSeparator joins consecutive chunks inside one batch. It is a
// human-readable marker that is not expected to appear in normal chunk
// content; no escaping is performed.
const ChunkSeparator = "\n\n--- (New Chunk in Batch) ---\n\n"

// ErrInvalidBatchSize is returned when a batch size of zero or less is requested.
var ErrInvalidBatchSize = errors.New("batch size must be greater than zero")

// GroupChunks partitions chunks into contiguous groups of batchSize elements,
// with the final group holding the remainder, and joins each group into a
// single text block separated by ChunkSeparator.
//
// Empty input yields an empty slice, not an error.
func GroupChunks(chunks []string, batchSize int) ([]string, error) {
	if batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}

	batches := make([]string, 0, (len(chunks)+batchSize-1)/batchSize)
	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, strings.Join(chunks[i:end], ChunkSeparator))
	}

	return batches, nil
}
