package models

import "time"

// MapResult pairs a batch index with its summary text. Index is 1-based for
// display; results are sortable by Index to restore original batch order
// regardless of completion order.
type MapResult struct {
	Index   int
	Summary string
	Failed  bool
}

// SummaryResult is the terminal artifact of one orchestration run.
type SummaryResult struct {
	RunID         string        `json:"run_id"`
	Summary       string        `json:"summary"`
	Query         string        `json:"query,omitempty"`
	BatchCount    int           `json:"batches"`
	FailedBatches []int         `json:"failed_batches,omitempty"`
	Provider      string        `json:"provider"`
	Duration      time.Duration `json:"-"`
}
