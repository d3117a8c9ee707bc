package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/brevio/internal/common"
)

// Mock implementations

type mockLLMService struct {
	generateFunc func(context.Context, string) (string, error)

	mu      sync.Mutex
	prompts []string
	calls   int32
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}
	return "mock summary", nil
}

func (m *mockLLMService) HealthCheck(ctx context.Context) error { return nil }
func (m *mockLLMService) Provider() string                      { return "mock" }
func (m *mockLLMService) Close() error                          { return nil }

func (m *mockLLMService) callCount() int {
	return int(atomic.LoadInt32(&m.calls))
}

// Test helpers

func newTestService(mock *mockLLMService, cfg *common.SummarizerConfig) *Service {
	if cfg == nil {
		cfg = &common.SummarizerConfig{
			BatchSize:        7,
			MaxConcurrency:   8,
			WorkerTimeout:    "2m",
			SummaryCharLimit: 5000,
		}
	}
	return NewService(cfg, mock, arbor.NewLogger())
}

func makeChunks(count int) []string {
	chunks := make([]string, count)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("chunk content %d", i+1)
	}
	return chunks
}

// batchIndexFromPrompt recovers the batch number embedded in map prompts by
// the test's generateFunc conventions (map prompts contain the batch body,
// reduce prompts contain the summary separator output of the map phase).
func isReducePrompt(prompt string) bool {
	return strings.Contains(prompt, "--- GENERAL SUMMARIES ---") ||
		strings.Contains(prompt, "--- QUERY-FOCUSED SUMMARIES ---")
}

// Tests for SummarizeChunks

func TestSummarizeChunks_SingleBatch(t *testing.T) {
	mock := &mockLLMService{
		generateFunc: func(ctx context.Context, prompt string) (string, error) {
			if isReducePrompt(prompt) {
				return "final summary", nil
			}
			return "batch summary", nil
		},
	}
	service := newTestService(mock, nil)

	result, err := service.SummarizeChunks(context.Background(), makeChunks(3), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Summary != "final summary" {
		t.Errorf("Expected final summary, got %q", result.Summary)
	}
	if result.BatchCount != 1 {
		t.Errorf("Expected 1 batch, got %d", result.BatchCount)
	}
	if len(result.FailedBatches) != 0 {
		t.Errorf("Expected no failed batches, got %v", result.FailedBatches)
	}
	if result.Provider != "mock" {
		t.Errorf("Expected provider %q, got %q", "mock", result.Provider)
	}
	if result.RunID == "" {
		t.Error("Expected a non-empty run ID")
	}
	// 1 map call + 1 reduce call
	if mock.callCount() != 2 {
		t.Errorf("Expected 2 backend calls, got %d", mock.callCount())
	}
}

func TestSummarizeChunks_EmptyInput(t *testing.T) {
	mock := &mockLLMService{}
	service := newTestService(mock, nil)

	_, err := service.SummarizeChunks(context.Background(), nil, "")
	if err == nil {
		t.Fatal("Expected error for empty input")
	}

	kind, ok := KindOf(err)
	if !ok || kind != FailureInput {
		t.Errorf("Expected input failure, got: %v", err)
	}
	if mock.callCount() != 0 {
		t.Errorf("Expected no backend calls for empty input, got %d", mock.callCount())
	}
}

func TestSummarizeChunks_OrderRestoredAcrossWorkers(t *testing.T) {
	// 21 chunks at batch size 7 gives 3 batches. Each map response names
	// the first chunk of its batch; workers for earlier batches are delayed
	// so completion order is the reverse of batch order.
	mock := &mockLLMService{}
	mock.generateFunc = func(ctx context.Context, prompt string) (string, error) {
		if isReducePrompt(prompt) {
			return "done", nil
		}
		switch {
		case strings.Contains(prompt, "chunk content 1\n"):
			time.Sleep(60 * time.Millisecond)
			return "summary-A", nil
		case strings.Contains(prompt, "chunk content 8\n"):
			time.Sleep(30 * time.Millisecond)
			return "summary-B", nil
		default:
			return "summary-C", nil
		}
	}
	service := newTestService(mock, nil)

	result, err := service.SummarizeChunks(context.Background(), makeChunks(21), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.BatchCount != 3 {
		t.Fatalf("Expected 3 batches, got %d", result.BatchCount)
	}

	// The reduce prompt must carry the batch summaries in original batch
	// order regardless of worker completion order.
	var reducePrompt string
	mock.mu.Lock()
	for _, p := range mock.prompts {
		if isReducePrompt(p) {
			reducePrompt = p
		}
	}
	mock.mu.Unlock()
	if reducePrompt == "" {
		t.Fatal("Expected a reduce prompt to be issued")
	}

	expected := "summary-A" + SummarySeparator + "summary-B" + SummarySeparator + "summary-C"
	if !strings.Contains(reducePrompt, expected) {
		t.Errorf("Reduce prompt does not contain ordered summaries:\n%s", reducePrompt)
	}
}

func TestSummarizeChunks_FailedBatchDegradesToPlaceholder(t *testing.T) {
	// Batch 2 fails; the run must still complete with a placeholder in
	// that batch's slot and the failure recorded by index.
	mock := &mockLLMService{}
	mock.generateFunc = func(ctx context.Context, prompt string) (string, error) {
		if isReducePrompt(prompt) {
			return "final", nil
		}
		if strings.Contains(prompt, "chunk content 8\n") {
			return "", errors.New("backend unavailable")
		}
		return "ok", nil
	}
	service := newTestService(mock, nil)

	result, err := service.SummarizeChunks(context.Background(), makeChunks(21), "")
	if err != nil {
		t.Fatalf("Expected run to survive a map failure, got: %v", err)
	}

	if len(result.FailedBatches) != 1 || result.FailedBatches[0] != 2 {
		t.Errorf("Expected failed batches [2], got %v", result.FailedBatches)
	}
	if result.Summary != "final" {
		t.Errorf("Expected reduce to still run, got summary %q", result.Summary)
	}

	// The placeholder must sit in the second position of the reduce input.
	var reducePrompt string
	mock.mu.Lock()
	for _, p := range mock.prompts {
		if isReducePrompt(p) {
			reducePrompt = p
		}
	}
	mock.mu.Unlock()

	expected := "ok" + SummarySeparator + "[Failed to summarize batch 2]" + SummarySeparator + "ok"
	if !strings.Contains(reducePrompt, expected) {
		t.Errorf("Placeholder not in batch 2's slot:\n%s", reducePrompt)
	}
}

func TestSummarizeChunks_AllBatchesFailed(t *testing.T) {
	mock := &mockLLMService{}
	mock.generateFunc = func(ctx context.Context, prompt string) (string, error) {
		if isReducePrompt(prompt) {
			return "synthesized from placeholders", nil
		}
		return "", errors.New("backend down")
	}
	service := newTestService(mock, nil)

	result, err := service.SummarizeChunks(context.Background(), makeChunks(14), "")
	if err != nil {
		t.Fatalf("Expected run to complete even with all map failures, got: %v", err)
	}
	if len(result.FailedBatches) != 2 {
		t.Errorf("Expected 2 failed batches, got %v", result.FailedBatches)
	}
}

func TestSummarizeChunks_ReduceFailure(t *testing.T) {
	mock := &mockLLMService{}
	mock.generateFunc = func(ctx context.Context, prompt string) (string, error) {
		if isReducePrompt(prompt) {
			return "", errors.New("synthesis failed")
		}
		return "ok", nil
	}
	service := newTestService(mock, nil)

	result, err := service.SummarizeChunks(context.Background(), makeChunks(3), "")
	if err == nil {
		t.Fatal("Expected error when reduce phase fails")
	}
	if result != nil {
		t.Errorf("Expected nil result on reduce failure, got: %+v", result)
	}

	kind, ok := KindOf(err)
	if !ok || kind != FailureReduce {
		t.Errorf("Expected reduce failure kind, got: %v", err)
	}
}

func TestSummarizeChunks_QuerySelectsPromptVariant(t *testing.T) {
	mock := &mockLLMService{}
	service := newTestService(mock, nil)

	if _, err := service.SummarizeChunks(context.Background(), makeChunks(2), "What is the budget?"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	for _, p := range mock.prompts {
		if !strings.Contains(p, `USER'S QUESTION: "What is the budget?"`) {
			t.Errorf("Prompt missing user question:\n%s", p)
		}
	}
}

func TestSummarizeChunks_NoQueryUsesGeneralPrompts(t *testing.T) {
	mock := &mockLLMService{}
	service := newTestService(mock, nil)

	if _, err := service.SummarizeChunks(context.Background(), makeChunks(2), ""); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	for _, p := range mock.prompts {
		if strings.Contains(p, "USER'S QUESTION") {
			t.Errorf("General-mode prompt contains a user question:\n%s", p)
		}
	}
	last := mock.prompts[len(mock.prompts)-1]
	if !strings.Contains(last, "executive summary") {
		t.Errorf("Expected executive-summary reduce prompt, got:\n%s", last)
	}
}

func TestSummarizeChunks_ConcurrencyBounded(t *testing.T) {
	var inFlight, peak int32
	mock := &mockLLMService{}
	mock.generateFunc = func(ctx context.Context, prompt string) (string, error) {
		if isReducePrompt(prompt) {
			return "done", nil
		}
		current := atomic.AddInt32(&inFlight, 1)
		for {
			observed := atomic.LoadInt32(&peak)
			if current <= observed || atomic.CompareAndSwapInt32(&peak, observed, current) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return "ok", nil
	}

	service := newTestService(mock, &common.SummarizerConfig{
		BatchSize:      1,
		MaxConcurrency: 2,
		WorkerTimeout:  "2m",
	})

	if _, err := service.SummarizeChunks(context.Background(), makeChunks(8), ""); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if observed := atomic.LoadInt32(&peak); observed > 2 {
		t.Errorf("Expected at most 2 concurrent workers, observed %d", observed)
	}
}

// Tests for SummarizeFile

func writeChunkFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunks.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestSummarizeFile_Success(t *testing.T) {
	mock := &mockLLMService{
		generateFunc: func(ctx context.Context, prompt string) (string, error) {
			if isReducePrompt(prompt) {
				return "file summary", nil
			}
			return "batch summary", nil
		},
	}
	service := newTestService(mock, nil)

	path := writeChunkFile(t, `{
		"success": true,
		"data": [
			{"content": "first chunk", "score": 0.9},
			{"content": "second chunk", "score": 0.8}
		]
	}`)

	result, err := service.SummarizeFile(context.Background(), path, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Summary != "file summary" {
		t.Errorf("Expected file summary, got %q", result.Summary)
	}
}

func TestSummarizeFile_MissingFile(t *testing.T) {
	mock := &mockLLMService{}
	service := newTestService(mock, nil)

	_, err := service.SummarizeFile(context.Background(), "/nonexistent/chunks.json", "")
	if err == nil {
		t.Fatal("Expected error for missing file")
	}

	kind, ok := KindOf(err)
	if !ok || kind != FailureInput {
		t.Errorf("Expected input failure, got: %v", err)
	}
	if mock.callCount() != 0 {
		t.Errorf("Expected no backend calls, got %d", mock.callCount())
	}
}

func TestSummarizeFile_MalformedJSON(t *testing.T) {
	mock := &mockLLMService{}
	service := newTestService(mock, nil)

	path := writeChunkFile(t, `{"data": [`)

	_, err := service.SummarizeFile(context.Background(), path, "")
	kind, ok := KindOf(err)
	if !ok || kind != FailureInput {
		t.Errorf("Expected input failure for malformed JSON, got: %v", err)
	}
}

func TestSummarizeFile_NoContent(t *testing.T) {
	mock := &mockLLMService{}
	service := newTestService(mock, nil)

	path := writeChunkFile(t, `{"success": true, "data": []}`)

	_, err := service.SummarizeFile(context.Background(), path, "")
	kind, ok := KindOf(err)
	if !ok || kind != FailureInput {
		t.Errorf("Expected input failure for empty data, got: %v", err)
	}
	if mock.callCount() != 0 {
		t.Errorf("Expected no backend calls, got %d", mock.callCount())
	}
}

func TestSummarizeFile_EmbeddedQueryFallback(t *testing.T) {
	mock := &mockLLMService{}
	service := newTestService(mock, nil)

	path := writeChunkFile(t, `{
		"success": true,
		"query": "embedded question",
		"data": [{"content": "some content"}]
	}`)

	if _, err := service.SummarizeFile(context.Background(), path, ""); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	found := false
	for _, p := range mock.prompts {
		if strings.Contains(p, `USER'S QUESTION: "embedded question"`) {
			found = true
		}
	}
	if !found {
		t.Error("Expected the file's embedded query to drive the prompts")
	}
}

func TestSummarizeFile_CallerQueryWinsOverEmbedded(t *testing.T) {
	mock := &mockLLMService{}
	service := newTestService(mock, nil)

	path := writeChunkFile(t, `{
		"success": true,
		"query": "embedded question",
		"data": [{"content": "some content"}]
	}`)

	if _, err := service.SummarizeFile(context.Background(), path, "caller question"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	for _, p := range mock.prompts {
		if strings.Contains(p, "embedded question") {
			t.Errorf("Embedded query used despite caller query:\n%s", p)
		}
	}
}
