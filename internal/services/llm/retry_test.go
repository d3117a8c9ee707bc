package llm

import (
	"errors"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"429 status", errors.New("Error 429, Message: quota exceeded"), true},
		{"resource exhausted", errors.New("Status: RESOURCE_EXHAUSTED"), true},
		{"quota message", errors.New("daily quota exceeded for model"), true},
		{"unrelated error", errors.New("connection refused"), false},
		{"server error", errors.New("Error 500, Message: internal"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimitError(tt.err); got != tt.expected {
				t.Errorf("IsRateLimitError(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestExtractRetryDelay(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected time.Duration
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: 0,
		},
		{
			name:     "please retry format",
			err:      errors.New("Error 429, Message: You exceeded your current quota. Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED"),
			expected: time.Duration(45.387061394 * float64(time.Second)),
		},
		{
			name:     "retryDelay format",
			err:      errors.New("rate limited, retryDelay: 30s"),
			expected: 30 * time.Second,
		},
		{
			name:     "no delay in message",
			err:      errors.New("Error 429, Message: quota exceeded"),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractRetryDelay(tt.err); got != tt.expected {
				t.Errorf("ExtractRetryDelay(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	config := NewDefaultRetryConfig()

	// First attempt with no API delay uses InitialBackoff.
	if got := config.CalculateBackoff(0, 0); got != DefaultInitialBackoff {
		t.Errorf("Expected initial backoff %v, got %v", DefaultInitialBackoff, got)
	}

	// API-provided delay plus buffer replaces the base.
	if got := config.CalculateBackoff(0, 30*time.Second); got != 35*time.Second {
		t.Errorf("Expected 35s (API delay + buffer), got %v", got)
	}

	// Backoff grows with each attempt.
	first := config.CalculateBackoff(0, 0)
	second := config.CalculateBackoff(1, 0)
	if second <= first {
		t.Errorf("Expected backoff to grow: attempt 0 = %v, attempt 1 = %v", first, second)
	}

	// Backoff never exceeds MaxBackoff.
	if got := config.CalculateBackoff(10, 0); got != DefaultMaxBackoff {
		t.Errorf("Expected backoff capped at %v, got %v", DefaultMaxBackoff, got)
	}
}

func TestCalculateBackoff_CustomConfig(t *testing.T) {
	config := &RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        4 * time.Second,
		BackoffMultiplier: 2.0,
	}

	expected := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		4 * time.Second, // capped
	}
	for attempt, want := range expected {
		if got := config.CalculateBackoff(attempt, 0); got != want {
			t.Errorf("Attempt %d: expected %v, got %v", attempt, want, got)
		}
	}
}
