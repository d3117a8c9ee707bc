package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/brevio/internal/common"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiService implements the LLMService interface using the Google genai
// client. It provides text generation for summarization prompts.
type GeminiService struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	retry   *RetryConfig
	timeout time.Duration
}

// NewGeminiService creates a new Gemini LLM service instance.
//
// The service initialization includes:
//  1. Resolving the Google API key from config (BREVIO_GEMINI_API_KEY,
//     GOOGLE_API_KEY, or gemini.api_key - already merged into config)
//  2. Setting the default model name if not specified
//  3. Parsing timeout and rate-limit durations from configuration
//  4. Initializing the genai client
//
// Returns:
//   - *GeminiService: Initialized service ready for use
//   - error: nil on success, error with details on failure
func NewGeminiService(geminiConfig *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for Gemini service (set via BREVIO_GEMINI_API_KEY, GOOGLE_API_KEY, or gemini.api_key in config)")
	}

	// Set default model name if not specified
	if geminiConfig.Model == "" {
		geminiConfig.Model = "gemini-2.5-flash"
	}

	// Parse timeout duration
	timeout, err := time.ParseDuration(geminiConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", geminiConfig.Timeout, err)
	}

	// Parse rate limit interval
	rateInterval, err := time.ParseDuration(geminiConfig.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit duration '%s': %w", geminiConfig.RateLimit, err)
	}

	// Initialize genai client
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  geminiConfig,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(rateInterval), 1),
		retry:   NewDefaultRetryConfig(),
		timeout: timeout,
	}

	logger.Info().
		Str("model", geminiConfig.Model).
		Dur("timeout", timeout).
		Str("rate_limit", geminiConfig.RateLimit).
		Msg("Gemini LLM service initialized successfully")

	return service, nil
}

// Generate produces a text completion for the given prompt.
// Rate-limit errors from the API are retried with backoff; all other
// failures are returned to the caller.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty for text generation")
	}

	// Create timeout context
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Debug().
		Int("prompt_length", len(prompt)).
		Msg("Starting text generation")

	var response string
	var err error
	for attempt := 0; ; attempt++ {
		// Wait for rate limiter before each request
		if limitErr := s.limiter.Wait(timeoutCtx); limitErr != nil {
			return "", fmt.Errorf("rate limiter wait failed: %w", limitErr)
		}

		response, err = s.generateContent(timeoutCtx, prompt)
		if err == nil {
			break
		}
		if !IsRateLimitError(err) || attempt >= s.retry.MaxRetries {
			s.logger.Error().
				Err(err).
				Int("prompt_length", len(prompt)).
				Int("attempts", attempt+1).
				Msg("Text generation failed")
			return "", fmt.Errorf("text generation failed: %w", err)
		}

		backoff := s.retry.CalculateBackoff(attempt, ExtractRetryDelay(err))
		s.logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("Gemini rate limit hit, backing off")

		select {
		case <-time.After(backoff):
		case <-timeoutCtx.Done():
			return "", fmt.Errorf("text generation cancelled during backoff: %w", timeoutCtx.Err())
		}
	}

	duration := time.Since(startTime)
	s.logger.Debug().
		Int("prompt_length", len(prompt)).
		Int("response_length", len(response)).
		Dur("duration", duration).
		Msg("Text generation completed")

	return response, nil
}

// HealthCheck verifies the Gemini service is operational.
// Performs a lightweight generation probe with a short timeout.
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	s.logger.Debug().Msg("Running Gemini LLM service health check")

	if s.client == nil {
		return fmt.Errorf("genai client is not initialized")
	}

	healthCheckCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	response, err := s.generateContent(healthCheckCtx, "ping")
	if err != nil {
		s.logger.Error().Err(err).Msg("Gemini health check probe failed")
		return fmt.Errorf("generation probe failed: %w", err)
	}

	if len(strings.TrimSpace(response)) == 0 {
		return fmt.Errorf("generation probe returned empty response")
	}

	s.logger.Info().
		Str("model", s.config.Model).
		Msg("Gemini LLM service health check passed")

	return nil
}

// Provider returns the provider name for logging and result metadata.
func (s *GeminiService) Provider() string {
	return string(common.LLMProviderGemini)
}

// Close releases resources. The genai.Client doesn't require explicit
// cleanup beyond clearing the reference.
func (s *GeminiService) Close() error {
	s.logger.Info().Msg("Closing Gemini LLM service")
	s.client = nil
	return nil
}

// generateContent encapsulates the genai GenerateContent call and response
// text extraction.
func (s *GeminiService) generateContent(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	// Extract text from response - iterate candidates until non-empty text is found
	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from model")
	}

	return response.String(), nil
}
