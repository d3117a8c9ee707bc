package summarizer

import (
	"context"
	"strings"
)

// reducePhase concatenates the ordered batch summaries and makes the single
// synthesis call. Unlike map workers, a failure here is not degraded: it is
// returned as a FailureReduce error and the run produces no summary.
func (s *Service) reducePhase(ctx context.Context, summaries []string, query string) (string, error) {
	combined := strings.Join(summaries, SummarySeparator)

	if query != "" {
		s.logger.Info().Str("query", query).Msg("Generating final answer for query")
	} else {
		s.logger.Info().Msg("Generating general executive summary")
	}

	prompt := buildReducePrompt(combined, query, s.charLimit)
	response, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Msg("Reduce phase failed")
		return "", &Error{Kind: FailureReduce, Err: err}
	}

	s.logger.Info().
		Int("summary_length", len(response)).
		Msg("Reduce phase complete")

	return strings.TrimSpace(response), nil
}
