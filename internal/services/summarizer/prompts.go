package summarizer

import "fmt"

// SummarySeparator joins ordered batch summaries before the reduce phase.
// Distinct from ChunkSeparator so batch boundaries and summary boundaries
// never collide.
const SummarySeparator = "\n\n---\n\n"

// DefaultSummaryCharLimit is the advisory character cap stated in prompts.
// It is a soft instruction to the model and is never enforced on output.
const DefaultSummaryCharLimit = 5000

// buildMapPrompt constructs the per-batch summarization prompt. A non-empty
// query switches to the query-aware variant that extracts details relevant
// to the user's question.
func buildMapPrompt(batchContent, query string, charLimit int) string {
	if charLimit <= 0 {
		charLimit = DefaultSummaryCharLimit
	}

	if query != "" {
		return fmt.Sprintf(`This is a batch of content from a larger document. Summarize this specific batch while paying close attention to any information that could help answer the following user question. Extract all relevant details related to the question.
IMPORTANT: The summary characters with spaces for this batch must not exceed %d characters.
USER'S QUESTION: "%s"

--- CONTENT OF THIS BATCH ---
%s
--- QUERY-FOCUSED SUMMARY OF THIS BATCH ---
`, charLimit, query, batchContent)
	}

	return fmt.Sprintf(`This is a batch of content from a larger document. Summarize the key points from this batch concisely. Focus on the main requirements, specifications, or objectives mentioned.
IMPORTANT: The summary characters with spaces for this batch must not exceed %d characters.
--- CONTENT ---
%s
--- GENERAL SUMMARY ---
`, charLimit, batchContent)
}

// buildReducePrompt constructs the final synthesis prompt. With a query it
// asks for a single coherent answer; without one it asks for a structured
// executive summary in markdown.
func buildReducePrompt(combinedSummaries, query string, charLimit int) string {
	if charLimit <= 0 {
		charLimit = DefaultSummaryCharLimit
	}

	if query != "" {
		return fmt.Sprintf(`Based on the following query-focused summaries, synthesize them into a single, coherent, and complete answer to the user's question.
IMPORTANT: The final answer characters with spaces must not exceed %d characters.
USER'S QUESTION: "%s"

--- QUERY-FOCUSED SUMMARIES ---
%s
--- FINAL DETAILED ANSWER ---
`, charLimit, query, combinedSummaries)
	}

	return fmt.Sprintf(`From the following general summaries, compile a comprehensive and easy-to-understand executive summary.
Cover key points like Project Overview, Objectives, Scope, Qualifications, Budget, and Timeline.
Complete answer with markdown format and easy to read with bullet points.
IMPORTANT: The final summary characters with spaces must not exceed %d characters.

--- GENERAL SUMMARIES ---
%s
--- FINAL EXECUTIVE SUMMARY ---
`, charLimit, combinedSummaries)
}
