package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/brevio/internal/interfaces"
	"github.com/ternarybob/brevio/internal/models"
	"github.com/ternarybob/brevio/internal/services/summarizer"
)

// maxUploadSize caps multipart chunk-file uploads at 32 MB.
const maxUploadSize = 32 << 20

// SummarizeRequest is the JSON body accepted by POST /api/summarize.
type SummarizeRequest struct {
	Query string         `json:"query"`
	Data  []models.Chunk `json:"data" validate:"required,min=1"`
}

// SummarizeHandler handles summarization HTTP requests
type SummarizeHandler struct {
	summarizerService interfaces.SummarizerService
	validate          *validator.Validate
	logger            arbor.ILogger
}

// NewSummarizeHandler creates a new summarize handler
func NewSummarizeHandler(summarizerService interfaces.SummarizerService, logger arbor.ILogger) *SummarizeHandler {
	return &SummarizeHandler{
		summarizerService: summarizerService,
		validate:          validator.New(),
		logger:            logger,
	}
}

// SummarizeHandler handles POST /api/summarize requests with a JSON body of
// chunk records and an optional query.
func (h *SummarizeHandler) SummarizeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode summarize request")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "No content data found in request body")
		return
	}

	chunks := make([]string, 0, len(req.Data))
	for _, chunk := range req.Data {
		chunks = append(chunks, chunk.Content)
	}

	h.logger.Info().
		Int("chunks", len(chunks)).
		Bool("query_aware", req.Query != "").
		Msg("Processing summarize request")

	result, err := h.summarizerService.SummarizeChunks(r.Context(), chunks, req.Query)
	if err != nil {
		h.writeSummarizeError(w, err)
		return
	}

	writeSummaryResult(w, "json_body", "", result)
}

// SummarizeFileHandler handles POST /api/summarize/file requests with a
// multipart upload of a JSON chunk file and an optional query form field.
// The upload is staged to a temp file, summarized, and removed.
func (h *SummarizeHandler) SummarizeFileHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse multipart form")
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing 'file' form field")
		return
	}
	defer file.Close()

	query := r.FormValue("query")

	tempFile, err := os.CreateTemp("", "brevio-upload-*.json")
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create temp file for upload")
		WriteError(w, http.StatusInternalServerError, "Failed to stage uploaded file")
		return
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := io.Copy(tempFile, file); err != nil {
		tempFile.Close()
		h.logger.Error().Err(err).Msg("Failed to write uploaded file")
		WriteError(w, http.StatusInternalServerError, "Failed to stage uploaded file")
		return
	}
	tempFile.Close()

	h.logger.Info().
		Str("filename", header.Filename).
		Bool("query_aware", query != "").
		Msg("Processing file summarize request")

	result, err := h.summarizerService.SummarizeFile(r.Context(), tempPath, query)
	if err != nil {
		h.writeSummarizeError(w, err)
		return
	}

	writeSummaryResult(w, "file_upload", filepath.Base(header.Filename), result)
}

// writeSummarizeError maps tagged summarizer failures to HTTP status codes:
// input failures are the caller's fault (400), reduce failures are an
// upstream backend fault (502), anything else is internal (500).
func (h *SummarizeHandler) writeSummarizeError(w http.ResponseWriter, err error) {
	kind, ok := summarizer.KindOf(err)
	if !ok {
		if errors.Is(err, context.Canceled) {
			WriteError(w, http.StatusRequestTimeout, "Request cancelled")
			return
		}
		h.logger.Error().Err(err).Msg("Summarization failed")
		WriteError(w, http.StatusInternalServerError, "Summarization failed: "+err.Error())
		return
	}

	switch kind {
	case summarizer.FailureInput:
		h.logger.Warn().Err(err).Msg("Summarize request rejected: input failure")
		WriteError(w, http.StatusBadRequest, err.Error())
	case summarizer.FailureReduce:
		h.logger.Error().Err(err).Msg("Summarize request failed: reduce failure")
		WriteError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Summarization failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeSummaryResult(w http.ResponseWriter, inputType, filename string, result *models.SummaryResult) {
	response := map[string]interface{}{
		"success":        true,
		"input_type":     inputType,
		"run_id":         result.RunID,
		"summary":        result.Summary,
		"batches":        result.BatchCount,
		"failed_batches": result.FailedBatches,
		"provider":       result.Provider,
		"duration_ms":    result.Duration.Milliseconds(),
	}
	if result.Query != "" {
		response["query"] = result.Query
	}
	if filename != "" {
		response["filename"] = filename
	}

	WriteJSON(w, http.StatusOK, response)
}

