// internal/handlers/import.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/workers"
)

// ImportHandler accepts dealer file uploads and queues them for
// background processing.
type ImportHandler struct {
	asynqClient *asynq.Client
	db          ports.Database
	logger      *slog.Logger
	maxFileSize int64
	uploadDir   string
}

// NewImportHandler creates a new import handler
func NewImportHandler(asynqClient *asynq.Client, db ports.Database, logger *slog.Logger, maxFileSize int64, uploadDir string) *ImportHandler {
	return &ImportHandler{
		asynqClient: asynqClient,
		db:          db,
		logger:      logger.With(slog.String("handler", "import")),
		maxFileSize: maxFileSize,
		uploadDir:   uploadDir,
	}
}

// ImportFeed handles POST /api/v1/dealers/{dealerId}/import/feed
func (h *ImportHandler) ImportFeed(w http.ResponseWriter, r *http.Request) {
	dealerID := r.PathValue("dealerId")
	if dealerID == "" {
		h.respondError(w, http.StatusBadRequest, "dealer id is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "file too large or invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		h.respondError(w, http.StatusBadRequest, "feed must be an Excel file (.xlsx)")
		return
	}

	tempFile, err := h.saveUpload(file, header.Filename)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to save upload",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}

	jobID := uuid.New().String()
	payload := workers.FeedJobPayload{
		JobID:    jobID,
		DealerID: dealerID,
		FilePath: tempFile,
		FileName: header.Filename,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	if err := h.createAsyncJob(r.Context(), jobID, workers.TypeFeedImport, payloadBytes); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to record import job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	task := asynq.NewTask(workers.TypeFeedImport, payloadBytes)
	info, err := h.asynqClient.EnqueueContext(r.Context(), task,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to enqueue feed import",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "failed to queue import")
		return
	}

	h.logger.InfoContext(r.Context(), "feed import queued",
		slog.String("job_id", jobID),
		slog.String("dealer_id", dealerID),
		slog.String("task_id", info.ID),
		slog.String("filename", header.Filename))

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  jobID,
		"status":  "queued",
		"message": "feed import queued for processing",
	})
}

// ImportDocument handles POST /api/v1/dealers/{dealerId}/stock/{stockId}/documents
func (h *ImportHandler) ImportDocument(w http.ResponseWriter, r *http.Request) {
	dealerID := r.PathValue("dealerId")
	stockID := r.PathValue("stockId")
	if dealerID == "" || stockID == "" {
		h.respondError(w, http.StatusBadRequest, "dealer id and stock id are required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "file too large or invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
		h.respondError(w, http.StatusBadRequest, "document must be a PDF")
		return
	}

	tempFile, err := h.saveUpload(file, header.Filename)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to save upload",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}

	jobID := uuid.New().String()
	payload := workers.DocumentJobPayload{
		JobID:         jobID,
		DealerID:      dealerID,
		StockID:       stockID,
		FilePath:      tempFile,
		InvoiceNumber: r.FormValue("invoice_number"),
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	if err := h.createAsyncJob(r.Context(), jobID, workers.TypeDocumentProcess, payloadBytes); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to record document job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	task := asynq.NewTask(workers.TypeDocumentProcess, payloadBytes)
	info, err := h.asynqClient.EnqueueContext(r.Context(), task,
		asynq.Queue("low"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to enqueue document",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "failed to queue document")
		return
	}

	h.logger.InfoContext(r.Context(), "sale document queued",
		slog.String("job_id", jobID),
		slog.String("dealer_id", dealerID),
		slog.String("stock_id", stockID),
		slog.String("task_id", info.ID))

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  jobID,
		"status":  "queued",
		"message": "document queued for processing",
	})
}

// ImportStatus handles GET /api/v1/import/status/{jobId}
func (h *ImportHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	if jobID == "" {
		h.respondError(w, http.StatusBadRequest, "job id is required")
		return
	}

	status, err := h.getJobStatus(r.Context(), jobID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "failed to load job status")
		return
	}
	if status == nil {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	h.respondJSON(w, http.StatusOK, status)
}

func (h *ImportHandler) saveUpload(file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	tempFile := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(filename)))
	dst, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	return tempFile, nil
}

func (h *ImportHandler) createAsyncJob(ctx context.Context, jobID string, jobType string, payload json.RawMessage) error {
	query := `
		INSERT INTO async_jobs (id, type, status, payload, created_at, updated_at)
		VALUES ($1, $2, 'queued', $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	_, err := h.db.Exec(ctx, query, jobID, jobType, payload)
	return err
}

func (h *ImportHandler) getJobStatus(ctx context.Context, jobID string) (map[string]interface{}, error) {
	query := `
		SELECT type, status, error, result, created_at, completed_at
		FROM async_jobs
		WHERE id = $1`

	var (
		jobType     string
		status      string
		errMsg      *string
		result      []byte
		createdAt   time.Time
		completedAt *time.Time
	)
	err := h.db.QueryRow(ctx, query, jobID).Scan(&jobType, &status, &errMsg, &result, &createdAt, &completedAt)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return nil, nil
		}
		return nil, err
	}

	out := map[string]interface{}{
		"job_id":     jobID,
		"type":       jobType,
		"status":     status,
		"created_at": createdAt,
	}
	if errMsg != nil {
		out["error"] = *errMsg
	}
	if completedAt != nil {
		out["completed_at"] = *completedAt
	}
	if len(result) > 0 {
		var parsed map[string]interface{}
		if err := json.Unmarshal(result, &parsed); err == nil {
			out["result"] = parsed
		}
	}

	return out, nil
}

func (h *ImportHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ImportHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
