// internal/workers/document_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/storage"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// DocumentJobPayload represents the payload for sale document processing jobs
type DocumentJobPayload struct {
	JobID         string `json:"job_id"`
	DealerID      string `json:"dealer_id"`
	StockID       string `json:"stock_id"`
	FilePath      string `json:"file_path"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}

// DocumentJobResult represents the result of document processing
type DocumentJobResult struct {
	StorageKey     string `json:"storage_key"`
	Registration   string `json:"registration,omitempty"`
	InvoiceNumber  string `json:"invoice_number,omitempty"`
	InvoiceTotal   string `json:"invoice_total,omitempty"`
	PagesExtracted int    `json:"pages_extracted"`
	ProcessingTime string `json:"processing_time"`
}

// DocumentProcessor archives uploaded sale documents and extracts
// invoice metadata from the PDF text.
type DocumentProcessor struct {
	store  *storage.DocumentStore
	sales  ports.SaleDetailsRepository
	db     ports.Database
	logger *slog.Logger
}

// NewDocumentProcessor creates a new document processor
func NewDocumentProcessor(store *storage.DocumentStore, sales ports.SaleDetailsRepository, db ports.Database, logger *slog.Logger) *DocumentProcessor {
	return &DocumentProcessor{
		store:  store,
		sales:  sales,
		db:     db,
		logger: logger.With(slog.String("processor", "document")),
	}
}

// ProcessDocument extracts metadata from a sale document PDF and
// uploads the file to long-term storage.
func (p *DocumentProcessor) ProcessDocument(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload DocumentJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "processing sale document",
		slog.String("job_id", payload.JobID),
		slog.String("dealer_id", payload.DealerID),
		slog.String("stock_id", payload.StockID))

	_ = updateJobStatus(ctx, p.db, payload.JobID, "processing", nil)

	meta, err := p.extractMetadata(ctx, payload.FilePath)
	if err != nil {
		errMsg := fmt.Sprintf("failed to read document: %v", err)
		_ = updateJobStatus(ctx, p.db, payload.JobID, "failed", &errMsg)
		return fmt.Errorf("failed to read document: %w", err)
	}

	invoiceNumber := payload.InvoiceNumber
	if invoiceNumber == "" {
		invoiceNumber = meta.invoiceNumber
	}
	if invoiceNumber == "" {
		invoiceNumber = payload.StockID
	}

	f, err := os.Open(payload.FilePath)
	if err != nil {
		errMsg := fmt.Sprintf("failed to open document: %v", err)
		_ = updateJobStatus(ctx, p.db, payload.JobID, "failed", &errMsg)
		return fmt.Errorf("failed to open document: %w", err)
	}

	key, err := p.store.StoreInvoicePDF(ctx, payload.DealerID, payload.StockID, invoiceNumber, f)
	f.Close()
	if err != nil {
		errMsg := fmt.Sprintf("failed to archive document: %v", err)
		_ = updateJobStatus(ctx, p.db, payload.JobID, "failed", &errMsg)
		return fmt.Errorf("failed to archive document: %w", err)
	}

	result := DocumentJobResult{
		StorageKey:     key,
		Registration:   meta.registration,
		InvoiceNumber:  invoiceNumber,
		PagesExtracted: meta.pages,
		ProcessingTime: time.Since(start).String(),
	}
	if meta.total != nil {
		result.InvoiceTotal = meta.total.StringFixed(2)
	}

	resultJSON, _ := json.Marshal(result)
	_ = updateJobResult(ctx, p.db, payload.JobID, "completed", resultJSON)

	// Clean up temporary file
	if strings.HasPrefix(payload.FilePath, os.TempDir()) {
		_ = os.Remove(payload.FilePath)
	}

	p.logger.InfoContext(ctx, "sale document archived",
		slog.String("job_id", payload.JobID),
		slog.String("storage_key", key),
		slog.String("registration", meta.registration))

	return nil
}

type documentMetadata struct {
	registration  string
	invoiceNumber string
	total         *decimal.Decimal
	pages         int
}

var (
	// UK registration plate, current format (e.g. AB12 CDE).
	registrationRe = regexp.MustCompile(`\b[A-Z]{2}\d{2}\s?[A-Z]{3}\b`)
	invoiceNoRe    = regexp.MustCompile(`(?i)invoice\s*(?:no\.?|number|#)?\s*[:\-]?\s*([A-Z0-9\-/]{3,20})`)
	totalRe        = regexp.MustCompile(`(?i)(?:total|balance)\s*(?:due|payable)?\s*[:\-]?\s*£?\s*(\d{1,3}(?:,\d{3})*\.\d{2})`)
)

func (p *DocumentProcessor) extractMetadata(ctx context.Context, filePath string) (*documentMetadata, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	meta := &documentMetadata{}
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.WarnContext(ctx, "failed to extract text from page",
				slog.Int("page", pageNum),
				slog.String("error", err.Error()))
			continue
		}
		meta.pages++

		upper := strings.ToUpper(text)
		if meta.registration == "" {
			if m := registrationRe.FindString(upper); m != "" {
				meta.registration = strings.ReplaceAll(m, " ", "")
			}
		}
		if meta.invoiceNumber == "" {
			if m := invoiceNoRe.FindStringSubmatch(text); len(m) > 1 {
				meta.invoiceNumber = strings.TrimSpace(m[1])
			}
		}
		if meta.total == nil {
			if m := totalRe.FindStringSubmatch(text); len(m) > 1 {
				cleaned := strings.ReplaceAll(m[1], ",", "")
				if d, err := decimal.NewFromString(cleaned); err == nil {
					meta.total = &d
				}
			}
		}
	}

	return meta, nil
}
