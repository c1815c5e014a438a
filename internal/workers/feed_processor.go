// internal/workers/feed_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

const (
	TypeFeedImport       = "feed:import"
	TypeDocumentProcess  = "document:process"
	TypeDashboardRefresh = "dashboard:refresh"
	TypeSendEmail        = "email:send"
	TypeCleanupOldData   = "cleanup:old_data"
	TypeCleanupTempFiles = "cleanup:temp_files"
)

// FeedJobPayload represents the payload for stock feed import jobs
type FeedJobPayload struct {
	JobID    string `json:"job_id"`
	DealerID string `json:"dealer_id"`
	FilePath string `json:"file_path"`
	FileName string `json:"file_name,omitempty"`
}

// FeedJobResult represents the result of a feed import
type FeedJobResult struct {
	RowsRead       int      `json:"rows_read"`
	ItemsImported  int      `json:"items_imported"`
	RowsSkipped    int      `json:"rows_skipped"`
	Errors         []string `json:"errors,omitempty"`
	ProcessingTime string   `json:"processing_time"`
}

// FeedProcessor handles dealer stock feed import tasks
type FeedProcessor struct {
	service ports.StockService
	db      ports.Database
	logger  *slog.Logger
}

// NewFeedProcessor creates a new feed processor
func NewFeedProcessor(service ports.StockService, db ports.Database, logger *slog.Logger) *FeedProcessor {
	return &FeedProcessor{
		service: service,
		db:      db,
		logger:  logger.With(slog.String("processor", "feed")),
	}
}

// ProcessFeed parses a dealer stock feed spreadsheet and upserts its rows
func (p *FeedProcessor) ProcessFeed(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload FeedJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "processing stock feed",
		slog.String("job_id", payload.JobID),
		slog.String("dealer_id", payload.DealerID),
		slog.String("file_path", payload.FilePath))

	_ = updateJobStatus(ctx, p.db, payload.JobID, "processing", nil)

	file, err := xlsx.OpenFile(payload.FilePath)
	if err != nil {
		errMsg := fmt.Sprintf("failed to open feed file: %v", err)
		_ = updateJobStatus(ctx, p.db, payload.JobID, "failed", &errMsg)
		return fmt.Errorf("failed to open feed file: %w", err)
	}

	var items []domain.StockItem
	rowsRead := 0
	skipped := 0

	if len(file.Sheets) > 0 {
		sheet := file.Sheets[0]
		rowIdx := 0

		err = sheet.ForEachRow(func(r *xlsx.Row) error {
			// Skip header row
			if rowIdx == 0 {
				rowIdx++
				return nil
			}
			rowIdx++
			rowsRead++

			item := p.parseRow(r, payload.DealerID)
			if item == nil {
				skipped++
				return nil
			}
			items = append(items, *item)
			return nil
		})

		if err != nil {
			errMsg := fmt.Sprintf("failed to process feed rows: %v", err)
			_ = updateJobStatus(ctx, p.db, payload.JobID, "failed", &errMsg)
			return fmt.Errorf("failed to process feed rows: %w", err)
		}
	}

	var errors []string
	status := "completed"
	if len(items) > 0 {
		if err := p.service.SaveItems(ctx, items); err != nil {
			status = "completed_with_errors"
			errors = append(errors, err.Error())
		}
	}

	result := FeedJobResult{
		RowsRead:       rowsRead,
		ItemsImported:  len(items),
		RowsSkipped:    skipped,
		Errors:         errors,
		ProcessingTime: time.Since(start).String(),
	}

	resultJSON, _ := json.Marshal(result)
	_ = updateJobResult(ctx, p.db, payload.JobID, status, resultJSON)

	// Clean up temp file
	if strings.HasPrefix(payload.FilePath, os.TempDir()) {
		_ = os.Remove(payload.FilePath)
	}

	p.logger.InfoContext(ctx, "stock feed processed",
		slog.String("job_id", payload.JobID),
		slog.Int("rows_read", rowsRead),
		slog.Int("items_imported", len(items)),
		slog.Int("rows_skipped", skipped))

	return nil
}

// Feed column layout: stock_id, registration, vin, make, model, derivative,
// year, mileage, colour, fuel_type, purchase_price, forecourt_price, notes.
func (p *FeedProcessor) parseRow(r *xlsx.Row, dealerID string) *domain.StockItem {
	get := func(i int) string {
		c := r.GetCell(i)
		if c == nil {
			return ""
		}
		return strings.TrimSpace(c.String())
	}

	getInt := func(i int) int {
		s := get(i)
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
		return n
	}

	getDecimal := func(i int) decimal.Decimal {
		s := get(i)
		if s == "" {
			return decimal.Zero
		}
		s = strings.TrimPrefix(s, "£")
		d, _ := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
		return d
	}

	stockID := get(0)
	makeName := get(3)
	model := get(4)
	if stockID == "" || makeName == "" || model == "" {
		return nil
	}
	if domain.IsVehicleFinderStockID(stockID) {
		return nil
	}

	item := &domain.StockItem{
		StockID:        stockID,
		DealerID:       dealerID,
		Registration:   strings.ToUpper(get(1)),
		VIN:            strings.ToUpper(get(2)),
		Make:           makeName,
		Model:          model,
		Derivative:     get(5),
		Year:           getInt(6),
		Mileage:        getInt(7),
		Colour:         get(8),
		FuelType:       parseFuelType(get(9)),
		Lifecycle:      domain.StateForecourt,
		PurchasePrice:  getDecimal(10),
		ForecourtPrice: getDecimal(11),
		Notes:          get(12),
	}
	item.TotalCost = item.PurchasePrice
	return item
}

func parseFuelType(s string) domain.FuelType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "petrol", "gasoline":
		return domain.FuelPetrol
	case "diesel":
		return domain.FuelDiesel
	case "hybrid", "phev", "mhev":
		return domain.FuelHybrid
	case "electric", "ev", "bev":
		return domain.FuelElectric
	default:
		return domain.FuelOther
	}
}

func updateJobStatus(ctx context.Context, database ports.Database, jobID string, status string, errorMsg *string) error {
	query := `
		UPDATE async_jobs
		SET status = $2, error = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	_, err := database.Exec(ctx, query, jobID, status, errorMsg)
	return err
}

func updateJobResult(ctx context.Context, database ports.Database, jobID string, status string, result json.RawMessage) error {
	query := `
		UPDATE async_jobs
		SET status = $2, result = $3, completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	_, err := database.Exec(ctx, query, jobID, status, result)
	return err
}
