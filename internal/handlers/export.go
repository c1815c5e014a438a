// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"

	redis_a "github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/redis_adapter"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// ExportParams defines parameters for sales ledger export operations
type ExportParams struct {
	DealerID string     `json:"dealer_id"`
	Columns  []string   `json:"columns"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Format   string     `json:"format"`
}

// SalesLedgerRow is one exported row: a sale joined with its stock record.
type SalesLedgerRow struct {
	StockID       string     `db:"stock_id"`
	Registration  *string    `db:"registration"`
	Make          string     `db:"make"`
	Model         string     `db:"model"`
	SaleDate      time.Time  `db:"sale_date"`
	SalePrice     *float64   `db:"sale_price"`
	VATScheme     *string    `db:"vat_scheme"`
	CashAmount    *float64   `db:"cash_amount"`
	BacsAmount    *float64   `db:"bacs_amount"`
	CardAmount    *float64   `db:"card_amount"`
	FinanceAmount *float64   `db:"finance_amount"`
	DepositAmount *float64   `db:"deposit_amount"`
	PartExAmount  *float64   `db:"part_ex_amount"`
	DepositPaid   bool       `db:"deposit_paid"`
	DepositDate   *time.Time `db:"deposit_date"`
	DeliveryPrice *float64   `db:"delivery_price"`
	WarrantyPrice *float64   `db:"warranty_price"`
	WarrantyLevel *string    `db:"warranty_level"`
	InvoiceNumber *string    `db:"invoice_number"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// JSONExportResponse represents the JSON export response structure
type JSONExportResponse struct {
	Sales    []map[string]any `json:"sales"`
	Metadata ExportMetadata   `json:"metadata"`
}

// ExportMetadata contains metadata about the export
type ExportMetadata struct {
	ExportDate time.Time  `json:"export_date"`
	DealerID   string     `json:"dealer_id"`
	TotalRows  int        `json:"total_rows"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	Columns    []string   `json:"columns"`
}

// ExportHandler handles sales ledger export operations
type ExportHandler struct {
	db     ports.Database
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(db ports.Database, cache ports.CacheRepository, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		db:     db,
		cache:  cache,
		logger: logger.With(slog.String("handler", "export")),
	}
}

// ExportExcel handles GET /api/v1/dealers/{dealerId}/export/sales/excel
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	h.logger.InfoContext(ctx, "starting Excel export",
		slog.String("dealer_id", params.DealerID))

	data, err := h.getSalesData(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve sales data", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateExcelFile(data)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("sales_ledger_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Excel export completed",
		slog.Int("total_rows", len(data)),
		slog.String("filename", filename))
}

// ExportJSON handles GET /api/v1/dealers/{dealerId}/export/sales/json
func (h *ExportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	h.logger.InfoContext(ctx, "starting JSON export",
		slog.String("dealer_id", params.DealerID))

	// Check cache first
	cacheKey := redis_a.BuildKey(redis_a.PrefixExport, params.DealerID, "json", h.getCacheKeyFromParams(params))
	var cachedData []byte
	if err := h.cache.Get(ctx, cacheKey, &cachedData); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Length", strconv.Itoa(len(cachedData)))

		if _, err := w.Write(cachedData); err != nil {
			h.logger.ErrorContext(ctx, "failed to write cached JSON response", slog.String("error", err.Error()))
			return
		}

		h.logger.InfoContext(ctx, "JSON export served from cache")
		return
	}

	data, err := h.getSalesData(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve sales data", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	jsonData := make([]map[string]any, 0, len(data))
	for i := range data {
		jsonData = append(jsonData, h.rowToJSONMap(&data[i], params.Columns))
	}

	response := JSONExportResponse{
		Sales: jsonData,
		Metadata: ExportMetadata{
			ExportDate: time.Now(),
			DealerID:   params.DealerID,
			TotalRows:  len(jsonData),
			DateFrom:   params.DateFrom,
			DateTo:     params.DateTo,
			Columns:    params.Columns,
		},
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal JSON response", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate JSON")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Length", strconv.Itoa(len(responseData)))

	if _, err := w.Write(responseData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write JSON response", slog.String("error", err.Error()))
		return
	}

	// Cache the result (async)
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.cache.Set(cacheCtx, cacheKey, responseData); err != nil {
			h.logger.WarnContext(cacheCtx, "failed to cache JSON response", slog.String("error", err.Error()))
		}
	}()

	h.logger.InfoContext(ctx, "JSON export completed",
		slog.Int("total_rows", len(data)))
}

// Helper methods

// parseExportParams parses and validates export parameters from the request
func (h *ExportHandler) parseExportParams(r *http.Request) *ExportParams {
	params := &ExportParams{
		DealerID: r.PathValue("dealerId"),
		Columns:  []string{"all"},
	}

	if cols := r.URL.Query().Get("columns"); cols != "" {
		params.Columns = strings.Split(strings.TrimSpace(cols), ",")
		for i, col := range params.Columns {
			params.Columns[i] = strings.TrimSpace(col)
		}
	}

	if from := r.URL.Query().Get("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			params.DateFrom = &t
		}
	}

	if to := r.URL.Query().Get("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			params.DateTo = &t
		}
	}

	params.Format = r.URL.Query().Get("format")
	if params.Format == "" {
		params.Format = "xlsx"
	}

	return params
}

// getSalesData retrieves sales ledger rows for the dealer
func (h *ExportHandler) getSalesData(ctx context.Context, params *ExportParams) ([]SalesLedgerRow, error) {
	query, args := h.buildExportQuery(params)

	rows, err := h.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales data: %w", err)
	}
	defer rows.Close()

	var data []SalesLedgerRow
	for rows.Next() {
		var row SalesLedgerRow
		err := rows.Scan(
			&row.StockID, &row.Registration, &row.Make, &row.Model,
			&row.SaleDate, &row.SalePrice, &row.VATScheme,
			&row.CashAmount, &row.BacsAmount, &row.CardAmount,
			&row.FinanceAmount, &row.DepositAmount, &row.PartExAmount,
			&row.DepositPaid, &row.DepositDate,
			&row.DeliveryPrice, &row.WarrantyPrice, &row.WarrantyLevel,
			&row.InvoiceNumber, &row.CreatedAt, &row.UpdatedAt,
		)
		if err != nil {
			h.logger.WarnContext(ctx, "failed to scan sales row", slog.String("error", err.Error()))
			continue
		}
		data = append(data, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales rows: %w", err)
	}

	return data, nil
}

// buildExportQuery constructs the SQL query based on export parameters
func (h *ExportHandler) buildExportQuery(params *ExportParams) (string, []any) {
	query := `
		SELECT
			sd.stock_id, s.registration, s.make, s.model,
			sd.sale_date, sd.sale_price, sd.vat_scheme,
			sd.cash_amount, sd.bacs_amount, sd.card_amount,
			sd.finance_amount, sd.deposit_amount, sd.part_ex_amount,
			sd.deposit_paid, sd.deposit_date,
			sd.delivery_price, sd.warranty_price, sd.warranty_level,
			sd.invoice_number, sd.created_at, sd.updated_at
		FROM sale_details sd
		JOIN stock s ON s.stock_id = sd.stock_id AND s.dealer_id = sd.dealer_id
		WHERE sd.dealer_id = $1`

	args := []any{params.DealerID}
	argCount := 2

	if params.DateFrom != nil {
		query += fmt.Sprintf(" AND sd.sale_date >= $%d", argCount)
		args = append(args, *params.DateFrom)
		argCount++
	}
	if params.DateTo != nil {
		query += fmt.Sprintf(" AND sd.sale_date <= $%d", argCount)
		args = append(args, *params.DateTo)
	}

	query += " ORDER BY sd.sale_date DESC"
	return query, args
}

// generateExcelFile creates an Excel file in memory from the data
func (h *ExportHandler) generateExcelFile(data []SalesLedgerRow) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Sales Ledger")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headers := salesLedgerHeaders()
	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for i := range data {
		dataRow := sheet.AddRow()
		for _, value := range h.rowToExcelValues(&data[i]) {
			cell := dataRow.AddCell()
			cell.Value = value
		}
	}

	for i := 0; i < len(headers); i++ {
		sheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

func salesLedgerHeaders() []string {
	return []string{
		"Stock ID", "Registration", "Make", "Model",
		"Sale Date", "Sale Price", "VAT Scheme",
		"Cash", "BACS", "Card", "Finance", "Deposit", "Part Exchange",
		"Deposit Paid", "Deposit Date",
		"Delivery Price", "Warranty Price", "Warranty Level",
		"Invoice Number", "Created At", "Updated At",
	}
}

// rowToExcelValues converts a ledger row to Excel cell values
func (h *ExportHandler) rowToExcelValues(row *SalesLedgerRow) []string {
	return []string{
		row.StockID,
		h.safeStringValue(row.Registration),
		row.Make,
		row.Model,
		row.SaleDate.Format("2006-01-02"),
		h.safeFloatValue(row.SalePrice),
		h.safeStringValue(row.VATScheme),
		h.safeFloatValue(row.CashAmount),
		h.safeFloatValue(row.BacsAmount),
		h.safeFloatValue(row.CardAmount),
		h.safeFloatValue(row.FinanceAmount),
		h.safeFloatValue(row.DepositAmount),
		h.safeFloatValue(row.PartExAmount),
		h.safeBoolValue(row.DepositPaid),
		h.safeDateValue(row.DepositDate),
		h.safeFloatValue(row.DeliveryPrice),
		h.safeFloatValue(row.WarrantyPrice),
		h.safeStringValue(row.WarrantyLevel),
		h.safeStringValue(row.InvoiceNumber),
		row.CreatedAt.Format("2006-01-02 15:04:05"),
		row.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// rowToJSONMap converts a ledger row to a JSON-friendly map
func (h *ExportHandler) rowToJSONMap(row *SalesLedgerRow, columns []string) map[string]any {
	result := map[string]any{
		"stock_id":       row.StockID,
		"registration":   row.Registration,
		"make":           row.Make,
		"model":          row.Model,
		"sale_date":      row.SaleDate,
		"sale_price":     row.SalePrice,
		"vat_scheme":     row.VATScheme,
		"cash_amount":    row.CashAmount,
		"bacs_amount":    row.BacsAmount,
		"card_amount":    row.CardAmount,
		"finance_amount": row.FinanceAmount,
		"deposit_amount": row.DepositAmount,
		"part_ex_amount": row.PartExAmount,
		"deposit_paid":   row.DepositPaid,
		"deposit_date":   row.DepositDate,
		"delivery_price": row.DeliveryPrice,
		"warranty_price": row.WarrantyPrice,
		"warranty_level": row.WarrantyLevel,
		"invoice_number": row.InvoiceNumber,
		"created_at":     row.CreatedAt,
		"updated_at":     row.UpdatedAt,
	}

	// If specific columns requested, filter the result
	if len(columns) > 0 && !(len(columns) == 1 && columns[0] == "all") {
		filtered := make(map[string]any)
		for _, col := range columns {
			if value, exists := result[col]; exists {
				filtered[col] = value
			}
		}
		return filtered
	}

	return result
}

// Utility methods for safe value conversion

func (h *ExportHandler) safeStringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func (h *ExportHandler) safeFloatValue(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}

func (h *ExportHandler) safeDateValue(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format("2006-01-02")
}

func (h *ExportHandler) safeBoolValue(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func (h *ExportHandler) getCacheKeyFromParams(params *ExportParams) string {
	key := fmt.Sprintf("cols_%s", strings.Join(params.Columns, ","))
	if params.DateFrom != nil {
		key += fmt.Sprintf("_from_%s", params.DateFrom.Format("20060102"))
	}
	if params.DateTo != nil {
		key += fmt.Sprintf("_to_%s", params.DateTo.Format("20060102"))
	}
	return key
}

func (h *ExportHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]string{
		"error":   message,
		"status":  "error",
		"message": message,
	}

	json.NewEncoder(w).Encode(response)
}
