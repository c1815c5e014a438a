// internal/handlers/stock.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// StockHandler handles stock-related HTTP requests
type StockHandler struct {
	service ports.StockService
	logger  *slog.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(service ports.StockService, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "stock")),
	}
}

// GetStock handles GET /api/v1/dealers/{dealerId}/stock/{stockId}
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealerID := r.PathValue("dealerId")
	stockID := r.PathValue("stockId")

	item, err := h.service.GetByID(ctx, stockID, dealerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get stock item",
			slog.String("stock_id", stockID),
			slog.String("error", err.Error()))

		if err.Error() == "stock item not found: "+stockID {
			h.respondError(w, http.StatusNotFound, "Stock item not found")
			return
		}

		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve stock item")
		return
	}

	h.respondJSON(w, http.StatusOK, item)
}

// ListStock handles GET /api/v1/dealers/{dealerId}/stock
func (h *StockHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseListParams(r)
	params.DealerID = r.PathValue("dealerId")

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list stock items",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list stock items")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// CreateStock handles POST /api/v1/dealers/{dealerId}/stock
func (h *StockHandler) CreateStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealerID := r.PathValue("dealerId")

	var req CreateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := req.ToDomain(dealerID)

	if err := h.service.SaveItem(ctx, item); err != nil {
		h.logger.ErrorContext(ctx, "failed to create stock item",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to create stock item")
		return
	}

	h.logger.InfoContext(ctx, "stock item created",
		slog.String("stock_id", item.StockID),
		slog.String("dealer_id", dealerID))

	h.respondJSON(w, http.StatusCreated, item)
}

// UpdateStock handles PUT /api/v1/dealers/{dealerId}/stock/{stockId}
func (h *StockHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealerID := r.PathValue("dealerId")
	stockID := r.PathValue("stockId")

	var req UpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := req.ToDomain(dealerID)

	if err := h.service.UpdateItem(ctx, stockID, dealerID, item); err != nil {
		h.logger.ErrorContext(ctx, "failed to update stock item",
			slog.String("stock_id", stockID),
			slog.String("error", err.Error()))

		if err.Error() == "stock item not found: "+stockID {
			h.respondError(w, http.StatusNotFound, "Stock item not found")
			return
		}

		h.respondError(w, http.StatusInternalServerError, "Failed to update stock item")
		return
	}

	updatedItem, err := h.service.GetByID(ctx, stockID, dealerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve updated item",
			slog.String("stock_id", stockID),
			slog.String("error", err.Error()))
		// Still return success even if we can't retrieve the updated item
		h.respondJSON(w, http.StatusOK, map[string]string{"message": "Stock item updated successfully"})
		return
	}

	h.logger.InfoContext(ctx, "stock item updated",
		slog.String("stock_id", stockID))

	h.respondJSON(w, http.StatusOK, updatedItem)
}

// DeleteStock handles DELETE /api/v1/dealers/{dealerId}/stock/{stockId}
func (h *StockHandler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealerID := r.PathValue("dealerId")
	stockID := r.PathValue("stockId")

	// Check for permanent delete flag
	permanent := r.URL.Query().Get("permanent") == "true"

	if err := h.service.DeleteItem(ctx, stockID, dealerID, permanent); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete stock item",
			slog.String("stock_id", stockID),
			slog.Bool("permanent", permanent),
			slog.String("error", err.Error()))

		if err.Error() == "stock item not found: "+stockID {
			h.respondError(w, http.StatusNotFound, "Stock item not found")
			return
		}

		h.respondError(w, http.StatusInternalServerError, "Failed to delete stock item")
		return
	}

	h.logger.InfoContext(ctx, "stock item deleted",
		slog.String("stock_id", stockID),
		slog.Bool("permanent", permanent))

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Stock item deleted successfully",
		"stock_id":  stockID,
		"permanent": permanent,
	})
}

// parseListParams parses query parameters for listing stock
func (h *StockHandler) parseListParams(r *http.Request) ports.ListParams {
	params := ports.ListParams{
		Page:      1,
		PageSize:  50,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	// Parse pagination
	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 100 {
				params.PageSize = 100
			} else {
				params.PageSize = l
			}
		}
	}

	// Parse filters
	params.Search = r.URL.Query().Get("search")
	params.Make = r.URL.Query().Get("make")
	params.Model = r.URL.Query().Get("model")
	params.FuelType = r.URL.Query().Get("fuel_type")
	params.Lifecycle = r.URL.Query().Get("lifecycle_state")

	if minYear := r.URL.Query().Get("min_year"); minYear != "" {
		if y, err := strconv.Atoi(minYear); err == nil && y > 0 {
			params.MinYear = y
		}
	}
	if maxYear := r.URL.Query().Get("max_year"); maxYear != "" {
		if y, err := strconv.Atoi(maxYear); err == nil && y > 0 {
			params.MaxYear = y
		}
	}

	// Parse sorting
	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}

	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}

	return params
}

// Helper methods

func (h *StockHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *StockHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request/Response DTOs

// CreateStockRequest represents the request body for creating a stock item
type CreateStockRequest struct {
	StockID        string          `json:"stock_id"`
	Registration   string          `json:"registration,omitempty"`
	VIN            string          `json:"vin,omitempty"`
	Make           string          `json:"make"`
	Model          string          `json:"model"`
	Derivative     string          `json:"derivative,omitempty"`
	Year           int             `json:"year,omitempty"`
	Mileage        int             `json:"mileage,omitempty"`
	Colour         string          `json:"colour,omitempty"`
	FuelType       string          `json:"fuel_type,omitempty"`
	Lifecycle      string          `json:"lifecycle_state,omitempty"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	ForecourtPrice decimal.Decimal `json:"forecourt_price,omitempty"`
	ListingRef     string          `json:"listing_ref,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// Validate validates the create stock request
func (r *CreateStockRequest) Validate() error {
	if r.StockID == "" {
		return fmt.Errorf("stock_id is required")
	}
	if domain.IsVehicleFinderStockID(r.StockID) {
		return fmt.Errorf("stock_id cannot use the vehicle-finder prefix")
	}
	if r.Make == "" {
		return fmt.Errorf("make is required")
	}
	if r.Model == "" {
		return fmt.Errorf("model is required")
	}
	if r.PurchasePrice.IsNegative() {
		return fmt.Errorf("purchase_price cannot be negative")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *CreateStockRequest) ToDomain(dealerID string) *domain.StockItem {
	item := &domain.StockItem{
		StockID:        r.StockID,
		DealerID:       dealerID,
		Registration:   r.Registration,
		VIN:            r.VIN,
		Make:           r.Make,
		Model:          r.Model,
		Derivative:     r.Derivative,
		Year:           r.Year,
		Mileage:        r.Mileage,
		Colour:         r.Colour,
		FuelType:       domain.FuelType(r.FuelType),
		Lifecycle:      domain.LifecycleState(r.Lifecycle),
		PurchasePrice:  r.PurchasePrice,
		ForecourtPrice: r.ForecourtPrice,
		ListingRef:     r.ListingRef,
		Notes:          r.Notes,
	}

	// Set defaults
	if item.Lifecycle == "" {
		item.Lifecycle = domain.StateDueIn
	}
	if item.FuelType == "" {
		item.FuelType = domain.FuelOther
	}

	return item
}

// UpdateStockRequest represents the request body for updating a stock item
type UpdateStockRequest struct {
	Registration   string          `json:"registration,omitempty"`
	VIN            string          `json:"vin,omitempty"`
	Make           string          `json:"make"`
	Model          string          `json:"model"`
	Derivative     string          `json:"derivative,omitempty"`
	Year           int             `json:"year,omitempty"`
	Mileage        int             `json:"mileage,omitempty"`
	Colour         string          `json:"colour,omitempty"`
	FuelType       string          `json:"fuel_type,omitempty"`
	Lifecycle      string          `json:"lifecycle_state,omitempty"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	ForecourtPrice decimal.Decimal `json:"forecourt_price,omitempty"`
	ListingRef     string          `json:"listing_ref,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// Validate validates the update stock request
func (r *UpdateStockRequest) Validate() error {
	if r.Make == "" {
		return fmt.Errorf("make is required")
	}
	if r.Model == "" {
		return fmt.Errorf("model is required")
	}
	if r.PurchasePrice.IsNegative() {
		return fmt.Errorf("purchase_price cannot be negative")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *UpdateStockRequest) ToDomain(dealerID string) *domain.StockItem {
	item := &domain.StockItem{
		DealerID:       dealerID,
		Registration:   r.Registration,
		VIN:            r.VIN,
		Make:           r.Make,
		Model:          r.Model,
		Derivative:     r.Derivative,
		Year:           r.Year,
		Mileage:        r.Mileage,
		Colour:         r.Colour,
		FuelType:       domain.FuelType(r.FuelType),
		Lifecycle:      domain.LifecycleState(r.Lifecycle),
		PurchasePrice:  r.PurchasePrice,
		ForecourtPrice: r.ForecourtPrice,
		ListingRef:     r.ListingRef,
		Notes:          r.Notes,
	}

	// Set defaults
	if item.Lifecycle == "" {
		item.Lifecycle = domain.StateForecourt
	}
	if item.FuelType == "" {
		item.FuelType = domain.FuelOther
	}

	return item
}
