// internal/handlers/sync.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// SyncHandler exposes the invoice reconciliation flow plus read access to
// the records it maintains.
type SyncHandler struct {
	sync       ports.InvoiceSyncService
	sales      ports.SaleDetailsRepository
	checklists ports.ChecklistRepository
	logger     *slog.Logger
}

// NewSyncHandler creates a new invoice sync handler
func NewSyncHandler(sync ports.InvoiceSyncService, sales ports.SaleDetailsRepository, checklists ports.ChecklistRepository, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		sync:       sync,
		sales:      sales,
		checklists: checklists,
		logger:     logger.With(slog.String("handler", "invoice_sync")),
	}
}

// SyncInvoice handles POST /api/v1/dealers/{dealerId}/stock/{stockId}/invoice-sync
//
// The response is always 200 with the sync result; partial failures are
// reported inside the result rather than as HTTP errors so the invoice save
// that triggered the sync is never blocked.
func (h *SyncHandler) SyncInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealerID := r.PathValue("dealerId")
	stockID := r.PathValue("stockId")

	if dealerID == "" || stockID == "" {
		h.respondError(w, http.StatusBadRequest, "dealer id and stock id are required")
		return
	}

	var invoice domain.Invoice
	if err := json.NewDecoder(r.Body).Decode(&invoice); err != nil {
		h.logger.WarnContext(ctx, "invalid invoice payload",
			slog.String("stock_id", stockID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusBadRequest, "Invalid invoice payload")
		return
	}

	result := h.sync.Sync(ctx, dealerID, stockID, &invoice)

	h.respondJSON(w, http.StatusOK, result)
}

// GetSaleDetails handles GET /api/v1/dealers/{dealerId}/stock/{stockId}/sale-details
func (h *SyncHandler) GetSaleDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealerID := r.PathValue("dealerId")
	stockID := r.PathValue("stockId")

	details, err := h.sales.GetByStockID(ctx, stockID, dealerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get sale details",
			slog.String("stock_id", stockID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve sale details")
		return
	}

	if details == nil {
		h.respondError(w, http.StatusNotFound, "Sale details not found")
		return
	}

	h.respondJSON(w, http.StatusOK, details)
}

// GetChecklist handles GET /api/v1/dealers/{dealerId}/stock/{stockId}/checklist
func (h *SyncHandler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealerID := r.PathValue("dealerId")
	stockID := r.PathValue("stockId")

	checklist, err := h.checklists.GetByStockID(ctx, stockID, dealerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get vehicle checklist",
			slog.String("stock_id", stockID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve vehicle checklist")
		return
	}

	if checklist == nil {
		h.respondError(w, http.StatusNotFound, "Vehicle checklist not found")
		return
	}

	h.respondJSON(w, http.StatusOK, checklist)
}

func (h *SyncHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *SyncHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
