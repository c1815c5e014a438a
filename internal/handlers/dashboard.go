package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/db"
	redis_a "github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/redis_adapter"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// DashboardHandler handles dealer dashboard operations
type DashboardHandler struct {
	db     *db.Database
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *db.Database, cache ports.CacheRepository, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		db:     db,
		cache:  cache,
		logger: logger.With(slog.String("handler", "dashboard")),
	}
}

// GetDashboard handles GET /api/v1/dealers/{dealerId}/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealerID := r.PathValue("dealerId")

	// Try cache first
	cacheKey := redis_a.BuildKey(redis_a.PrefixDashboard, dealerID, "main")
	var dashboard DashboardData

	err := h.cache.GetOrSet(ctx, cacheKey, &dashboard, func() (interface{}, error) {
		return h.loadDashboardData(ctx, dealerID)
	}, 5*time.Minute)

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load dashboard",
			slog.String("dealer_id", dealerID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	h.respondJSON(w, http.StatusOK, dashboard)
}

func (h *DashboardHandler) loadDashboardData(ctx context.Context, dealerID string) (*DashboardData, error) {
	dashboard := &DashboardData{
		DealerID:  dealerID,
		Timestamp: time.Now(),
	}

	// Stock and sales summary
	summaryQuery := `
		SELECT
			COUNT(*) as total_stock,
			COUNT(CASE WHEN s.lifecycle_state = 'forecourt' THEN 1 END) as on_forecourt,
			COUNT(CASE WHEN s.lifecycle_state = 'sold' THEN 1 END) as total_sold,
			COALESCE(SUM(s.total_cost), 0) as total_invested,
			COALESCE((
				SELECT SUM(sd.sale_price) FROM sale_details sd
				WHERE sd.dealer_id = s.dealer_id
			), 0) as total_revenue,
			COALESCE((
				SELECT COUNT(*) FROM sale_details sd
				WHERE sd.dealer_id = s.dealer_id AND sd.deposit_paid
			), 0) as deposits_taken
		FROM stock s
		WHERE s.dealer_id = $1 AND s.deleted_at IS NULL
		GROUP BY s.dealer_id
	`

	err := h.db.QueryRow(ctx, summaryQuery, dealerID).Scan(
		&dashboard.Summary.TotalStock,
		&dashboard.Summary.OnForecourt,
		&dashboard.Summary.TotalSold,
		&dashboard.Summary.TotalInvested,
		&dashboard.Summary.TotalRevenue,
		&dashboard.Summary.DepositsTaken,
	)
	if err != nil {
		return nil, err
	}

	// Gross profit across the book
	if dashboard.Summary.TotalInvested.GreaterThan(decimal.Zero) {
		dashboard.Summary.GrossProfit = dashboard.Summary.TotalRevenue.Sub(dashboard.Summary.TotalInvested)
		dashboard.Summary.AverageMargin = dashboard.Summary.GrossProfit.
			Div(dashboard.Summary.TotalInvested).
			Mul(decimal.NewFromInt(100))
	}

	// Breakdown by make
	makeQuery := `
		SELECT
			make,
			COUNT(*) as count,
			COALESCE(SUM(forecourt_price), 0) as value,
			COUNT(CASE WHEN lifecycle_state = 'sold' THEN 1 END) as sold_count
		FROM stock
		WHERE dealer_id = $1 AND deleted_at IS NULL
		GROUP BY make
		ORDER BY count DESC
		LIMIT 10
	`

	rows, err := h.db.Query(ctx, makeQuery, dealerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var breakdown MakeBreakdown
		if err := rows.Scan(&breakdown.Make, &breakdown.Count, &breakdown.Value, &breakdown.SoldCount); err != nil {
			continue
		}
		dashboard.MakeBreakdown = append(dashboard.MakeBreakdown, breakdown)
	}

	// Recent sales
	salesQuery := `
		SELECT
			sd.stock_id,
			sd.sale_price,
			sd.deposit_paid,
			sd.sale_date
		FROM sale_details sd
		WHERE sd.dealer_id = $1
		ORDER BY sd.sale_date DESC
		LIMIT 20
	`

	saleRows, err := h.db.Query(ctx, salesQuery, dealerID)
	if err == nil {
		defer saleRows.Close()
		for saleRows.Next() {
			var sale RecentSale
			if err := saleRows.Scan(&sale.StockID, &sale.SalePrice, &sale.DepositPaid, &sale.SaleDate); err == nil {
				dashboard.RecentSales = append(dashboard.RecentSales, sale)
			}
		}
	}

	return dashboard, nil
}

// Type definitions

type DashboardData struct {
	DealerID      string           `json:"dealer_id"`
	Summary       DashboardSummary `json:"summary"`
	MakeBreakdown []MakeBreakdown  `json:"make_breakdown"`
	RecentSales   []RecentSale     `json:"recent_sales"`
	Timestamp     time.Time        `json:"timestamp"`
}

type DashboardSummary struct {
	TotalStock    int64           `json:"total_stock"`
	OnForecourt   int64           `json:"on_forecourt"`
	TotalSold     int64           `json:"total_sold"`
	DepositsTaken int64           `json:"deposits_taken"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	AverageMargin decimal.Decimal `json:"average_margin"`
}

type MakeBreakdown struct {
	Make      string          `json:"make"`
	Count     int             `json:"count"`
	Value     decimal.Decimal `json:"value"`
	SoldCount int             `json:"sold_count"`
}

type RecentSale struct {
	StockID     string          `json:"stock_id"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	DepositPaid bool            `json:"deposit_paid"`
	SaleDate    time.Time       `json:"sale_date"`
}

// Helper methods

func (h *DashboardHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *DashboardHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
