// internal/core/services/stock.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// PgxPool interface defines the contract for database operations
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// StockService handles dealer stock business logic
type StockService struct {
	repo   ports.StockRepository
	db     PgxPool
	logger *slog.Logger
}

// Statically assert that *StockService implements the StockService interface.
var _ ports.StockService = (*StockService)(nil)

// NewStockService creates a new stock service
func NewStockService(repo ports.StockRepository, db PgxPool, logger *slog.Logger) *StockService {
	return &StockService{
		repo:   repo,
		db:     db,
		logger: logger.With(slog.String("service", "stock")),
	}
}

// SaveItems saves multiple stock items via the repository's batch path
func (s *StockService) SaveItems(ctx context.Context, items []domain.StockItem) error {
	if len(items) == 0 {
		s.logger.InfoContext(ctx, "no items to save")
		return nil
	}

	// Validate all items first
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return fmt.Errorf("validation failed for stock %s: %w", items[i].StockID, err)
		}
		items[i].PrepareForStorage()
	}

	if err := s.repo.SaveBatch(ctx, items); err != nil {
		return fmt.Errorf("failed to save stock batch: %w", err)
	}

	s.logger.InfoContext(ctx, "saved stock items",
		slog.Int("count", len(items)))

	return nil
}

// SaveItem saves a single stock item
func (s *StockService) SaveItem(ctx context.Context, item *domain.StockItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	item.PrepareForStorage()

	if err := s.repo.Save(ctx, item); err != nil {
		return fmt.Errorf("failed to save stock item: %w", err)
	}

	s.logger.InfoContext(ctx, "saved stock item",
		slog.String("stock_id", item.StockID),
		slog.String("dealer_id", item.DealerID),
		slog.String("registration", item.Registration))

	return nil
}

// GetByID retrieves a stock item by its (stockID, dealerID) key
func (s *StockService) GetByID(ctx context.Context, stockID, dealerID string) (*domain.StockItem, error) {
	item, err := s.repo.FindByID(ctx, stockID, dealerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock item: %w", err)
	}

	if item == nil {
		return nil, fmt.Errorf("stock item not found: %s", stockID)
	}

	return item, nil
}

// UpdateItem updates an existing stock item
func (s *StockService) UpdateItem(ctx context.Context, stockID, dealerID string, item *domain.StockItem) error {
	// Ensure the key matches
	item.StockID = stockID
	item.DealerID = dealerID

	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	item.PrepareForStorage()

	if err := s.repo.Update(ctx, item); err != nil {
		return fmt.Errorf("failed to update stock item: %w", err)
	}

	s.logger.InfoContext(ctx, "updated stock item",
		slog.String("stock_id", stockID),
		slog.String("dealer_id", dealerID))

	return nil
}

// DeleteItem deletes a stock item (soft delete by default)
func (s *StockService) DeleteItem(ctx context.Context, stockID, dealerID string, permanent bool) error {
	exists, err := s.repo.Exists(ctx, stockID, dealerID)
	if err != nil {
		return fmt.Errorf("failed to check stock existence: %w", err)
	}

	if !exists {
		return fmt.Errorf("stock item not found: %s", stockID)
	}

	if permanent {
		err = s.repo.Delete(ctx, stockID, dealerID)
	} else {
		err = s.repo.SoftDelete(ctx, stockID, dealerID)
	}

	if err != nil {
		return fmt.Errorf("failed to delete stock item: %w", err)
	}

	s.logger.InfoContext(ctx, "deleted stock item",
		slog.String("stock_id", stockID),
		slog.String("dealer_id", dealerID),
		slog.Bool("permanent", permanent))

	return nil
}

// List retrieves stock items with filtering and pagination
func (s *StockService) List(ctx context.Context, params ports.ListParams) (*ports.ListResult, error) {
	items, totalCount, err := s.getFilteredItems(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}

	var totalPages int
	if params.PageSize > 0 {
		totalPages = int(totalCount) / params.PageSize
		if int(totalCount)%params.PageSize > 0 {
			totalPages++
		}
	}

	result := &ports.ListResult{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}

	return result, nil
}

// listSortColumns whitelists the columns the list endpoint may sort on.
var listSortColumns = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"make":            true,
	"model":           true,
	"year":            true,
	"mileage":         true,
	"forecourt_price": true,
	"lifecycle_state": true,
}

// getFilteredItems is a helper method that queries the database directly
func (s *StockService) getFilteredItems(ctx context.Context, params ports.ListParams) ([]*domain.StockItem, int64, error) {
	baseQuery := `
		SELECT
			stock_id, dealer_id, registration, vin, make, model, derivative,
			year, mileage, colour, fuel_type, lifecycle_state,
			purchase_price, forecourt_price, total_cost,
			listing_ref, notes, created_at, updated_at
		FROM stock
		WHERE deleted_at IS NULL
	`

	// Add filters dynamically
	var conditions []string
	var args []interface{}
	argCount := 1

	if params.DealerID != "" {
		conditions = append(conditions, fmt.Sprintf("dealer_id = $%d", argCount))
		args = append(args, params.DealerID)
		argCount++
	}

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("search_vector @@ plainto_tsquery('english', $%d)", argCount))
		args = append(args, params.Search)
		argCount++
	}

	if params.Make != "" {
		conditions = append(conditions, fmt.Sprintf("make = $%d", argCount))
		args = append(args, params.Make)
		argCount++
	}

	if params.Model != "" {
		conditions = append(conditions, fmt.Sprintf("model = $%d", argCount))
		args = append(args, params.Model)
		argCount++
	}

	if params.FuelType != "" {
		conditions = append(conditions, fmt.Sprintf("fuel_type = $%d", argCount))
		args = append(args, params.FuelType)
		argCount++
	}

	if params.Lifecycle != "" {
		conditions = append(conditions, fmt.Sprintf("lifecycle_state = $%d", argCount))
		args = append(args, params.Lifecycle)
		argCount++
	}

	if params.MinYear > 0 {
		conditions = append(conditions, fmt.Sprintf("year >= $%d", argCount))
		args = append(args, params.MinYear)
		argCount++
	}

	if params.MaxYear > 0 {
		conditions = append(conditions, fmt.Sprintf("year <= $%d", argCount))
		args = append(args, params.MaxYear)
		argCount++
	}

	// Build final query
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	// Get count
	countQuery := "SELECT COUNT(*) FROM (" + baseQuery + ") as t"
	var totalCount int64
	err := s.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, 0, err
	}

	// Add ordering and pagination
	orderBy := "created_at DESC"
	if params.SortBy != "" && listSortColumns[params.SortBy] {
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s", params.SortBy, direction)
	}

	baseQuery += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, argCount, argCount+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := s.db.Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*domain.StockItem
	for rows.Next() {
		item := &domain.StockItem{}
		var registration, vin, derivative, colour, listingRef, notes *string
		var year, mileage *int

		err := rows.Scan(
			&item.StockID, &item.DealerID, &registration, &vin, &item.Make, &item.Model, &derivative,
			&year, &mileage, &colour, &item.FuelType, &item.Lifecycle,
			&item.PurchasePrice, &item.ForecourtPrice, &item.TotalCost,
			&listingRef, &notes, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}

		// Handle nullable fields
		if registration != nil {
			item.Registration = *registration
		}
		if vin != nil {
			item.VIN = *vin
		}
		if derivative != nil {
			item.Derivative = *derivative
		}
		if colour != nil {
			item.Colour = *colour
		}
		if listingRef != nil {
			item.ListingRef = *listingRef
		}
		if notes != nil {
			item.Notes = *notes
		}
		if year != nil {
			item.Year = *year
		}
		if mileage != nil {
			item.Mileage = *mileage
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, totalCount, nil
}
