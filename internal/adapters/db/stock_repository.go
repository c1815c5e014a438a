// internal/adapters/db/stock_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// stockRepository implements ports.StockRepository
type stockRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *Database, logger *slog.Logger) ports.StockRepository {
	return &stockRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "stock")),
	}
}

const stockColumns = `
	stock_id, dealer_id, registration, vin, make, model, derivative,
	year, mileage, colour, fuel_type, lifecycle_state,
	purchase_price, forecourt_price, total_cost,
	listing_ref, notes, created_at, updated_at`

// Save creates a new stock item
func (r *stockRepository) Save(ctx context.Context, item *domain.StockItem) error {
	query := `
		INSERT INTO stock (
			stock_id, dealer_id, registration, vin, make, model, derivative,
			year, mileage, colour, fuel_type, lifecycle_state,
			purchase_price, forecourt_price, total_cost,
			listing_ref, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		)
		ON CONFLICT (stock_id, dealer_id) DO UPDATE SET
			registration = EXCLUDED.registration,
			vin = EXCLUDED.vin,
			make = EXCLUDED.make,
			model = EXCLUDED.model,
			derivative = EXCLUDED.derivative,
			year = EXCLUDED.year,
			mileage = EXCLUDED.mileage,
			colour = EXCLUDED.colour,
			fuel_type = EXCLUDED.fuel_type,
			lifecycle_state = EXCLUDED.lifecycle_state,
			purchase_price = EXCLUDED.purchase_price,
			forecourt_price = EXCLUDED.forecourt_price,
			total_cost = EXCLUDED.total_cost,
			listing_ref = EXCLUDED.listing_ref,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`

	args := []interface{}{
		item.StockID, item.DealerID, item.Registration, item.VIN, item.Make, item.Model, item.Derivative,
		item.Year, item.Mileage, item.Colour, item.FuelType, item.Lifecycle,
		item.PurchasePrice, item.ForecourtPrice, item.TotalCost,
		item.ListingRef, item.Notes, item.CreatedAt, item.UpdatedAt,
	}

	err := r.db.QueryRow(ctx, query, args...).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save stock item: %w", err)
	}

	r.logger.DebugContext(ctx, "stock item saved",
		slog.String("stock_id", item.StockID),
		slog.String("dealer_id", item.DealerID))

	return nil
}

// SaveBatch saves multiple stock items in a transaction
func (r *stockRepository) SaveBatch(ctx context.Context, items []domain.StockItem) error {
	if len(items) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		query := `
			INSERT INTO stock (
				stock_id, dealer_id, registration, vin, make, model, derivative,
				year, mileage, colour, fuel_type, lifecycle_state,
				purchase_price, forecourt_price, total_cost,
				listing_ref, notes, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14, $15, $16, $17, $18, $19
			)
			ON CONFLICT (stock_id, dealer_id) DO UPDATE SET
				registration = EXCLUDED.registration,
				vin = EXCLUDED.vin,
				make = EXCLUDED.make,
				model = EXCLUDED.model,
				derivative = EXCLUDED.derivative,
				year = EXCLUDED.year,
				mileage = EXCLUDED.mileage,
				colour = EXCLUDED.colour,
				fuel_type = EXCLUDED.fuel_type,
				lifecycle_state = EXCLUDED.lifecycle_state,
				purchase_price = EXCLUDED.purchase_price,
				forecourt_price = EXCLUDED.forecourt_price,
				total_cost = EXCLUDED.total_cost,
				listing_ref = EXCLUDED.listing_ref,
				notes = EXCLUDED.notes,
				updated_at = EXCLUDED.updated_at`

		for i := range items {
			batch.Queue(query,
				items[i].StockID, items[i].DealerID, items[i].Registration, items[i].VIN,
				items[i].Make, items[i].Model, items[i].Derivative,
				items[i].Year, items[i].Mileage, items[i].Colour, items[i].FuelType, items[i].Lifecycle,
				items[i].PurchasePrice, items[i].ForecourtPrice, items[i].TotalCost,
				items[i].ListingRef, items[i].Notes, items[i].CreatedAt, items[i].UpdatedAt,
			)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for i := range items {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("failed to save stock %d: %w", i, err)
			}
		}

		return nil
	})
}

// Update updates an existing stock item
func (r *stockRepository) Update(ctx context.Context, item *domain.StockItem) error {
	query := `
		UPDATE stock SET
			registration = $3, vin = $4, make = $5, model = $6, derivative = $7,
			year = $8, mileage = $9, colour = $10, fuel_type = $11, lifecycle_state = $12,
			purchase_price = $13, forecourt_price = $14, total_cost = $15,
			listing_ref = $16, notes = $17, updated_at = $18
		WHERE stock_id = $1 AND dealer_id = $2 AND deleted_at IS NULL
		RETURNING updated_at`

	item.UpdatedAt = time.Now()

	args := []interface{}{
		item.StockID, item.DealerID,
		item.Registration, item.VIN, item.Make, item.Model, item.Derivative,
		item.Year, item.Mileage, item.Colour, item.FuelType, item.Lifecycle,
		item.PurchasePrice, item.ForecourtPrice, item.TotalCost,
		item.ListingRef, item.Notes, item.UpdatedAt,
	}

	err := r.db.QueryRow(ctx, query, args...).Scan(&item.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("stock item not found: %s", item.StockID)
		}
		return fmt.Errorf("failed to update stock item: %w", err)
	}

	r.logger.DebugContext(ctx, "stock item updated",
		slog.String("stock_id", item.StockID))

	return nil
}

// FindByID retrieves a stock item by its (stockID, dealerID) key
func (r *stockRepository) FindByID(ctx context.Context, stockID, dealerID string) (*domain.StockItem, error) {
	query := `
		SELECT` + stockColumns + `
		FROM stock
		WHERE stock_id = $1 AND dealer_id = $2 AND deleted_at IS NULL`

	item := &domain.StockItem{}
	var registration, vin, derivative, colour, listingRef, notes sql.NullString
	var year, mileage sql.NullInt64

	err := r.db.QueryRow(ctx, query, stockID, dealerID).Scan(
		&item.StockID, &item.DealerID, &registration, &vin, &item.Make, &item.Model, &derivative,
		&year, &mileage, &colour, &item.FuelType, &item.Lifecycle,
		&item.PurchasePrice, &item.ForecourtPrice, &item.TotalCost,
		&listingRef, &notes, &item.CreatedAt, &item.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find stock item: %w", err)
	}

	// Handle nullable fields
	item.Registration = registration.String
	item.VIN = vin.String
	item.Derivative = derivative.String
	item.Colour = colour.String
	item.ListingRef = listingRef.String
	item.Notes = notes.String
	item.Year = int(year.Int64)
	item.Mileage = int(mileage.Int64)

	return item, nil
}

// Delete performs a hard delete
func (r *stockRepository) Delete(ctx context.Context, stockID, dealerID string) error {
	query := `DELETE FROM stock WHERE stock_id = $1 AND dealer_id = $2`

	tag, err := r.db.Exec(ctx, query, stockID, dealerID)
	if err != nil {
		return fmt.Errorf("failed to delete stock item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock item not found: %s", stockID)
	}

	r.logger.InfoContext(ctx, "stock item deleted",
		slog.String("stock_id", stockID),
		slog.String("dealer_id", dealerID))

	return nil
}

// SoftDelete marks a stock item as deleted
func (r *stockRepository) SoftDelete(ctx context.Context, stockID, dealerID string) error {
	query := `UPDATE stock SET deleted_at = $3, updated_at = $3 WHERE stock_id = $1 AND dealer_id = $2 AND deleted_at IS NULL`

	now := time.Now()
	tag, err := r.db.Exec(ctx, query, stockID, dealerID, now)
	if err != nil {
		return fmt.Errorf("failed to soft delete stock item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock item not found: %s", stockID)
	}

	r.logger.InfoContext(ctx, "stock item soft deleted",
		slog.String("stock_id", stockID),
		slog.String("dealer_id", dealerID))

	return nil
}

// Count returns the number of live stock items for a dealer
func (r *stockRepository) Count(ctx context.Context, dealerID string) (int64, error) {
	qb := squirrel.Select("COUNT(*)").
		From("stock").
		Where("deleted_at IS NULL").
		PlaceholderFormat(squirrel.Dollar)
	if dealerID != "" {
		qb = qb.Where(squirrel.Eq{"dealer_id": dealerID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stock items: %w", err)
	}

	return count, nil
}

// Exists checks if a stock item exists
func (r *stockRepository) Exists(ctx context.Context, stockID, dealerID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM stock WHERE stock_id = $1 AND dealer_id = $2 AND deleted_at IS NULL)`

	var exists bool
	err := r.db.QueryRow(ctx, query, stockID, dealerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return exists, nil
}
