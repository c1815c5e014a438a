// internal/adapters/db/sale_details_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// saleDetailsRepository implements ports.SaleDetailsRepository
type saleDetailsRepository struct {
	db     ports.Database
	logger *slog.Logger
}

// NewSaleDetailsRepository creates a new sale details repository
func NewSaleDetailsRepository(db ports.Database, logger *slog.Logger) ports.SaleDetailsRepository {
	return &saleDetailsRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "sale_details")),
	}
}

const saleDetailsColumns = `
	id, stock_id, dealer_id, customer_id,
	sale_date, sale_price, vat_scheme,
	cash_amount, bacs_amount, card_amount, finance_amount, deposit_amount, part_ex_amount,
	deposit_date, deposit_paid,
	delivery_price, delivery_price_source, delivery_type, delivery_date,
	warranty_price, warranty_level,
	total_finance_add_on, total_customer_add_on,
	documentation_complete, key_handed_over, customer_satisfied, vehicle_taxed,
	invoice_number, notes, created_at, updated_at`

// GetByStockID retrieves the sales record for a stock item, (nil, nil) when
// no row exists.
func (r *saleDetailsRepository) GetByStockID(ctx context.Context, stockID, dealerID string) (*domain.SaleDetails, error) {
	query := `
		SELECT` + saleDetailsColumns + `
		FROM sale_details
		WHERE stock_id = $1 AND dealer_id = $2`

	row := r.db.QueryRow(ctx, query, stockID, dealerID)
	details, err := scanSaleDetails(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sale details: %w", err)
	}

	return details, nil
}

// Create inserts a new sales record seeded with the staged fields.
func (r *saleDetailsRepository) Create(ctx context.Context, stockID, dealerID string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
	fields := patch.Fields()
	fields["stock_id"] = stockID
	fields["dealer_id"] = dealerID
	fields["created_at"] = patch.UpdatedAt

	query, args, err := squirrel.Insert("sale_details").
		SetMap(fields).
		Suffix("RETURNING" + saleDetailsColumns).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	row := r.db.QueryRow(ctx, query, args...)
	details, err := scanSaleDetails(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale details: %w", err)
	}

	r.logger.InfoContext(ctx, "sale details created",
		slog.Int64("id", details.ID),
		slog.String("stock_id", stockID),
		slog.String("dealer_id", dealerID))

	return details, nil
}

// Update applies the staged fields to the existing row. Columns absent from
// the patch are untouched.
func (r *saleDetailsRepository) Update(ctx context.Context, stockID, dealerID string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
	query, args, err := squirrel.Update("sale_details").
		SetMap(patch.Fields()).
		Where(squirrel.Eq{"stock_id": stockID, "dealer_id": dealerID}).
		Suffix("RETURNING" + saleDetailsColumns).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	row := r.db.QueryRow(ctx, query, args...)
	details, err := scanSaleDetails(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("sale details not found for stock %s", stockID)
		}
		return nil, fmt.Errorf("failed to update sale details: %w", err)
	}

	r.logger.DebugContext(ctx, "sale details updated",
		slog.Int64("id", details.ID),
		slog.String("stock_id", stockID))

	return details, nil
}

func scanSaleDetails(row pgx.Row) (*domain.SaleDetails, error) {
	details := &domain.SaleDetails{}
	var vatScheme, deliverySource, deliveryType sql.NullString
	var warrantyLevel, invoiceNumber, notes sql.NullString
	var depositDate, deliveryDate sql.NullTime

	err := row.Scan(
		&details.ID, &details.StockID, &details.DealerID, &details.CustomerID,
		&details.SaleDate, &details.SalePrice, &vatScheme,
		&details.CashAmount, &details.BacsAmount, &details.CardAmount,
		&details.FinanceAmount, &details.DepositAmount, &details.PartExAmount,
		&depositDate, &details.DepositPaid,
		&details.DeliveryPrice, &deliverySource, &deliveryType, &deliveryDate,
		&details.WarrantyPrice, &warrantyLevel,
		&details.TotalFinanceAddOn, &details.TotalCustomerAddOn,
		&details.DocumentationComplete, &details.KeyHandedOver,
		&details.CustomerSatisfied, &details.VehicleTaxed,
		&invoiceNumber, &notes, &details.CreatedAt, &details.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Handle nullable fields
	if vatScheme.Valid {
		scheme := domain.VATScheme(vatScheme.String)
		details.VATScheme = &scheme
	}
	if depositDate.Valid {
		details.DepositDate = &depositDate.Time
	}
	if deliveryDate.Valid {
		details.DeliveryDate = &deliveryDate.Time
	}
	details.DeliveryPriceSource = deliverySource.String
	details.DeliveryType = deliveryType.String
	details.WarrantyLevel = warrantyLevel.String
	details.InvoiceNumber = invoiceNumber.String
	details.Notes = notes.String

	return details, nil
}
