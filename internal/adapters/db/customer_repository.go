// internal/adapters/db/customer_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// customerRepository implements ports.CustomerRepository
type customerRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *Database, logger *slog.Logger) ports.CustomerRepository {
	return &customerRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "customer")),
	}
}

// AutoCreate finds an existing customer for the dealer matching the lead or
// inserts a new one. Matching is by email when present, otherwise by name
// plus phone, so repeat invoices for the same buyer resolve to one record.
// Both lookup and insert run in one transaction to keep the dedupe stable
// under concurrent syncs.
func (r *customerRepository) AutoCreate(ctx context.Context, dealerID string, lead domain.CustomerLead) (*uuid.UUID, error) {
	var customerID uuid.UUID

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		existing, err := r.findMatch(ctx, tx, dealerID, lead)
		if err != nil {
			return err
		}
		if existing != nil {
			customerID = *existing
			return nil
		}

		query := `
			INSERT INTO customers (
				id, dealer_id, first_name, last_name, email, phone,
				address_line1, postcode,
				gdpr_consent, marketing_consent, vulnerability_marker,
				notes, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13
			) RETURNING id`

		now := time.Now()
		err = tx.QueryRow(ctx, query,
			uuid.New(), dealerID, lead.FirstName, lead.LastName,
			normalizeEmail(lead.Email), lead.Phone,
			lead.AddressLine1, lead.Postcode,
			lead.GDPRConsent, lead.MarketingConsent, lead.VulnerabilityMarker,
			lead.Notes, now,
		).Scan(&customerID)
		if err != nil {
			return fmt.Errorf("failed to insert customer: %w", err)
		}

		r.logger.InfoContext(ctx, "customer created",
			slog.String("customer_id", customerID.String()),
			slog.String("dealer_id", dealerID))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &customerID, nil
}

// findMatch applies the dedupe rules inside the AutoCreate transaction.
func (r *customerRepository) findMatch(ctx context.Context, tx pgx.Tx, dealerID string, lead domain.CustomerLead) (*uuid.UUID, error) {
	qb := squirrel.Select("id").
		From("customers").
		Where(squirrel.Eq{"dealer_id": dealerID}).
		Where("deleted_at IS NULL").
		OrderBy("created_at ASC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	if email := normalizeEmail(lead.Email); email != "" {
		qb = qb.Where("LOWER(email) = ?", email)
	} else {
		qb = qb.Where("LOWER(first_name) = ?", strings.ToLower(lead.FirstName)).
			Where("LOWER(last_name) = ?", strings.ToLower(lead.LastName))
		if lead.Phone != "" {
			qb = qb.Where(squirrel.Eq{"phone": lead.Phone})
		}
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build match query: %w", err)
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to match customer: %w", err)
	}

	return &id, nil
}

// Update applies the staged enrichment fields. An empty patch short-circuits
// without touching the row.
func (r *customerRepository) Update(ctx context.Context, customerID uuid.UUID, patch *domain.CustomerPatch) error {
	if patch == nil || patch.IsEmpty() {
		return nil
	}

	query, args, err := squirrel.Update("customers").
		SetMap(patch.Fields()).
		Where(squirrel.Eq{"id": customerID}).
		Where("deleted_at IS NULL").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer not found: %s", customerID)
	}

	r.logger.DebugContext(ctx, "customer enriched",
		slog.String("customer_id", customerID.String()),
		slog.Int("fields", len(patch.Fields())))

	return nil
}

// FindByID retrieves a customer by id
func (r *customerRepository) FindByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	query := `
		SELECT
			id, dealer_id, first_name, last_name, email, phone,
			address_line1, address_line2, city, county, postcode, country,
			gdpr_consent, marketing_consent, vulnerability_marker,
			notes, created_at, updated_at
		FROM customers
		WHERE id = $1 AND deleted_at IS NULL`

	customer := &domain.Customer{}
	var email, phone, addressLine1, addressLine2 sql.NullString
	var city, county, postcode, country, notes sql.NullString

	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&customer.ID, &customer.DealerID, &customer.FirstName, &customer.LastName, &email, &phone,
		&addressLine1, &addressLine2, &city, &county, &postcode, &country,
		&customer.GDPRConsent, &customer.MarketingConsent, &customer.VulnerabilityMarker,
		&notes, &customer.CreatedAt, &customer.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	// Handle nullable fields
	customer.Email = email.String
	customer.Phone = phone.String
	customer.AddressLine1 = addressLine1.String
	customer.AddressLine2 = addressLine2.String
	customer.City = city.String
	customer.County = county.String
	customer.Postcode = postcode.String
	customer.Country = country.String
	customer.Notes = notes.String

	return customer, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
