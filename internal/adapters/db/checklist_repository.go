// internal/adapters/db/checklist_repository.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// checklistRepository implements ports.ChecklistRepository
type checklistRepository struct {
	db     ports.Database
	logger *slog.Logger
}

// NewChecklistRepository creates a new vehicle checklist repository
func NewChecklistRepository(db ports.Database, logger *slog.Logger) ports.ChecklistRepository {
	return &checklistRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "checklist")),
	}
}

const checklistColumns = `
	id, stock_id, dealer_id,
	number_of_keys, user_manual, service_book, wheel_locking_nut, cambelt_chain_confirmation,
	metadata, completion_percentage, created_at, updated_at`

// GetByStockID retrieves the checklist for a stock item, (nil, nil) when no
// row exists.
func (r *checklistRepository) GetByStockID(ctx context.Context, stockID, dealerID string) (*domain.VehicleChecklist, error) {
	query := `
		SELECT` + checklistColumns + `
		FROM vehicle_checklists
		WHERE stock_id = $1 AND dealer_id = $2`

	row := r.db.QueryRow(ctx, query, stockID, dealerID)
	checklist, err := scanChecklist(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find vehicle checklist: %w", err)
	}

	return checklist, nil
}

// Create inserts a new checklist row from the staged fields.
func (r *checklistRepository) Create(ctx context.Context, stockID, dealerID string, patch *domain.ChecklistPatch) (*domain.VehicleChecklist, error) {
	fields, err := checklistFields(patch)
	if err != nil {
		return nil, err
	}
	fields["stock_id"] = stockID
	fields["dealer_id"] = dealerID
	fields["created_at"] = patch.UpdatedAt

	query, args, err := squirrel.Insert("vehicle_checklists").
		SetMap(fields).
		Suffix("RETURNING" + checklistColumns).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	row := r.db.QueryRow(ctx, query, args...)
	checklist, err := scanChecklist(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create vehicle checklist: %w", err)
	}

	r.logger.InfoContext(ctx, "vehicle checklist created",
		slog.Int64("id", checklist.ID),
		slog.String("stock_id", stockID),
		slog.String("dealer_id", dealerID))

	return checklist, nil
}

// Update applies the staged fields to the existing row.
func (r *checklistRepository) Update(ctx context.Context, stockID, dealerID string, patch *domain.ChecklistPatch) (*domain.VehicleChecklist, error) {
	fields, err := checklistFields(patch)
	if err != nil {
		return nil, err
	}

	query, args, err := squirrel.Update("vehicle_checklists").
		SetMap(fields).
		Where(squirrel.Eq{"stock_id": stockID, "dealer_id": dealerID}).
		Suffix("RETURNING" + checklistColumns).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	row := r.db.QueryRow(ctx, query, args...)
	checklist, err := scanChecklist(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("vehicle checklist not found for stock %s", stockID)
		}
		return nil, fmt.Errorf("failed to update vehicle checklist: %w", err)
	}

	r.logger.DebugContext(ctx, "vehicle checklist updated",
		slog.Int64("id", checklist.ID),
		slog.String("stock_id", stockID))

	return checklist, nil
}

// checklistFields renders the patch for SQL, encoding metadata as JSONB.
func checklistFields(patch *domain.ChecklistPatch) (map[string]any, error) {
	fields := patch.Fields()
	if meta, ok := fields["metadata"]; ok {
		encoded, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("failed to encode checklist metadata: %w", err)
		}
		fields["metadata"] = encoded
	}
	return fields, nil
}

func scanChecklist(row pgx.Row) (*domain.VehicleChecklist, error) {
	checklist := &domain.VehicleChecklist{}
	var metadata []byte
	var completion sql.NullString

	err := row.Scan(
		&checklist.ID, &checklist.StockID, &checklist.DealerID,
		&checklist.NumberOfKeys, &checklist.UserManual, &checklist.ServiceBook,
		&checklist.WheelLockingNut, &checklist.CambeltChainConfirmation,
		&metadata, &completion, &checklist.CreatedAt, &checklist.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &checklist.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode checklist metadata: %w", err)
		}
	}
	checklist.CompletionPercentage = completion.String

	return checklist, nil
}
