// internal/core/ports/sale_details_repository.go
package ports

import (
	"context"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
)

// SaleDetailsRepository persists the one-row-per-(stockID, dealerID) sales
// record. GetByStockID returns (nil, nil) when no row exists.
type SaleDetailsRepository interface {
	GetByStockID(ctx context.Context, stockID, dealerID string) (*domain.SaleDetails, error)
	Create(ctx context.Context, stockID, dealerID string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error)
	Update(ctx context.Context, stockID, dealerID string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error)
}

// ChecklistRepository persists the vehicle condition checklist, keyed the
// same way as sale details.
type ChecklistRepository interface {
	GetByStockID(ctx context.Context, stockID, dealerID string) (*domain.VehicleChecklist, error)
	Create(ctx context.Context, stockID, dealerID string, patch *domain.ChecklistPatch) (*domain.VehicleChecklist, error)
	Update(ctx context.Context, stockID, dealerID string, patch *domain.ChecklistPatch) (*domain.VehicleChecklist, error)
}
