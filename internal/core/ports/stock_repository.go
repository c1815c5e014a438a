// internal/core/ports/stock_repository.go
package ports

import (
	"context"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
)

// StockRepository defines the persistence port for dealer stock.
// This interface is implemented by the database adapter.
type StockRepository interface {
	Save(ctx context.Context, item *domain.StockItem) error
	SaveBatch(ctx context.Context, items []domain.StockItem) error
	Update(ctx context.Context, item *domain.StockItem) error
	FindByID(ctx context.Context, stockID, dealerID string) (*domain.StockItem, error)
	Delete(ctx context.Context, stockID, dealerID string) error
	SoftDelete(ctx context.Context, stockID, dealerID string) error
	Count(ctx context.Context, dealerID string) (int64, error)
	Exists(ctx context.Context, stockID, dealerID string) (bool, error)
}
