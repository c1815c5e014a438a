// internal/core/ports/stock_service.go
package ports

import (
	"context"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
)

// StockService defines the application service port for dealer stock.
type StockService interface {
	SaveItem(ctx context.Context, item *domain.StockItem) error
	SaveItems(ctx context.Context, items []domain.StockItem) error
	GetByID(ctx context.Context, stockID, dealerID string) (*domain.StockItem, error)
	UpdateItem(ctx context.Context, stockID, dealerID string, item *domain.StockItem) error
	DeleteItem(ctx context.Context, stockID, dealerID string, permanent bool) error
	// ListParams and ListResult live here to avoid circular dependencies.
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ListParams holds parameters for listing stock.
type ListParams struct {
	DealerID  string
	Search    string
	Make      string
	Model     string
	FuelType  string
	Lifecycle string
	MinYear   int
	MaxYear   int
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// ListResult holds the result of listing stock.
type ListResult struct {
	Items      []*domain.StockItem `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalCount int64               `json:"total_count"`
	TotalPages int                 `json:"total_pages"`
}
