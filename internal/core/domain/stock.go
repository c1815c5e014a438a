// internal/core/domain/stock.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// VehicleFinderPrefix marks a placeholder stock id created by the vehicle
// finder flow. No inventory row backs such an id, so sale-details and
// checklist rows must never be created for it.
const VehicleFinderPrefix = "vehicle-finder-"

// IsVehicleFinderStockID reports whether the stock id is a vehicle-finder
// placeholder.
func IsVehicleFinderStockID(stockID string) bool {
	return strings.HasPrefix(stockID, VehicleFinderPrefix)
}

// LifecycleState tracks where a stock item sits in the sales pipeline.
type LifecycleState string

const (
	StateDueIn     LifecycleState = "due_in"
	StateForecourt LifecycleState = "forecourt"
	StateListed    LifecycleState = "listed"
	StateDeposit   LifecycleState = "deposit_taken"
	StateSold      LifecycleState = "sold"
	StateArchived  LifecycleState = "archived"
)

// FuelType enumerates the fuel types accepted from listing feeds.
type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
	FuelOther    FuelType = "other"
)

// StockItem is one vehicle on a dealer's books, the record SaleDetails and
// VehicleChecklist rows are keyed against.
type StockItem struct {
	StockID      string         `json:"stock_id"`
	DealerID     string         `json:"dealer_id"`
	Registration string         `json:"registration,omitempty"`
	VIN          string         `json:"vin,omitempty"`
	Make         string         `json:"make"`
	Model        string         `json:"model"`
	Derivative   string         `json:"derivative,omitempty"`
	Year         int            `json:"year,omitempty"`
	Mileage      int            `json:"mileage,omitempty"`
	Colour       string         `json:"colour,omitempty"`
	FuelType     FuelType       `json:"fuel_type,omitempty"`
	Lifecycle    LifecycleState `json:"lifecycle_state"`

	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	ForecourtPrice decimal.Decimal `json:"forecourt_price"`
	TotalCost      decimal.Decimal `json:"total_cost"`

	ListingRef string `json:"listing_ref,omitempty"`
	Notes      string `json:"notes,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Validate performs domain validation on the stock item.
func (s *StockItem) Validate() error {
	if s.StockID == "" {
		return fmt.Errorf("stock_id is required")
	}
	if IsVehicleFinderStockID(s.StockID) {
		return fmt.Errorf("stock_id %q is a vehicle-finder placeholder and cannot be persisted", s.StockID)
	}
	if s.DealerID == "" {
		return fmt.Errorf("dealer_id is required")
	}
	if s.Make == "" {
		return fmt.Errorf("make is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if s.PurchasePrice.IsNegative() {
		return fmt.Errorf("purchase_price cannot be negative")
	}
	if s.Lifecycle == "" {
		s.Lifecycle = StateDueIn
	}
	if s.FuelType == "" {
		s.FuelType = FuelOther
	}
	return nil
}

// PrepareForStorage sets timestamps and derived cost before a write.
func (s *StockItem) PrepareForStorage() {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	if s.TotalCost.IsZero() {
		s.TotalCost = s.PurchasePrice
	}
}
