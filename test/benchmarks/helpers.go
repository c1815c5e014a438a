// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// In-memory ports for benchmarks. gomock adds reflection overhead per call,
// which would dominate the numbers being measured.

type benchCustomerRepo struct {
	id uuid.UUID
}

func (r *benchCustomerRepo) AutoCreate(_ context.Context, _ string, _ domain.CustomerLead) (*uuid.UUID, error) {
	id := r.id
	return &id, nil
}

func (r *benchCustomerRepo) Update(_ context.Context, _ uuid.UUID, _ *domain.CustomerPatch) error {
	return nil
}

func (r *benchCustomerRepo) FindByID(_ context.Context, _ uuid.UUID) (*domain.Customer, error) {
	return nil, nil
}

type benchSaleRepo struct {
	existing *domain.SaleDetails
}

func (r *benchSaleRepo) GetByStockID(_ context.Context, _, _ string) (*domain.SaleDetails, error) {
	return r.existing, nil
}

func (r *benchSaleRepo) Create(_ context.Context, stockID, dealerID string, _ *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
	return &domain.SaleDetails{ID: 1, StockID: stockID, DealerID: dealerID}, nil
}

func (r *benchSaleRepo) Update(_ context.Context, stockID, dealerID string, _ *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
	return &domain.SaleDetails{ID: 1, StockID: stockID, DealerID: dealerID}, nil
}

type benchChecklistRepo struct{}

func (r *benchChecklistRepo) GetByStockID(_ context.Context, _, _ string) (*domain.VehicleChecklist, error) {
	return nil, nil
}

func (r *benchChecklistRepo) Create(_ context.Context, stockID, dealerID string, _ *domain.ChecklistPatch) (*domain.VehicleChecklist, error) {
	return &domain.VehicleChecklist{ID: 1, StockID: stockID, DealerID: dealerID}, nil
}

func (r *benchChecklistRepo) Update(_ context.Context, stockID, dealerID string, _ *domain.ChecklistPatch) (*domain.VehicleChecklist, error) {
	return &domain.VehicleChecklist{ID: 1, StockID: stockID, DealerID: dealerID}, nil
}

type benchPostcodeLookup struct{}

func (l *benchPostcodeLookup) Lookup(_ context.Context, _ string) (ports.PostcodeArea, error) {
	return ports.PostcodeArea{City: "London", County: "Greater London"}, nil
}

// createInvoiceWithPayments builds an invoice whose breakdown carries
// numEntries entries per payment method, to size the aggregation work.
func createInvoiceWithPayments(numEntries int) *domain.Invoice {
	entries := func(base float64) []domain.PaymentEntry {
		out := make([]domain.PaymentEntry, 0, numEntries)
		for i := 0; i < numEntries; i++ {
			out = append(out, domain.PaymentEntry{
				Amount: decimal.NewFromFloat(base + float64(i)),
				Date:   fmt.Sprintf("2025-06-%02d", (i%28)+1),
			})
		}
		return out
	}

	deposit := decimal.NewFromInt(500)
	finance := decimal.NewFromInt(12000)
	salePrice := decimal.NewFromInt(17995)
	saleDate := "2025-06-14"

	return &domain.Invoice{
		InvoiceNumber: "INV-BENCH-001",
		Customer: &domain.InvoiceCustomer{
			FirstName: "Jane",
			LastName:  "Smith",
			Postcode:  stringPtr("SW1A 1AA"),
		},
		Sale: &domain.InvoiceSale{
			SaleDate:  &saleDate,
			SalePrice: &salePrice,
		},
		Payment: &domain.InvoicePayment{
			Breakdown: &domain.PaymentBreakdown{
				CashPayments:  entries(50),
				BacsPayments:  entries(100),
				CardPayments:  entries(150),
				DepositAmount: &deposit,
				FinanceAmount: &finance,
			},
		},
	}
}

func stringPtr(s string) *string { return &s }
