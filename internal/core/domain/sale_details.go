// internal/core/domain/sale_details.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VATScheme classifies how VAT applies to the sale price.
type VATScheme string

const (
	VATSchemeNone     VATScheme = "no_vat"
	VATSchemeIncludes VATScheme = "includes"
	VATSchemeExcludes VATScheme = "excludes"
)

// ValidVATScheme reports whether s is one of the recognized schemes.
func ValidVATScheme(s string) bool {
	switch VATScheme(s) {
	case VATSchemeNone, VATSchemeIncludes, VATSchemeExcludes:
		return true
	}
	return false
}

// Delivery price sources, tracked for diagnostics when reconciling figures
// against the invoice UI.
const (
	DeliverySourceDeliveryPostDiscount = "delivery.post_discount_cost"
	DeliverySourcePricingPostDiscount  = "pricing.delivery_cost_post_discount"
	DeliverySourceRaw                  = "raw_cost"
	DeliverySourceDefault              = "default"
)

// SaleDetails is the sales record for one stock item at one dealer.
// Exactly one row exists per (StockID, DealerID) pair.
type SaleDetails struct {
	ID       int64  `json:"id"`
	StockID  string `json:"stock_id"`
	DealerID string `json:"dealer_id"`

	CustomerID *uuid.UUID `json:"customer_id,omitempty"`

	SaleDate  time.Time       `json:"sale_date"`
	SalePrice decimal.Decimal `json:"sale_price"`
	VATScheme *VATScheme      `json:"vat_scheme,omitempty"`

	CashAmount    decimal.Decimal `json:"cash_amount"`
	BacsAmount    decimal.Decimal `json:"bacs_amount"`
	CardAmount    decimal.Decimal `json:"card_amount"`
	FinanceAmount decimal.Decimal `json:"finance_amount"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	PartExAmount  decimal.Decimal `json:"part_ex_amount"`

	DepositDate *time.Time `json:"deposit_date,omitempty"`
	DepositPaid bool       `json:"deposit_paid"`

	DeliveryPrice       decimal.Decimal `json:"delivery_price"`
	DeliveryPriceSource string          `json:"delivery_price_source,omitempty"`
	DeliveryType        string          `json:"delivery_type,omitempty"`
	DeliveryDate        *time.Time      `json:"delivery_date,omitempty"`

	WarrantyPrice decimal.Decimal `json:"warranty_price"`
	WarrantyLevel string          `json:"warranty_level,omitempty"`

	TotalFinanceAddOn  decimal.Decimal `json:"total_finance_add_on"`
	TotalCustomerAddOn decimal.Decimal `json:"total_customer_add_on"`

	DocumentationComplete bool `json:"documentation_complete"`
	KeyHandedOver         bool `json:"key_handed_over"`
	CustomerSatisfied     bool `json:"customer_satisfied"`
	VehicleTaxed          bool `json:"vehicle_taxed"`

	InvoiceNumber string `json:"invoice_number,omitempty"`
	Notes         string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaleDetailsPatch stages an upsert payload. Any field left unset is absent
// from Fields() so an update never nulls out previously stored columns.
type SaleDetailsPatch struct {
	CustomerID *uuid.UUID

	SaleDate  *time.Time
	SalePrice *decimal.Decimal
	VATScheme *VATScheme

	CashAmount    *decimal.Decimal
	BacsAmount    *decimal.Decimal
	CardAmount    *decimal.Decimal
	FinanceAmount *decimal.Decimal
	DepositAmount *decimal.Decimal
	PartExAmount  *decimal.Decimal

	DepositDate *time.Time
	DepositPaid *bool

	DeliveryPrice       *decimal.Decimal
	DeliveryPriceSource *string
	DeliveryType        *string
	DeliveryDate        *time.Time

	WarrantyPrice *decimal.Decimal
	WarrantyLevel *string

	TotalFinanceAddOn  *decimal.Decimal
	TotalCustomerAddOn *decimal.Decimal

	DocumentationComplete *bool
	KeyHandedOver         *bool
	CustomerSatisfied     *bool
	VehicleTaxed          *bool

	InvoiceNumber *string
	Notes         *string

	UpdatedAt time.Time
}

// Fields returns the staged columns keyed by column name. The timestamp is
// always present.
func (p *SaleDetailsPatch) Fields() map[string]any {
	fields := map[string]any{"updated_at": p.UpdatedAt}

	if p.CustomerID != nil {
		fields["customer_id"] = *p.CustomerID
	}
	if p.SaleDate != nil {
		fields["sale_date"] = *p.SaleDate
	}
	if p.SalePrice != nil {
		fields["sale_price"] = *p.SalePrice
	}
	if p.VATScheme != nil {
		fields["vat_scheme"] = string(*p.VATScheme)
	}
	if p.CashAmount != nil {
		fields["cash_amount"] = *p.CashAmount
	}
	if p.BacsAmount != nil {
		fields["bacs_amount"] = *p.BacsAmount
	}
	if p.CardAmount != nil {
		fields["card_amount"] = *p.CardAmount
	}
	if p.FinanceAmount != nil {
		fields["finance_amount"] = *p.FinanceAmount
	}
	if p.DepositAmount != nil {
		fields["deposit_amount"] = *p.DepositAmount
	}
	if p.PartExAmount != nil {
		fields["part_ex_amount"] = *p.PartExAmount
	}
	if p.DepositDate != nil {
		fields["deposit_date"] = *p.DepositDate
	}
	if p.DepositPaid != nil {
		fields["deposit_paid"] = *p.DepositPaid
	}
	if p.DeliveryPrice != nil {
		fields["delivery_price"] = *p.DeliveryPrice
	}
	if p.DeliveryPriceSource != nil {
		fields["delivery_price_source"] = *p.DeliveryPriceSource
	}
	if p.DeliveryType != nil {
		fields["delivery_type"] = *p.DeliveryType
	}
	if p.DeliveryDate != nil {
		fields["delivery_date"] = *p.DeliveryDate
	}
	if p.WarrantyPrice != nil {
		fields["warranty_price"] = *p.WarrantyPrice
	}
	if p.WarrantyLevel != nil {
		fields["warranty_level"] = *p.WarrantyLevel
	}
	if p.TotalFinanceAddOn != nil {
		fields["total_finance_add_on"] = *p.TotalFinanceAddOn
	}
	if p.TotalCustomerAddOn != nil {
		fields["total_customer_add_on"] = *p.TotalCustomerAddOn
	}
	if p.DocumentationComplete != nil {
		fields["documentation_complete"] = *p.DocumentationComplete
	}
	if p.KeyHandedOver != nil {
		fields["key_handed_over"] = *p.KeyHandedOver
	}
	if p.CustomerSatisfied != nil {
		fields["customer_satisfied"] = *p.CustomerSatisfied
	}
	if p.VehicleTaxed != nil {
		fields["vehicle_taxed"] = *p.VehicleTaxed
	}
	if p.InvoiceNumber != nil {
		fields["invoice_number"] = *p.InvoiceNumber
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}

	return fields
}
