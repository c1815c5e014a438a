// internal/core/domain/invoice.go
package domain

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Invoice is the finalized invoice document produced by the invoice-creation
// workflow for a single vehicle sale. It is a read-only snapshot: the sync
// service never mutates it. Optional blocks and scalars are pointers so that
// "absent" and "zero" stay distinguishable.
type Invoice struct {
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   *string `json:"invoice_date,omitempty"`

	Customer  *InvoiceCustomer  `json:"customer,omitempty"`
	Vehicle   *InvoiceVehicle   `json:"vehicle,omitempty"`
	Sale      *InvoiceSale      `json:"sale,omitempty"`
	Pricing   *InvoicePricing   `json:"pricing,omitempty"`
	Payment   *InvoicePayment   `json:"payment,omitempty"`
	Warranty  *InvoiceWarranty  `json:"warranty,omitempty"`
	Delivery  *InvoiceDelivery  `json:"delivery,omitempty"`
	Status    *InvoiceStatus    `json:"status,omitempty"`
	Checklist *InvoiceChecklist `json:"checklist,omitempty"`
	Addons    *InvoiceAddons    `json:"addons,omitempty"`

	// VATScheme is the explicit override; most invoices carry it only in
	// metadata or additional data, or not at all.
	VATScheme      *string                `json:"vat_scheme,omitempty"`
	Metadata       map[string]any         `json:"metadata,omitempty"`
	AdditionalData *InvoiceAdditionalData `json:"additional_data,omitempty"`

	Notes InvoiceNotes `json:"notes,omitempty"`
}

// InvoiceCustomer is the customer block of an invoice.
type InvoiceCustomer struct {
	FirstName    string                `json:"first_name"`
	LastName     string                `json:"last_name"`
	Email        *string               `json:"email,omitempty"`
	Phone        *string               `json:"phone,omitempty"`
	AddressLine1 *string               `json:"address_line1,omitempty"`
	AddressLine2 *string               `json:"address_line2,omitempty"`
	City         *string               `json:"city,omitempty"`
	County       *string               `json:"county,omitempty"`
	Postcode     *string               `json:"postcode,omitempty"`
	Country      *string               `json:"country,omitempty"`
	Flags        *InvoiceCustomerFlags `json:"flags,omitempty"`
}

// InvoiceCustomerFlags carries the consent markers from the invoice form.
type InvoiceCustomerFlags struct {
	GDPRConsent         *bool `json:"gdpr_consent,omitempty"`
	MarketingConsent    *bool `json:"marketing_consent,omitempty"`
	VulnerabilityMarker *bool `json:"vulnerability_marker,omitempty"`
}

// InvoiceVehicle identifies the vehicle being sold. The sync service keys on
// the stock id supplied alongside the invoice, not on this block.
type InvoiceVehicle struct {
	Registration *string `json:"registration,omitempty"`
	Make         *string `json:"make,omitempty"`
	Model        *string `json:"model,omitempty"`
	Derivative   *string `json:"derivative,omitempty"`
}

// InvoiceSale holds the sale headline figures.
type InvoiceSale struct {
	SaleDate    *string          `json:"sale_date,omitempty"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
	MonthOfSale *string          `json:"month_of_sale,omitempty"`
}

// InvoicePricing holds the pricing breakdown, including post-discount values.
type InvoicePricing struct {
	SalePrice                 *decimal.Decimal `json:"sale_price,omitempty"`
	SalePricePostDiscount     *decimal.Decimal `json:"sale_price_post_discount,omitempty"`
	SalePriceIncludingVAT     *decimal.Decimal `json:"sale_price_including_vat,omitempty"`
	ApplyVATToSalePrice       *bool            `json:"apply_vat_to_sale_price,omitempty"`
	DeliveryCost              *decimal.Decimal `json:"delivery_cost,omitempty"`
	DeliveryCostPostDiscount  *decimal.Decimal `json:"delivery_cost_post_discount,omitempty"`
	WarrantyPrice             *decimal.Decimal `json:"warranty_price,omitempty"`
	WarrantyPricePostDiscount *decimal.Decimal `json:"warranty_price_post_discount,omitempty"`
}

// InvoicePayment wraps the payment breakdown plus the deposit and
// part-exchange amounts recorded outside of it.
type InvoicePayment struct {
	Breakdown *PaymentBreakdown `json:"breakdown,omitempty"`

	DepositPaidViaFinance       *decimal.Decimal `json:"deposit_paid_via_finance,omitempty"`
	DepositPaidByCustomer       *decimal.Decimal `json:"deposit_paid_by_customer,omitempty"`
	DealerDepositPaidByCustomer *decimal.Decimal `json:"dealer_deposit_paid_by_customer,omitempty"`

	PartExchange *PartExchange `json:"part_exchange,omitempty"`
}

// PaymentBreakdown lists the individual payments taken per method. Finance
// and deposit are single figures, not arrays.
type PaymentBreakdown struct {
	CashPayments  []PaymentEntry   `json:"cash_payments,omitempty"`
	BacsPayments  []PaymentEntry   `json:"bacs_payments,omitempty"`
	CardPayments  []PaymentEntry   `json:"card_payments,omitempty"`
	FinanceAmount *decimal.Decimal `json:"finance_amount,omitempty"`
	DepositAmount *decimal.Decimal `json:"deposit_amount,omitempty"`
	PartExAmount  *decimal.Decimal `json:"part_ex_amount,omitempty"`
}

// PaymentEntry is one payment line. Dates arrive as strings from the invoice
// form, usually YYYY-MM-DD.
type PaymentEntry struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date,omitempty"`
}

// PartExchange records a part-exchange vehicle taken against the sale.
type PartExchange struct {
	AmountPaid   *decimal.Decimal `json:"amount_paid,omitempty"`
	Registration *string          `json:"registration,omitempty"`
}

// InvoiceWarranty holds the warranty terms sold with the vehicle.
type InvoiceWarranty struct {
	Level             *string          `json:"level,omitempty"`
	Inhouse           *bool            `json:"inhouse,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	PostDiscountPrice *decimal.Decimal `json:"post_discount_price,omitempty"`
	Details           *string          `json:"details,omitempty"`
}

// InvoiceDelivery holds the delivery terms.
type InvoiceDelivery struct {
	Type             *string          `json:"type,omitempty"`
	Date             *string          `json:"date,omitempty"`
	Cost             *decimal.Decimal `json:"cost,omitempty"`
	PostDiscountCost *decimal.Decimal `json:"post_discount_cost,omitempty"`
	Address          *string          `json:"address,omitempty"`
}

// InvoiceStatus carries the completion flags ticked during handover.
type InvoiceStatus struct {
	DocumentationComplete *bool `json:"documentation_complete,omitempty"`
	KeyHandedOver         *bool `json:"key_handed_over,omitempty"`
	CustomerSatisfied     *bool `json:"customer_satisfied,omitempty"`
	VehicleTaxed          *bool `json:"vehicle_taxed,omitempty"`
}

// InvoiceChecklist is the vehicle condition checklist captured at sale time.
type InvoiceChecklist struct {
	NumberOfKeys             *string        `json:"number_of_keys,omitempty"`
	UserManual               *string        `json:"user_manual,omitempty"`
	ServiceBook              *string        `json:"service_book,omitempty"`
	WheelLockingNut          *string        `json:"wheel_locking_nut,omitempty"`
	CambeltChainConfirmation *string        `json:"cambelt_chain_confirmation,omitempty"`
	CompletionPercentage     *string        `json:"completion_percentage,omitempty"`
	Metadata                 map[string]any `json:"metadata,omitempty"`
}

// InvoiceAddons splits sale add-ons between finance-funded and
// customer-funded. Each side has two static slots plus a dynamic collection.
type InvoiceAddons struct {
	Finance  *AddonGroup `json:"finance,omitempty"`
	Customer *AddonGroup `json:"customer,omitempty"`
}

// AddonGroup holds the two static add-on slots and the dynamic collection.
type AddonGroup struct {
	Addon1  *Addon        `json:"addon1,omitempty"`
	Addon2  *Addon        `json:"addon2,omitempty"`
	Dynamic DynamicAddons `json:"dynamic,omitempty"`
}

// Addon is a single priced extra.
type Addon struct {
	Name             *string          `json:"name,omitempty"`
	Cost             *decimal.Decimal `json:"cost,omitempty"`
	PostDiscountCost *decimal.Decimal `json:"post_discount_cost,omitempty"`
}

// Amount resolves the charged amount for an add-on: post-discount cost when
// present, raw cost otherwise, zero when neither is set.
func (a *Addon) Amount() decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	if a.PostDiscountCost != nil {
		return *a.PostDiscountCost
	}
	if a.Cost != nil {
		return *a.Cost
	}
	return decimal.Zero
}

// DynamicAddons accepts both shapes the invoice UI has produced over time:
// a JSON array of add-ons or an object keyed by slot name (values extracted,
// key order normalized for determinism).
type DynamicAddons []Addon

func (d *DynamicAddons) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*d = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var arr []Addon
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*d = arr
		return nil
	}

	var obj map[string]Addon
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	addons := make([]Addon, 0, len(obj))
	for _, k := range keys {
		addons = append(addons, obj[k])
	}
	*d = addons
	return nil
}

// Total sums the charged amounts of every dynamic add-on.
func (d DynamicAddons) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range d {
		total = total.Add(d[i].Amount())
	}
	return total
}

// InvoiceAdditionalData is the free-form supplementary block; only the VAT
// status is meaningful to the sync service.
type InvoiceAdditionalData struct {
	VATStatus *string        `json:"vat_status,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// InvoiceNotes accepts either a single string or an array of strings.
type InvoiceNotes []string

func (n *InvoiceNotes) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*n = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var arr []string
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*n = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = InvoiceNotes{s}
	return nil
}

// Text joins multi-line notes with newlines; a single note passes through.
func (n InvoiceNotes) Text() string {
	return strings.Join(n, "\n")
}

// IsEmpty reports whether the invoice carries no notes at all.
func (n InvoiceNotes) IsEmpty() bool {
	return len(n) == 0
}
