// internal/core/services/invoice_sync.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// vatTolerance is the allowed gap between the VAT-inclusive price and the
// sale price when deciding whether VAT is already included.
var vatTolerance = decimal.NewFromFloat(0.01)

// InvoiceSyncService reconciles a finalized invoice into the CRM customer
// store, the sale-details store and the vehicle checklist store. The three
// writes are sequential and best-effort: there is no transaction across
// them and no rollback on partial failure.
type InvoiceSyncService struct {
	customers  ports.CustomerRepository
	sales      ports.SaleDetailsRepository
	checklists ports.ChecklistRepository
	postcodes  ports.PostcodeLookup
	logger     *slog.Logger
	now        func() time.Time
}

// Statically assert that *InvoiceSyncService implements the port.
var _ ports.InvoiceSyncService = (*InvoiceSyncService)(nil)

// NewInvoiceSyncService creates a new invoice sync service.
func NewInvoiceSyncService(
	customers ports.CustomerRepository,
	sales ports.SaleDetailsRepository,
	checklists ports.ChecklistRepository,
	postcodes ports.PostcodeLookup,
	logger *slog.Logger,
) *InvoiceSyncService {
	return &InvoiceSyncService{
		customers:  customers,
		sales:      sales,
		checklists: checklists,
		postcodes:  postcodes,
		logger:     logger.With(slog.String("service", "invoice_sync")),
		now:        time.Now,
	}
}

// Sync runs the full reconciliation for one invoice save. It never returns
// an error: collaborator failures become entries in the result and
// Success is strictly "no errors". Customer sync runs first because the
// sale-details row links the resulting customer id; checklist sync is
// independent and runs last.
func (s *InvoiceSyncService) Sync(ctx context.Context, dealerID, stockID string, invoice *domain.Invoice) *domain.SyncResult {
	result := domain.NewSyncResult()

	if invoice == nil {
		result.AddError("invoice data is required")
		result.Finalize()
		return result
	}

	result.CustomerID = s.syncCustomer(ctx, dealerID, invoice, result)

	// Vehicle-finder invoices have no backing stock row; sale-details and
	// checklist rows are keyed to real stock and must never be created.
	if domain.IsVehicleFinderStockID(stockID) {
		result.AddWarning(fmt.Sprintf("stock id %s is a vehicle-finder placeholder; sale details and checklist sync skipped", stockID))
		result.Finalize()
		s.logSyncOutcome(ctx, dealerID, stockID, result)
		return result
	}

	if id, ok := s.syncSaleDetails(ctx, dealerID, stockID, invoice, result.CustomerID, result); ok {
		result.SaleDetailsID = &id
	}

	s.syncChecklist(ctx, dealerID, stockID, invoice, result)

	result.Finalize()
	s.logSyncOutcome(ctx, dealerID, stockID, result)
	return result
}

func (s *InvoiceSyncService) logSyncOutcome(ctx context.Context, dealerID, stockID string, result *domain.SyncResult) {
	s.logger.InfoContext(ctx, "invoice sync finished",
		slog.String("dealer_id", dealerID),
		slog.String("stock_id", stockID),
		slog.Bool("success", result.Success),
		slog.Int("errors", len(result.Errors)),
		slog.Int("warnings", len(result.Warnings)))
}

// syncCustomer resolves or creates the CRM customer and applies a
// conditional enrichment update. A missing or incomplete customer block is
// a warning, not an error; only a CRM that cannot produce an id at all is
// an error. A failed enrichment is a warning and the id is still returned.
func (s *InvoiceSyncService) syncCustomer(ctx context.Context, dealerID string, invoice *domain.Invoice, result *domain.SyncResult) *uuid.UUID {
	cust := invoice.Customer
	if cust == nil {
		result.AddWarning("invoice has no customer details; customer sync skipped")
		return nil
	}

	firstName := strings.TrimSpace(cust.FirstName)
	lastName := strings.TrimSpace(cust.LastName)
	if firstName == "" || lastName == "" {
		result.AddWarning("customer first and last name are required; customer sync skipped")
		return nil
	}

	lead := domain.CustomerLead{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        derefString(cust.Email),
		Phone:        derefString(cust.Phone),
		AddressLine1: derefString(cust.AddressLine1),
		Postcode:     derefString(cust.Postcode),
		Notes:        fmt.Sprintf("Created from invoice %s", invoice.InvoiceNumber),
	}
	if flags := cust.Flags; flags != nil {
		lead.GDPRConsent = derefBool(flags.GDPRConsent)
		lead.MarketingConsent = derefBool(flags.MarketingConsent)
		lead.VulnerabilityMarker = derefBool(flags.VulnerabilityMarker)
	}

	customerID, err := s.customers.AutoCreate(ctx, dealerID, lead)
	if err != nil {
		result.AddError(stepError("failed to create/find customer in CRM", err))
		return nil
	}
	if customerID == nil {
		result.AddError("failed to create/find customer in CRM")
		return nil
	}

	patch := s.buildCustomerPatch(ctx, cust)
	if !patch.IsEmpty() {
		if err := s.customers.Update(ctx, *customerID, patch); err != nil {
			result.AddWarning(stepError("failed to enrich customer record", err))
		}
	}

	return customerID
}

// buildCustomerPatch stages the optional address fields and true consent
// flags. City and county missing from the invoice are derived from the
// postcode where possible; derived values never overwrite supplied ones.
func (s *InvoiceSyncService) buildCustomerPatch(ctx context.Context, cust *domain.InvoiceCustomer) *domain.CustomerPatch {
	patch := domain.NewCustomerPatch(s.now())

	patch.SetAddressLine2(strings.TrimSpace(derefString(cust.AddressLine2)))
	patch.SetCity(strings.TrimSpace(derefString(cust.City)))
	patch.SetCounty(strings.TrimSpace(derefString(cust.County)))

	if country := strings.TrimSpace(derefString(cust.Country)); country != "" && !isUnitedKingdom(country) {
		patch.SetCountry(country)
	}

	if flags := cust.Flags; flags != nil {
		if derefBool(flags.GDPRConsent) {
			patch.GrantGDPRConsent()
		}
		if derefBool(flags.MarketingConsent) {
			patch.GrantMarketingConsent()
		}
		if derefBool(flags.VulnerabilityMarker) {
			patch.MarkVulnerable()
		}
	}

	postcode := strings.TrimSpace(derefString(cust.Postcode))
	if postcode != "" && (!patch.HasCity() || !patch.HasCounty()) {
		area, err := s.postcodes.Lookup(ctx, postcode)
		if err != nil {
			s.logger.DebugContext(ctx, "postcode lookup failed",
				slog.String("postcode", postcode),
				slog.String("error", err.Error()))
		} else {
			if !patch.HasCity() {
				patch.SetCity(area.City)
			}
			if !patch.HasCounty() {
				patch.SetCounty(area.County)
			}
		}
	}

	return patch
}

// syncSaleDetails upserts the sale-details row for (stockID, dealerID).
// The patch strips unset fields so an update never nulls stored columns.
func (s *InvoiceSyncService) syncSaleDetails(ctx context.Context, dealerID, stockID string, invoice *domain.Invoice, customerID *uuid.UUID, result *domain.SyncResult) (int64, bool) {
	existing, err := s.sales.GetByStockID(ctx, stockID, dealerID)
	if err != nil {
		result.AddError(stepError("failed to load sale details", err))
		return 0, false
	}

	patch := s.buildSaleDetailsPatch(invoice, customerID)

	var row *domain.SaleDetails
	if existing != nil {
		row, err = s.sales.Update(ctx, stockID, dealerID, patch)
	} else {
		if patch.SaleDate == nil {
			saleDate := s.now()
			patch.SaleDate = &saleDate
		}
		row, err = s.sales.Create(ctx, stockID, dealerID, patch)
	}
	if err != nil {
		result.AddError(stepError("failed to save sale details", err))
		return 0, false
	}
	if row == nil {
		result.AddError("sale details upsert returned no row")
		return 0, false
	}

	return row.ID, true
}

func (s *InvoiceSyncService) buildSaleDetailsPatch(invoice *domain.Invoice, customerID *uuid.UUID) *domain.SaleDetailsPatch {
	patch := &domain.SaleDetailsPatch{UpdatedAt: s.now()}

	if customerID != nil {
		patch.CustomerID = customerID
	}

	if date := resolveSaleDate(invoice); date != nil {
		patch.SaleDate = date
	}

	salePrice := resolveSalePrice(invoice)
	patch.SalePrice = &salePrice

	if scheme := deriveVATScheme(invoice, salePrice); scheme != nil {
		patch.VATScheme = scheme
	}

	s.stagePayments(invoice, patch)
	s.stageDelivery(invoice, patch)
	s.stageWarranty(invoice, patch)
	s.stageAddons(invoice, patch)
	s.stageStatusFlags(invoice, patch)

	if invoice.InvoiceNumber != "" {
		num := invoice.InvoiceNumber
		patch.InvoiceNumber = &num
	}
	if !invoice.Notes.IsEmpty() {
		notes := invoice.Notes.Text()
		patch.Notes = &notes
	}

	return patch
}

// stagePayments aggregates the payment breakdown. Cash, BACS and card are
// summed per method; finance is a single figure; the deposit pools four
// independent sources; part exchange pools the breakdown figure and the
// amount paid against the part-exchange vehicle.
func (s *InvoiceSyncService) stagePayments(invoice *domain.Invoice, patch *domain.SaleDetailsPatch) {
	var breakdown *domain.PaymentBreakdown
	if invoice.Payment != nil {
		breakdown = invoice.Payment.Breakdown
	}

	cash := sumPaymentEntries(breakdownEntries(breakdown, func(b *domain.PaymentBreakdown) []domain.PaymentEntry { return b.CashPayments }))
	bacs := sumPaymentEntries(breakdownEntries(breakdown, func(b *domain.PaymentBreakdown) []domain.PaymentEntry { return b.BacsPayments }))
	card := sumPaymentEntries(breakdownEntries(breakdown, func(b *domain.PaymentBreakdown) []domain.PaymentEntry { return b.CardPayments }))

	finance := decimal.Zero
	if breakdown != nil {
		finance = derefDecimal(breakdown.FinanceAmount)
	}

	deposit := decimal.Zero
	if breakdown != nil {
		deposit = deposit.Add(derefDecimal(breakdown.DepositAmount))
	}
	if pay := invoice.Payment; pay != nil {
		deposit = deposit.Add(derefDecimal(pay.DepositPaidViaFinance))
		deposit = deposit.Add(derefDecimal(pay.DepositPaidByCustomer))
		deposit = deposit.Add(derefDecimal(pay.DealerDepositPaidByCustomer))
	}

	partEx := decimal.Zero
	if breakdown != nil {
		partEx = partEx.Add(derefDecimal(breakdown.PartExAmount))
	}
	if pay := invoice.Payment; pay != nil && pay.PartExchange != nil {
		partEx = partEx.Add(derefDecimal(pay.PartExchange.AmountPaid))
	}

	patch.CashAmount = &cash
	patch.BacsAmount = &bacs
	patch.CardAmount = &card
	patch.FinanceAmount = &finance
	patch.DepositAmount = &deposit
	patch.PartExAmount = &partEx

	depositPaid := deposit.GreaterThan(decimal.Zero)
	patch.DepositPaid = &depositPaid

	if date := firstDepositDate(breakdown); date != nil {
		patch.DepositDate = date
	}
}

// firstDepositDate scans card, then bacs, then cash payments and returns
// the date of the first entry with a positive amount and a non-empty,
// parseable date.
func firstDepositDate(breakdown *domain.PaymentBreakdown) *time.Time {
	if breakdown == nil {
		return nil
	}
	for _, entries := range [][]domain.PaymentEntry{
		breakdown.CardPayments,
		breakdown.BacsPayments,
		breakdown.CashPayments,
	} {
		for i := range entries {
			if entries[i].Date == "" || !entries[i].Amount.GreaterThan(decimal.Zero) {
				continue
			}
			if parsed := parseInvoiceDate(entries[i].Date); parsed != nil {
				return parsed
			}
			// Unparseable date counts as empty; keep scanning.
		}
	}
	return nil
}

// stageDelivery resolves the delivery price through the documented priority
// chain and records which source supplied the value.
func (s *InvoiceSyncService) stageDelivery(invoice *domain.Invoice, patch *domain.SaleDetailsPatch) {
	price := decimal.Zero
	source := domain.DeliverySourceDefault

	delivery := invoice.Delivery
	pricing := invoice.Pricing

	switch {
	case delivery != nil && delivery.PostDiscountCost != nil:
		price = *delivery.PostDiscountCost
		source = domain.DeliverySourceDeliveryPostDiscount
	case pricing != nil && pricing.DeliveryCostPostDiscount != nil:
		price = *pricing.DeliveryCostPostDiscount
		source = domain.DeliverySourcePricingPostDiscount
	case delivery != nil && delivery.Cost != nil:
		price = *delivery.Cost
		source = domain.DeliverySourceRaw
	case pricing != nil && pricing.DeliveryCost != nil:
		price = *pricing.DeliveryCost
		source = domain.DeliverySourceRaw
	}

	patch.DeliveryPrice = &price
	patch.DeliveryPriceSource = &source

	if delivery != nil {
		if t := strings.TrimSpace(derefString(delivery.Type)); t != "" {
			patch.DeliveryType = &t
		}
		if d := derefString(delivery.Date); d != "" {
			if parsed := parseInvoiceDate(d); parsed != nil {
				patch.DeliveryDate = parsed
			}
		}
	}
}

func (s *InvoiceSyncService) stageWarranty(invoice *domain.Invoice, patch *domain.SaleDetailsPatch) {
	price := decimal.Zero

	warranty := invoice.Warranty
	pricing := invoice.Pricing

	switch {
	case warranty != nil && warranty.PostDiscountPrice != nil:
		price = *warranty.PostDiscountPrice
	case pricing != nil && pricing.WarrantyPricePostDiscount != nil:
		price = *pricing.WarrantyPricePostDiscount
	case warranty != nil && warranty.Price != nil:
		price = *warranty.Price
	case pricing != nil && pricing.WarrantyPrice != nil:
		price = *pricing.WarrantyPrice
	}

	patch.WarrantyPrice = &price

	if warranty != nil {
		if level := strings.TrimSpace(derefString(warranty.Level)); level != "" {
			patch.WarrantyLevel = &level
		}
	}
}

func (s *InvoiceSyncService) stageAddons(invoice *domain.Invoice, patch *domain.SaleDetailsPatch) {
	finance := decimal.Zero
	customer := decimal.Zero

	if addons := invoice.Addons; addons != nil {
		finance = addonGroupTotal(addons.Finance)
		customer = addonGroupTotal(addons.Customer)
	}

	patch.TotalFinanceAddOn = &finance
	patch.TotalCustomerAddOn = &customer
}

func addonGroupTotal(group *domain.AddonGroup) decimal.Decimal {
	if group == nil {
		return decimal.Zero
	}
	return group.Addon1.Amount().
		Add(group.Addon2.Amount()).
		Add(group.Dynamic.Total())
}

// stageStatusFlags copies the handover flags, defaulting to false when the
// status block or an individual flag is absent.
func (s *InvoiceSyncService) stageStatusFlags(invoice *domain.Invoice, patch *domain.SaleDetailsPatch) {
	var status domain.InvoiceStatus
	if invoice.Status != nil {
		status = *invoice.Status
	}

	docs := derefBool(status.DocumentationComplete)
	keys := derefBool(status.KeyHandedOver)
	satisfied := derefBool(status.CustomerSatisfied)
	taxed := derefBool(status.VehicleTaxed)

	patch.DocumentationComplete = &docs
	patch.KeyHandedOver = &keys
	patch.CustomerSatisfied = &satisfied
	patch.VehicleTaxed = &taxed
}

// syncChecklist upserts the vehicle checklist. Absent fields fall back to
// fixed defaults; the write is skipped entirely when the invoice carries no
// actual checklist data beyond those defaults.
func (s *InvoiceSyncService) syncChecklist(ctx context.Context, dealerID, stockID string, invoice *domain.Invoice, result *domain.SyncResult) {
	checklist := invoice.Checklist
	if checklist == nil {
		result.AddWarning("invoice has no checklist data; checklist sync skipped")
		return
	}

	if !hasChecklistData(checklist) {
		s.logger.DebugContext(ctx, "checklist carries only defaults; write skipped",
			slog.String("stock_id", stockID))
		return
	}

	existing, err := s.checklists.GetByStockID(ctx, stockID, dealerID)
	if err != nil {
		result.AddError(stepError("failed to load vehicle checklist", err))
		return
	}

	patch := buildChecklistPatch(checklist, existing, s.now())

	if existing != nil {
		_, err = s.checklists.Update(ctx, stockID, dealerID, patch)
	} else {
		_, err = s.checklists.Create(ctx, stockID, dealerID, patch)
	}
	if err != nil {
		result.AddError(stepError("failed to save vehicle checklist", err))
	}
}

// hasChecklistData reports whether the block carries anything beyond the
// fallback defaults. A block restating every default with no metadata or
// completion figure persists nothing.
func hasChecklistData(checklist *domain.InvoiceChecklist) bool {
	checks := []struct {
		value    *string
		fallback string
	}{
		{checklist.NumberOfKeys, domain.ChecklistDefaultKeys},
		{checklist.UserManual, domain.ChecklistDefaultManual},
		{checklist.ServiceBook, domain.ChecklistDefaultService},
		{checklist.WheelLockingNut, domain.ChecklistDefaultLockingNut},
		{checklist.CambeltChainConfirmation, domain.ChecklistDefaultCambelt},
	}
	for _, c := range checks {
		if c.value != nil && strings.TrimSpace(*c.value) != "" && *c.value != c.fallback {
			return true
		}
	}
	if checklist.CompletionPercentage != nil && strings.TrimSpace(*checklist.CompletionPercentage) != "" {
		return true
	}
	return len(checklist.Metadata) > 0
}

func buildChecklistPatch(checklist *domain.InvoiceChecklist, existing *domain.VehicleChecklist, now time.Time) *domain.ChecklistPatch {
	patch := &domain.ChecklistPatch{UpdatedAt: now}

	keys := valueOrDefault(checklist.NumberOfKeys, domain.ChecklistDefaultKeys)
	manual := valueOrDefault(checklist.UserManual, domain.ChecklistDefaultManual)
	service := valueOrDefault(checklist.ServiceBook, domain.ChecklistDefaultService)
	lockingNut := valueOrDefault(checklist.WheelLockingNut, domain.ChecklistDefaultLockingNut)
	cambelt := valueOrDefault(checklist.CambeltChainConfirmation, domain.ChecklistDefaultCambelt)

	patch.NumberOfKeys = &keys
	patch.UserManual = &manual
	patch.ServiceBook = &service
	patch.WheelLockingNut = &lockingNut
	patch.CambeltChainConfirmation = &cambelt

	if checklist.CompletionPercentage != nil && *checklist.CompletionPercentage != "" {
		completion := *checklist.CompletionPercentage
		patch.CompletionPercentage = &completion
	}

	staged := map[string]any{
		"number_of_keys":             keys,
		"user_manual":                manual,
		"service_book":               service,
		"wheel_locking_nut":          lockingNut,
		"cambelt_chain_confirmation": cambelt,
	}
	for k, v := range checklist.Metadata {
		staged[k] = v
	}

	var existingMeta map[string]any
	if existing != nil {
		existingMeta = existing.Metadata
	}
	patch.Metadata = domain.MergeMetadata(existingMeta, staged)

	return patch
}

// resolveSaleDate prefers the sale block's date, then the invoice date.
func resolveSaleDate(invoice *domain.Invoice) *time.Time {
	if invoice.Sale != nil {
		if parsed := parseInvoiceDate(derefString(invoice.Sale.SaleDate)); parsed != nil {
			return parsed
		}
	}
	return parseInvoiceDate(derefString(invoice.InvoiceDate))
}

// resolveSalePrice: post-discount price, else raw price, else zero.
func resolveSalePrice(invoice *domain.Invoice) decimal.Decimal {
	if pricing := invoice.Pricing; pricing != nil {
		if pricing.SalePricePostDiscount != nil {
			return *pricing.SalePricePostDiscount
		}
		if pricing.SalePrice != nil {
			return *pricing.SalePrice
		}
	}
	if invoice.Sale != nil && invoice.Sale.SalePrice != nil {
		return *invoice.Sale.SalePrice
	}
	return decimal.Zero
}

// deriveVATScheme walks the documented priority chain: explicit field,
// metadata, normalized additional-data status, then derivation from the
// apply-VAT flag and the VAT-inclusive price.
func deriveVATScheme(invoice *domain.Invoice, salePrice decimal.Decimal) *domain.VATScheme {
	if invoice.VATScheme != nil {
		if scheme := normalizeVATScheme(*invoice.VATScheme); scheme != nil {
			return scheme
		}
	}

	if raw, ok := invoice.Metadata["vat_scheme"].(string); ok {
		if scheme := normalizeVATScheme(raw); scheme != nil {
			return scheme
		}
	}

	if invoice.AdditionalData != nil && invoice.AdditionalData.VATStatus != nil {
		if scheme := normalizeVATScheme(*invoice.AdditionalData.VATStatus); scheme != nil {
			return scheme
		}
	}

	pricing := invoice.Pricing
	if pricing == nil || pricing.ApplyVATToSalePrice == nil {
		return nil
	}

	if !*pricing.ApplyVATToSalePrice {
		scheme := domain.VATSchemeNone
		return &scheme
	}

	scheme := domain.VATSchemeExcludes
	if pricing.SalePriceIncludingVAT != nil {
		diff := pricing.SalePriceIncludingVAT.Sub(salePrice).Abs()
		if diff.LessThanOrEqual(vatTolerance) {
			scheme = domain.VATSchemeIncludes
		}
	}
	return &scheme
}

func normalizeVATScheme(raw string) *domain.VATScheme {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
	if !domain.ValidVATScheme(normalized) {
		return nil
	}
	scheme := domain.VATScheme(normalized)
	return &scheme
}

// Small accessor helpers. Each fallback chain above is an explicit ordered
// evaluation rather than chained optional access.

func breakdownEntries(breakdown *domain.PaymentBreakdown, pick func(*domain.PaymentBreakdown) []domain.PaymentEntry) []domain.PaymentEntry {
	if breakdown == nil {
		return nil
	}
	return pick(breakdown)
}

func sumPaymentEntries(entries []domain.PaymentEntry) decimal.Decimal {
	total := decimal.Zero
	for i := range entries {
		total = total.Add(entries[i].Amount)
	}
	return total
}

// invoiceDateLayouts are the formats the invoice workflow has emitted.
var invoiceDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
}

func parseInvoiceDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range invoiceDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	return nil
}

func isUnitedKingdom(country string) bool {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "uk", "gb", "gbr", "united kingdom", "great britain":
		return true
	}
	return false
}

func stepError(msg string, err error) string {
	if err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, err)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefBool(v *bool) bool {
	if v == nil {
		return false
	}
	return *v
}

func derefDecimal(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

func valueOrDefault(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}
