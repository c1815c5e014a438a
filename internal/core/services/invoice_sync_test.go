// internal/core/services/invoice_sync_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/services"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/test/helpers"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/test/mocks"
)

type syncMocks struct {
	customers  *mocks.MockCustomerRepository
	sales      *mocks.MockSaleDetailsRepository
	checklists *mocks.MockChecklistRepository
	postcodes  *mocks.MockPostcodeLookup
}

func newSyncService(t *testing.T) (*services.InvoiceSyncService, *syncMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := &syncMocks{
		customers:  mocks.NewMockCustomerRepository(ctrl),
		sales:      mocks.NewMockSaleDetailsRepository(ctrl),
		checklists: mocks.NewMockChecklistRepository(ctrl),
		postcodes:  mocks.NewMockPostcodeLookup(ctrl),
	}
	svc := services.NewInvoiceSyncService(m.customers, m.sales, m.checklists, m.postcodes, helpers.TestLogger())
	return svc, m
}

func TestInvoiceSyncService_Sync_NilInvoice(t *testing.T) {
	svc, _ := newSyncService(t)

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", nil)

	require.NotNil(t, result)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "invoice data is required")
	assert.Empty(t, result.Warnings)
}

func TestInvoiceSyncService_Sync_HappyPath(t *testing.T) {
	svc, m := newSyncService(t)
	ctx := context.Background()

	customerID := uuid.New()
	invoice := helpers.CreateTestInvoice()

	m.customers.EXPECT().
		AutoCreate(gomock.Any(), "dealer-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, lead domain.CustomerLead) (*uuid.UUID, error) {
			assert.Equal(t, "Jane", lead.FirstName)
			assert.Equal(t, "Smith", lead.LastName)
			assert.Equal(t, "jane.smith@example.com", lead.Email)
			assert.Contains(t, lead.Notes, "INV-2025-001")
			return &customerID, nil
		})

	m.postcodes.EXPECT().
		Lookup(gomock.Any(), "SW1A 1AA").
		Return(ports.PostcodeArea{City: "London", County: "Greater London"}, nil)

	m.customers.EXPECT().
		Update(gomock.Any(), customerID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, patch *domain.CustomerPatch) error {
			fields := patch.Fields()
			assert.Equal(t, "London", fields["city"])
			assert.Equal(t, "Greater London", fields["county"])
			return nil
		})

	m.sales.EXPECT().
		GetByStockID(gomock.Any(), "STK-001", "dealer-1").
		Return(nil, nil)

	m.sales.EXPECT().
		Create(gomock.Any(), "STK-001", "dealer-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
			require.NotNil(t, patch.CustomerID)
			assert.Equal(t, customerID, *patch.CustomerID)

			assert.True(t, patch.CardAmount.Equal(decimal.NewFromInt(1000)))
			assert.True(t, patch.BacsAmount.Equal(decimal.NewFromInt(4995)))
			assert.True(t, patch.CashAmount.IsZero())
			assert.True(t, patch.FinanceAmount.Equal(decimal.NewFromInt(12000)))
			assert.True(t, patch.DepositAmount.IsZero())
			assert.False(t, *patch.DepositPaid)

			// Card payment dated 2025-06-10 is the first positive entry.
			require.NotNil(t, patch.DepositDate)
			assert.Equal(t, "2025-06-10", patch.DepositDate.Format("2006-01-02"))

			require.NotNil(t, patch.SaleDate)
			assert.Equal(t, "2025-06-14", patch.SaleDate.Format("2006-01-02"))
			assert.True(t, patch.SalePrice.Equal(decimal.NewFromInt(17995)))

			require.NotNil(t, patch.InvoiceNumber)
			assert.Equal(t, "INV-2025-001", *patch.InvoiceNumber)

			return &domain.SaleDetails{ID: 42, StockID: "STK-001", DealerID: "dealer-1"}, nil
		})

	result := svc.Sync(ctx, "dealer-1", "STK-001", invoice)

	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	require.NotNil(t, result.CustomerID)
	assert.Equal(t, customerID, *result.CustomerID)
	require.NotNil(t, result.SaleDetailsID)
	assert.EqualValues(t, 42, *result.SaleDetailsID)
	// No checklist block on the invoice produces a warning only.
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no checklist data")
}

func TestInvoiceSyncService_Sync_VehicleFinderSkipsSaleAndChecklist(t *testing.T) {
	svc, m := newSyncService(t)

	customerID := uuid.New()
	invoice := helpers.CreateTestInvoice()

	m.customers.EXPECT().
		AutoCreate(gomock.Any(), "dealer-1", gomock.Any()).
		Return(&customerID, nil)
	m.postcodes.EXPECT().
		Lookup(gomock.Any(), gomock.Any()).
		Return(ports.PostcodeArea{City: "London"}, nil)
	m.customers.EXPECT().
		Update(gomock.Any(), customerID, gomock.Any()).
		Return(nil)

	// No expectations on sales or checklists: any call fails the test.
	result := svc.Sync(context.Background(), "dealer-1", "vehicle-finder-8f2a", invoice)

	assert.True(t, result.Success)
	require.NotNil(t, result.CustomerID)
	assert.Nil(t, result.SaleDetailsID)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "vehicle-finder")
}

func TestInvoiceSyncService_Sync_CustomerVariants(t *testing.T) {
	tests := []struct {
		name            string
		mutate          func(*domain.Invoice)
		setupMocks      func(*syncMocks)
		wantCustomerID  bool
		wantErrContains string
		wantWarnCount   int
	}{
		{
			name:   "missing_customer_block_is_warning",
			mutate: func(inv *domain.Invoice) { inv.Customer = nil },
			setupMocks: func(m *syncMocks) {
				expectSaleCreate(m, nil)
			},
			wantCustomerID: false,
			wantWarnCount:  2, // customer skip + checklist skip
		},
		{
			name: "blank_names_are_warning",
			mutate: func(inv *domain.Invoice) {
				inv.Customer.FirstName = "  "
				inv.Customer.LastName = ""
			},
			setupMocks: func(m *syncMocks) {
				expectSaleCreate(m, nil)
			},
			wantCustomerID: false,
			wantWarnCount:  2,
		},
		{
			name:   "crm_error_is_error_but_sale_still_written",
			mutate: func(inv *domain.Invoice) {},
			setupMocks: func(m *syncMocks) {
				m.customers.EXPECT().
					AutoCreate(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("crm unavailable"))
				expectSaleCreate(m, nil)
			},
			wantCustomerID:  false,
			wantErrContains: "failed to create/find customer",
			wantWarnCount:   1,
		},
		{
			name:   "nil_id_without_error_is_error",
			mutate: func(inv *domain.Invoice) {},
			setupMocks: func(m *syncMocks) {
				m.customers.EXPECT().
					AutoCreate(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, nil)
				expectSaleCreate(m, nil)
			},
			wantCustomerID:  false,
			wantErrContains: "failed to create/find customer",
			wantWarnCount:   1,
		},
		{
			name:   "failed_enrichment_is_warning_and_id_kept",
			mutate: func(inv *domain.Invoice) {},
			setupMocks: func(m *syncMocks) {
				id := uuid.New()
				m.customers.EXPECT().
					AutoCreate(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&id, nil)
				m.postcodes.EXPECT().
					Lookup(gomock.Any(), gomock.Any()).
					Return(ports.PostcodeArea{City: "London"}, nil)
				m.customers.EXPECT().
					Update(gomock.Any(), id, gomock.Any()).
					Return(errors.New("write conflict"))
				expectSaleCreate(m, &id)
			},
			wantCustomerID: true,
			wantWarnCount:  2, // enrichment warning + checklist skip
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSyncService(t)

			invoice := helpers.CreateTestInvoice()
			tt.mutate(invoice)
			tt.setupMocks(m)

			result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)

			if tt.wantCustomerID {
				assert.NotNil(t, result.CustomerID)
			} else {
				assert.Nil(t, result.CustomerID)
			}
			if tt.wantErrContains != "" {
				require.NotEmpty(t, result.Errors)
				assert.Contains(t, result.Errors[0], tt.wantErrContains)
				assert.False(t, result.Success)
			} else {
				assert.Empty(t, result.Errors)
				assert.True(t, result.Success)
			}
			assert.Len(t, result.Warnings, tt.wantWarnCount)
		})
	}
}

// expectSaleCreate wires the no-existing-row upsert path, asserting the
// customer id linked into the patch.
func expectSaleCreate(m *syncMocks, customerID *uuid.UUID) {
	m.sales.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.sales.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, stockID, dealerID string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
			if customerID == nil {
				if patch.CustomerID != nil {
					return nil, errors.New("unexpected customer id in patch")
				}
			} else if patch.CustomerID == nil || *patch.CustomerID != *customerID {
				return nil, errors.New("wrong customer id in patch")
			}
			return &domain.SaleDetails{ID: 1, StockID: stockID, DealerID: dealerID}, nil
		})
}

func TestInvoiceSyncService_Sync_ConsentFlagsAreMonotonic(t *testing.T) {
	tests := []struct {
		name        string
		flags       *domain.InvoiceCustomerFlags
		wantGranted bool
	}{
		{
			name: "true_flags_staged",
			flags: &domain.InvoiceCustomerFlags{
				GDPRConsent:      helpers.BoolPtr(true),
				MarketingConsent: helpers.BoolPtr(true),
			},
			wantGranted: true,
		},
		{
			name: "false_flags_never_staged",
			flags: &domain.InvoiceCustomerFlags{
				GDPRConsent:      helpers.BoolPtr(false),
				MarketingConsent: helpers.BoolPtr(false),
			},
			wantGranted: false,
		},
		{
			name:        "absent_flags_never_staged",
			flags:       nil,
			wantGranted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSyncService(t)

			customerID := uuid.New()
			invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
				inv.Customer.Flags = tt.flags
				// City and county supplied directly, so no lookup runs and
				// the patch carries only address and consent fields.
				inv.Customer.City = helpers.StringPtr("Leeds")
				inv.Customer.County = helpers.StringPtr("West Yorkshire")
			})

			m.customers.EXPECT().
				AutoCreate(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(&customerID, nil)
			m.customers.EXPECT().
				Update(gomock.Any(), customerID, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ uuid.UUID, patch *domain.CustomerPatch) error {
					fields := patch.Fields()
					if tt.wantGranted {
						assert.Equal(t, true, fields["gdpr_consent"])
						assert.Equal(t, true, fields["marketing_consent"])
					} else {
						assert.NotContains(t, fields, "gdpr_consent")
						assert.NotContains(t, fields, "marketing_consent")
					}
					assert.NotContains(t, fields, "vulnerability_marker")
					return nil
				})
			expectSaleCreate(m, &customerID)

			result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
			assert.True(t, result.Success)
		})
	}
}

func TestInvoiceSyncService_Sync_PostcodeNeverOverwritesSuppliedCity(t *testing.T) {
	svc, m := newSyncService(t)

	customerID := uuid.New()
	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer.City = helpers.StringPtr("Manchester")
	})

	m.customers.EXPECT().
		AutoCreate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&customerID, nil)
	m.postcodes.EXPECT().
		Lookup(gomock.Any(), "SW1A 1AA").
		Return(ports.PostcodeArea{City: "London", County: "Greater London"}, nil)
	m.customers.EXPECT().
		Update(gomock.Any(), customerID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, patch *domain.CustomerPatch) error {
			fields := patch.Fields()
			assert.Equal(t, "Manchester", fields["city"])
			assert.Equal(t, "Greater London", fields["county"])
			return nil
		})
	expectSaleCreate(m, &customerID)

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
	assert.True(t, result.Success)
}

func TestInvoiceSyncService_Sync_PostcodeLookupFailureIsSilent(t *testing.T) {
	svc, m := newSyncService(t)

	customerID := uuid.New()
	invoice := helpers.CreateTestInvoice()

	m.customers.EXPECT().
		AutoCreate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&customerID, nil)
	m.postcodes.EXPECT().
		Lookup(gomock.Any(), gomock.Any()).
		Return(ports.PostcodeArea{}, errors.New("api down"))
	// Nothing beyond the timestamp is staged, so Update is never called.
	expectSaleCreate(m, &customerID)

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
}

func TestInvoiceSyncService_Sync_VATSchemeDerivation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*domain.Invoice)
		wantScheme *domain.VATScheme
	}{
		{
			name: "explicit_field_wins",
			mutate: func(inv *domain.Invoice) {
				inv.VATScheme = helpers.StringPtr(" Includes ")
			},
			wantScheme: vatPtr(domain.VATSchemeIncludes),
		},
		{
			name: "metadata_scheme_used_when_field_invalid",
			mutate: func(inv *domain.Invoice) {
				inv.VATScheme = helpers.StringPtr("whatever")
				inv.Metadata = map[string]any{"vat_scheme": "No VAT"}
			},
			wantScheme: vatPtr(domain.VATSchemeNone),
		},
		{
			name: "additional_data_status",
			mutate: func(inv *domain.Invoice) {
				inv.AdditionalData = &domain.InvoiceAdditionalData{
					VATStatus: helpers.StringPtr("EXCLUDES"),
				}
			},
			wantScheme: vatPtr(domain.VATSchemeExcludes),
		},
		{
			name: "apply_vat_false_means_no_vat",
			mutate: func(inv *domain.Invoice) {
				inv.Pricing = &domain.InvoicePricing{
					SalePrice:           helpers.DecimalPtr(1000),
					ApplyVATToSalePrice: helpers.BoolPtr(false),
				}
			},
			wantScheme: vatPtr(domain.VATSchemeNone),
		},
		{
			name: "inclusive_price_matching_sale_price_means_includes",
			mutate: func(inv *domain.Invoice) {
				inv.Pricing = &domain.InvoicePricing{
					SalePrice:             helpers.DecimalPtr(1000),
					SalePriceIncludingVAT: helpers.DecimalPtr(1000),
					ApplyVATToSalePrice:   helpers.BoolPtr(true),
				}
			},
			wantScheme: vatPtr(domain.VATSchemeIncludes),
		},
		{
			name: "inclusive_price_above_sale_price_means_excludes",
			mutate: func(inv *domain.Invoice) {
				inv.Pricing = &domain.InvoicePricing{
					SalePrice:             helpers.DecimalPtr(1000),
					SalePriceIncludingVAT: helpers.DecimalPtr(1200),
					ApplyVATToSalePrice:   helpers.BoolPtr(true),
				}
			},
			wantScheme: vatPtr(domain.VATSchemeExcludes),
		},
		{
			name:       "nothing_derivable_leaves_scheme_unset",
			mutate:     func(inv *domain.Invoice) {},
			wantScheme: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSyncService(t)

			invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
				inv.Customer = nil
			})
			tt.mutate(invoice)

			m.sales.EXPECT().
				GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, nil)
			m.sales.EXPECT().
				Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _, _ string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
					if tt.wantScheme == nil {
						assert.Nil(t, patch.VATScheme)
					} else {
						require.NotNil(t, patch.VATScheme)
						assert.Equal(t, *tt.wantScheme, *patch.VATScheme)
					}
					return &domain.SaleDetails{ID: 1}, nil
				})

			result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
			assert.True(t, result.Success)
		})
	}
}

func vatPtr(s domain.VATScheme) *domain.VATScheme { return &s }

func TestInvoiceSyncService_Sync_DepositAggregation(t *testing.T) {
	svc, m := newSyncService(t)

	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer = nil
		inv.Payment = &domain.InvoicePayment{
			Breakdown: &domain.PaymentBreakdown{
				DepositAmount: helpers.DecimalPtr(500),
				PartExAmount:  helpers.DecimalPtr(2000),
			},
			DepositPaidViaFinance:       helpers.DecimalPtr(250),
			DepositPaidByCustomer:       helpers.DecimalPtr(100),
			DealerDepositPaidByCustomer: helpers.DecimalPtr(150),
			PartExchange: &domain.PartExchange{
				AmountPaid:   helpers.DecimalPtr(500),
				Registration: helpers.StringPtr("PX12ABC"),
			},
		}
	})

	m.sales.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.sales.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
			assert.True(t, patch.DepositAmount.Equal(decimal.NewFromInt(1000)), "deposit pools all four sources, got %s", patch.DepositAmount)
			assert.True(t, *patch.DepositPaid)
			assert.True(t, patch.PartExAmount.Equal(decimal.NewFromInt(2500)), "part-ex pools both figures, got %s", patch.PartExAmount)
			assert.Nil(t, patch.DepositDate)
			return &domain.SaleDetails{ID: 1}, nil
		})

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
	assert.True(t, result.Success)
}

func TestInvoiceSyncService_Sync_DepositDateScanOrder(t *testing.T) {
	svc, m := newSyncService(t)

	// Card entries have a zero amount and an unparseable date; the first
	// positive, dated BACS entry supplies the deposit date.
	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer = nil
		inv.Payment = &domain.InvoicePayment{
			Breakdown: &domain.PaymentBreakdown{
				CardPayments: []domain.PaymentEntry{
					{Amount: decimal.Zero, Date: "2025-06-01"},
					{Amount: decimal.NewFromInt(200), Date: "not-a-date"},
				},
				BacsPayments: []domain.PaymentEntry{
					{Amount: decimal.NewFromInt(300), Date: ""},
					{Amount: decimal.NewFromInt(400), Date: "2025-06-05"},
				},
				CashPayments: []domain.PaymentEntry{
					{Amount: decimal.NewFromInt(50), Date: "2025-06-02"},
				},
			},
		}
	})

	m.sales.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.sales.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
			require.NotNil(t, patch.DepositDate)
			assert.Equal(t, "2025-06-05", patch.DepositDate.Format("2006-01-02"))
			assert.True(t, patch.CardAmount.Equal(decimal.NewFromInt(200)))
			assert.True(t, patch.BacsAmount.Equal(decimal.NewFromInt(700)))
			assert.True(t, patch.CashAmount.Equal(decimal.NewFromInt(50)))
			return &domain.SaleDetails{ID: 1}, nil
		})

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
	assert.True(t, result.Success)
}

func TestInvoiceSyncService_Sync_DeliveryPriceChain(t *testing.T) {
	tests := []struct {
		name       string
		delivery   *domain.InvoiceDelivery
		pricing    *domain.InvoicePricing
		wantPrice  decimal.Decimal
		wantSource string
	}{
		{
			name: "delivery_post_discount_first",
			delivery: &domain.InvoiceDelivery{
				PostDiscountCost: helpers.DecimalPtr(80),
				Cost:             helpers.DecimalPtr(100),
			},
			pricing: &domain.InvoicePricing{
				DeliveryCostPostDiscount: helpers.DecimalPtr(90),
				DeliveryCost:             helpers.DecimalPtr(110),
			},
			wantPrice:  decimal.NewFromInt(80),
			wantSource: domain.DeliverySourceDeliveryPostDiscount,
		},
		{
			name:     "pricing_post_discount_second",
			delivery: &domain.InvoiceDelivery{Cost: helpers.DecimalPtr(100)},
			pricing: &domain.InvoicePricing{
				DeliveryCostPostDiscount: helpers.DecimalPtr(90),
				DeliveryCost:             helpers.DecimalPtr(110),
			},
			wantPrice:  decimal.NewFromInt(90),
			wantSource: domain.DeliverySourcePricingPostDiscount,
		},
		{
			name:       "raw_delivery_cost_third",
			delivery:   &domain.InvoiceDelivery{Cost: helpers.DecimalPtr(100)},
			pricing:    &domain.InvoicePricing{DeliveryCost: helpers.DecimalPtr(110)},
			wantPrice:  decimal.NewFromInt(100),
			wantSource: domain.DeliverySourceRaw,
		},
		{
			name:       "raw_pricing_cost_fourth",
			pricing:    &domain.InvoicePricing{DeliveryCost: helpers.DecimalPtr(110)},
			wantPrice:  decimal.NewFromInt(110),
			wantSource: domain.DeliverySourceRaw,
		},
		{
			name:       "zero_default_when_nothing_set",
			wantPrice:  decimal.Zero,
			wantSource: domain.DeliverySourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSyncService(t)

			invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
				inv.Customer = nil
				inv.Delivery = tt.delivery
				inv.Pricing = tt.pricing
			})

			m.sales.EXPECT().
				GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, nil)
			m.sales.EXPECT().
				Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _, _ string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
					require.NotNil(t, patch.DeliveryPrice)
					assert.True(t, patch.DeliveryPrice.Equal(tt.wantPrice), "want %s got %s", tt.wantPrice, patch.DeliveryPrice)
					require.NotNil(t, patch.DeliveryPriceSource)
					assert.Equal(t, tt.wantSource, *patch.DeliveryPriceSource)
					return &domain.SaleDetails{ID: 1}, nil
				})

			result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
			assert.True(t, result.Success)
		})
	}
}

func TestInvoiceSyncService_Sync_SalePriceResolution(t *testing.T) {
	svc, m := newSyncService(t)

	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer = nil
		inv.Pricing = &domain.InvoicePricing{
			SalePrice:             helpers.DecimalPtr(18000),
			SalePricePostDiscount: helpers.DecimalPtr(17500),
		}
	})

	m.sales.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.sales.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
			assert.True(t, patch.SalePrice.Equal(decimal.NewFromInt(17500)))
			return &domain.SaleDetails{ID: 1}, nil
		})

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
	assert.True(t, result.Success)
}

func TestInvoiceSyncService_Sync_AddonTotals(t *testing.T) {
	svc, m := newSyncService(t)

	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer = nil
		inv.Addons = &domain.InvoiceAddons{
			Finance: &domain.AddonGroup{
				Addon1: &domain.Addon{Cost: helpers.DecimalPtr(100)},
				Addon2: &domain.Addon{Cost: helpers.DecimalPtr(200), PostDiscountCost: helpers.DecimalPtr(150)},
				Dynamic: domain.DynamicAddons{
					{Cost: helpers.DecimalPtr(50)},
				},
			},
			Customer: &domain.AddonGroup{
				Addon1: &domain.Addon{PostDiscountCost: helpers.DecimalPtr(75)},
			},
		}
	})

	m.sales.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.sales.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
			assert.True(t, patch.TotalFinanceAddOn.Equal(decimal.NewFromInt(300)), "100 + post-discount 150 + dynamic 50, got %s", patch.TotalFinanceAddOn)
			assert.True(t, patch.TotalCustomerAddOn.Equal(decimal.NewFromInt(75)))
			return &domain.SaleDetails{ID: 1}, nil
		})

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
	assert.True(t, result.Success)
}

func TestInvoiceSyncService_Sync_SaleDetailsErrors(t *testing.T) {
	t.Run("load_failure", func(t *testing.T) {
		svc, m := newSyncService(t)
		invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) { inv.Customer = nil })

		m.sales.EXPECT().
			GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection reset"))

		result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
		assert.False(t, result.Success)
		require.NotEmpty(t, result.Errors)
		assert.Contains(t, result.Errors[0], "failed to load sale details")
		assert.Nil(t, result.SaleDetailsID)
	})

	t.Run("create_failure", func(t *testing.T) {
		svc, m := newSyncService(t)
		invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) { inv.Customer = nil })

		m.sales.EXPECT().
			GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil)
		m.sales.EXPECT().
			Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("constraint violation"))

		result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
		assert.False(t, result.Success)
		assert.Contains(t, result.Errors[0], "failed to save sale details")
	})

	t.Run("existing_row_takes_update_path", func(t *testing.T) {
		svc, m := newSyncService(t)
		invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) { inv.Customer = nil })

		m.sales.EXPECT().
			GetByStockID(gomock.Any(), "STK-001", "dealer-1").
			Return(&domain.SaleDetails{ID: 7, StockID: "STK-001", DealerID: "dealer-1"}, nil)
		m.sales.EXPECT().
			Update(gomock.Any(), "STK-001", "dealer-1", gomock.Any()).
			Return(&domain.SaleDetails{ID: 7}, nil)

		result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
		assert.True(t, result.Success)
		require.NotNil(t, result.SaleDetailsID)
		assert.EqualValues(t, 7, *result.SaleDetailsID)
	})
}

func TestInvoiceSyncService_Sync_SaleDateDefaultsOnCreate(t *testing.T) {
	svc, m := newSyncService(t)

	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer = nil
		inv.Sale = nil
		inv.InvoiceDate = nil
	})

	before := time.Now()
	m.sales.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.sales.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
			require.NotNil(t, patch.SaleDate, "create path must default the sale date")
			assert.False(t, patch.SaleDate.Before(before))
			return &domain.SaleDetails{ID: 1}, nil
		})

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
	assert.True(t, result.Success)
}

func TestInvoiceSyncService_Sync_ChecklistDefaultsOnlySkipsWrite(t *testing.T) {
	svc, m := newSyncService(t)

	// Every field restates its fallback default: nothing to persist, no
	// warning either.
	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer = nil
		inv.Checklist = &domain.InvoiceChecklist{
			NumberOfKeys:             helpers.StringPtr("2"),
			UserManual:               helpers.StringPtr("Not Present"),
			ServiceBook:              helpers.StringPtr("Not Present"),
			WheelLockingNut:          helpers.StringPtr("Not Present"),
			CambeltChainConfirmation: helpers.StringPtr("No"),
		}
	})

	m.sales.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.sales.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.SaleDetails{ID: 1}, nil)
	// No checklist repository expectations: any call fails the test.

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
	assert.True(t, result.Success)
	assert.Empty(t, result.Warnings)
}

func TestInvoiceSyncService_Sync_ChecklistCreateFillsDefaults(t *testing.T) {
	svc, m := newSyncService(t)

	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer = nil
		inv.Checklist = &domain.InvoiceChecklist{
			NumberOfKeys: helpers.StringPtr("1"),
		}
	})

	m.sales.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.sales.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.SaleDetails{ID: 1}, nil)

	m.checklists.EXPECT().
		GetByStockID(gomock.Any(), "STK-001", "dealer-1").
		Return(nil, nil)
	m.checklists.EXPECT().
		Create(gomock.Any(), "STK-001", "dealer-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.ChecklistPatch) (*domain.VehicleChecklist, error) {
			fields := patch.Fields()
			assert.Equal(t, "1", fields["number_of_keys"])
			assert.Equal(t, domain.ChecklistDefaultManual, fields["user_manual"])
			assert.Equal(t, domain.ChecklistDefaultService, fields["service_book"])
			assert.Equal(t, domain.ChecklistDefaultLockingNut, fields["wheel_locking_nut"])
			assert.Equal(t, domain.ChecklistDefaultCambelt, fields["cambelt_chain_confirmation"])

			meta, ok := fields["metadata"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "1", meta["number_of_keys"])
			return &domain.VehicleChecklist{ID: 1}, nil
		})

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
	assert.True(t, result.Success)
}

func TestInvoiceSyncService_Sync_ChecklistMetadataMergesOnUpdate(t *testing.T) {
	svc, m := newSyncService(t)

	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer = nil
		inv.Checklist = &domain.InvoiceChecklist{
			ServiceBook: helpers.StringPtr("Present"),
			Metadata:    map[string]any{"mot_expiry": "2026-03-01"},
		}
	})

	m.sales.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.sales.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.SaleDetails{ID: 1}, nil)

	m.checklists.EXPECT().
		GetByStockID(gomock.Any(), "STK-001", "dealer-1").
		Return(&domain.VehicleChecklist{
			ID:       3,
			StockID:  "STK-001",
			DealerID: "dealer-1",
			Metadata: map[string]any{"prep_notes": "valeted", "mot_expiry": "2025-01-01"},
		}, nil)
	m.checklists.EXPECT().
		Update(gomock.Any(), "STK-001", "dealer-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.ChecklistPatch) (*domain.VehicleChecklist, error) {
			meta, ok := patch.Fields()["metadata"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "valeted", meta["prep_notes"], "existing keys survive the merge")
			assert.Equal(t, "2026-03-01", meta["mot_expiry"], "staged keys win")
			assert.Equal(t, "Present", meta["service_book"])
			return &domain.VehicleChecklist{ID: 3}, nil
		})

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
	assert.True(t, result.Success)
}

func TestInvoiceSyncService_Sync_ChecklistFailureDoesNotUndoSale(t *testing.T) {
	svc, m := newSyncService(t)

	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer = nil
		inv.Checklist = &domain.InvoiceChecklist{
			NumberOfKeys: helpers.StringPtr("3"),
		}
	})

	m.sales.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.sales.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.SaleDetails{ID: 9}, nil)
	m.checklists.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.checklists.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("disk full"))

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)

	assert.False(t, result.Success)
	assert.Contains(t, result.Errors[0], "failed to save vehicle checklist")
	// The sale-details write already happened and stays reported.
	require.NotNil(t, result.SaleDetailsID)
	assert.EqualValues(t, 9, *result.SaleDetailsID)
}

func TestInvoiceSyncService_Sync_StatusFlagsDefaultFalse(t *testing.T) {
	svc, m := newSyncService(t)

	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer = nil
		inv.Status = &domain.InvoiceStatus{
			KeyHandedOver: helpers.BoolPtr(true),
		}
	})

	m.sales.EXPECT().
		GetByStockID(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	m.sales.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, patch *domain.SaleDetailsPatch) (*domain.SaleDetails, error) {
			assert.True(t, *patch.KeyHandedOver)
			assert.False(t, *patch.DocumentationComplete)
			assert.False(t, *patch.CustomerSatisfied)
			assert.False(t, *patch.VehicleTaxed)
			return &domain.SaleDetails{ID: 1}, nil
		})

	result := svc.Sync(context.Background(), "dealer-1", "STK-001", invoice)
	assert.True(t, result.Success)
}
