//go:build integration
// +build integration

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/db"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/test/helpers"
)

// SyncRepositoriesSuite exercises the three repositories the invoice sync
// writes through: customers, sale details and vehicle checklists.
type SyncRepositoriesSuite struct {
	suite.Suite
	testDB     *helpers.TestDB
	customers  ports.CustomerRepository
	sales      ports.SaleDetailsRepository
	checklists ports.ChecklistRepository
	ctx        context.Context
}

func (s *SyncRepositoriesSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	logger := helpers.TestLogger()
	s.customers = db.NewCustomerRepository(s.testDB.Database, logger)
	s.sales = db.NewSaleDetailsRepository(s.testDB.Database, logger)
	s.checklists = db.NewChecklistRepository(s.testDB.Database, logger)
	s.ctx = context.Background()
}

func (s *SyncRepositoriesSuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *SyncRepositoriesSuite) lead() domain.CustomerLead {
	return domain.CustomerLead{
		FirstName:    "Jane",
		LastName:     "Smith",
		Email:        "jane.smith@example.com",
		Phone:        "07700900123",
		AddressLine1: "10 High Street",
		Postcode:     "SW1A 1AA",
	}
}

func (s *SyncRepositoriesSuite) TestAutoCreate_InsertsNewCustomer() {
	id, err := s.customers.AutoCreate(s.ctx, "dealer-1", s.lead())
	s.NoError(err)
	s.Require().NotNil(id)

	customer, err := s.customers.FindByID(s.ctx, *id)
	s.NoError(err)
	s.Require().NotNil(customer)
	s.Equal("Jane", customer.FirstName)
	s.Equal("Smith", customer.LastName)
	s.Equal("jane.smith@example.com", customer.Email)
	s.Equal("dealer-1", customer.DealerID)
}

func (s *SyncRepositoriesSuite) TestAutoCreate_DedupesByEmail() {
	first, err := s.customers.AutoCreate(s.ctx, "dealer-1", s.lead())
	s.NoError(err)
	s.Require().NotNil(first)

	// Same email, different casing and phone: must resolve to the same row
	repeat := s.lead()
	repeat.Email = "Jane.Smith@Example.com"
	repeat.Phone = "07700900999"

	second, err := s.customers.AutoCreate(s.ctx, "dealer-1", repeat)
	s.NoError(err)
	s.Require().NotNil(second)
	s.Equal(*first, *second)
}

func (s *SyncRepositoriesSuite) TestAutoCreate_DedupesByNameAndPhone() {
	lead := s.lead()
	lead.Email = ""

	first, err := s.customers.AutoCreate(s.ctx, "dealer-1", lead)
	s.NoError(err)
	s.Require().NotNil(first)

	repeat := lead
	repeat.FirstName = "JANE"
	repeat.LastName = "smith"

	second, err := s.customers.AutoCreate(s.ctx, "dealer-1", repeat)
	s.NoError(err)
	s.Require().NotNil(second)
	s.Equal(*first, *second)
}

func (s *SyncRepositoriesSuite) TestAutoCreate_IsolatedPerDealer() {
	first, err := s.customers.AutoCreate(s.ctx, "dealer-1", s.lead())
	s.NoError(err)

	second, err := s.customers.AutoCreate(s.ctx, "dealer-2", s.lead())
	s.NoError(err)

	s.NotEqual(*first, *second)
}

func (s *SyncRepositoriesSuite) TestCustomerUpdate_AppliesStagedFields() {
	id, err := s.customers.AutoCreate(s.ctx, "dealer-1", s.lead())
	s.NoError(err)
	s.Require().NotNil(id)

	patch := domain.NewCustomerPatch(time.Now())
	patch.SetCity("London")
	patch.SetCounty("Greater London")
	patch.GrantGDPRConsent()

	err = s.customers.Update(s.ctx, *id, patch)
	s.NoError(err)

	customer, err := s.customers.FindByID(s.ctx, *id)
	s.NoError(err)
	s.Require().NotNil(customer)
	s.Equal("London", customer.City)
	s.Equal("Greater London", customer.County)
	s.True(customer.GDPRConsent)
	// Fields outside the patch stay put
	s.Equal("jane.smith@example.com", customer.Email)
	s.False(customer.MarketingConsent)
}

func (s *SyncRepositoriesSuite) TestCustomerUpdate_EmptyPatchIsNoOp() {
	id, err := s.customers.AutoCreate(s.ctx, "dealer-1", s.lead())
	s.NoError(err)
	s.Require().NotNil(id)

	before, err := s.customers.FindByID(s.ctx, *id)
	s.NoError(err)

	err = s.customers.Update(s.ctx, *id, domain.NewCustomerPatch(time.Now()))
	s.NoError(err)

	after, err := s.customers.FindByID(s.ctx, *id)
	s.NoError(err)
	s.Equal(before.UpdatedAt, after.UpdatedAt)
}

func (s *SyncRepositoriesSuite) TestSaleDetails_RoundTrip() {
	existing, err := s.sales.GetByStockID(s.ctx, "STK-001", "dealer-1")
	s.NoError(err)
	s.Nil(existing)

	saleDate := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	depositDate := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	salePrice := decimal.NewFromInt(17995)
	cardAmount := decimal.NewFromInt(1000)
	scheme := domain.VATSchemeIncludes
	depositPaid := true
	invoiceNumber := "INV-2025-001"

	created, err := s.sales.Create(s.ctx, "STK-001", "dealer-1", &domain.SaleDetailsPatch{
		SaleDate:      &saleDate,
		SalePrice:     &salePrice,
		VATScheme:     &scheme,
		CardAmount:    &cardAmount,
		DepositDate:   &depositDate,
		DepositPaid:   &depositPaid,
		InvoiceNumber: &invoiceNumber,
		UpdatedAt:     time.Now(),
	})
	s.NoError(err)
	s.Require().NotNil(created)
	s.NotZero(created.ID)
	s.True(salePrice.Equal(created.SalePrice))
	s.Require().NotNil(created.VATScheme)
	s.Equal(domain.VATSchemeIncludes, *created.VATScheme)
	s.True(created.DepositPaid)
	s.Equal("INV-2025-001", created.InvoiceNumber)
	// Columns outside the patch fall back to schema defaults
	s.True(created.CashAmount.IsZero())
	s.False(created.KeyHandedOver)

	loaded, err := s.sales.GetByStockID(s.ctx, "STK-001", "dealer-1")
	s.NoError(err)
	s.Require().NotNil(loaded)
	s.Equal(created.ID, loaded.ID)
	s.Require().NotNil(loaded.DepositDate)
	s.True(loaded.DepositDate.Equal(depositDate))
}

func (s *SyncRepositoriesSuite) TestSaleDetails_PartialUpdatePreservesColumns() {
	saleDate := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	salePrice := decimal.NewFromInt(17995)
	warrantyLevel := "3 Months"

	created, err := s.sales.Create(s.ctx, "STK-001", "dealer-1", &domain.SaleDetailsPatch{
		SaleDate:      &saleDate,
		SalePrice:     &salePrice,
		WarrantyLevel: &warrantyLevel,
		UpdatedAt:     time.Now(),
	})
	s.NoError(err)

	newPrice := decimal.NewFromInt(17495)
	updated, err := s.sales.Update(s.ctx, "STK-001", "dealer-1", &domain.SaleDetailsPatch{
		SalePrice: &newPrice,
		UpdatedAt: time.Now(),
	})
	s.NoError(err)
	s.Require().NotNil(updated)
	s.Equal(created.ID, updated.ID)
	s.True(newPrice.Equal(updated.SalePrice))
	// Untouched columns survive the partial update
	s.Equal("3 Months", updated.WarrantyLevel)
	s.True(updated.SaleDate.Equal(saleDate))
}

func (s *SyncRepositoriesSuite) TestSaleDetails_UpdateMissingRow() {
	price := decimal.NewFromInt(100)
	_, err := s.sales.Update(s.ctx, "STK-NOPE", "dealer-1", &domain.SaleDetailsPatch{
		SalePrice: &price,
		UpdatedAt: time.Now(),
	})
	s.Error(err)
	s.Contains(err.Error(), "sale details not found")
}

func (s *SyncRepositoriesSuite) TestChecklist_RoundTrip() {
	keys := "1"
	manual := "Present"

	created, err := s.checklists.Create(s.ctx, "STK-001", "dealer-1", &domain.ChecklistPatch{
		NumberOfKeys: &keys,
		UserManual:   &manual,
		Metadata: map[string]any{
			"mot_expiry": "2026-03-01",
			"prep_notes": "valet booked",
		},
		UpdatedAt: time.Now(),
	})
	s.NoError(err)
	s.Require().NotNil(created)
	s.Equal("1", created.NumberOfKeys)
	s.Equal("Present", created.UserManual)
	// Unstaged fields take the schema defaults
	s.Equal(domain.ChecklistDefaultService, created.ServiceBook)
	s.Equal(domain.ChecklistDefaultCambelt, created.CambeltChainConfirmation)
	s.Equal("2026-03-01", created.Metadata["mot_expiry"])

	loaded, err := s.checklists.GetByStockID(s.ctx, "STK-001", "dealer-1")
	s.NoError(err)
	s.Require().NotNil(loaded)
	s.Equal(created.ID, loaded.ID)
	s.Equal("valet booked", loaded.Metadata["prep_notes"])
}

func (s *SyncRepositoriesSuite) TestChecklist_UpdatePreservesUnstagedFields() {
	keys := "1"
	_, err := s.checklists.Create(s.ctx, "STK-001", "dealer-1", &domain.ChecklistPatch{
		NumberOfKeys: &keys,
		UpdatedAt:    time.Now(),
	})
	s.NoError(err)

	manual := "Digital"
	updated, err := s.checklists.Update(s.ctx, "STK-001", "dealer-1", &domain.ChecklistPatch{
		UserManual: &manual,
		UpdatedAt:  time.Now(),
	})
	s.NoError(err)
	s.Require().NotNil(updated)
	s.Equal("Digital", updated.UserManual)
	s.Equal("1", updated.NumberOfKeys)
}

func (s *SyncRepositoriesSuite) TestChecklist_MissingRow() {
	loaded, err := s.checklists.GetByStockID(s.ctx, "STK-NOPE", "dealer-1")
	s.NoError(err)
	s.Nil(loaded)

	manual := "Present"
	_, err = s.checklists.Update(s.ctx, "STK-NOPE", "dealer-1", &domain.ChecklistPatch{
		UserManual: &manual,
		UpdatedAt:  time.Now(),
	})
	s.Error(err)
	s.Contains(err.Error(), "vehicle checklist not found")
}

func TestSyncRepositoriesSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(SyncRepositoriesSuite))
}
