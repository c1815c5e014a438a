//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/suite"
	"github.com/tealeg/xlsx/v3"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/db"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/postcode"
	redis_a "github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/redis_adapter"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/services"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/handlers"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/test/helpers"
)

// DealerE2ESuite runs the full dealer workflow against a real HTTP server
// backed by a PostgreSQL container and miniredis.
type DealerE2ESuite struct {
	suite.Suite
	server      *httptest.Server
	postcodeAPI *httptest.Server
	client      *http.Client
	baseURL     string
	testDB      *helpers.TestDB
	testRedis   *helpers.TestRedis
}

func (s *DealerE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.postcodeAPI = s.startPostcodeStub()
	s.server = s.startTestServer()
	s.baseURL = s.server.URL + "/api/v1"
	s.client = &http.Client{Timeout: 30 * time.Second}
}

func (s *DealerE2ESuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.postcodeAPI != nil {
		s.postcodeAPI.Close()
	}
}

func (s *DealerE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.testRedis.Server.FlushAll()
}

func (s *DealerE2ESuite) TestInvoiceReconciliationWorkflow() {
	dealer := "/dealers/dealer-e2e"

	// Step 1: Create a stock item
	createReq := map[string]interface{}{
		"stock_id":        "STK-E2E-001",
		"registration":    "AB12CDE",
		"make":            "Volkswagen",
		"model":           "Golf",
		"derivative":      "GTI",
		"year":            2021,
		"mileage":         32000,
		"fuel_type":       "petrol",
		"lifecycle_state": "forecourt",
		"purchase_price":  "14500",
		"forecourt_price": "17995",
	}

	resp := s.makeRequest("POST", dealer+"/stock", createReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	s.decodeResponse(resp, &created)
	s.Equal("STK-E2E-001", created["stock_id"])
	s.Equal("dealer-e2e", created["dealer_id"])

	// Step 2: Retrieve it
	resp = s.makeRequest("GET", dealer+"/stock/STK-E2E-001", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var fetched map[string]interface{}
	s.decodeResponse(resp, &fetched)
	s.Equal("Volkswagen", fetched["make"])
	s.Equal("17995", fetched["forecourt_price"])

	// Step 3: Sync an invoice against the stock item
	invoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		truthy := true
		inv.Customer.Flags = &domain.InvoiceCustomerFlags{GDPRConsent: &truthy}
		keys := "1"
		manual := "Present"
		inv.Checklist = &domain.InvoiceChecklist{
			NumberOfKeys: &keys,
			UserManual:   &manual,
			Metadata:     map[string]any{"mot_expiry": "2026-03-01"},
		}
	})

	resp = s.makeRequest("POST", dealer+"/stock/STK-E2E-001/invoice-sync", invoice)
	s.Equal(http.StatusOK, resp.StatusCode)

	var syncResult map[string]interface{}
	s.decodeResponse(resp, &syncResult)
	s.Equal(true, syncResult["success"])
	s.Empty(syncResult["errors"])

	customerID, ok := syncResult["customer_id"].(string)
	s.True(ok, "sync result should carry the upserted customer id")
	s.NotEmpty(customerID)

	// Step 4: Verify the sale details record
	resp = s.makeRequest("GET", dealer+"/stock/STK-E2E-001/sale-details", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var saleDetails map[string]interface{}
	s.decodeResponse(resp, &saleDetails)
	s.Equal("STK-E2E-001", saleDetails["stock_id"])
	s.Equal(customerID, saleDetails["customer_id"])
	s.Equal("17995", saleDetails["sale_price"])
	s.Equal("1000", saleDetails["card_amount"])
	s.Equal("4995", saleDetails["bacs_amount"])
	s.Equal("12000", saleDetails["finance_amount"])
	s.Equal("INV-2025-001", saleDetails["invoice_number"])
	s.True(strings.HasPrefix(saleDetails["sale_date"].(string), "2025-06-14"))
	s.Equal(false, saleDetails["deposit_paid"])

	// Step 5: Verify the checklist record picked up staged values and
	// schema defaults for the rest
	resp = s.makeRequest("GET", dealer+"/stock/STK-E2E-001/checklist", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var checklist map[string]interface{}
	s.decodeResponse(resp, &checklist)
	s.Equal("1", checklist["number_of_keys"])
	s.Equal("Present", checklist["user_manual"])
	s.Equal("Not Present", checklist["service_book"])
	s.Equal("No", checklist["cambelt_chain_confirmation"])

	metadata, ok := checklist["metadata"].(map[string]interface{})
	s.True(ok)
	s.Equal("2026-03-01", metadata["mot_expiry"])

	// Step 6: A second sync with a deposit updates payments in place
	deposit := helpers.DecimalPtr(500)
	secondInvoice := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Payment.Breakdown.DepositAmount = deposit
		inv.Payment.Breakdown.CardPayments[0].Date = "2025-06-10"
	})

	resp = s.makeRequest("POST", dealer+"/stock/STK-E2E-001/invoice-sync", secondInvoice)
	s.Equal(http.StatusOK, resp.StatusCode)

	var secondResult map[string]interface{}
	s.decodeResponse(resp, &secondResult)
	s.Equal(true, secondResult["success"])

	resp = s.makeRequest("GET", dealer+"/stock/STK-E2E-001/sale-details", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &saleDetails)
	s.Equal("500", saleDetails["deposit_amount"])
	s.Equal(true, saleDetails["deposit_paid"])
	s.True(strings.HasPrefix(saleDetails["deposit_date"].(string), "2025-06-10"))

	// Step 7: Export the sales ledger as JSON
	resp = s.makeRequest("GET", dealer+"/export/json", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var export map[string]interface{}
	s.decodeResponse(resp, &export)
	metadataBlock := export["metadata"].(map[string]interface{})
	s.Equal("dealer-e2e", metadataBlock["dealer_id"])
	s.Equal(float64(1), metadataBlock["total_rows"])

	sales := export["sales"].([]interface{})
	s.Len(sales, 1)
	s.Equal("STK-E2E-001", sales[0].(map[string]interface{})["stock_id"])

	// Step 8: Export as Excel and re-open the workbook
	resp = s.makeRequest("GET", dealer+"/export/excel", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Disposition"), "sales_ledger_")

	excelBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.NoError(err)

	workbook, err := xlsx.OpenBinary(excelBody)
	s.NoError(err)
	sheet, ok := workbook.Sheet["Sales Ledger"]
	s.True(ok)
	s.Equal(2, sheet.MaxRow)

	// Step 9: Delete the stock item; records disappear from the API
	resp = s.makeRequest("DELETE", dealer+"/stock/STK-E2E-001", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", dealer+"/stock/STK-E2E-001", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *DealerE2ESuite) TestCustomerDedupeAcrossSyncs() {
	dealer := "/dealers/dealer-e2e"

	for _, stockID := range []string{"STK-DUP-001", "STK-DUP-002"} {
		resp := s.makeRequest("POST", dealer+"/stock", map[string]interface{}{
			"stock_id":       stockID,
			"make":           "Ford",
			"model":          "Fiesta",
			"purchase_price": "8000",
		})
		s.Equal(http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// Same customer email, different casing, across two invoices
	first := helpers.CreateTestInvoice()
	second := helpers.CreateTestInvoice(func(inv *domain.Invoice) {
		inv.Customer.Email = helpers.StringPtr("JANE.SMITH@example.com")
		inv.Customer.Phone = helpers.StringPtr("07700999999")
	})

	var firstResult, secondResult map[string]interface{}

	resp := s.makeRequest("POST", dealer+"/stock/STK-DUP-001/invoice-sync", first)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &firstResult)

	resp = s.makeRequest("POST", dealer+"/stock/STK-DUP-002/invoice-sync", second)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &secondResult)

	s.Equal(firstResult["customer_id"], secondResult["customer_id"])
}

func (s *DealerE2ESuite) TestVehicleFinderStockIsSkipped() {
	dealer := "/dealers/dealer-e2e"

	invoice := helpers.CreateTestInvoice()
	resp := s.makeRequest("POST", dealer+"/stock/vehicle-finder-abc123/invoice-sync", invoice)
	s.Equal(http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	s.decodeResponse(resp, &result)
	s.Equal(true, result["success"])
	s.NotEmpty(result["warnings"])

	// No sale details row was written for the sentinel id
	resp = s.makeRequest("GET", dealer+"/stock/vehicle-finder-abc123/sale-details", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *DealerE2ESuite) TestSearchFunctionality() {
	dealer := "/dealers/dealer-e2e"

	testItems := []map[string]interface{}{
		{
			"stock_id":       "SEARCH-001",
			"make":           "Volkswagen",
			"model":          "Golf",
			"derivative":     "GTI",
			"purchase_price": "14500",
		},
		{
			"stock_id":       "SEARCH-002",
			"make":           "Volkswagen",
			"model":          "Polo",
			"purchase_price": "9000",
		},
		{
			"stock_id":       "SEARCH-003",
			"make":           "Ford",
			"model":          "Focus",
			"purchase_price": "11000",
		},
	}

	for _, item := range testItems {
		resp := s.makeRequest("POST", dealer+"/stock", item)
		s.Equal(http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := s.makeRequest("GET", dealer+"/stock?search=volkswagen", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var searchResults map[string]interface{}
	s.decodeResponse(resp, &searchResults)
	s.Equal(float64(2), searchResults["total_count"])

	resp = s.makeRequest("GET", dealer+"/stock?make=Ford", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &searchResults)
	s.Equal(float64(1), searchResults["total_count"])
}

func (s *DealerE2ESuite) TestConcurrentStockCreation() {
	dealer := "/dealers/dealer-e2e"
	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func(idx int) {
			defer func() { done <- true }()

			resp := s.makeRequest("POST", dealer+"/stock", map[string]interface{}{
				"stock_id":       fmt.Sprintf("CONCURRENT-%03d", idx),
				"make":           "Ford",
				"model":          "Fiesta",
				"purchase_price": "8000",
			})
			s.Equal(http.StatusCreated, resp.StatusCode)
			resp.Body.Close()
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	resp := s.makeRequest("GET", dealer+"/stock?limit=100", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var listResponse map[string]interface{}
	s.decodeResponse(resp, &listResponse)
	s.Equal(float64(10), listResponse["total_count"])
}

func (s *DealerE2ESuite) TestHealthCheck() {
	resp, err := s.client.Get(s.server.URL + "/health")
	s.NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	s.decodeResponse(resp, &health)
	s.Equal("healthy", health["status"])

	servicesBlock := health["services"].(map[string]interface{})
	s.Contains(servicesBlock, "database")
	s.Contains(servicesBlock, "redis")
}

// Helper methods

func (s *DealerE2ESuite) startTestServer() *httptest.Server {
	logger := helpers.TestLogger()
	cfg := helpers.LoadTestConfig()

	cache := redis_a.NewCache(s.testRedis.Client, time.Hour, logger)

	stockRepo := db.NewStockRepository(s.testDB.Database, logger)
	customerRepo := db.NewCustomerRepository(s.testDB.Database, logger)
	saleDetailsRepo := db.NewSaleDetailsRepository(s.testDB.Database, logger)
	checklistRepo := db.NewChecklistRepository(s.testDB.Database, logger)

	postcodeClient := postcode.NewClient(s.postcodeAPI.URL, 5*time.Second, cache, logger)

	stockService := services.NewStockService(stockRepo, s.testDB.PgxPool, logger)
	syncService := services.NewInvoiceSyncService(customerRepo, saleDetailsRepo, checklistRepo, postcodeClient, logger)

	asynqInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: s.testRedis.Server.Addr()})

	stockHandler := handlers.NewStockHandler(stockService, logger)
	syncHandler := handlers.NewSyncHandler(syncService, saleDetailsRepo, checklistRepo, logger)
	healthHandler := handlers.NewHealthHandler(s.testDB.Database, s.testRedis.Client, asynqInspector, cfg, logger)
	exportHandler := handlers.NewExportHandler(s.testDB.Database, cache, logger)

	mux := http.NewServeMux()
	dealer := "/api/v1/dealers/{dealerId}"

	mux.HandleFunc("GET /health", healthHandler.Health)

	mux.HandleFunc("GET "+dealer+"/stock", stockHandler.ListStock)
	mux.HandleFunc("POST "+dealer+"/stock", stockHandler.CreateStock)
	mux.HandleFunc("GET "+dealer+"/stock/{stockId}", stockHandler.GetStock)
	mux.HandleFunc("PUT "+dealer+"/stock/{stockId}", stockHandler.UpdateStock)
	mux.HandleFunc("DELETE "+dealer+"/stock/{stockId}", stockHandler.DeleteStock)

	mux.HandleFunc("POST "+dealer+"/stock/{stockId}/invoice-sync", syncHandler.SyncInvoice)
	mux.HandleFunc("GET "+dealer+"/stock/{stockId}/sale-details", syncHandler.GetSaleDetails)
	mux.HandleFunc("GET "+dealer+"/stock/{stockId}/checklist", syncHandler.GetChecklist)

	mux.HandleFunc("GET "+dealer+"/export/excel", exportHandler.ExportExcel)
	mux.HandleFunc("GET "+dealer+"/export/json", exportHandler.ExportJSON)

	return httptest.NewServer(mux)
}

// startPostcodeStub serves postcodes.io-shaped responses so customer
// enrichment works without network access.
func (s *DealerE2ESuite) startPostcodeStub() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/postcodes/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": 200,
			"result": map[string]interface{}{
				"post_town":    "London",
				"admin_county": "Greater London",
				"region":       "London",
			},
		})
	}))
}

func (s *DealerE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

func (s *DealerE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func TestDealerE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e tests in short mode")
	}
	suite.Run(t, new(DealerE2ESuite))
}
