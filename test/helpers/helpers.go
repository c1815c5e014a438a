// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/db"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_dealers",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_dealers",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		StatementCacheMode: "describe",
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../migrations",
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_dealers",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		FileProcessing: config.FileProcessingConfig{
			PDFMaxSizeMB:      50,
			ExcelMaxSizeMB:    100,
			ProcessingTimeout: 5 * time.Minute,
			TempDir:           "/tmp",
		},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret",
			JWTExpiration:     24 * time.Hour,
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestStockItem creates a test stock item
func CreateTestStockItem(overrides ...func(*domain.StockItem)) *domain.StockItem {
	item := &domain.StockItem{
		StockID:        "STK-001",
		DealerID:       "dealer-1",
		Registration:   "AB12CDE",
		VIN:            "WVWZZZ1KZAW000001",
		Make:           "Volkswagen",
		Model:          "Golf",
		Derivative:     "GTI 2.0 TSI",
		Year:           2021,
		Mileage:        24000,
		Colour:         "Tornado Red",
		FuelType:       domain.FuelPetrol,
		Lifecycle:      domain.StateForecourt,
		PurchasePrice:  decimal.NewFromFloat(14500.00),
		ForecourtPrice: decimal.NewFromFloat(17995.00),
		TotalCost:      decimal.NewFromFloat(14500.00),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// CreateTestStockItems creates multiple test stock items
func CreateTestStockItems(count int) []domain.StockItem {
	makes := []struct {
		make  string
		model string
	}{
		{"Volkswagen", "Golf"},
		{"Ford", "Fiesta"},
		{"BMW", "320d"},
		{"Toyota", "Yaris"},
		{"Audi", "A3"},
	}

	fuels := []domain.FuelType{
		domain.FuelPetrol,
		domain.FuelDiesel,
		domain.FuelHybrid,
		domain.FuelElectric,
	}

	items := make([]domain.StockItem, count)
	for i := 0; i < count; i++ {
		items[i] = *CreateTestStockItem(func(item *domain.StockItem) {
			item.StockID = fmt.Sprintf("STK-%03d", i+1)
			item.Make = makes[i%len(makes)].make
			item.Model = makes[i%len(makes)].model
			item.FuelType = fuels[i%len(fuels)]
			item.Year = 2018 + i%6
			item.PurchasePrice = decimal.NewFromFloat(float64(8000 + i*500))
			item.ForecourtPrice = decimal.NewFromFloat(float64(10000 + i*500))
			item.TotalCost = item.PurchasePrice
		})
	}

	return items
}

// CreateTestInvoice creates a fully populated invoice for sync tests.
// The figures are internally consistent: 17995 sale price paid as
// 1000 deposit (card), 4995 BACS and 12000 finance.
func CreateTestInvoice(overrides ...func(*domain.Invoice)) *domain.Invoice {
	invoice := &domain.Invoice{
		InvoiceNumber: "INV-2025-001",
		InvoiceDate:   StringPtr("2025-06-15"),
		Customer: &domain.InvoiceCustomer{
			FirstName:    "Jane",
			LastName:     "Smith",
			Email:        StringPtr("jane.smith@example.com"),
			Phone:        StringPtr("07700900123"),
			AddressLine1: StringPtr("10 High Street"),
			Postcode:     StringPtr("SW1A 1AA"),
		},
		Sale: &domain.InvoiceSale{
			SaleDate:  StringPtr("2025-06-14"),
			SalePrice: DecimalPtr(17995),
		},
		Payment: &domain.InvoicePayment{
			Breakdown: &domain.PaymentBreakdown{
				CardPayments: []domain.PaymentEntry{
					{Amount: decimal.NewFromInt(1000), Date: "2025-06-10"},
				},
				BacsPayments: []domain.PaymentEntry{
					{Amount: decimal.NewFromInt(4995), Date: "2025-06-14"},
				},
				FinanceAmount: DecimalPtr(12000),
			},
		},
	}

	for _, override := range overrides {
		override(invoice)
	}

	return invoice
}

// CompareStockItems compares the identity and money fields of two stock items
func CompareStockItems(t *testing.T, expected, actual *domain.StockItem) {
	t.Helper()

	require.Equal(t, expected.StockID, actual.StockID)
	require.Equal(t, expected.DealerID, actual.DealerID)
	require.Equal(t, expected.Registration, actual.Registration)
	require.Equal(t, expected.Make, actual.Make)
	require.Equal(t, expected.Model, actual.Model)
	require.Equal(t, expected.FuelType, actual.FuelType)
	require.Equal(t, expected.Lifecycle, actual.Lifecycle)
	require.True(t, expected.PurchasePrice.Equal(actual.PurchasePrice))
	require.True(t, expected.ForecourtPrice.Equal(actual.ForecourtPrice))
	require.True(t, expected.TotalCost.Equal(actual.TotalCost))
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool { return &b }

// DecimalPtr returns a pointer to a decimal built from v
func DecimalPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// UUIDPtr returns a pointer to id
func UUIDPtr(id uuid.UUID) *uuid.UUID { return &id }

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"async_jobs",
		"vehicle_checklists",
		"sale_details",
		"customers",
		"stock",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// SeedTestStock seeds the database with stock rows
func SeedTestStock(t *testing.T, db *pgxpool.Pool, items []domain.StockItem) {
	t.Helper()

	ctx := context.Background()

	for _, item := range items {
		query := `
			INSERT INTO stock (
				stock_id, dealer_id, registration, vin, make, model,
				derivative, year, mileage, colour, fuel_type, lifecycle_state,
				purchase_price, forecourt_price, total_cost, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		`

		_, err := db.Exec(ctx, query,
			item.StockID, item.DealerID, item.Registration, item.VIN, item.Make, item.Model,
			item.Derivative, item.Year, item.Mileage, item.Colour, item.FuelType, item.Lifecycle,
			item.PurchasePrice, item.ForecourtPrice, item.TotalCost, item.CreatedAt, item.UpdatedAt,
		)
		require.NoError(t, err, "Failed to seed test stock")
	}
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}
