package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"
)

// Seeder for bulk-loading dealer stock feeds. Each .xlsx file in the feeds
// directory is named after the dealer it belongs to (<dealerID>.xlsx) and
// uses the standard feed column layout:
// stock_id, registration, vin, make, model, derivative, year, mileage,
// colour, fuel_type, purchase_price, forecourt_price, notes.

// StockRow is one row of a dealer feed
type StockRow struct {
	StockID        string
	DealerID       string
	Registration   string
	VIN            string
	Make           string
	Model          string
	Derivative     string
	Year           int
	Mileage        int
	Colour         string
	FuelType       string
	PurchasePrice  decimal.Decimal
	ForecourtPrice decimal.Decimal
	Notes          string
}

// FeedLoader parses feed spreadsheets and writes their rows to the database
type FeedLoader struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewFeedLoader(db *pgxpool.Pool, logger *slog.Logger) *FeedLoader {
	return &FeedLoader{db: db, logger: logger}
}

// LoadFeed parses a single dealer feed file
func (l *FeedLoader) LoadFeed(path, dealerID string) ([]StockRow, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed file: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in feed file")
	}
	sheet := file.Sheets[0]

	var rows []StockRow
	rowIdx := 0
	skipped := 0

	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		// Skip header
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}

		getInt := func(i int) int {
			n, _ := strconv.Atoi(strings.ReplaceAll(get(i), ",", ""))
			return n
		}

		getDecimal := func(i int) decimal.Decimal {
			s := strings.TrimPrefix(get(i), "£")
			d, _ := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
			return d
		}

		row := StockRow{
			StockID:        get(0),
			DealerID:       dealerID,
			Registration:   strings.ToUpper(get(1)),
			VIN:            strings.ToUpper(get(2)),
			Make:           get(3),
			Model:          get(4),
			Derivative:     get(5),
			Year:           getInt(6),
			Mileage:        getInt(7),
			Colour:         get(8),
			FuelType:       normalizeFuelType(get(9)),
			PurchasePrice:  getDecimal(10),
			ForecourtPrice: getDecimal(11),
			Notes:          get(12),
		}

		if row.StockID == "" || row.Make == "" || row.Model == "" {
			skipped++
			return nil
		}
		if strings.HasPrefix(row.StockID, "vehicle-finder-") {
			skipped++
			return nil
		}

		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	l.logger.Info("feed parsed",
		slog.String("dealer_id", dealerID),
		slog.Int("rows", len(rows)),
		slog.Int("skipped", skipped))
	return rows, nil
}

// SaveRows upserts stock rows in a single transaction
func (l *FeedLoader) SaveRows(ctx context.Context, rows []StockRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO stock (
				stock_id, dealer_id, registration, vin, make, model, derivative,
				year, mileage, colour, fuel_type, lifecycle_state,
				purchase_price, forecourt_price, total_cost, notes
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'forecourt', $12, $13, $12, $14
			) ON CONFLICT (stock_id, dealer_id) DO UPDATE SET
				registration = EXCLUDED.registration,
				vin = EXCLUDED.vin,
				make = EXCLUDED.make,
				model = EXCLUDED.model,
				derivative = EXCLUDED.derivative,
				year = EXCLUDED.year,
				mileage = EXCLUDED.mileage,
				colour = EXCLUDED.colour,
				fuel_type = EXCLUDED.fuel_type,
				purchase_price = EXCLUDED.purchase_price,
				forecourt_price = EXCLUDED.forecourt_price,
				notes = EXCLUDED.notes,
				updated_at = CURRENT_TIMESTAMP`,
			row.StockID, row.DealerID, row.Registration, row.VIN, row.Make,
			row.Model, row.Derivative, row.Year, row.Mileage, row.Colour,
			row.FuelType, row.PurchasePrice, row.ForecourtPrice, row.Notes,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	l.logger.Info("rows saved", slog.Int("count", len(rows)))
	return nil
}

func normalizeFuelType(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "petrol", "gasoline":
		return "petrol"
	case "diesel":
		return "diesel"
	case "hybrid", "phev", "mhev":
		return "hybrid"
	case "electric", "ev", "bev":
		return "electric"
	default:
		return "other"
	}
}

// SeederState tracks which feed files have been loaded
type SeederState struct {
	ProcessedFeeds []string  `json:"processed_feeds"`
	ProcessedCount int       `json:"processed_count"`
	LastUpdate     time.Time `json:"last_update"`
}

func (s *SeederState) has(name string) bool {
	for _, f := range s.ProcessedFeeds {
		if f == name {
			return true
		}
	}
	return false
}

func main() {
	var (
		feedsDir  = flag.String("feeds", "./feeds", "Directory containing dealer feed spreadsheets")
		stateFile = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun    = flag.Bool("dry-run", false, "Preview changes without modifying database")
		force     = flag.Bool("force", false, "Reprocess all feeds")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "mydv"),
		getEnv("DB_PASSWORD", "mydv_dev_2025"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "mydv_dealers"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	var db *pgxpool.Pool
	var err error

	if !*dryRun {
		db, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
	}

	loader := NewFeedLoader(db, logger)

	var state SeederState
	if !*force {
		if stateData, err := os.ReadFile(*stateFile); err == nil {
			json.Unmarshal(stateData, &state)
		}
	}

	feedFiles, err := filepath.Glob(filepath.Join(*feedsDir, "*.xlsx"))
	if err != nil {
		logger.Error("failed to find feed files", slog.String("error", err.Error()))
		os.Exit(1)
	}

	totalFeeds := 0
	totalRows := 0
	var failedFeeds []string

	for i, feedFile := range feedFiles {
		dealerID := strings.TrimSuffix(filepath.Base(feedFile), ".xlsx")

		fmt.Printf("PROGRESS: Processing %d/%d: %s\n", i+1, len(feedFiles), dealerID)

		if !*force && state.has(dealerID) {
			logger.Info("skipping already loaded feed", slog.String("dealer_id", dealerID))
			continue
		}

		rows, err := loader.LoadFeed(feedFile, dealerID)
		if err != nil {
			logger.Error("failed to parse feed",
				slog.String("dealer_id", dealerID),
				slog.String("error", err.Error()))
			failedFeeds = append(failedFeeds, dealerID)
			continue
		}

		if len(rows) == 0 {
			logger.Warn("no rows in feed", slog.String("dealer_id", dealerID))
			failedFeeds = append(failedFeeds, fmt.Sprintf("%s (0 rows)", dealerID))
			continue
		}

		if !*dryRun {
			if err := loader.SaveRows(ctx, rows); err != nil {
				logger.Error("failed to save feed",
					slog.String("dealer_id", dealerID),
					slog.String("error", err.Error()))
				failedFeeds = append(failedFeeds, dealerID)
				continue
			}
		}

		fmt.Printf("SUCCESS: Loaded dealer:%s - %d rows\n", dealerID, len(rows))
		totalFeeds++
		totalRows += len(rows)

		state.ProcessedFeeds = append(state.ProcessedFeeds, dealerID)
		state.ProcessedCount = len(state.ProcessedFeeds)
		state.LastUpdate = time.Now()

		if !*dryRun && i%10 == 0 {
			stateData, _ := json.MarshalIndent(state, "", "  ")
			os.WriteFile(*stateFile, stateData, 0644)
		}
	}

	if !*dryRun {
		stateData, _ := json.MarshalIndent(state, "", "  ")
		os.WriteFile(*stateFile, stateData, 0644)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Feeds loaded: %d\n", totalFeeds)
	fmt.Printf("Stock rows written: %d\n", totalRows)

	if len(failedFeeds) > 0 {
		fmt.Printf("\nFailed/empty feeds (%d):\n", len(failedFeeds))
		for _, f := range failedFeeds {
			fmt.Printf("  - %s\n", f)
		}
	}

	logger.Info("seed operation completed",
		slog.Int("feeds_loaded", totalFeeds),
		slog.Int("rows_written", totalRows),
		slog.Int("failed_feeds", len(failedFeeds)))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
