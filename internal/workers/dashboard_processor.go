// internal/workers/dashboard_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	redis_a "github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/redis_adapter"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// DashboardProcessor handles scheduled dashboard refresh tasks
type DashboardProcessor struct {
	db     ports.Database
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewDashboardProcessor creates a new dashboard processor
func NewDashboardProcessor(db ports.Database, cache ports.CacheRepository, logger *slog.Logger) *DashboardProcessor {
	return &DashboardProcessor{
		db:     db,
		cache:  cache,
		logger: logger.With(slog.String("processor", "dashboard")),
	}
}

// RefreshDashboards rebuilds the sales ledger view and drops cached
// dashboard payloads so the next request recomputes them.
func (p *DashboardProcessor) RefreshDashboards(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "refreshing dealer dashboards")

	query := `REFRESH MATERIALIZED VIEW CONCURRENTLY sales_ledger_mat`

	if _, err := p.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to refresh sales ledger view: %w", err)
	}

	// A task enqueued for a single dealer carries its id; the scheduled
	// task has an empty payload and flushes every dealer.
	var payload struct {
		DealerID string `json:"dealer_id"`
	}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	pattern := fmt.Sprintf("%s:*", redis_a.PrefixDashboard)
	if payload.DealerID != "" {
		pattern = fmt.Sprintf("%s:%s:*", redis_a.PrefixDashboard, payload.DealerID)
	}

	if err := p.cache.DeletePattern(ctx, pattern); err != nil {
		p.logger.WarnContext(ctx, "failed to invalidate dashboard cache",
			slog.String("pattern", pattern),
			slog.String("error", err.Error()))
	}

	p.logger.InfoContext(ctx, "dealer dashboards refreshed",
		slog.String("dealer_id", payload.DealerID))
	return nil
}
