// internal/core/ports/invoice_sync.go
package ports

import (
	"context"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
)

// InvoiceSyncService reconciles a finalized invoice into the CRM, sales and
// checklist stores. Sync never returns an error: every collaborator failure
// is folded into the result's error or warning lists and the three writes
// are best-effort, not transactional.
type InvoiceSyncService interface {
	Sync(ctx context.Context, dealerID, stockID string, invoice *domain.Invoice) *domain.SyncResult
}
