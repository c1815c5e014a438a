// internal/core/ports/customer_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
)

// CustomerRepository is the CRM port. AutoCreate owns the match/dedupe
// logic: it returns the id of an existing customer for the dealer when one
// matches the lead, otherwise it inserts and returns the new id. A nil id
// with a nil error means the CRM could not produce a customer.
type CustomerRepository interface {
	AutoCreate(ctx context.Context, dealerID string, lead domain.CustomerLead) (*uuid.UUID, error)
	Update(ctx context.Context, customerID uuid.UUID, patch *domain.CustomerPatch) error
	FindByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error)
}
