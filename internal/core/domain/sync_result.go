// internal/core/domain/sync_result.go
package domain

import "github.com/google/uuid"

// SyncResult reports the outcome of one invoice reconciliation run. It is
// returned to the caller and never persisted. Success is strictly "no
// errors"; warnings record skipped or best-effort steps and never flip it.
type SyncResult struct {
	Success       bool       `json:"success"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	SaleDetailsID *int64     `json:"sale_details_id,omitempty"`
	Errors        []string   `json:"errors"`
	Warnings      []string   `json:"warnings"`
}

// NewSyncResult returns an empty result with non-nil slices so JSON output
// always carries arrays.
func NewSyncResult() *SyncResult {
	return &SyncResult{
		Errors:   []string{},
		Warnings: []string{},
	}
}

// AddError appends to the ordered error list.
func (r *SyncResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddWarning appends to the ordered warning list.
func (r *SyncResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Finalize derives the success flag from the error list.
func (r *SyncResult) Finalize() {
	r.Success = len(r.Errors) == 0
}
