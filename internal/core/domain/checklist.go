// internal/core/domain/checklist.go
package domain

import "time"

// Checklist fallback values applied when the invoice leaves a field blank.
const (
	ChecklistDefaultKeys       = "2"
	ChecklistDefaultManual     = "Not Present"
	ChecklistDefaultService    = "Not Present"
	ChecklistDefaultLockingNut = "Not Present"
	ChecklistDefaultCambelt    = "No"
)

// VehicleChecklist records the handover condition of a stock item.
// One row per (StockID, DealerID), same upsert discipline as SaleDetails.
type VehicleChecklist struct {
	ID       int64  `json:"id"`
	StockID  string `json:"stock_id"`
	DealerID string `json:"dealer_id"`

	NumberOfKeys             string `json:"number_of_keys"`
	UserManual               string `json:"user_manual"`
	ServiceBook              string `json:"service_book"`
	WheelLockingNut          string `json:"wheel_locking_nut"`
	CambeltChainConfirmation string `json:"cambelt_chain_confirmation"`

	Metadata             map[string]any `json:"metadata,omitempty"`
	CompletionPercentage string         `json:"completion_percentage,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChecklistPatch stages a checklist upsert. Checklist fields carry their
// fallback defaults, so staging is explicit: only fields the caller sets
// appear in Fields(). Metadata is merged, never replaced wholesale.
type ChecklistPatch struct {
	NumberOfKeys             *string
	UserManual               *string
	ServiceBook              *string
	WheelLockingNut          *string
	CambeltChainConfirmation *string
	CompletionPercentage     *string

	Metadata map[string]any

	UpdatedAt time.Time
}

// Fields returns the staged columns. Metadata is included only when at
// least one key is staged.
func (p *ChecklistPatch) Fields() map[string]any {
	fields := map[string]any{"updated_at": p.UpdatedAt}
	if p.NumberOfKeys != nil {
		fields["number_of_keys"] = *p.NumberOfKeys
	}
	if p.UserManual != nil {
		fields["user_manual"] = *p.UserManual
	}
	if p.ServiceBook != nil {
		fields["service_book"] = *p.ServiceBook
	}
	if p.WheelLockingNut != nil {
		fields["wheel_locking_nut"] = *p.WheelLockingNut
	}
	if p.CambeltChainConfirmation != nil {
		fields["cambelt_chain_confirmation"] = *p.CambeltChainConfirmation
	}
	if p.CompletionPercentage != nil {
		fields["completion_percentage"] = *p.CompletionPercentage
	}
	if len(p.Metadata) > 0 {
		fields["metadata"] = p.Metadata
	}
	return fields
}

// IsEmpty reports whether the patch carries nothing but the timestamp.
// An empty patch means there is no checklist data to persist and the write
// is skipped entirely.
func (p *ChecklistPatch) IsEmpty() bool {
	return len(p.Fields()) == 1
}

// MergeMetadata overlays staged metadata on top of existing metadata,
// preserving any existing keys that are not being overwritten.
func MergeMetadata(existing, staged map[string]any) map[string]any {
	if len(existing) == 0 && len(staged) == 0 {
		return nil
	}
	merged := make(map[string]any, len(existing)+len(staged))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range staged {
		merged[k] = v
	}
	return merged
}
