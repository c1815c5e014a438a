// internal/core/domain/customer.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a CRM customer record, scoped to a dealer.
type Customer struct {
	ID           uuid.UUID `json:"id"`
	DealerID     string    `json:"dealer_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	AddressLine1 string    `json:"address_line1,omitempty"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city,omitempty"`
	County       string    `json:"county,omitempty"`
	Postcode     string    `json:"postcode,omitempty"`
	Country      string    `json:"country,omitempty"`

	// Consent flags are monotonic: once true they are never reset by a sync.
	GDPRConsent         bool `json:"gdpr_consent"`
	MarketingConsent    bool `json:"marketing_consent"`
	VulnerabilityMarker bool `json:"vulnerability_marker"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerLead is the normalized field set handed to the CRM's
// find-or-create routine. Match and dedupe logic lives behind that routine.
type CustomerLead struct {
	FirstName           string
	LastName            string
	Email               string
	Phone               string
	AddressLine1        string
	Postcode            string
	GDPRConsent         bool
	MarketingConsent    bool
	VulnerabilityMarker bool
	Notes               string
}

// CustomerPatch stages an enrichment update. Only fields explicitly staged
// are written, so a partial sync can never blank out previously stored data.
// Consent setters only accept true, keeping the flags monotonic.
type CustomerPatch struct {
	addressLine2 *string
	city         *string
	county       *string
	country      *string

	gdprConsent         *bool
	marketingConsent    *bool
	vulnerabilityMarker *bool

	UpdatedAt time.Time
}

// NewCustomerPatch returns an empty patch stamped with the update time.
func NewCustomerPatch(now time.Time) *CustomerPatch {
	return &CustomerPatch{UpdatedAt: now}
}

// SetAddressLine2 stages the second address line when non-empty.
func (p *CustomerPatch) SetAddressLine2(v string) {
	if v != "" {
		p.addressLine2 = &v
	}
}

// SetCity stages the city when non-empty.
func (p *CustomerPatch) SetCity(v string) {
	if v != "" {
		p.city = &v
	}
}

// HasCity reports whether a city value is already staged. Derived values
// from the postcode lookup must never overwrite explicitly supplied ones.
func (p *CustomerPatch) HasCity() bool { return p.city != nil }

// SetCounty stages the county when non-empty.
func (p *CustomerPatch) SetCounty(v string) {
	if v != "" {
		p.county = &v
	}
}

// HasCounty reports whether a county value is already staged.
func (p *CustomerPatch) HasCounty() bool { return p.county != nil }

// SetCountry stages the country when non-empty.
func (p *CustomerPatch) SetCountry(v string) {
	if v != "" {
		p.country = &v
	}
}

// GrantGDPRConsent stages the GDPR consent flag. Flags are only ever set
// true; a false or absent flag on a later invoice leaves the stored value.
func (p *CustomerPatch) GrantGDPRConsent() {
	t := true
	p.gdprConsent = &t
}

// GrantMarketingConsent stages the marketing consent flag.
func (p *CustomerPatch) GrantMarketingConsent() {
	t := true
	p.marketingConsent = &t
}

// MarkVulnerable stages the vulnerability marker.
func (p *CustomerPatch) MarkVulnerable() {
	t := true
	p.vulnerabilityMarker = &t
}

// IsEmpty reports whether nothing beyond the timestamp has been staged.
func (p *CustomerPatch) IsEmpty() bool {
	return p.addressLine2 == nil && p.city == nil && p.county == nil &&
		p.country == nil && p.gdprConsent == nil && p.marketingConsent == nil &&
		p.vulnerabilityMarker == nil
}

// Fields returns the staged columns for a partial update. The timestamp is
// always included; unset fields are absent from the map entirely.
func (p *CustomerPatch) Fields() map[string]any {
	fields := map[string]any{"updated_at": p.UpdatedAt}
	if p.addressLine2 != nil {
		fields["address_line2"] = *p.addressLine2
	}
	if p.city != nil {
		fields["city"] = *p.city
	}
	if p.county != nil {
		fields["county"] = *p.county
	}
	if p.country != nil {
		fields["country"] = *p.country
	}
	if p.gdprConsent != nil {
		fields["gdpr_consent"] = *p.gdprConsent
	}
	if p.marketingConsent != nil {
		fields["marketing_consent"] = *p.marketingConsent
	}
	if p.vulnerabilityMarker != nil {
		fields["vulnerability_marker"] = *p.vulnerabilityMarker
	}
	return fields
}
