// internal/core/ports/postcode.go
package ports

import "context"

// PostcodeArea is the locality information resolved from a postcode.
// Either field may be empty when the lookup has no data.
type PostcodeArea struct {
	City   string `json:"city,omitempty"`
	County string `json:"county,omitempty"`
}

// PostcodeLookup resolves a UK postcode to its city and county.
type PostcodeLookup interface {
	Lookup(ctx context.Context, postcode string) (PostcodeArea, error)
}
