// internal/adapters/postcode/client.go
package postcode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	redis_a "github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/redis_adapter"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
)

// DefaultBaseURL points at the public postcodes.io instance.
const DefaultBaseURL = "https://api.postcodes.io"

// cacheTTL is long because postcode geography effectively never changes.
const cacheTTL = 30 * 24 * time.Hour

// Client resolves UK postcodes to their locality via the postcodes.io API,
// caching results in Redis.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      ports.CacheRepository
	logger     *slog.Logger
}

// Statically assert that *Client implements the PostcodeLookup interface.
var _ ports.PostcodeLookup = (*Client)(nil)

// NewClient creates a new postcode lookup client. cache may be nil, in
// which case every lookup goes to the API.
func NewClient(baseURL string, timeout time.Duration, cache ports.CacheRepository, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		logger:     logger.With(slog.String("component", "postcode_client")),
	}
}

// lookupResponse mirrors the postcodes.io result envelope.
type lookupResponse struct {
	Status int `json:"status"`
	Result struct {
		PostTown    string `json:"post_town"`
		AdminWard   string `json:"admin_ward"`
		AdminCounty string `json:"admin_county"`
		Region      string `json:"region"`
	} `json:"result"`
}

// Lookup resolves a postcode to its city and county. Unknown postcodes
// return an error; callers treat lookup failure as "no enrichment", never
// as a sync failure.
func (c *Client) Lookup(ctx context.Context, postcode string) (ports.PostcodeArea, error) {
	normalized := normalize(postcode)
	if normalized == "" {
		return ports.PostcodeArea{}, fmt.Errorf("postcode is empty")
	}

	if c.cache != nil {
		key := redis_a.BuildKey(redis_a.PrefixPostcode, normalized)
		var area ports.PostcodeArea
		err := c.cache.GetOrSet(ctx, key, &area, func() (interface{}, error) {
			return c.fetch(ctx, normalized)
		}, cacheTTL)
		if err != nil {
			return ports.PostcodeArea{}, err
		}
		return area, nil
	}

	area, err := c.fetch(ctx, normalized)
	if err != nil {
		return ports.PostcodeArea{}, err
	}
	return area, nil
}

func (c *Client) fetch(ctx context.Context, postcode string) (ports.PostcodeArea, error) {
	endpoint := fmt.Sprintf("%s/postcodes/%s", c.baseURL, url.PathEscape(postcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ports.PostcodeArea{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.PostcodeArea{}, fmt.Errorf("postcode lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ports.PostcodeArea{}, fmt.Errorf("postcode not found: %s", postcode)
	}
	if resp.StatusCode != http.StatusOK {
		return ports.PostcodeArea{}, fmt.Errorf("postcode lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ports.PostcodeArea{}, fmt.Errorf("failed to read response: %w", err)
	}

	var payload lookupResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return ports.PostcodeArea{}, fmt.Errorf("failed to decode response: %w", err)
	}

	area := ports.PostcodeArea{
		City:   payload.Result.PostTown,
		County: payload.Result.AdminCounty,
	}
	// Some postcodes carry no admin county; fall back to the region so the
	// customer record still gets a usable locality.
	if area.County == "" {
		area.County = payload.Result.Region
	}

	c.logger.DebugContext(ctx, "postcode resolved",
		slog.String("postcode", postcode),
		slog.String("city", area.City),
		slog.String("county", area.County))

	return area, nil
}

// normalize strips whitespace and upper-cases, matching how postcodes are
// stored and cached.
func normalize(postcode string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(postcode), " ", ""))
}
