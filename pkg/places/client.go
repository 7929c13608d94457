package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/sipit-backend/pkg/logger"
	"github.com/ikkim/sipit-backend/pkg/util"
	"golang.org/x/time/rate"
)

// Client represents a Google Places API client.
// Calls are rate limited but never retried; retry policy belongs to the caller.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Places client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(math.Ceil(rps))),
	}, nil
}

// SearchNear finds cafes within radiusMeters of a point
func (c *Client) SearchNear(ctx context.Context, lat, lng float64, radiusMeters int) ([]Place, error) {
	params := url.Values{}
	params.Set("location", formatLocation(lat, lng))
	params.Set("radius", strconv.Itoa(radiusMeters))
	params.Set("type", "cafe")

	var resp searchResponse
	if err := c.get(ctx, "place/nearbysearch/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != StatusOK && resp.Status != StatusZeroResults {
		logger.Error("Google Places nearby search failed", nil, map[string]interface{}{
			"status":        resp.Status,
			"error_message": resp.ErrorMessage,
		})
		return nil, fmt.Errorf("%w: nearby search status %s", ErrUpstream, resp.Status)
	}

	return resp.Results, nil
}

// SearchByText runs a free-text cafe search, biased to a 10km radius when a point is given
func (c *Client) SearchByText(ctx context.Context, query string, lat, lng *float64) ([]Place, error) {
	params := url.Values{}
	params.Set("query", query+" cafe")
	params.Set("type", "cafe")
	if lat != nil && lng != nil {
		params.Set("location", formatLocation(*lat, *lng))
		params.Set("radius", strconv.Itoa(TextSearchRadiusMeters))
	}

	var resp searchResponse
	if err := c.get(ctx, "place/textsearch/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != StatusOK && resp.Status != StatusZeroResults {
		logger.Error("Google Places text search failed", nil, map[string]interface{}{
			"status":        resp.Status,
			"error_message": resp.ErrorMessage,
		})
		return nil, fmt.Errorf("%w: text search status %s", ErrUpstream, resp.Status)
	}

	return resp.Results, nil
}

// GetDetails fetches extended details for one place.
// It returns (nil, nil) when the provider answers with a non-OK status.
func (c *Client) GetDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)

	var resp detailsResponse
	if err := c.get(ctx, "place/details/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != StatusOK || resp.Result == nil {
		logger.Warn("Google Places details unavailable", map[string]interface{}{
			"place_id": placeID,
			"status":   resp.Status,
		})
		return nil, nil
	}

	return resp.Result, nil
}

// PhotoURL resolves a photo reference to a displayable URL
func (c *Client) PhotoURL(photoReference string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = DefaultPhotoWidth
	}
	return fmt.Sprintf("%s/place/photo?maxwidth=%d&photo_reference=%s&key=%s",
		c.config.BaseURL, maxWidth, url.QueryEscape(photoReference), url.QueryEscape(c.config.APIKey))
}

// DistanceKm is the great-circle distance between two points
func (c *Client) DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	return util.CalculateDistance(lat1, lng1, lat2, lng2)
}

// get performs one rate-limited GET and decodes the JSON envelope into out
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", ErrUpstream, err)
	}

	params.Set("key", c.config.APIKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.config.BaseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		logger.Error("Google Places request failed", err, map[string]interface{}{
			"endpoint": endpoint,
		})
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Google Places returned non-success status", nil, map[string]interface{}{
			"endpoint":    endpoint,
			"status_code": resp.StatusCode,
		})
		return fmt.Errorf("%w: HTTP %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, err)
	}

	return nil
}

func (c *Client) observe(endpoint string, status int, d time.Duration) {
	if c.config.Observer != nil {
		c.config.Observer(endpoint, status, d)
	}
}

func formatLocation(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
