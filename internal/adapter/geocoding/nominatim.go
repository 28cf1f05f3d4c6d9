// internal/adapter/geocoding/nominatim.go

package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mempin/internal/domain/geo"
)

// Client is a Nominatim-style geocoding provider client. Every request
// carries the configured User-Agent as the client identifier the
// provider's usage policy requires; callers are expected to self-throttle.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a geocoding client for the given provider base URL.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Forward resolves free text into coordinates, requesting at most one
// result. A nil result means the provider found no match.
func (c *Client) Forward(ctx context.Context, query string) (*geo.Result, error) {
	endpoint := fmt.Sprintf(
		"%s/search?format=json&limit=1&q=%s",
		c.baseURL, url.QueryEscape(query),
	)

	var results []searchResult
	if err := c.get(ctx, endpoint, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	return &geo.Result{
		Lat:            lat,
		Lng:            lng,
		DisplayAddress: results[0].DisplayName,
	}, nil
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
}

// Reverse resolves coordinates into a display address. An empty string
// means the provider found no address.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	endpoint := fmt.Sprintf(
		"%s/reverse?format=json&lat=%f&lon=%f&zoom=18&addressdetails=1",
		c.baseURL, lat, lng,
	)

	var result reverseResult
	if err := c.get(ctx, endpoint, &result); err != nil {
		return "", err
	}
	return result.DisplayName, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoding provider returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
