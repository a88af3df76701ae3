package govmetric

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/munisearch/lienportal-core/internal/infrastructure/logging"
)

// maxResponseBytes caps how much of an upstream body we read.
// GetPlaces for a full state is well under 1 MB.
const maxResponseBytes = 8 << 20

// Client talks to the GovMetric API.
//
// Thread Safety:
//   - Safe for concurrent use; the underlying http.Client is shared.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logging.Logger
}

// Config contains upstream client configuration.
type Config struct {
	// BaseURL is the upstream root, e.g. "https://api.example.gov".
	// The /GovMetricAPI path prefix is appended per request.
	BaseURL string

	// Timeout bounds each upstream request.
	Timeout time.Duration
}

// New creates a GovMetric API client.
func New(cfg Config, log *logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log.With("component", "govmetric"),
	}
}

// GetPlaces fetches the raw county/municipality list.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - []Place: Raw places in upstream order
//   - error: ErrUnavailable or ErrBadResponse wrapped with detail
func (c *Client) GetPlaces(ctx context.Context) ([]Place, error) {
	body, err := c.get(ctx, "/GovMetricAPI/GetPlaces", nil)
	if err != nil {
		return nil, err
	}

	var places []Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("%w: decoding places: %v", ErrBadResponse, err)
	}
	return places, nil
}

// Login validates credentials against the upstream.
//
// The upstream takes credentials as query parameters. An invalid
// login is not an error at this layer: the caller inspects
// LoginIsValid and the Error entries.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - email: Account email
//   - password: Account password
//
// Returns:
//   - *LoginResponse: Decoded upstream reply
//   - error: ErrUnavailable or ErrBadResponse wrapped with detail
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	params := url.Values{}
	params.Set("iUserName", email)
	params.Set("iUserPassword", password)

	body, err := c.get(ctx, "/GovMetricAPI/GovmetricLogin", params)
	if err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding login response: %v", ErrBadResponse, err)
	}
	return &resp, nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	c.log.Debug("upstream request",
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrBadResponse, err)
	}
	return body, nil
}
