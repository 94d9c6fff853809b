package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/five82/fredview/internal/table"
)

// SeriesFetcher defines the interface for fetching series observations.
// This interface is implemented by *Client and can be used for testing.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, seriesID string, params url.Values) (*table.Table, error)
}

// Ensure Client implements SeriesFetcher at compile time.
var _ SeriesFetcher = (*Client)(nil)

const (
	// DefaultBaseURL is the FRED REST root.
	DefaultBaseURL = "https://api.stlouisfed.org/fred/"

	defaultUserAgent     = "fredview/0.1"
	defaultTimeout       = 10 * time.Second
	observationsEndpoint = "series/observations"

	paramAPIKey   = "api_key"
	paramFileType = "file_type"
	paramSeriesID = "series_id"
)

var reservedParams = []string{paramAPIKey, paramFileType}

// Options configure a Client.
type Options struct {
	APIKey    string
	BaseURL   string        // empty uses DefaultBaseURL
	Timeout   time.Duration // per request; zero uses 10s
	UserAgent string
	Logger    *slog.Logger
}

// Client talks to the FRED HTTP API. Requests on one Client are serialized.
type Client struct {
	baseURL   *url.URL
	apiKey    string
	timeout   time.Duration
	userAgent string
	sessions  *SessionManager
	logger    *slog.Logger

	mu sync.Mutex
}

// NewClient validates opts and builds a Client. It performs no network I/O.
func NewClient(opts Options) (*Client, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, configErrorf("api key is required")
	}
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "fred")

	return &Client{
		baseURL:   base,
		apiKey:    key,
		timeout:   timeout,
		userAgent: userAgent,
		sessions:  NewSessionManager(timeout, logger),
		logger:    logger,
	}, nil
}

// WithClient builds a Client, runs fn with it and closes it afterwards, even
// when fn fails or panics.
func WithClient(opts Options, fn func(*Client) error) error {
	client, err := NewClient(opts)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()
	return fn(client)
}

// Close releases the client's HTTP session. The client stays usable; the
// next request opens a fresh session.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.sessions.Release()
	return nil
}

// FetchSeries retrieves observations for seriesID. The returned table is
// never nil: it is empty when the request failed (err describes why) or when
// the payload carried no observations (err is nil).
func (c *Client) FetchSeries(ctx context.Context, seriesID string, params url.Values) (*table.Table, error) {
	if c == nil {
		return table.Empty(), fmt.Errorf("client is nil")
	}
	seriesID = strings.TrimSpace(seriesID)
	query := cloneValues(params)
	query.Set(paramSeriesID, seriesID)

	payload, err := c.FetchRaw(ctx, observationsEndpoint, query)
	if err != nil {
		c.logger.Warn("series fetch failed", "series_id", seriesID, "error", err)
		return table.Empty(), err
	}
	if _, ok := payload["observations"]; !ok {
		c.logger.Warn("no observations found for series", "series_id", seriesID)
		return table.Empty(), nil
	}

	var resp ObservationsResponse
	if err := remarshal(payload, &resp); err != nil {
		decodeErr := &RequestError{Kind: ErrDecode, Endpoint: observationsEndpoint, Msg: "observations payload", Err: err}
		c.logger.Warn("series fetch failed", "series_id", seriesID, "error", decodeErr)
		return table.Empty(), decodeErr
	}

	tbl, dropped := DecodeObservations(resp.Observations)
	c.logger.Info("processed observation data",
		"series_id", seriesID,
		"rows", tbl.Len(),
		"dropped", dropped,
		"units", resp.Units,
	)
	return tbl, nil
}

// FetchRaw issues GET {base}/{endpoint} with params plus the credential and
// file_type=json, and returns the decoded JSON object. Any failure is logged
// and yields a nil map together with a *RequestError.
func (c *Client) FetchRaw(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	endpoint = strings.TrimLeft(strings.TrimSpace(endpoint), "/")
	if slices.Contains(strings.Split(endpoint, "/"), "..") {
		err := &RequestError{Kind: ErrConfiguration, Endpoint: endpoint, Msg: "endpoint must stay under the base url"}
		c.logger.Error("request rejected", "endpoint", endpoint, "error", err)
		return nil, err
	}
	target := c.baseURL.ResolveReference(&url.URL{Path: endpoint})

	for _, key := range reservedParams {
		if params.Has(key) {
			err := &RequestError{Kind: ErrReservedParam, Endpoint: endpoint, Msg: fmt.Sprintf("caller params must not set %q", key)}
			c.logger.Error("request rejected", "url", target.String(), "error", err)
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Info("request sent", "url", target.String(), "params", params.Encode())
	started := time.Now()

	payload, err := c.doURL(ctx, target, endpoint, params)
	if err != nil {
		c.logger.Error("request failed",
			"url", target.String(),
			"error", err,
			"duration", time.Since(started),
		)
		return nil, err
	}
	c.logger.Info("request succeeded", "url", target.String(), "duration", time.Since(started))
	return payload, nil
}

func (c *Client) doURL(ctx context.Context, target *url.URL, endpoint string, params url.Values) (map[string]any, error) {
	query := cloneValues(params)
	query.Set(paramAPIKey, c.apiKey)
	query.Set(paramFileType, "json")
	reqURL := *target
	reqURL.RawQuery = query.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, &RequestError{Kind: ErrTransport, Endpoint: endpoint, Msg: "create request", Err: redactErr(err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.sessions.Acquire().Do(req)
	if err != nil {
		return nil, &RequestError{Kind: ErrTransport, Endpoint: endpoint, Msg: "execute request", Err: redactErr(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			Kind:       ErrHTTP,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Msg:        "returned status " + resp.Status,
		}
	}

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &RequestError{Kind: ErrDecode, Endpoint: endpoint, Msg: "decode response", Err: redactErr(err)}
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, &RequestError{Kind: ErrDecode, Endpoint: endpoint, Msg: fmt.Sprintf("response is %T, want JSON object", body)}
	}
	return obj, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, configErrorf("parse base url %q: %v", raw, err)
	}
	if u.Host == "" {
		return nil, configErrorf("base url %q has no host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func cloneValues(values url.Values) url.Values {
	dup := make(url.Values, len(values)+3)
	for k, v := range values {
		dup[k] = slices.Clone(v)
	}
	return dup
}

func remarshal(src any, dest any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
