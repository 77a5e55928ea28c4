package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"aptoslend/observability"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxGas       = 200_000
	defaultGasUnitPrice = 100
	defaultExpiry       = 60 * time.Second
	defaultPollInterval = 500 * time.Millisecond
	userAgent           = "aptoslend/1.0"
)

// Caller is the remote contract gateway used by the resource clients.
type Caller interface {
	View(ctx context.Context, call Call) (Result, error)
	Submit(ctx context.Context, signer Signer, call Call) (*Receipt, error)
}

// Client talks to an Aptos fullnode REST API. It holds no per-call state and
// is safe for concurrent use.
type Client struct {
	baseURL      string
	apiKey       string
	http         *http.Client
	limiter      *rate.Limiter
	maxGas       uint64
	gasUnitPrice uint64
	expiry       time.Duration
	pollInterval time.Duration
	now          func() time.Time
	metrics      *observability.GatewayMetrics
	tracer       trace.Tracer
}

// Option configures the client.
type Option func(*Client)

// WithAPIKey sends key as a bearer token on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = strings.TrimSpace(key) }
}

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithRateLimit paces outbound requests; public fullnodes throttle bursts.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithGas sets the gas limit and unit price of submitted transactions.
func WithGas(maxGas, unitPrice uint64) Option {
	return func(c *Client) {
		if maxGas > 0 {
			c.maxGas = maxGas
		}
		if unitPrice > 0 {
			c.gasUnitPrice = unitPrice
		}
	}
}

// WithExpiry sets how long a submitted transaction stays valid.
func WithExpiry(expiry time.Duration) Option {
	return func(c *Client) {
		if expiry > 0 {
			c.expiry = expiry
		}
	}
}

// WithPollInterval sets the delay between finality checks.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithClock overrides the clock used for transaction expiration.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMetrics records calls on m instead of the process-wide collectors.
func WithMetrics(m *observability.GatewayMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient constructs a client for the fullnode at baseURL. The /v1 suffix
// is optional.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	trimmed = strings.TrimSuffix(trimmed, "/v1")
	if trimmed == "" {
		return nil, fmt.Errorf("base url is required")
	}
	c := &Client{
		baseURL: trimmed,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxGas:       defaultMaxGas,
		gasUnitPrice: defaultGasUnitPrice,
		expiry:       defaultExpiry,
		pollInterval: defaultPollInterval,
		now:          time.Now,
		tracer:       otel.Tracer("aptoslend/gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = observability.Gateway()
	}
	return c, nil
}

// BaseURL returns the fullnode root without the /v1 suffix.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	var reqBody io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call node: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{}
		if jsonErr := json.Unmarshal(payload, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(payload))
			if apiErr.Message == "" {
				apiErr.Message = resp.Status
			}
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &DecodingError{Function: method + " " + path, Index: -1, Err: err}
	}
	return nil
}

// LedgerInfo is the node's view of the chain head.
type LedgerInfo struct {
	ChainID         uint8
	LedgerVersion   uint64
	LedgerTimestamp uint64
	BlockHeight     uint64
}

type ledgerInfoResponse struct {
	ChainID         uint8  `json:"chain_id"`
	LedgerVersion   string `json:"ledger_version"`
	LedgerTimestamp string `json:"ledger_timestamp"`
	BlockHeight     string `json:"block_height"`
}

// ChainInfo fetches the ledger info from the node root.
func (c *Client) ChainInfo(ctx context.Context) (LedgerInfo, error) {
	var resp ledgerInfoResponse
	if err := c.do(ctx, http.MethodGet, "/v1", nil, &resp); err != nil {
		return LedgerInfo{}, err
	}
	info := LedgerInfo{ChainID: resp.ChainID}
	fields := []struct {
		name string
		raw  string
		dst  *uint64
	}{
		{"ledger_version", resp.LedgerVersion, &info.LedgerVersion},
		{"ledger_timestamp", resp.LedgerTimestamp, &info.LedgerTimestamp},
		{"block_height", resp.BlockHeight, &info.BlockHeight},
	}
	for _, f := range fields {
		value, err := parseUint64Field(f.raw)
		if err != nil {
			return LedgerInfo{}, &DecodingError{Function: "GET /v1", Index: -1, Err: fmt.Errorf("%s: %w", f.name, err)}
		}
		*f.dst = value
	}
	return info, nil
}

func parseUint64Field(raw string) (uint64, error) {
	value, err := parseUnsigned(json.RawMessage(`"` + raw + `"`))
	if err != nil {
		return 0, err
	}
	if !value.IsUint64() {
		return 0, errors.New("overflows uint64")
	}
	return value.Uint64(), nil
}
