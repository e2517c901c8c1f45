package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http2"

	"github.com/kbukum/httpwrap/logger"
	"github.com/kbukum/httpwrap/observability"
)

// Client is an HTTP client with a base address, default request headers, a
// response buffer limit, a request timeout and cancel-all-pending control.
// It is safe for concurrent use.
type Client struct {
	name            string
	httpClient      *http.Client
	log             *logger.Logger
	tracer          trace.Tracer
	metrics         *observability.ClientMetrics
	requestIDHeader string

	mu            sync.RWMutex
	baseAddress   *url.URL
	headers       http.Header
	maxBufferSize int64
	timeout       time.Duration
	pending       context.Context
	cancelPending context.CancelCauseFunc
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.transport
	if transport == nil {
		t, err := buildTransport(cfg)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	log := o.log
	if log == nil {
		log = logger.Get("httpclient")
	}
	if cfg.Name != "" {
		log = log.WithFields(logger.Fields("client", cfg.Name))
	}

	metrics, err := observability.NewClientMetrics(observability.Meter(o.meterProvider))
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}

	c := &Client{
		name: cfg.Name,
		// Timeouts are enforced per operation, see link.
		httpClient:      &http.Client{Transport: transport},
		log:             log,
		tracer:          observability.Tracer(o.tracerProvider),
		metrics:         metrics,
		requestIDHeader: cfg.RequestIDHeader,
		headers:         make(http.Header, len(cfg.Headers)),
		maxBufferSize:   cfg.MaxResponseContentBufferSize,
		timeout:         cfg.Timeout,
	}
	c.pending, c.cancelPending = context.WithCancelCause(context.Background())

	if cfg.BaseURL != "" {
		base, err := parseBaseAddress(cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		c.baseAddress = base
	}
	for k, v := range cfg.Headers {
		c.headers.Set(k, v)
	}

	return c, nil
}

// buildTransport clones the default transport and applies TLS and HTTP/2 settings.
func buildTransport(cfg Config) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}

	if cfg.HTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, fmt.Errorf("httpclient: configure http2: %w", err)
		}
	}
	return transport, nil
}

func parseBaseAddress(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid base address %q: %v", raw, err))
	}
	if err := checkBaseAddress(u); err != nil {
		return nil, err
	}
	return u, nil
}

func checkBaseAddress(u *url.URL) error {
	if u == nil {
		return nil
	}
	if !u.IsAbs() || u.Host == "" {
		return NewValidationError(fmt.Sprintf("base address %q must be an absolute URI", u.String()))
	}
	return nil
}

// BaseAddress returns the address relative request URIs resolve against, or nil.
func (c *Client) BaseAddress() *url.URL {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.baseAddress == nil {
		return nil
	}
	u := *c.baseAddress
	return &u
}

// SetBaseAddress sets the base address. It must be absolute, or nil to clear it.
func (c *Client) SetBaseAddress(u *url.URL) error {
	if err := checkBaseAddress(u); err != nil {
		return err
	}
	var stored *url.URL
	if u != nil {
		cp := *u
		stored = &cp
	}
	c.mu.Lock()
	c.baseAddress = stored
	c.mu.Unlock()
	return nil
}

// DefaultRequestHeaders returns the live header collection sent with every
// request. Mutations apply to subsequent requests; callers must not mutate
// it concurrently with requests in flight.
func (c *Client) DefaultRequestHeaders() http.Header {
	return c.headers
}

// MaxResponseContentBufferSize returns the buffered response limit in bytes.
func (c *Client) MaxResponseContentBufferSize() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxBufferSize
}

// SetMaxResponseContentBufferSize sets the buffered response limit. It must be positive.
func (c *Client) SetMaxResponseContentBufferSize(n int64) error {
	if n <= 0 {
		return NewValidationError(fmt.Sprintf("max response content buffer size must be positive, got %d", n))
	}
	c.mu.Lock()
	c.maxBufferSize = n
	c.mu.Unlock()
	return nil
}

// Timeout returns the per-request timeout, or InfiniteTimeout.
func (c *Client) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

// SetTimeout sets the per-request timeout. It must be positive or InfiniteTimeout.
func (c *Client) SetTimeout(d time.Duration) error {
	if d <= 0 && d != InfiniteTimeout {
		return NewValidationError(fmt.Sprintf("timeout must be positive or InfiniteTimeout, got %s", d))
	}
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
	return nil
}

// CancelPendingRequests aborts every request in flight on this client.
// Requests started afterwards are unaffected.
func (c *Client) CancelPendingRequests() {
	c.mu.Lock()
	cancel := c.cancelPending
	c.pending, c.cancelPending = context.WithCancelCause(context.Background())
	c.mu.Unlock()

	cancel(ErrPendingRequestsCanceled)
	c.log.Debug("pending requests canceled")
}

// Close cancels pending requests and closes idle transport connections.
func (c *Client) Close() {
	c.CancelPendingRequests()
	c.httpClient.CloseIdleConnections()
}

// settings is a consistent snapshot of the mutable client properties.
type settings struct {
	base          *url.URL
	headers       http.Header
	maxBufferSize int64
	timeout       time.Duration
	pending       context.Context
}

func (c *Client) snapshot() settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return settings{
		base:          c.baseAddress,
		headers:       c.headers.Clone(),
		maxBufferSize: c.maxBufferSize,
		timeout:       c.timeout,
		pending:       c.pending,
	}
}
