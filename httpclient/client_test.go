package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/httpwrap/logger"
	"github.com/kbukum/httpwrap/observability"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// trackedBody records whether the transport body was drained and closed.
type trackedBody struct {
	r      io.Reader
	mu     sync.Mutex
	eof    bool
	closed bool
}

func (b *trackedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		b.mu.Lock()
		b.eof = true
		b.mu.Unlock()
	}
	return n, err
}

func (b *trackedBody) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

func (b *trackedBody) state() (eof, closed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eof, b.closed
}

func newTestClient(t *testing.T, cfg Config, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Nop())}, opts...)
	c, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNew_Defaults(t *testing.T) {
	c := newTestClient(t, Config{Headers: map[string]string{"Accept": "application/json"}})

	if c.BaseAddress() != nil {
		t.Errorf("expected nil base address, got %v", c.BaseAddress())
	}
	if c.Timeout() != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, c.Timeout())
	}
	if c.MaxResponseContentBufferSize() != DefaultMaxResponseContentBufferSize {
		t.Errorf("expected buffer size %d, got %d", DefaultMaxResponseContentBufferSize, c.MaxResponseContentBufferSize())
	}
	if got := c.DefaultRequestHeaders().Get("Accept"); got != "application/json" {
		t.Errorf("expected default Accept header, got %q", got)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"})
	if err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}

func TestClient_SetBaseAddress(t *testing.T) {
	c := newTestClient(t, Config{})

	u, _ := url.Parse("https://api.example.com/v1/")
	if err := c.SetBaseAddress(u); err != nil {
		t.Fatalf("SetBaseAddress() error = %v", err)
	}
	u.Host = "mutated.example.com"
	if got := c.BaseAddress().String(); got != "https://api.example.com/v1/" {
		t.Errorf("expected stored copy, got %q", got)
	}

	rel, _ := url.Parse("/v2/")
	if err := c.SetBaseAddress(rel); !IsValidation(err) {
		t.Errorf("expected validation error for relative base, got %v", err)
	}

	if err := c.SetBaseAddress(nil); err != nil {
		t.Fatalf("SetBaseAddress(nil) error = %v", err)
	}
	if c.BaseAddress() != nil {
		t.Errorf("expected cleared base address, got %v", c.BaseAddress())
	}
}

func TestClient_SetTimeout(t *testing.T) {
	tests := []struct {
		name    string
		d       time.Duration
		wantErr bool
	}{
		{name: "positive", d: 5 * time.Second},
		{name: "infinite", d: InfiniteTimeout},
		{name: "zero", d: 0, wantErr: true},
		{name: "negative", d: -2 * time.Second, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, Config{})
			err := c.SetTimeout(tt.d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetTimeout(%v) error = %v, wantErr %v", tt.d, err, tt.wantErr)
			}
			if !tt.wantErr && c.Timeout() != tt.d {
				t.Errorf("expected timeout %v, got %v", tt.d, c.Timeout())
			}
			if tt.wantErr && c.Timeout() != DefaultTimeout {
				t.Errorf("rejected value changed timeout to %v", c.Timeout())
			}
		})
	}
}

func TestClient_SetMaxResponseContentBufferSize(t *testing.T) {
	c := newTestClient(t, Config{})
	if err := c.SetMaxResponseContentBufferSize(0); !IsValidation(err) {
		t.Errorf("expected validation error for 0, got %v", err)
	}
	if err := c.SetMaxResponseContentBufferSize(4096); err != nil {
		t.Fatalf("SetMaxResponseContentBufferSize() error = %v", err)
	}
	if got := c.MaxResponseContentBufferSize(); got != 4096 {
		t.Errorf("expected 4096, got %d", got)
	}
}

func TestClient_DefaultRequestHeaders(t *testing.T) {
	seen := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Clone()
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL, Headers: map[string]string{"X-Api-Key": "secret"}})
	c.DefaultRequestHeaders().Set("X-Tenant", "acme")

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant", "override")
	if _, err := c.Send(context.Background(), req); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	got := <-seen
	if got.Get("X-Api-Key") != "secret" {
		t.Errorf("expected configured default header, got %q", got.Get("X-Api-Key"))
	}
	if got.Get("X-Tenant") != "override" {
		t.Errorf("request header should win over default, got %q", got.Get("X-Tenant"))
	}
	if req.Header.Get("X-Api-Key") != "" {
		t.Error("caller's request must not be mutated")
	}
}

func TestClient_RequestIDHeader(t *testing.T) {
	var ids []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get("X-Request-ID"))
		mu.Unlock()
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL, RequestIDHeader: "X-Request-ID"})
	if _, err := c.Get(context.Background(), "/"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("X-Request-ID", "caller-id")
	if _, err := c.Send(context.Background(), req); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, err := uuid.Parse(ids[0]); err != nil {
		t.Errorf("expected generated UUID, got %q", ids[0])
	}
	if ids[1] != "caller-id" {
		t.Errorf("expected caller request ID to be kept, got %q", ids[1])
	}
}

func TestClient_Send_Validation(t *testing.T) {
	c := newTestClient(t, Config{})

	if _, err := c.Send(context.Background(), nil); !IsValidation(err) {
		t.Errorf("expected validation error for nil request, got %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, "/relative", nil)
	if _, err := c.Send(context.Background(), req); !IsValidation(err) {
		t.Errorf("expected validation error for relative URI without base, got %v", err)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://example.com", nil)
	if _, err := c.SendWithOption(context.Background(), req, CompletionOption(7)); !IsValidation(err) {
		t.Errorf("expected validation error for unknown option, got %v", err)
	}
}

func TestClient_Send_AnyStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})
	resp, err := c.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "boom" {
		t.Errorf("expected body boom, got %q", body)
	}
}

func TestClient_CompletionOption(t *testing.T) {
	newBody := func() *trackedBody { return &trackedBody{r: strings.NewReader("payload")} }

	t.Run("content read", func(t *testing.T) {
		body := newBody()
		c := newTestClient(t, Config{}, WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: body, ContentLength: -1, Request: r}, nil
		})))
		resp, err := c.GetWithOption(context.Background(), "http://example.com/", ResponseContentRead)
		if err != nil {
			t.Fatalf("GetWithOption() error = %v", err)
		}
		if eof, closed := body.state(); !eof || !closed {
			t.Errorf("expected transport body drained and closed, eof=%v closed=%v", eof, closed)
		}
		if resp.ContentLength != int64(len("payload")) {
			t.Errorf("expected content length %d, got %d", len("payload"), resp.ContentLength)
		}
		got, _ := io.ReadAll(resp.Body)
		if string(got) != "payload" {
			t.Errorf("expected buffered payload, got %q", got)
		}
	})

	t.Run("headers read", func(t *testing.T) {
		body := newBody()
		c := newTestClient(t, Config{}, WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: body, ContentLength: -1, Request: r}, nil
		})))
		resp, err := c.GetWithOption(context.Background(), "http://example.com/", ResponseHeadersRead)
		if err != nil {
			t.Fatalf("GetWithOption() error = %v", err)
		}
		if eof, closed := body.state(); eof || closed {
			t.Fatalf("expected body left unread, eof=%v closed=%v", eof, closed)
		}
		got, _ := io.ReadAll(resp.Body)
		if string(got) != "payload" {
			t.Errorf("expected streamed payload, got %q", got)
		}
		_ = resp.Body.Close()
		if _, closed := body.state(); !closed {
			t.Error("expected transport body closed with the response body")
		}
	})
}

func TestClient_HeadersRead_StreamsPastTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("first "))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte("second"))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL, Timeout: 200 * time.Millisecond})
	resp, err := c.GetWithOption(context.Background(), "/", ResponseHeadersRead)
	if err != nil {
		t.Fatalf("GetWithOption() error = %v", err)
	}
	defer resp.Body.Close()

	time.Sleep(400 * time.Millisecond)
	close(release)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading streamed body: %v", err)
	}
	if string(body) != "first second" {
		t.Errorf("expected full body, got %q", body)
	}
}

func TestClient_BufferOverflow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("chunked") != "" {
			w.(http.Flusher).Flush()
		}
		_, _ = w.Write(bytes.Repeat([]byte("x"), 100))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL, MaxResponseContentBufferSize: 10})

	for _, path := range []string{"/", "/?chunked=1"} {
		_, err := c.Get(context.Background(), path)
		if !IsBufferOverflow(err) {
			t.Errorf("Get(%q): expected buffer overflow, got %v", path, err)
		}
	}

	resp, err := c.GetWithOption(context.Background(), "/", ResponseHeadersRead)
	if err != nil {
		t.Fatalf("streaming is not bounded by the buffer limit, got %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 100 {
		t.Errorf("expected 100 streamed bytes, got %d", len(body))
	}
}

func newSlowServer(t *testing.T, entered chan<- struct{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fast" {
			_, _ = w.Write([]byte("ok"))
			return
		}
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Timeout(t *testing.T) {
	srv := newSlowServer(t, nil)
	c := newTestClient(t, Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := c.Get(context.Background(), "/slow")
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected error to unwrap to context.DeadlineExceeded, got %v", err)
	}
}

func TestClient_CallerCancellation(t *testing.T) {
	srv := newSlowServer(t, nil)
	c := newTestClient(t, Config{BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := c.Get(ctx, "/slow")
	if !IsCanceled(err) {
		t.Fatalf("expected canceled error, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected error to unwrap to context.Canceled, got %v", err)
	}
}

func TestClient_CancelPendingRequests(t *testing.T) {
	entered := make(chan struct{}, 2)
	srv := newSlowServer(t, entered)
	c := newTestClient(t, Config{BaseURL: srv.URL})

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := c.Get(context.Background(), "/slow")
			errs <- err
		}()
	}
	<-entered
	<-entered

	c.CancelPendingRequests()

	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			if !IsCanceled(err) || !errors.Is(err, ErrPendingRequestsCanceled) {
				t.Errorf("expected pending-requests cancellation, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("in-flight request was not aborted")
		}
	}

	body, err := c.GetString(context.Background(), "/fast")
	if err != nil {
		t.Fatalf("request after CancelPendingRequests failed: %v", err)
	}
	if body != "ok" {
		t.Errorf("expected ok, got %q", body)
	}
}

func TestClient_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := newTestClient(t, Config{BaseURL: addr})
	_, err := c.Get(context.Background(), "/")
	if !IsConnection(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("connection errors should be retryable")
	}
}

func TestClient_Observability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	c := newTestClient(t, Config{BaseURL: srv.URL}, WithTracerProvider(tp), WithMeterProvider(mp))
	if _, err := c.Get(context.Background(), "/jobs"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != observability.SpanHTTPRequest {
		t.Errorf("expected span %q, got %q", observability.SpanHTTPRequest, spans[0].Name())
	}
	var status int64
	for _, kv := range spans[0].Attributes() {
		if string(kv.Key) == observability.AttrHTTPStatusCode {
			status = kv.Value.AsInt64()
		}
	}
	if status != http.StatusAccepted {
		t.Errorf("expected status attribute 202, got %d", status)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	var requests int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != observability.MetricClientRequests {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				requests += dp.Value
			}
		}
	}
	if requests != 1 {
		t.Errorf("expected 1 recorded request, got %d", requests)
	}
}
