// Package httpwraptest provides a test double for httpwrap.Client.
package httpwraptest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/kbukum/httpwrap/httpclient"
	"github.com/kbukum/httpwrap/httpwrap"
)

// Call records one operation invoked on a Fake.
type Call struct {
	// Op is the method name, e.g. "GetWithOption".
	Op string
	// Method is the HTTP method the operation stands for.
	Method string
	// URL is the address as passed by the caller, string or *url.URL form.
	URL string
	// Option is the completion option the operation runs with.
	Option httpclient.CompletionOption
	// ContentType and Body are set for Post and Put.
	ContentType string
	Body        []byte
	// Request is set for Send and SendWithOption.
	Request *http.Request
}

// Fake is a mockable httpwrap.Client. Every operation is recorded and then
// delegated to MockDo when set. Without MockDo operations answer 200 with
// an empty body. Properties are kept in memory.
type Fake struct {
	// MockDo handles every request operation. GetBytes, GetStream and
	// GetString are served from its response; a non-2xx status becomes
	// the error httpclient.ClassifyStatusCode returns for it.
	MockDo func(ctx context.Context, call Call) (*http.Response, error)

	// MockCancelPendingRequests is called by CancelPendingRequests when set.
	MockCancelPendingRequests func()

	mu            sync.Mutex
	calls         []Call
	baseAddress   *url.URL
	headers       http.Header
	maxBufferSize int64
	timeout       time.Duration
	canceled      int
}

var _ httpwrap.Client = (*Fake)(nil)

// NewFake creates a Fake with the client defaults.
func NewFake() *Fake {
	return &Fake{
		headers:       make(http.Header),
		maxBufferSize: httpclient.DefaultMaxResponseContentBufferSize,
		timeout:       httpclient.DefaultTimeout,
	}
}

// Calls returns a copy of the recorded calls in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CancelCount returns how often CancelPendingRequests was called.
func (f *Fake) CancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canceled
}

// Respond returns a response with the given status and body, for use in MockDo.
func Respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewBufferString(body)),
		ContentLength: int64(len(body)),
	}
}

func (f *Fake) BaseAddress() *url.URL {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.baseAddress == nil {
		return nil
	}
	u := *f.baseAddress
	return &u
}

func (f *Fake) SetBaseAddress(u *url.URL) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u == nil {
		f.baseAddress = nil
		return nil
	}
	cp := *u
	f.baseAddress = &cp
	return nil
}

func (f *Fake) DefaultRequestHeaders() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headers == nil {
		f.headers = make(http.Header)
	}
	return f.headers
}

func (f *Fake) MaxResponseContentBufferSize() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxBufferSize
}

func (f *Fake) SetMaxResponseContentBufferSize(n int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maxBufferSize = n
	return nil
}

func (f *Fake) Timeout() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timeout
}

func (f *Fake) SetTimeout(d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeout = d
	return nil
}

func (f *Fake) CancelPendingRequests() {
	f.mu.Lock()
	f.canceled++
	f.mu.Unlock()
	if f.MockCancelPendingRequests != nil {
		f.MockCancelPendingRequests()
	}
}

func (f *Fake) do(ctx context.Context, call Call) (*http.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if f.MockDo != nil {
		return f.MockDo(ctx, call)
	}
	return Respond(http.StatusOK, ""), nil
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}

func readBody(body io.Reader) []byte {
	if body == nil {
		return nil
	}
	b, _ := io.ReadAll(body)
	return b
}

func (f *Fake) Delete(ctx context.Context, uri string) (*http.Response, error) {
	return f.do(ctx, Call{Op: "Delete", Method: http.MethodDelete, URL: uri})
}

func (f *Fake) DeleteURL(ctx context.Context, u *url.URL) (*http.Response, error) {
	return f.do(ctx, Call{Op: "DeleteURL", Method: http.MethodDelete, URL: urlString(u)})
}

func (f *Fake) Get(ctx context.Context, uri string) (*http.Response, error) {
	return f.do(ctx, Call{Op: "Get", Method: http.MethodGet, URL: uri})
}

func (f *Fake) GetURL(ctx context.Context, u *url.URL) (*http.Response, error) {
	return f.do(ctx, Call{Op: "GetURL", Method: http.MethodGet, URL: urlString(u)})
}

func (f *Fake) GetWithOption(ctx context.Context, uri string, opt httpclient.CompletionOption) (*http.Response, error) {
	return f.do(ctx, Call{Op: "GetWithOption", Method: http.MethodGet, URL: uri, Option: opt})
}

func (f *Fake) GetURLWithOption(ctx context.Context, u *url.URL, opt httpclient.CompletionOption) (*http.Response, error) {
	return f.do(ctx, Call{Op: "GetURLWithOption", Method: http.MethodGet, URL: urlString(u), Option: opt})
}

func (f *Fake) getBytes(ctx context.Context, call Call) ([]byte, error) {
	resp, err := f.do(ctx, call)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if classErr := httpclient.ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return nil, classErr
	}
	return body, nil
}

func (f *Fake) GetBytes(ctx context.Context, uri string) ([]byte, error) {
	return f.getBytes(ctx, Call{Op: "GetBytes", Method: http.MethodGet, URL: uri})
}

func (f *Fake) GetBytesURL(ctx context.Context, u *url.URL) ([]byte, error) {
	return f.getBytes(ctx, Call{Op: "GetBytesURL", Method: http.MethodGet, URL: urlString(u)})
}

func (f *Fake) getStream(ctx context.Context, call Call) (io.ReadCloser, error) {
	resp, err := f.do(ctx, call)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, httpclient.ClassifyStatusCode(resp.StatusCode, body)
	}
	return resp.Body, nil
}

func (f *Fake) GetStream(ctx context.Context, uri string) (io.ReadCloser, error) {
	return f.getStream(ctx, Call{Op: "GetStream", Method: http.MethodGet, URL: uri, Option: httpclient.ResponseHeadersRead})
}

func (f *Fake) GetStreamURL(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	return f.getStream(ctx, Call{Op: "GetStreamURL", Method: http.MethodGet, URL: urlString(u), Option: httpclient.ResponseHeadersRead})
}

func (f *Fake) GetString(ctx context.Context, uri string) (string, error) {
	b, err := f.getBytes(ctx, Call{Op: "GetString", Method: http.MethodGet, URL: uri})
	return string(b), err
}

func (f *Fake) GetStringURL(ctx context.Context, u *url.URL) (string, error) {
	b, err := f.getBytes(ctx, Call{Op: "GetStringURL", Method: http.MethodGet, URL: urlString(u)})
	return string(b), err
}

func (f *Fake) Post(ctx context.Context, uri, contentType string, body io.Reader) (*http.Response, error) {
	return f.do(ctx, Call{Op: "Post", Method: http.MethodPost, URL: uri, ContentType: contentType, Body: readBody(body)})
}

func (f *Fake) PostURL(ctx context.Context, u *url.URL, contentType string, body io.Reader) (*http.Response, error) {
	return f.do(ctx, Call{Op: "PostURL", Method: http.MethodPost, URL: urlString(u), ContentType: contentType, Body: readBody(body)})
}

func (f *Fake) Put(ctx context.Context, uri, contentType string, body io.Reader) (*http.Response, error) {
	return f.do(ctx, Call{Op: "Put", Method: http.MethodPut, URL: uri, ContentType: contentType, Body: readBody(body)})
}

func (f *Fake) PutURL(ctx context.Context, u *url.URL, contentType string, body io.Reader) (*http.Response, error) {
	return f.do(ctx, Call{Op: "PutURL", Method: http.MethodPut, URL: urlString(u), ContentType: contentType, Body: readBody(body)})
}

func (f *Fake) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	return f.SendWithOption(ctx, req, httpclient.ResponseContentRead)
}

func (f *Fake) SendWithOption(ctx context.Context, req *http.Request, opt httpclient.CompletionOption) (*http.Response, error) {
	call := Call{Op: "SendWithOption", Option: opt, Request: req}
	if req != nil {
		call.Method = req.Method
		call.URL = urlString(req.URL)
	}
	return f.do(ctx, call)
}
