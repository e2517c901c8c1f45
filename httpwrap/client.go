package httpwrap

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kbukum/httpwrap/httpclient"
)

// Client is the surface of an HTTP client that calling code depends on.
// Methods taking a context abort when it is done.
type Client interface {
	BaseAddress() *url.URL
	SetBaseAddress(u *url.URL) error
	DefaultRequestHeaders() http.Header
	MaxResponseContentBufferSize() int64
	SetMaxResponseContentBufferSize(n int64) error
	Timeout() time.Duration
	SetTimeout(d time.Duration) error

	// CancelPendingRequests aborts every request in flight.
	CancelPendingRequests()

	Delete(ctx context.Context, uri string) (*http.Response, error)
	DeleteURL(ctx context.Context, u *url.URL) (*http.Response, error)

	Get(ctx context.Context, uri string) (*http.Response, error)
	GetURL(ctx context.Context, u *url.URL) (*http.Response, error)
	GetWithOption(ctx context.Context, uri string, opt httpclient.CompletionOption) (*http.Response, error)
	GetURLWithOption(ctx context.Context, u *url.URL, opt httpclient.CompletionOption) (*http.Response, error)

	GetBytes(ctx context.Context, uri string) ([]byte, error)
	GetBytesURL(ctx context.Context, u *url.URL) ([]byte, error)
	GetStream(ctx context.Context, uri string) (io.ReadCloser, error)
	GetStreamURL(ctx context.Context, u *url.URL) (io.ReadCloser, error)
	GetString(ctx context.Context, uri string) (string, error)
	GetStringURL(ctx context.Context, u *url.URL) (string, error)

	Post(ctx context.Context, uri, contentType string, body io.Reader) (*http.Response, error)
	PostURL(ctx context.Context, u *url.URL, contentType string, body io.Reader) (*http.Response, error)
	Put(ctx context.Context, uri, contentType string, body io.Reader) (*http.Response, error)
	PutURL(ctx context.Context, u *url.URL, contentType string, body io.Reader) (*http.Response, error)

	Send(ctx context.Context, req *http.Request) (*http.Response, error)
	SendWithOption(ctx context.Context, req *http.Request, opt httpclient.CompletionOption) (*http.Response, error)
}
