package httpwrap

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kbukum/httpwrap/errors"
	"github.com/kbukum/httpwrap/httpclient"
)

// Wrapper implements Client by delegating to an *httpclient.Client.
type Wrapper struct {
	client *httpclient.Client
}

var _ Client = (*Wrapper)(nil)

// New wraps client. It fails when client is nil.
func New(client *httpclient.Client) (*Wrapper, error) {
	if client == nil {
		return nil, errors.InvalidInput("client", "must not be nil")
	}
	return &Wrapper{client: client}, nil
}

func (w *Wrapper) BaseAddress() *url.URL { return w.client.BaseAddress() }

func (w *Wrapper) SetBaseAddress(u *url.URL) error { return w.client.SetBaseAddress(u) }

func (w *Wrapper) DefaultRequestHeaders() http.Header { return w.client.DefaultRequestHeaders() }

func (w *Wrapper) MaxResponseContentBufferSize() int64 {
	return w.client.MaxResponseContentBufferSize()
}

func (w *Wrapper) SetMaxResponseContentBufferSize(n int64) error {
	return w.client.SetMaxResponseContentBufferSize(n)
}

func (w *Wrapper) Timeout() time.Duration { return w.client.Timeout() }

func (w *Wrapper) SetTimeout(d time.Duration) error { return w.client.SetTimeout(d) }

func (w *Wrapper) CancelPendingRequests() { w.client.CancelPendingRequests() }

func (w *Wrapper) Delete(ctx context.Context, uri string) (*http.Response, error) {
	return w.client.Delete(ctx, uri)
}

func (w *Wrapper) DeleteURL(ctx context.Context, u *url.URL) (*http.Response, error) {
	return w.client.DeleteURL(ctx, u)
}

func (w *Wrapper) Get(ctx context.Context, uri string) (*http.Response, error) {
	return w.client.Get(ctx, uri)
}

func (w *Wrapper) GetURL(ctx context.Context, u *url.URL) (*http.Response, error) {
	return w.client.GetURL(ctx, u)
}

// GetWithOption forwards opt. Earlier versions of this adapter dropped the
// option here and always buffered the body; callers relying on that must
// pass httpclient.ResponseContentRead.
func (w *Wrapper) GetWithOption(ctx context.Context, uri string, opt httpclient.CompletionOption) (*http.Response, error) {
	return w.client.GetWithOption(ctx, uri, opt)
}

func (w *Wrapper) GetURLWithOption(ctx context.Context, u *url.URL, opt httpclient.CompletionOption) (*http.Response, error) {
	return w.client.GetURLWithOption(ctx, u, opt)
}

func (w *Wrapper) GetBytes(ctx context.Context, uri string) ([]byte, error) {
	return w.client.GetBytes(ctx, uri)
}

func (w *Wrapper) GetBytesURL(ctx context.Context, u *url.URL) ([]byte, error) {
	return w.client.GetBytesURL(ctx, u)
}

func (w *Wrapper) GetStream(ctx context.Context, uri string) (io.ReadCloser, error) {
	return w.client.GetStream(ctx, uri)
}

func (w *Wrapper) GetStreamURL(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	return w.client.GetStreamURL(ctx, u)
}

func (w *Wrapper) GetString(ctx context.Context, uri string) (string, error) {
	return w.client.GetString(ctx, uri)
}

func (w *Wrapper) GetStringURL(ctx context.Context, u *url.URL) (string, error) {
	return w.client.GetStringURL(ctx, u)
}

func (w *Wrapper) Post(ctx context.Context, uri, contentType string, body io.Reader) (*http.Response, error) {
	return w.client.Post(ctx, uri, contentType, body)
}

func (w *Wrapper) PostURL(ctx context.Context, u *url.URL, contentType string, body io.Reader) (*http.Response, error) {
	return w.client.PostURL(ctx, u, contentType, body)
}

func (w *Wrapper) Put(ctx context.Context, uri, contentType string, body io.Reader) (*http.Response, error) {
	return w.client.Put(ctx, uri, contentType, body)
}

func (w *Wrapper) PutURL(ctx context.Context, u *url.URL, contentType string, body io.Reader) (*http.Response, error) {
	return w.client.PutURL(ctx, u, contentType, body)
}

func (w *Wrapper) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	return w.client.Send(ctx, req)
}

func (w *Wrapper) SendWithOption(ctx context.Context, req *http.Request, opt httpclient.CompletionOption) (*http.Response, error) {
	return w.client.SendWithOption(ctx, req, opt)
}
