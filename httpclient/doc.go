// Package httpclient provides an HTTP client with a base address, default
// request headers, a buffered response limit, a per-request timeout and
// cancellation of all pending requests.
//
// Operations take a context.Context as their cancellation signal and block
// until the response is available. With ResponseContentRead (the default)
// the body is fully buffered before the call returns; with
// ResponseHeadersRead the call returns once headers arrive and the caller
// streams and closes the body.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.example.com/",
//	    Timeout: 30 * time.Second,
//	    Headers: map[string]string{"Accept": "application/json"},
//	})
//
//	resp, err := client.Get(ctx, "users/123")
//
//	body, err := client.GetString(ctx, "users/123") // non-2xx is an error
//
// # Cancellation
//
// CancelPendingRequests aborts every request in flight; requests started
// afterwards are unaffected. Aborted requests fail with an *Error whose code
// is ErrCodeCanceled and which unwraps to context.Canceled. Requests that
// exceed the client timeout fail with ErrCodeTimeout and unwrap to
// context.DeadlineExceeded.
package httpclient
