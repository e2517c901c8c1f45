package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// parseURI parses a string request URI. Relative URIs resolve against the
// base address when the request is sent; the empty string means the base
// address itself.
func parseURI(uri string) (*url.URL, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid request URI %q: %v", uri, err))
	}
	return u, nil
}

// send builds a request for method and u and sends it with opt.
func (c *Client) send(ctx context.Context, method string, u *url.URL, contentType string, body io.Reader, opt CompletionOption) (*http.Response, error) {
	if u == nil {
		return nil, NewValidationError("request URI must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.SendWithOption(ctx, req, opt)
}

func (c *Client) sendString(ctx context.Context, method, uri, contentType string, body io.Reader, opt CompletionOption) (*http.Response, error) {
	u, err := parseURI(uri)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, method, u, contentType, body, opt)
}

// Delete sends a DELETE request to uri.
func (c *Client) Delete(ctx context.Context, uri string) (*http.Response, error) {
	return c.sendString(ctx, http.MethodDelete, uri, "", nil, ResponseContentRead)
}

// DeleteURL sends a DELETE request to u.
func (c *Client) DeleteURL(ctx context.Context, u *url.URL) (*http.Response, error) {
	return c.send(ctx, http.MethodDelete, u, "", nil, ResponseContentRead)
}

// Get sends a GET request to uri and buffers the response body.
func (c *Client) Get(ctx context.Context, uri string) (*http.Response, error) {
	return c.GetWithOption(ctx, uri, ResponseContentRead)
}

// GetURL sends a GET request to u and buffers the response body.
func (c *Client) GetURL(ctx context.Context, u *url.URL) (*http.Response, error) {
	return c.GetURLWithOption(ctx, u, ResponseContentRead)
}

// GetWithOption sends a GET request to uri and returns according to opt.
func (c *Client) GetWithOption(ctx context.Context, uri string, opt CompletionOption) (*http.Response, error) {
	return c.sendString(ctx, http.MethodGet, uri, "", nil, opt)
}

// GetURLWithOption sends a GET request to u and returns according to opt.
func (c *Client) GetURLWithOption(ctx context.Context, u *url.URL, opt CompletionOption) (*http.Response, error) {
	return c.send(ctx, http.MethodGet, u, "", nil, opt)
}

// Post sends a POST request with the given body to uri.
func (c *Client) Post(ctx context.Context, uri, contentType string, body io.Reader) (*http.Response, error) {
	return c.sendString(ctx, http.MethodPost, uri, contentType, body, ResponseContentRead)
}

// PostURL sends a POST request with the given body to u.
func (c *Client) PostURL(ctx context.Context, u *url.URL, contentType string, body io.Reader) (*http.Response, error) {
	return c.send(ctx, http.MethodPost, u, contentType, body, ResponseContentRead)
}

// Put sends a PUT request with the given body to uri.
func (c *Client) Put(ctx context.Context, uri, contentType string, body io.Reader) (*http.Response, error) {
	return c.sendString(ctx, http.MethodPut, uri, contentType, body, ResponseContentRead)
}

// PutURL sends a PUT request with the given body to u.
func (c *Client) PutURL(ctx context.Context, u *url.URL, contentType string, body io.Reader) (*http.Response, error) {
	return c.send(ctx, http.MethodPut, u, contentType, body, ResponseContentRead)
}

// GetBytes sends a GET request to uri and returns the body of a 2xx response.
func (c *Client) GetBytes(ctx context.Context, uri string) ([]byte, error) {
	u, err := parseURI(uri)
	if err != nil {
		return nil, err
	}
	return c.GetBytesURL(ctx, u)
}

// GetBytesURL sends a GET request to u and returns the body of a 2xx response.
func (c *Client) GetBytesURL(ctx context.Context, u *url.URL) ([]byte, error) {
	resp, err := c.GetURLWithOption(ctx, u, ResponseContentRead)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(err)
	}
	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return nil, classErr
	}
	return body, nil
}

// GetString sends a GET request to uri and returns the body of a 2xx response as text.
func (c *Client) GetString(ctx context.Context, uri string) (string, error) {
	body, err := c.GetBytes(ctx, uri)
	return string(body), err
}

// GetStringURL sends a GET request to u and returns the body of a 2xx response as text.
func (c *Client) GetStringURL(ctx context.Context, u *url.URL) (string, error) {
	body, err := c.GetBytesURL(ctx, u)
	return string(body), err
}

// GetStream sends a GET request to uri and returns the streaming body of a
// 2xx response. The caller must close it.
func (c *Client) GetStream(ctx context.Context, uri string) (io.ReadCloser, error) {
	u, err := parseURI(uri)
	if err != nil {
		return nil, err
	}
	return c.GetStreamURL(ctx, u)
}

// GetStreamURL sends a GET request to u and returns the streaming body of a
// 2xx response. The caller must close it.
func (c *Client) GetStreamURL(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	resp, err := c.GetURLWithOption(ctx, u, ResponseHeadersRead)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := readBuffered(resp, c.MaxResponseContentBufferSize())
		_ = resp.Body.Close()
		return nil, ClassifyStatusCode(resp.StatusCode, body)
	}
	return resp.Body, nil
}
