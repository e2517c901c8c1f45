package httpclient

// CompletionOption controls when a request operation returns.
type CompletionOption int

const (
	// ResponseContentRead returns after the whole response body has been
	// buffered, bounded by MaxResponseContentBufferSize.
	ResponseContentRead CompletionOption = iota
	// ResponseHeadersRead returns as soon as the response headers arrive.
	// The body streams from the connection and the caller must close it.
	ResponseHeadersRead
)

// String returns the option name.
func (o CompletionOption) String() string {
	switch o {
	case ResponseContentRead:
		return "ResponseContentRead"
	case ResponseHeadersRead:
		return "ResponseHeadersRead"
	default:
		return "unknown"
	}
}

func (o CompletionOption) valid() bool {
	return o == ResponseContentRead || o == ResponseHeadersRead
}
