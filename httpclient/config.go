package httpclient

import (
	"fmt"
	"math"
	"time"

	"github.com/kbukum/httpwrap/security"
	"github.com/kbukum/httpwrap/validation"
)

const (
	// DefaultTimeout is the request timeout used when none is configured.
	DefaultTimeout = 100 * time.Second

	// InfiniteTimeout disables the client timeout. Caller contexts still apply.
	InfiniteTimeout time.Duration = -1

	// DefaultMaxResponseContentBufferSize is the buffered response limit used
	// when none is configured.
	DefaultMaxResponseContentBufferSize int64 = math.MaxInt32
)

// Config configures the HTTP client.
type Config struct {
	// Name identifies the client in logs and lifecycle summaries.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the base address relative request URIs resolve against.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// Timeout bounds each request. Zero means DefaultTimeout, negative
	// means no client timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxResponseContentBufferSize caps buffered response bodies in bytes.
	// Zero means DefaultMaxResponseContentBufferSize.
	MaxResponseContentBufferSize int64 `yaml:"max_response_content_buffer_size" mapstructure:"max_response_content_buffer_size" validate:"gte=0"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// TLS configures TLS settings for the HTTP transport.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// HTTP2 enables HTTP/2 on the transport for TLS endpoints.
	HTTP2 bool `yaml:"http2" mapstructure:"http2"`

	// RequestIDHeader, when set, names a header stamped with a fresh UUID on
	// requests that don't already carry it.
	RequestIDHeader string `yaml:"request_id_header" mapstructure:"request_id_header"`
}

// ApplyDefaults fills in zero-value fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Timeout < 0 {
		c.Timeout = InfiniteTimeout
	}
	if c.MaxResponseContentBufferSize == 0 {
		c.MaxResponseContentBufferSize = DefaultMaxResponseContentBufferSize
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	if c.BaseURL != "" {
		if _, err := parseBaseAddress(c.BaseURL); err != nil {
			return err
		}
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}
