package httpclient

import (
	"context"

	"github.com/kbukum/httpwrap/component"
)

// Component wraps a Client with lifecycle management.
// The client is created in Start and closed in Stop.
type Component struct {
	client *Client
	config Config
	opts   []Option
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a new HTTP client component.
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	if c.config.Name == "" {
		return "http"
	}
	return c.config.Name
}

// Start creates the HTTP client.
func (c *Component) Start(_ context.Context) error {
	cl, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.client = cl
	return nil
}

// Stop cancels pending requests and closes idle connections.
func (c *Component) Stop(_ context.Context) error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

// Health reports healthy once the client has been started.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.client == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	}
	return h
}

// Describe returns the component description for startup summaries.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    c.Name(),
		Type:    "http-client",
		Details: c.config.BaseURL,
	}
}

// Client returns the underlying client. Must be called after Start.
func (c *Component) Client() *Client {
	return c.client
}
