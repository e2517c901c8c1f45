package bootstrap

import (
	"time"

	"github.com/kbukum/httpwrap/httpclient"
	"github.com/kbukum/httpwrap/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	clientOpts      []httpclient.Option
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{gracefulTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the global logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = d
	}
}

// WithClientOptions passes options to the HTTP client when it is created.
func WithClientOptions(opts ...httpclient.Option) Option {
	return func(o *appOptions) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}
