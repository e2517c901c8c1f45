package bootstrap

import (
	"fmt"
	"time"

	"github.com/kbukum/httpwrap/config"
	"github.com/kbukum/httpwrap/httpclient"
	"github.com/kbukum/httpwrap/validation"
)

// Config is the configuration of an application built with this package.
// It satisfies config.Defaulter and config.Validator, so config.LoadConfig
// completes and checks it.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	HTTPClient           httpclient.Config   `yaml:"http_client" mapstructure:"http_client"`
	Observability        ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ObservabilityConfig controls OTLP export of traces and metrics.
type ObservabilityConfig struct {
	Tracing    bool          `yaml:"tracing" mapstructure:"tracing"`
	Metrics    bool          `yaml:"metrics" mapstructure:"metrics"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults fills in defaults for every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.HTTPClient.Name == "" {
		c.HTTPClient.Name = c.Name
	}
	c.HTTPClient.ApplyDefaults()
	if c.Observability.Endpoint == "" {
		c.Observability.Endpoint = "localhost:4318"
	}
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
	if c.Observability.Interval == 0 {
		c.Observability.Interval = 15 * time.Second
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.HTTPClient.Validate(); err != nil {
		return fmt.Errorf("config.http_client: %w", err)
	}
	if err := validation.Validate(&c.Observability); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return nil
}
