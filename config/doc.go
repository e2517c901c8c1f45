// Package config loads service configuration from a YAML file, a .env file
// and the process environment into a tagged struct.
//
//	var cfg struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    HTTPClient httpclient.Config `mapstructure:"http_client"`
//	}
//	err := config.LoadConfig("orders", &cfg)
//
// Environment variables override file values; nested keys are joined with
// underscores (HTTP_CLIENT_BASE_URL).
package config
