package httpclient

import (
	"testing"
	"time"

	"github.com/kbukum/httpwrap/security"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.MaxResponseContentBufferSize != DefaultMaxResponseContentBufferSize {
		t.Errorf("expected default buffer size %d, got %d", DefaultMaxResponseContentBufferSize, cfg.MaxResponseContentBufferSize)
	}
}

func TestConfig_ApplyDefaults_PreservesExisting(t *testing.T) {
	cfg := Config{Timeout: 10 * time.Second, MaxResponseContentBufferSize: 1024}
	cfg.ApplyDefaults()
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Timeout)
	}
	if cfg.MaxResponseContentBufferSize != 1024 {
		t.Errorf("expected buffer size 1024, got %d", cfg.MaxResponseContentBufferSize)
	}
}

func TestConfig_ApplyDefaults_NegativeTimeoutIsInfinite(t *testing.T) {
	cfg := Config{Timeout: -5 * time.Second}
	cfg.ApplyDefaults()
	if cfg.Timeout != InfiniteTimeout {
		t.Errorf("expected InfiniteTimeout, got %v", cfg.Timeout)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "empty", cfg: Config{}},
		{name: "absolute base", cfg: Config{BaseURL: "https://api.example.com/v1/"}},
		{name: "invalid base", cfg: Config{BaseURL: "not a url"}, wantErr: true},
		{name: "relative base", cfg: Config{BaseURL: "/v1/"}, wantErr: true},
		{name: "negative buffer", cfg: Config{MaxResponseContentBufferSize: -1}, wantErr: true},
		{
			name:    "tls cert without key",
			cfg:     Config{TLS: &security.TLSConfig{CertFile: "cert.pem"}},
			wantErr: true,
		},
		{
			name: "tls min version",
			cfg:  Config{TLS: &security.TLSConfig{MinVersion: "1.2"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildTransport_HTTP2AndTLS(t *testing.T) {
	tr, err := buildTransport(Config{
		HTTP2: true,
		TLS:   &security.TLSConfig{ServerName: "api.internal", MinVersion: "1.2"},
	})
	if err != nil {
		t.Fatalf("buildTransport() error = %v", err)
	}
	if tr.TLSClientConfig == nil || tr.TLSClientConfig.ServerName != "api.internal" {
		t.Fatalf("expected TLS server name to be applied, got %+v", tr.TLSClientConfig)
	}
	found := false
	for _, p := range tr.TLSClientConfig.NextProtos {
		if p == "h2" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected h2 in NextProtos, got %v", tr.TLSClientConfig.NextProtos)
	}
}
