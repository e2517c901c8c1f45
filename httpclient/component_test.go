package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/httpwrap/component"
)

func TestComponent_Lifecycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	comp := NewComponent(Config{
		Name:    "test-http",
		BaseURL: srv.URL,
	})

	if comp.Client() != nil {
		t.Error("Client() should be nil before Start()")
	}

	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if comp.Client() == nil {
		t.Fatal("Client() should not be nil after Start()")
	}

	health := comp.Health(context.Background())
	if health.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s", health.Status)
	}
	if health.Name != "test-http" {
		t.Errorf("expected name test-http, got %s", health.Name)
	}

	resp, err := comp.Client().Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	if err := comp.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestComponent_StartInvalidConfig(t *testing.T) {
	comp := NewComponent(Config{BaseURL: "/relative"})
	if err := comp.Start(context.Background()); err == nil {
		t.Fatal("expected Start() to fail for a relative base URL")
	}
	if comp.Client() != nil {
		t.Error("Client() should stay nil after a failed Start()")
	}
}

func TestComponent_Name(t *testing.T) {
	if got := NewComponent(Config{}).Name(); got != "http" {
		t.Errorf("expected default name 'http', got %q", got)
	}
	if got := NewComponent(Config{Name: "my-api"}).Name(); got != "my-api" {
		t.Errorf("expected 'my-api', got %q", got)
	}
}

func TestComponent_Describe(t *testing.T) {
	comp := NewComponent(Config{Name: "my-api", BaseURL: "http://example.com"})
	desc := comp.Describe()
	if desc.Type != "http-client" {
		t.Errorf("expected type 'http-client', got %q", desc.Type)
	}
	if desc.Details != "http://example.com" {
		t.Errorf("expected details with base URL, got %q", desc.Details)
	}
}

func TestComponent_Health_Unhealthy_BeforeStart(t *testing.T) {
	comp := NewComponent(Config{BaseURL: "http://localhost"})
	health := comp.Health(context.Background())
	if health.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before Start(), got %s", health.Status)
	}
}

func TestComponent_StopBeforeStart(t *testing.T) {
	if err := NewComponent(Config{}).Stop(context.Background()); err != nil {
		t.Errorf("Stop() before Start() error = %v", err)
	}
}
