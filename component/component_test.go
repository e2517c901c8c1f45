package component

import (
	"context"
	"fmt"
	"testing"
)

type stubComponent struct {
	name     string
	startErr error
	stopErr  error
	events   *[]string
}

func (s *stubComponent) Name() string { return s.name }

func (s *stubComponent) Start(context.Context) error {
	*s.events = append(*s.events, "start:"+s.name)
	return s.startErr
}

func (s *stubComponent) Stop(context.Context) error {
	*s.events = append(*s.events, "stop:"+s.name)
	return s.stopErr
}

func (s *stubComponent) Health(context.Context) Health {
	return Health{Name: s.name, Status: StatusHealthy}
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	var events []string
	r := NewRegistry()
	if err := r.Register(&stubComponent{name: "a", events: &events}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&stubComponent{name: "a", events: &events}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if r.Get("a") == nil {
		t.Error("expected registered component")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unknown component")
	}
}

func TestRegistry_StartStopOrder(t *testing.T) {
	var events []string
	r := NewRegistry()
	_ = r.Register(&stubComponent{name: "a", events: &events})
	_ = r.Register(&stubComponent{name: "b", events: &events})

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := []string{"start:a", "start:b", "stop:b", "stop:a"}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestRegistry_StartFailureStopsOnlyStarted(t *testing.T) {
	var events []string
	r := NewRegistry()
	_ = r.Register(&stubComponent{name: "a", events: &events})
	_ = r.Register(&stubComponent{name: "b", startErr: fmt.Errorf("boom"), events: &events})
	_ = r.Register(&stubComponent{name: "c", events: &events})

	ctx := context.Background()
	if err := r.StartAll(ctx); err == nil {
		t.Fatal("expected start error")
	}
	_ = r.StopAll(ctx)

	want := []string{"start:a", "start:b", "stop:a"}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestRegistry_StopErrors(t *testing.T) {
	var events []string
	r := NewRegistry()
	_ = r.Register(&stubComponent{name: "a", stopErr: fmt.Errorf("stuck"), events: &events})

	ctx := context.Background()
	_ = r.StartAll(ctx)
	if err := r.StopAll(ctx); err == nil {
		t.Fatal("expected stop error")
	}
}

func TestRegistry_HealthAll(t *testing.T) {
	var events []string
	r := NewRegistry()
	_ = r.Register(&stubComponent{name: "a", events: &events})

	health := r.HealthAll(context.Background())
	if len(health) != 1 || health[0].Status != StatusHealthy {
		t.Errorf("unexpected health: %v", health)
	}
}
