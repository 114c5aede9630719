package provider

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fakeFactory(s Settings) (Source, error) {
	return newFakeSource(), nil
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	// Test successful registration
	if err := registry.Register("test", fakeFactory, 100); err != nil {
		t.Errorf("Register() error = %v, want nil", err)
	}

	// Test duplicate registration
	if err := registry.Register("test", fakeFactory, 100); err == nil {
		t.Error("Register() expected error for duplicate, got nil")
	}

	// Test nil factory
	if err := registry.Register("nil", nil, 1); err == nil {
		t.Error("Register() expected error for nil factory, got nil")
	}
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	registry.Register("test", fakeFactory, 100)

	f, exists := registry.Get("test")
	if !exists {
		t.Error("Get() exists = false, want true")
	}
	if f == nil {
		t.Error("Get() factory = nil, want non-nil")
	}

	if _, exists = registry.Get("nonexistent"); exists {
		t.Error("Get() exists = true, want false")
	}
}

func TestRegistry_List(t *testing.T) {
	registry := NewRegistry()
	registry.Register("low", fakeFactory, 50)
	registry.Register("high", fakeFactory, 100)
	registry.Register("also-low", fakeFactory, 50)

	want := []string{"high", "also-low", "low"}
	if diff := cmp.Diff(want, registry.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	if got := registry.Default(); got != "high" {
		t.Errorf("Default() = %q, want %q", got, "high")
	}
	if got := NewRegistry().Default(); got != "" {
		t.Errorf("Default() on empty registry = %q, want empty", got)
	}
}

func TestRegistry_New(t *testing.T) {
	registry := NewRegistry()
	registry.Register("test", fakeFactory, 100)
	registry.Register("broken", func(Settings) (Source, error) {
		return nil, errors.New("api key is required")
	}, 10)

	src, err := registry.New("test", Settings{APIKey: "k"})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	if src.Name() != "fake" {
		t.Errorf("New() source = %q, want %q", src.Name(), "fake")
	}

	if _, err := registry.New("missing", Settings{}); err == nil {
		t.Error("New() expected error for unknown provider, got nil")
	}
	if _, err := registry.New("broken", Settings{}); err == nil {
		t.Error("New() expected factory error, got nil")
	}
}
