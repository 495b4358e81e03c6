package storage_test

import (
	"strings"
	"testing"

	"github.com/Mranger2024/plasticwatcha/pkg/storage"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: "test-connection"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ContainerName != "contributions" {
		t.Errorf("container_name: got %s, want contributions", cfg.ContainerName)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_CONTAINER", "uploads")
	t.Setenv("TEST_CONN", "override-connection")
	t.Setenv("TEST_PUBLIC_URL", "https://cdn.example.com/uploads")

	env := &storage.Env{
		ContainerName:    "TEST_CONTAINER",
		ConnectionString: "TEST_CONN",
		PublicBaseURL:    "TEST_PUBLIC_URL",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ContainerName != "uploads" {
		t.Errorf("container_name: got %s, want uploads", cfg.ContainerName)
	}
	if cfg.ConnectionString != "override-connection" {
		t.Errorf("connection_string: got %s", cfg.ConnectionString)
	}
	if cfg.PublicBaseURL != "https://cdn.example.com/uploads" {
		t.Errorf("public_base_url: got %s", cfg.PublicBaseURL)
	}
}

func TestFinalizeMissingConnectionString(t *testing.T) {
	cfg := storage.Config{ContainerName: "contributions"}

	err := cfg.Finalize(nil)
	if err == nil {
		t.Fatal("expected error for missing connection string, got nil")
	}
	if !strings.Contains(err.Error(), "connection_string") {
		t.Errorf("error should mention connection_string: %v", err)
	}
}

func TestMerge(t *testing.T) {
	base := storage.Config{
		ContainerName:    "contributions",
		ConnectionString: "base-connection",
	}

	overlay := storage.Config{
		ConnectionString: "overlay-connection",
		PublicBaseURL:    "https://cdn.example.com",
	}

	base.Merge(&overlay)

	if base.ContainerName != "contributions" {
		t.Errorf("container_name overwritten by zero value: %s", base.ContainerName)
	}
	if base.ConnectionString != "overlay-connection" {
		t.Errorf("connection_string: got %s, want overlay-connection", base.ConnectionString)
	}
	if base.PublicBaseURL != "https://cdn.example.com" {
		t.Errorf("public_base_url: got %s", base.PublicBaseURL)
	}
}
