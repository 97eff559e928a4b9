package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	c, err := New(projectDir)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.BaseURL() != defaultBaseURL {
		t.Fatalf("expected default base url %q, got %q", defaultBaseURL, c.BaseURL())
	}
	if c.Timeout() != defaultTimeoutSeconds*time.Second {
		t.Fatalf("expected default timeout, got %s", c.Timeout())
	}
	if c.Project.Delivery.City != "Wichita" || c.Project.Delivery.State != "KS" {
		t.Fatalf("wrong delivery defaults: %+v", c.Project.Delivery)
	}
}

func TestNewParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	kibaDir := filepath.Join(projectDir, ".kiba")
	if err := os.MkdirAll(kibaDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
api:
  base_url: https://procurement.example.com/
  timeout_seconds: 15
delivery:
  city: Austin
  state: TX
  window_days: 14
search:
  page_size: 5
  max_vendors: 8
`)
	if err := os.WriteFile(filepath.Join(kibaDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := New(projectDir)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if c.BaseURL() != "https://procurement.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", c.BaseURL())
	}
	if c.Timeout() != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %s", c.Timeout())
	}
	if c.Project.Delivery.WindowDays != 14 {
		t.Fatalf("expected window_days 14, got %d", c.Project.Delivery.WindowDays)
	}
	if c.Project.Search.MaxVendors != 8 {
		t.Fatalf("expected max_vendors 8, got %d", c.Project.Search.MaxVendors)
	}
}

func TestNewEnvOverridesFile(t *testing.T) {
	projectDir := t.TempDir()
	kibaDir := filepath.Join(projectDir, ".kiba")
	if err := os.MkdirAll(kibaDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := "version: 1\napi:\n  base_url: http://file.example.com\n"
	if err := os.WriteFile(filepath.Join(kibaDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KIBA_API_URL", "http://env.example.com")
	t.Setenv("KIBA_API_TIMEOUT_SECONDS", "5")
	c, err := New(projectDir)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if c.BaseURL() != "http://env.example.com" {
		t.Fatalf("expected env override to win, got %q", c.BaseURL())
	}
	if c.Timeout() != 5*time.Second {
		t.Fatalf("expected env timeout 5s, got %s", c.Timeout())
	}
}

func TestNewValidation(t *testing.T) {
	projectDir := t.TempDir()
	kibaDir := filepath.Join(projectDir, ".kiba")
	if err := os.MkdirAll(kibaDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := "version: 1\napi:\n  base_url: ftp://example.com\n"
	if err := os.WriteFile(filepath.Join(kibaDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(projectDir); err == nil {
		t.Fatalf("expected validation error but got none")
	}
}

func TestInitKibaDirWritesDefaultConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitKibaDir(projectDir); err != nil {
		t.Fatalf("InitKibaDir returned error: %v", err)
	}
	for _, sub := range []string{"logs", "state"} {
		info, err := os.Stat(filepath.Join(projectDir, ".kiba", sub))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory: %v", sub, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(projectDir, ".kiba", "config.yaml"))
	if err != nil {
		t.Fatalf("expected default config.yaml: %v", err)
	}
	if !strings.Contains(string(data), "base_url") {
		t.Fatalf("default config missing api section:\n%s", data)
	}
}
