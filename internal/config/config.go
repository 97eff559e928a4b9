// internal/config/config.go
//
// This package handles configuration and the .kiba directory structure.
// Every project that runs the wizard gets a .kiba/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// KibaDir is the name of the directory we create in each project
	KibaDir = ".kiba"

	defaultBaseURL        = "http://localhost:8000"
	defaultTimeoutSeconds = 90
	defaultDeliveryCity   = "Wichita"
	defaultDeliveryState  = "KS"
	defaultWindowDays     = 30
	defaultPageSize       = 10
	defaultMaxVendors     = 10
)

const defaultProjectConfigYAML = `# kiba project configuration
version: 1

# Backend API the wizard talks to. Every compute-heavy operation
# (intake, recommendations, vendor search, RFQ rendering) runs there.
api:
  base_url: http://localhost:8000
  timeout_seconds: 90

# Delivery defaults baked into vendor search queries.
delivery:
  city: Wichita
  state: KS
  window_days: 30

search:
  page_size: 10
  max_vendors: 10
`

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL        string `yaml:"base_url" env:"KIBA_API_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"KIBA_API_TIMEOUT_SECONDS"`
}

// DeliveryConfig captures the delivery constraints appended to search queries.
type DeliveryConfig struct {
	City       string `yaml:"city"`
	State      string `yaml:"state"`
	WindowDays int    `yaml:"window_days"`
}

// SearchConfig bounds vendor search and parsing.
type SearchConfig struct {
	PageSize   int `yaml:"page_size"`
	MaxVendors int `yaml:"max_vendors"`
}

// ProjectConfig models .kiba/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	API      APIConfig      `yaml:"api"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Search   SearchConfig   `yaml:"search"`
}

// Config holds the runtime configuration for the wizard.
type Config struct {
	// ProjectDir is the directory the user ran `kiba` from
	ProjectDir string

	// KibaProjectDir is ProjectDir/.kiba
	KibaProjectDir string

	Project ProjectConfig
}

// InitKibaDir creates the .kiba directory structure in the given project
// directory. Called when the CLI starts up.
//
// Structure created:
// .kiba/
// ├── logs/    <- journey log for the wizard session
// ├── state/   <- persisted wizard state between runs
// └── config.yaml
func InitKibaDir(projectDir string) error {
	kibaDir := filepath.Join(projectDir, KibaDir)

	dirs := []string{
		filepath.Join(kibaDir, "logs"),
		filepath.Join(kibaDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(kibaDir, "config.yaml"))
}

// New creates a Config populated from config.yaml and the environment.
// Environment variables win over file values.
func New(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:     projectDir,
		KibaProjectDir: filepath.Join(projectDir, KibaDir),
		Project:        defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.Project.API); err != nil {
		return nil, fmt.Errorf("config: environment overrides: %w", err)
	}
	cfg.Project.applyDefaults()
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.KibaProjectDir, "logs")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.KibaProjectDir, "state")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.KibaProjectDir, "config.yaml")
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.Project.API.BaseURL, "/")
}

// Timeout returns the per-request API timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Project.API.TimeoutSeconds) * time.Second
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		API: APIConfig{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Delivery: DeliveryConfig{
			City:       defaultDeliveryCity,
			State:      defaultDeliveryState,
			WindowDays: defaultWindowDays,
		},
		Search: SearchConfig{
			PageSize:   defaultPageSize,
			MaxVendors: defaultMaxVendors,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	pc.API.BaseURL = strings.TrimSpace(pc.API.BaseURL)
	if pc.API.BaseURL == "" {
		pc.API.BaseURL = defaultBaseURL
	}
	if pc.API.TimeoutSeconds == 0 {
		pc.API.TimeoutSeconds = defaultTimeoutSeconds
	}
	pc.Delivery.City = strings.TrimSpace(pc.Delivery.City)
	pc.Delivery.State = strings.TrimSpace(pc.Delivery.State)
	if pc.Delivery.City == "" {
		pc.Delivery.City = defaultDeliveryCity
	}
	if pc.Delivery.State == "" {
		pc.Delivery.State = defaultDeliveryState
	}
	if pc.Delivery.WindowDays == 0 {
		pc.Delivery.WindowDays = defaultWindowDays
	}
	if pc.Search.PageSize == 0 {
		pc.Search.PageSize = defaultPageSize
	}
	if pc.Search.MaxVendors == 0 {
		pc.Search.MaxVendors = defaultMaxVendors
	}
}

func (pc ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	parsed, err := url.Parse(pc.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url must be http or https, got %q", pc.API.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.base_url is missing a host")
	}
	if pc.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout_seconds must be >= 0")
	}
	if pc.Delivery.WindowDays < 1 {
		return fmt.Errorf("delivery.window_days must be >= 1")
	}
	if pc.Search.PageSize < 1 || pc.Search.MaxVendors < 1 {
		return fmt.Errorf("search.page_size and search.max_vendors must be >= 1")
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}
