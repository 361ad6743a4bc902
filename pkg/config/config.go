package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the application configuration for a crawl session
type AppConfig struct {
	BaseURL            string           `yaml:"base_url"`                      // Root of the decision archive, ends with "/"
	OutputDir          string           `yaml:"output_dir"`                    // Root of the {year}/{month} record tree
	ProgressFile       string           `yaml:"progress_file"`                 // Progress State JSON document
	DelayPerRequest    time.Duration    `yaml:"delay_per_request"`             // Fixed pause before every fetch
	UserAgent          string           `yaml:"user_agent,omitempty"`          // Sent with every request
	StartYear          int              `yaml:"start_year"`                    // First year of the crawl range
	EndYear            int              `yaml:"end_year"`                      // Last year of the crawl range (inclusive)
	ArchiveStartYear   int              `yaml:"archive_start_year,omitempty"`  // First year published by the archive
	ArchiveStartMonth  string           `yaml:"archive_start_month,omitempty"` // First month published in ArchiveStartYear
	RespectRobots      bool             `yaml:"respect_robots,omitempty"`      // Consult robots.txt before each fetch
	LedgerDir          string           `yaml:"ledger_dir,omitempty"`          // Badger attempt ledger; empty disables it
	MetricsAddr        string           `yaml:"metrics_addr,omitempty"`        // Prometheus listen address; empty disables it
	IndexFile          string           `yaml:"index_file,omitempty"`          // Default case index path (relative to OutputDir when not absolute)
	ExtractionVersion  string           `yaml:"extraction_version,omitempty"`  // Stamped on every record
	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout             time.Duration `yaml:"timeout,omitempty"`               // Overall request timeout
	MaxIdleConns        int           `yaml:"max_idle_conns,omitempty"`        // Max total idle connections
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout,omitempty"`     // Timeout for idle connections
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout,omitempty"` // Timeout for TLS handshake
	DialerTimeout       time.Duration `yaml:"dialer_timeout,omitempty"`        // Connection dial timeout
	DialerKeepAlive     time.Duration `yaml:"dialer_keep_alive,omitempty"`     // TCP keep-alive interval
}

// DefaultDelay is the politeness delay used when the config file does not set one
const DefaultDelay = 2 * time.Second

// Load reads a YAML config file. A missing file is not an error: the default
// config is returned and Validate fills in the rest. delay_per_request is
// pre-seeded so an explicit 0 in the file survives and disables pacing.
func Load(path string) (*AppConfig, bool, error) {
	cfg := AppConfig{DelayPerRequest: DefaultDelay}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, false, nil
		}
		return nil, false, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, true, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, true, nil
}

// EffectiveStartMonth returns the month a fresh (non-resume) run begins at in startYear.
// An explicit month wins; otherwise the archive's first month applies to its first year.
func (c *AppConfig) EffectiveStartMonth(startYear int, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if startYear == c.ArchiveStartYear && c.ArchiveStartMonth != "" {
		return c.ArchiveStartMonth
	}
	return ""
}
