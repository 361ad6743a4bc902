package config

import (
	"fmt"
	"strings"
	"time"

	"case-scraper/pkg/models"
	"case-scraper/pkg/utils"
)

const (
	minYear = 1900
	maxYear = 2100
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// BaseURL
	if c.BaseURL == "" {
		c.BaseURL = "https://lawphil.net/judjuris/"
	} else if !strings.HasSuffix(c.BaseURL, "/") {
		warnings = append(warnings, fmt.Sprintf("base_url '%s' has no trailing slash, appending one", c.BaseURL))
		c.BaseURL += "/"
	}

	// OutputDir
	if c.OutputDir == "" {
		warnings = append(warnings, "output_dir is empty, defaulting to 'RESTRUCTURED_DB'")
		c.OutputDir = "RESTRUCTURED_DB"
	}

	// ProgressFile
	if c.ProgressFile == "" {
		c.ProgressFile = "scraping_progress.json"
	}

	// DelayPerRequest
	if c.DelayPerRequest < 0 {
		warnings = append(warnings, fmt.Sprintf("delay_per_request cannot be negative, defaulting to %s", DefaultDelay))
		c.DelayPerRequest = DefaultDelay
	} else if c.DelayPerRequest == 0 {
		warnings = append(warnings, "delay_per_request is 0, requests will not be paced")
	}

	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}

	// Year range
	if c.StartYear == 0 {
		c.StartYear = 1901
	}
	if c.EndYear == 0 {
		c.EndYear = 1995
	}
	if c.StartYear < minYear || c.StartYear > maxYear || c.EndYear < minYear || c.EndYear > maxYear {
		return warnings, fmt.Errorf("%w: years must be within %d..%d (got %d..%d)",
			utils.ErrConfigValidation, minYear, maxYear, c.StartYear, c.EndYear)
	}
	if c.EndYear < c.StartYear {
		return warnings, fmt.Errorf("%w: end_year %d is before start_year %d",
			utils.ErrConfigValidation, c.EndYear, c.StartYear)
	}

	// Archive start
	if c.ArchiveStartYear == 0 {
		c.ArchiveStartYear = 1901
	}
	if c.ArchiveStartMonth == "" {
		c.ArchiveStartMonth = "august"
	}
	c.ArchiveStartMonth = strings.ToLower(c.ArchiveStartMonth)
	if !models.IsMonth(c.ArchiveStartMonth) {
		return warnings, fmt.Errorf("%w: archive_start_month '%s' is not a month name",
			utils.ErrConfigValidation, c.ArchiveStartMonth)
	}

	if c.IndexFile == "" {
		c.IndexFile = "case_index.json"
	}
	if c.ExtractionVersion == "" {
		c.ExtractionVersion = models.ExtractionVersion
	}

	c.validateHTTPClientSettings()

	return warnings, nil
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 30 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 10
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}

// ValidateMonth normalizes an explicit month flag; empty is allowed
func ValidateMonth(month string) (string, error) {
	if month == "" {
		return "", nil
	}
	m := strings.ToLower(strings.TrimSpace(month))
	if !models.IsMonth(m) {
		return "", fmt.Errorf("%w: '%s' is not a month name", utils.ErrConfigValidation, month)
	}
	return m, nil
}
