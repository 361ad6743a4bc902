package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"case-scraper/pkg/utils"
)

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestAppConfig_Validate_Defaults(t *testing.T) {
	cfg := AppConfig{} // Zero value
	warnings, err := cfg.Validate()
	require.NoError(t, err)

	assert.Equal(t, "https://lawphil.net/judjuris/", cfg.BaseURL)
	assert.Equal(t, "RESTRUCTURED_DB", cfg.OutputDir)
	assert.Equal(t, "scraping_progress.json", cfg.ProgressFile)
	assert.Equal(t, time.Duration(0), cfg.DelayPerRequest)
	assert.Equal(t, 1901, cfg.StartYear)
	assert.Equal(t, 1995, cfg.EndYear)
	assert.Equal(t, 1901, cfg.ArchiveStartYear)
	assert.Equal(t, "august", cfg.ArchiveStartMonth)
	assert.Equal(t, "case_index.json", cfg.IndexFile)
	assert.Equal(t, "2.0_enhanced_full_content", cfg.ExtractionVersion)
	assert.NotEmpty(t, cfg.UserAgent)

	assert.Equal(t, 30*time.Second, cfg.HTTPClientSettings.Timeout)
	assert.Equal(t, 10, cfg.HTTPClientSettings.MaxIdleConns)
	assert.Equal(t, 15*time.Second, cfg.HTTPClientSettings.DialerTimeout)

	assert.True(t, containsWarning(warnings, "output_dir is empty"))
	assert.True(t, containsWarning(warnings, "requests will not be paced"))
}

func TestAppConfig_Validate_TrailingSlash(t *testing.T) {
	cfg := AppConfig{BaseURL: "https://example.com/archive"}
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/archive/", cfg.BaseURL)
	assert.True(t, containsWarning(warnings, "trailing slash"))
}

func TestAppConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  AppConfig
	}{
		{"end before start", AppConfig{StartYear: 1950, EndYear: 1940}},
		{"year below range", AppConfig{StartYear: 1800, EndYear: 1901}},
		{"year above range", AppConfig{StartYear: 1901, EndYear: 2200}},
		{"bad archive month", AppConfig{ArchiveStartMonth: "smarch"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, utils.ErrConfigValidation)
		})
	}
}

func TestAppConfig_Validate_NegativeDelay(t *testing.T) {
	cfg := AppConfig{DelayPerRequest: -time.Second}
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.DelayPerRequest)
	assert.True(t, containsWarning(warnings, "delay_per_request cannot be negative"))
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields default delay", func(t *testing.T) {
		cfg, found, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, AppConfig{DelayPerRequest: DefaultDelay}, *cfg)
	})

	t.Run("unset delay keeps default", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("start_year: 1920\n"), 0o644))
		cfg, _, err := Load(path)
		require.NoError(t, err)
		_, err = cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, DefaultDelay, cfg.DelayPerRequest)
	})

	t.Run("explicit zero delay disables pacing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("delay_per_request: 0s\n"), 0o644))
		cfg, _, err := Load(path)
		require.NoError(t, err)
		warnings, err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), cfg.DelayPerRequest)
		assert.True(t, containsWarning(warnings, "requests will not be paced"))
	})

	t.Run("parses yaml with durations", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
base_url: https://example.com/judjuris/
output_dir: /data/cases
progress_file: /data/progress.json
delay_per_request: 500ms
start_year: 1930
end_year: 1935
respect_robots: true
ledger_dir: /data/ledger
http_client_settings:
  timeout: 12s
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, found, err := Load(path)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "/data/cases", cfg.OutputDir)
		assert.Equal(t, 500*time.Millisecond, cfg.DelayPerRequest)
		assert.Equal(t, 1930, cfg.StartYear)
		assert.Equal(t, 1935, cfg.EndYear)
		assert.True(t, cfg.RespectRobots)
		assert.Equal(t, 12*time.Second, cfg.HTTPClientSettings.Timeout)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("start_year: [oops"), 0o644))
		_, _, err := Load(path)
		assert.Error(t, err)
	})
}

func TestEffectiveStartMonth(t *testing.T) {
	cfg := AppConfig{}
	_, err := cfg.Validate()
	require.NoError(t, err)

	assert.Equal(t, "august", cfg.EffectiveStartMonth(1901, ""))
	assert.Equal(t, "march", cfg.EffectiveStartMonth(1901, "march"))
	assert.Equal(t, "", cfg.EffectiveStartMonth(1902, ""))
}

func TestValidateMonth(t *testing.T) {
	m, err := ValidateMonth(" August ")
	require.NoError(t, err)
	assert.Equal(t, "august", m)

	m, err = ValidateMonth("")
	require.NoError(t, err)
	assert.Equal(t, "", m)

	_, err = ValidateMonth("aug")
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
}
