package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Point at a missing file so a stray .env in the working tree is not picked up.
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "https://www.pvoil.com.vn/tin-gia-xang-dau", cfg.Source.ListingURL)
	assert.Equal(t, "https://www.pvoil.com.vn/api/oilprice/load-view", cfg.Source.PriceAPIURL)
	assert.Equal(t, "15:00:00", cfg.Source.QueryTime)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "pvoil_gasoline_prices_full.csv", cfg.Ledger.Path)
	assert.True(t, cfg.Git.Enabled)
	assert.True(t, cfg.Git.Push)
	assert.Equal(t, "Auto-update PVOIL fuel prices - {date}", cfg.Git.CommitTemplate)
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.MongoDB.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "LEDGER_PATH=/tmp/ledger.csv\nHTTP_TIMEOUT=5s\nGIT_PUSH=false\nPVOIL_QUERY_TIME=09:00:00\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Cleanup(func() {
		for _, key := range []string{"LEDGER_PATH", "HTTP_TIMEOUT", "GIT_PUSH", "PVOIL_QUERY_TIME"} {
			_ = os.Unsetenv(key)
		}
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ledger.csv", cfg.Ledger.Path)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.False(t, cfg.Git.Push)
	assert.Equal(t, "09:00:00", cfg.Source.QueryTime)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)

	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("GIT_ENABLED", "maybe")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestValidateOptionalIntegrations(t *testing.T) {
	base := func() Config {
		return Config{
			Source: SourceConfig{
				ListingURL:  "http://example.test/list",
				PriceAPIURL: "http://example.test/api",
				Timeout:     time.Second,
			},
			Ledger:   LedgerConfig{Path: "ledger.csv"},
			Server:   ServerConfig{Port: "8080"},
			Schedule: ScheduleConfig{CronSchedule: "0 16 * * *", Timezone: "UTC"},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "minimal", mutate: func(c *Config) {}},
		{name: "half sheets", mutate: func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, wantErr: true},
		{name: "full sheets", mutate: func(c *Config) {
			c.Sheets = SheetsConfig{CredentialsPath: "creds.json", SpreadsheetID: "sheet", Range: "Prices!A:C"}
		}},
		{name: "half whatsapp", mutate: func(c *Config) { c.WhatsApp.AccessToken = "token" }, wantErr: true},
		{name: "full whatsapp", mutate: func(c *Config) {
			c.WhatsApp = WhatsAppConfig{AccessToken: "t", PhoneNumberID: "p", NotifyTo: "n", BaseURL: "http://x", APIVersion: "v20.0"}
		}},
		{name: "git without repo dir", mutate: func(c *Config) {
			c.Git = GitConfig{Enabled: true, CommitTemplate: "msg"}
		}, wantErr: true},
		{name: "empty ledger path", mutate: func(c *Config) { c.Ledger.Path = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Source.Timeout = 0 }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
