package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Source   SourceConfig
	Ledger   LedgerConfig
	Git      GitConfig
	Sheets   SheetsConfig
	WhatsApp WhatsAppConfig
	MongoDB  MongoDBConfig
	Server   ServerConfig
	Schedule ScheduleConfig
	Log      LogConfig
}

// SourceConfig describes the PVOIL endpoints and request behaviour.
type SourceConfig struct {
	ListingURL  string
	PriceAPIURL string
	QueryTime   string
	UserAgent   string
	Timeout     time.Duration
}

// LedgerConfig points at the cumulative CSV ledger.
type LedgerConfig struct {
	Path string
}

// GitConfig controls the version-control publisher.
type GitConfig struct {
	Enabled        bool
	RepoDir        string
	CommitTemplate string
	AuthorName     string
	AuthorEmail    string
	Push           bool
}

// SheetsConfig contains configuration required to mirror the ledger to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	Range           string
}

// Enabled reports whether the Sheets mirror is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" || c.SpreadsheetID != ""
}

// WhatsAppConfig contains credentials for run notifications through the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	NotifyTo      string
}

// Enabled reports whether WhatsApp notifications are configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" || c.PhoneNumberID != "" || c.NotifyTo != ""
}

// MongoDBConfig holds settings for the run history store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether run history should be archived.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// ScheduleConfig holds scheduler-related settings.
type ScheduleConfig struct {
	CronSchedule string
	Timezone     string
}

// LogConfig selects the logger flavour.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	timeout, err := getenvDuration("HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	gitEnabled, err := getenvBool("GIT_ENABLED", true)
	if err != nil {
		return nil, err
	}
	gitPush, err := getenvBool("GIT_PUSH", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Source: SourceConfig{
			ListingURL:  getenvWithDefault("PVOIL_LISTING_URL", "https://www.pvoil.com.vn/tin-gia-xang-dau"),
			PriceAPIURL: getenvWithDefault("PVOIL_PRICE_API_URL", "https://www.pvoil.com.vn/api/oilprice/load-view"),
			QueryTime:   getenvWithDefault("PVOIL_QUERY_TIME", "15:00:00"),
			UserAgent:   getenvWithDefault("PVOIL_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),
			Timeout:     timeout,
		},
		Ledger: LedgerConfig{
			Path: getenvWithDefault("LEDGER_PATH", "pvoil_gasoline_prices_full.csv"),
		},
		Git: GitConfig{
			Enabled:        gitEnabled,
			RepoDir:        getenvWithDefault("GIT_REPO_DIR", "."),
			CommitTemplate: getenvWithDefault("GIT_COMMIT_MESSAGE", "Auto-update PVOIL fuel prices - {date}"),
			AuthorName:     getenvWithDefault("GIT_AUTHOR_NAME", "PVOIL Auto-Update Bot"),
			AuthorEmail:    getenvWithDefault("GIT_AUTHOR_EMAIL", "bot@pvoil-update.local"),
			Push:           gitPush,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			Range:           getenvWithDefault("GOOGLE_SHEET_RANGE", "Prices!A:C"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			NotifyTo:      os.Getenv("WHATSAPP_NOTIFY_TO"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "pvoil"),
		},
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Schedule: ScheduleConfig{
			CronSchedule: getenvWithDefault("SYNC_CRON_SCHEDULE", "0 16 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Ho_Chi_Minh"),
		},
		Log: LogConfig{
			Level:  getenvWithDefault("LOG_LEVEL", "info"),
			Format: getenvWithDefault("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and that
// optional integrations are either fully configured or left out.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch {
	case c.Source.ListingURL == "":
		return errors.New("PVOIL_LISTING_URL must not be empty")
	case c.Source.PriceAPIURL == "":
		return errors.New("PVOIL_PRICE_API_URL must not be empty")
	case c.Source.Timeout <= 0:
		return errors.New("HTTP_TIMEOUT must be positive")
	}

	if c.Ledger.Path == "" {
		return errors.New("LEDGER_PATH must not be empty")
	}

	if c.Git.Enabled {
		if c.Git.RepoDir == "" {
			return errors.New("GIT_REPO_DIR must not be empty when GIT_ENABLED is set")
		}
		if c.Git.CommitTemplate == "" {
			return errors.New("GIT_COMMIT_MESSAGE must not be empty when GIT_ENABLED is set")
		}
	}

	if c.Sheets.Enabled() {
		switch {
		case c.Sheets.CredentialsPath == "":
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided with GOOGLE_SHEET_DATABASE_ID")
		case c.Sheets.SpreadsheetID == "":
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided with GOOGLE_SHEETS_CREDENTIALS_PATH")
		case c.Sheets.Range == "":
			return errors.New("GOOGLE_SHEET_RANGE must not be empty")
		}
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.AccessToken == "":
			return errors.New("WHATSAPP_TOKEN must be provided")
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.NotifyTo == "":
			return errors.New("WHATSAPP_NOTIFY_TO must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Schedule.CronSchedule == "" {
		return errors.New("SYNC_CRON_SCHEDULE must be provided")
	}

	if c.Schedule.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return parsed, nil
}
