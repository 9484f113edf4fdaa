package main

import (
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
	"github.com/fwojciec/kindlefeed"
)

// DefaultConfigFiles are read in order when present. Environment variables
// override file values.
var DefaultConfigFiles = []string{"kindlefeed.hcl"}

// Config holds credentials and service settings. Secrets are only read from
// the environment or a config file, never from flags.
type Config struct {
	GmailEmail         string        `hcl:"gmail_email" env:"GMAIL_EMAIL"`
	GmailPassword      string        `hcl:"gmail_password" env:"GMAIL_PASSWORD"`
	KindleEmail        string        `hcl:"kindle_email" env:"KINDLE_EMAIL"`
	NotionAPIKey       string        `hcl:"notion_api_key" env:"NOTION_API_KEY"`
	NotionDatabaseID   string        `hcl:"notion_database_id" env:"NOTION_DATABASE_ID"`
	NotionURLProperty  string        `hcl:"notion_url_property" env:"NOTION_URL_PROPERTY" default:"URL"`
	NotionReadProperty string        `hcl:"notion_read_property" env:"NOTION_READ_PROPERTY" default:"read"`
	NotionFilterProp   string        `hcl:"notion_filter_property" env:"NOTION_FILTER_PROPERTY"`
	NotionFilterValue  string        `hcl:"notion_filter_contains" env:"NOTION_FILTER_CONTAINS"`
	SMTPHost           string        `hcl:"smtp_host" env:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort           int           `hcl:"smtp_port" env:"SMTP_PORT" default:"465"`
	SMTPTimeout        time.Duration `hcl:"smtp_timeout" env:"SMTP_TIMEOUT" default:"30s"`
	FetchTimeout       time.Duration `hcl:"fetch_timeout" env:"FETCH_TIMEOUT" default:"20s"`
	SkipExtensions     []string      `hcl:"skip_extensions" env:"SKIP_EXTENSIONS" default:".pdf"`
	UserAgent          string        `hcl:"user_agent" env:"USER_AGENT"`
}

// LoadConfig reads configuration from files and the environment.
func LoadConfig(files ...string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, kindlefeed.Errorf(kindlefeed.ECONFIG, "load config: %v", err)
	}
	return &cfg, nil
}

// Validate reports the first missing required setting by its variable name.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"GMAIL_EMAIL", c.GmailEmail},
		{"GMAIL_PASSWORD", c.GmailPassword},
		{"KINDLE_EMAIL", c.KindleEmail},
		{"NOTION_API_KEY", c.NotionAPIKey},
		{"NOTION_DATABASE_ID", c.NotionDatabaseID},
	}
	for _, r := range required {
		if r.value == "" {
			return kindlefeed.Errorf(kindlefeed.ECONFIG, "%s is not set", r.name)
		}
	}
	if (c.NotionFilterProp == "") != (c.NotionFilterValue == "") {
		return kindlefeed.Errorf(kindlefeed.ECONFIG, "NOTION_FILTER_PROPERTY and NOTION_FILTER_CONTAINS must be set together")
	}
	if c.SMTPPort <= 0 {
		return kindlefeed.Errorf(kindlefeed.ECONFIG, "SMTP_PORT must be positive")
	}
	return nil
}
