// Package config provides YAML-based configuration loading for Techtrail.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Techtrail configuration, loaded from techtrail.yaml.
type Config struct {
	Storage   StorageConfig `yaml:"storage"`
	Dashboard DashConfig    `yaml:"dashboard"`
	News      NewsConfig    `yaml:"news"`
	Notify    NotifyConfig  `yaml:"notify"`
}

// StorageConfig selects and configures the local storage backend.
type StorageConfig struct {
	Backend string      `yaml:"backend"` // sqlite or mysql
	Path    string      `yaml:"path"`    // sqlite database file
	MySQL   MySQLConfig `yaml:"mysql"`
}

// MySQLConfig holds connection settings for a MySQL-backed profile,
// for users who keep their tracker on a shared home server.
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// DashConfig holds settings for the embedded web dashboard.
type DashConfig struct {
	Port int `yaml:"port"`
}

// NewsConfig controls the tech news feed.
type NewsConfig struct {
	Sources     []string `yaml:"sources"`      // feed-aggregation endpoints returning rss2json documents
	GitHubRepos []string `yaml:"github_repos"` // owner/repo pairs whose releases feed the news list
	GitHubToken string   `yaml:"github_token"` // optional, raises the API rate limit
	RefreshCron string   `yaml:"refresh_cron"` // 5-field cron expression for dashboard auto-refresh
}

// NotifyConfig holds optional webhook targets for milestone notifications.
type NotifyConfig struct {
	SlackWebhook     string `yaml:"slack_webhook"`
	DiscordWebhookID string `yaml:"discord_webhook_id"`
	DiscordToken     string `yaml:"discord_webhook_token"`
}

// DefaultSources are the public feed-aggregation endpoints tried in order.
var DefaultSources = []string{
	"https://api.rss2json.com/v1/api.json?rss_url=https%3A%2F%2Ftechcrunch.com%2Ffeed%2F",
	"https://api.rss2json.com/v1/api.json?rss_url=https%3A%2F%2Fcss-tricks.com%2Ffeed%2F",
	"https://api.rss2json.com/v1/api.json?rss_url=https%3A%2F%2Fdev.to%2Ffeed",
}

// Load reads a YAML config file from path and returns a validated Config.
// A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = "sqlite"
	}
	if c.Storage.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.Storage.Path = filepath.Join(home, ".techtrail", "techtrail.db")
	}
	if c.Storage.MySQL.Host == "" {
		c.Storage.MySQL.Host = "127.0.0.1"
	}
	if c.Storage.MySQL.Port == 0 {
		c.Storage.MySQL.Port = 3306
	}
	if c.Storage.MySQL.Database == "" {
		c.Storage.MySQL.Database = "techtrail"
	}
	if c.Storage.MySQL.User == "" {
		c.Storage.MySQL.User = "root"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if len(c.News.Sources) == 0 {
		c.News.Sources = append([]string(nil), DefaultSources...)
	}
	if c.News.RefreshCron == "" {
		c.News.RefreshCron = "*/10 * * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Storage.Backend {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("storage.backend must be sqlite or mysql, got %q", c.Storage.Backend))
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		errs = append(errs, fmt.Sprintf("dashboard.port %d out of range", c.Dashboard.Port))
	}
	if (c.Notify.DiscordWebhookID == "") != (c.Notify.DiscordToken == "") {
		errs = append(errs, "notify.discord_webhook_id and notify.discord_webhook_token must be set together")
	}
	for i, repo := range c.News.GitHubRepos {
		if strings.Count(repo, "/") != 1 {
			errs = append(errs, fmt.Sprintf("news.github_repos[%d] must be owner/repo, got %q", i, repo))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
