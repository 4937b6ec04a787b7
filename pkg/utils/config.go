package utils

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevDownloadSecret signs download links when LNREADER_DOWNLOAD_SECRET is unset.
// Validate refuses it in production.
const DevDownloadSecret = "dev-secret-change-me"

const DefaultPluginsURL = "https://raw.githubusercontent.com/LNReader/lnreader-plugins/plugins/v3.0.0/.dist/plugins.min.json"

type Config struct {
	HTTPAddr    string
	Environment string

	PluginsURL        string
	ExtraRepositories []string
	CatalogTTL        time.Duration

	// optional YAML file extending the migration rules
	RulesFile string

	Download DownloadConfig
}

type DownloadConfig struct {
	Secret   string
	Issuer   string
	Duration time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() Config {
	_ = godotenv.Load()

	secret := os.Getenv("LNREADER_DOWNLOAD_SECRET")
	if secret == "" {
		secret = DevDownloadSecret
	}

	return Config{
		HTTPAddr:          getEnv("LNREADER_HTTP_ADDR", ":8080"),
		Environment:       getEnv("LNREADER_ENV", "development"),
		PluginsURL:        getEnv("LNREADER_PLUGINS_URL", DefaultPluginsURL),
		ExtraRepositories: splitList(os.Getenv("LNREADER_EXTRA_REPOSITORIES")),
		CatalogTTL:        getDurationEnv("LNREADER_CATALOG_TTL", time.Hour),
		RulesFile:         os.Getenv("LNREADER_RULES_FILE"),
		Download: DownloadConfig{
			Secret:   secret,
			Issuer:   getEnv("LNREADER_DOWNLOAD_ISSUER", "lnreader"),
			Duration: getDurationEnv("LNREADER_DOWNLOAD_TTL", 24*time.Hour),
		},
	}
}

// Validate rejects settings that are only acceptable during development.
func (c Config) Validate() error {
	if c.Environment == "production" && c.Download.Secret == DevDownloadSecret {
		return errors.New("LNREADER_DOWNLOAD_SECRET must be set in production")
	}
	return nil
}

// Repositories returns the primary plugin feed followed by the extra ones.
func (c Config) Repositories() []string {
	out := make([]string, 0, 1+len(c.ExtraRepositories))
	out = append(out, c.PluginsURL)
	for _, r := range c.ExtraRepositories {
		if r != c.PluginsURL {
			out = append(out, r)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getDurationEnv falls back to def when the value is missing or invalid.
func getDurationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
