// Package config loads service configuration from an optional YAML or JSON
// file, with environment variables taking precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable of the service. Zero values mean "feature
// off" for the optional integrations (Redis, GCS archive, Notion).
type Config struct {
	// Port the API listens on.
	Port string `yaml:"port" json:"port"`

	// GeminiModel overrides the default extraction model.
	GeminiModel string `yaml:"gemini_model" json:"gemini_model"`
	// GeminiAPIKey authenticates the extraction calls. Usually set via
	// GEMINI_API_KEY rather than the file.
	GeminiAPIKey string `yaml:"gemini_api_key" json:"gemini_api_key"`

	// ProfileStorePath is the JSON file backing the profile store.
	ProfileStorePath string `yaml:"profile_store_path" json:"profile_store_path"`
	// RedisAddr switches the profile store to Redis when non-empty.
	RedisAddr string `yaml:"redis_addr" json:"redis_addr"`

	// ArchiveBucket enables GCS archival of uploaded statements.
	ArchiveBucket string `yaml:"archive_bucket" json:"archive_bucket"`
	// ArchiveCredentials optionally points at a service-account JSON file.
	ArchiveCredentials string `yaml:"archive_credentials" json:"archive_credentials"`

	// NotionToken and NotionDatabaseID enable the monthly summary sync.
	NotionToken      string `yaml:"notion_token" json:"notion_token"`
	NotionDatabaseID string `yaml:"notion_database_id" json:"notion_database_id"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:             "8080",
		ProfileStorePath: "taxpj_profiles.json",
	}
}

// Load reads the file at path over the defaults and then applies environment
// overrides. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse YAML config: %w", err)
			}
		case ".json":
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse JSON config: %w", err)
			}
		default:
			return Config{}, fmt.Errorf("unsupported config format: %s", path)
		}
	}

	cfg.applyEnv()
	if cfg.Port == "" {
		cfg.Port = Default().Port
	}
	if cfg.ProfileStorePath == "" {
		cfg.ProfileStorePath = Default().ProfileStorePath
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"PORT":               &c.Port,
		"GEMINI_MODEL":       &c.GeminiModel,
		"GEMINI_API_KEY":     &c.GeminiAPIKey,
		"PROFILE_STORE_PATH": &c.ProfileStorePath,
		"REDIS_ADDR":         &c.RedisAddr,
		"ARCHIVE_BUCKET":     &c.ArchiveBucket,
		"NOTION_TOKEN":       &c.NotionToken,
		"NOTION_DATABASE_ID": &c.NotionDatabaseID,
	}
	for env, field := range overrides {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
}
