package web

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config represents the web server configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Store    StoreConfig    `json:"store"`
	Auth     AuthConfig     `json:"auth"`
	CORS     CORSConfig     `json:"cors"`
	Jobs     JobsConfig     `json:"jobs"`
	Features FeatureConfig  `json:"features"`
	Engine   EngineSettings `json:"engine"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// StoreConfig selects where records are kept: memory, postgres or mysql
type StoreConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

// AuthConfig protects the reviewer and authority endpoints with an API key
type AuthConfig struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"api_key"`
}

// CORSConfig lists the origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins"`
}

// JobsConfig controls scheduled batch matching
type JobsConfig struct {
	BatchMatchEnabled  bool   `json:"batch_match_enabled"`
	BatchMatchSchedule string `json:"batch_match_schedule"`
	BatchTimeoutSecs   int    `json:"batch_timeout_seconds"`
}

// FeatureConfig contains feature toggles
type FeatureConfig struct {
	ReviewEnabled       bool `json:"review_enabled"`
	BatchTriggerEnabled bool `json:"batch_trigger_enabled"`
	ExportEnabled       bool `json:"export_enabled"`
}

// EngineSettings points at the scoring configuration and disaster data
type EngineSettings struct {
	ConfigPath    string `json:"config_path"`
	DisastersPath string `json:"disasters_path"`
}

// LoadConfig loads configuration from a JSON file over the defaults
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks settings the server cannot start without
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Store.Driver {
	case "memory", "postgres", "mysql":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth enabled without an api_key")
	}
	return nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Jobs: JobsConfig{
			BatchMatchEnabled:  true,
			BatchMatchSchedule: "*/15 * * * *",
			BatchTimeoutSecs:   300,
		},
		Features: FeatureConfig{
			ReviewEnabled:       true,
			BatchTriggerEnabled: true,
			ExportEnabled:       true,
		},
	}
}
