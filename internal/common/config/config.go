// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Views    ViewsConfig    `mapstructure:"views"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// BackendConfig describes the upstream marketplace REST API.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	CookieName     string `mapstructure:"cookie_name"`
}

// ViewsConfig holds the list-view pipeline settings.
type ViewsConfig struct {
	PageSize       int `mapstructure:"page_size"`
	SearchDebounce int `mapstructure:"search_debounce"` // milliseconds
	CountCacheTTL  int `mapstructure:"count_cache_ttl"` // milliseconds
}

type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	TTL        int    `mapstructure:"ttl"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ListURL joins the backend base URL with an API path.
func (b BackendConfig) ListURL(path string) string {
	return fmt.Sprintf("%s%s", b.BaseURL, path)
}
