// Package config loads the assistant settings from the environment.
//
// Values are resolved by viper from process environment variables, which
// main populates from an optional .env file before any command runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppName is used for cache directories and user-facing identifiers.
const AppName = "assistant"

// LLM provider names.
const (
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
)

// Config holds the complete assistant configuration.
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Google    GoogleConfig    `mapstructure:"google"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Maps      MapsConfig      `mapstructure:"maps"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Search    SearchConfig    `mapstructure:"search"`
	History   HistoryConfig   `mapstructure:"history"`
	Log       LogConfig       `mapstructure:"log"`

	// UserName overrides the display name fetched from the Google profile.
	UserName string `mapstructure:"user_name"`
}

// LLMConfig selects and configures the chat completion backend.
type LLMConfig struct {
	Provider         string  `mapstructure:"provider"`
	APIKey           string  `mapstructure:"api_key"`
	BaseURL          string  `mapstructure:"base_url"`
	Model            string  `mapstructure:"model"`
	Temperature      float64 `mapstructure:"temperature"`
	GeminiAPIKey     string  `mapstructure:"gemini_api_key"`
	GeminiModel      string  `mapstructure:"gemini_model"`
	MaxContextTokens int     `mapstructure:"max_context_tokens"`
}

// GoogleConfig holds OAuth and Workspace settings.
type GoogleConfig struct {
	AuthEmail         string `mapstructure:"auth_email"`
	CredentialsPath   string `mapstructure:"credentials_path"`
	TokenPath         string `mapstructure:"token_path"`
	OAuthClientID     string `mapstructure:"oauth_client_id"`
	OAuthClientSecret string `mapstructure:"oauth_client_secret"`
	CalendarTimezone  string `mapstructure:"calendar_timezone"`
}

// RateLimitConfig bounds how often the agent may call the LLM.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	CheckInterval     float64 `mapstructure:"check_interval"`
	MaxBurst          int     `mapstructure:"max_burst"`
}

// CheckIntervalDuration returns CheckInterval (seconds) as a time.Duration.
func (r RateLimitConfig) CheckIntervalDuration() time.Duration {
	return time.Duration(r.CheckInterval * float64(time.Second))
}

// MapsConfig configures the Google Maps tools.
type MapsConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Language string `mapstructure:"language"`
}

// WeatherConfig holds the raw QWeather key setting ("key" or "host,key").
type WeatherConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// SearchConfig configures web search providers.
type SearchConfig struct {
	TavilyAPIKey   string `mapstructure:"tavily_api_key"`
	GoogleAPIKey   string `mapstructure:"google_api_key"`
	GoogleEngineID string `mapstructure:"google_engine_id"`
}

// HistoryConfig configures the local conversation store. An empty Path
// disables persistence.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// bindings maps configuration keys to the environment variables that feed them.
var bindings = map[string]string{
	"llm.provider":                   "LLM_PROVIDER",
	"llm.api_key":                    "DEEPSEEK_API_KEY",
	"llm.base_url":                   "DEEPSEEK_API_BASE",
	"llm.model":                      "DEEPSEEK_MODEL",
	"llm.temperature":                "DEEPSEEK_TEMPERATURE",
	"llm.gemini_api_key":             "GEMINI_API_KEY",
	"llm.gemini_model":               "GEMINI_MODEL",
	"llm.max_context_tokens":         "MAX_CONTEXT_TOKENS",
	"google.auth_email":              "GOOGLE_CLOUD_AUTH_EMAIL",
	"google.credentials_path":        "GOOGLE_CREDENTIALS_PATH",
	"google.token_path":              "GOOGLE_TOKEN_PATH",
	"google.oauth_client_id":         "GOOGLE_OAUTH_CLIENT_ID",
	"google.oauth_client_secret":     "GOOGLE_OAUTH_CLIENT_SECRET",
	"google.calendar_timezone":       "GOOGLE_CALENDAR_TIMEZONE",
	"rate_limit.requests_per_second": "RATE_LIMIT_REQUESTS_PER_SECOND",
	"rate_limit.check_interval":      "RATE_LIMIT_CHECK_INTERVAL",
	"rate_limit.max_burst":           "RATE_LIMIT_MAX_BURST",
	"maps.api_key":                   "GOOGLE_MAPS_API_KEY",
	"maps.language":                  "GOOGLE_MAPS_LANGUAGE",
	"weather.api_key":                "WEATHER_API_KEY",
	"search.tavily_api_key":          "TAVILY_API_KEY",
	"search.google_api_key":          "GOOGLE_SEARCH_API_KEY",
	"search.google_engine_id":        "GOOGLE_SEARCH_ENGINE_ID",
	"history.path":                   "ASSISTANT_HISTORY_PATH",
	"log.level":                      "LOG_LEVEL",
	"user_name":                      "ASSISTANT_USER_NAME",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ProviderDeepSeek)
	v.SetDefault("llm.base_url", "https://api.deepseek.com")
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.gemini_model", "gemini-2.5-flash")
	v.SetDefault("llm.max_context_tokens", 64000)
	v.SetDefault("google.credentials_path", filepath.Join("creds", "credentials.json"))
	v.SetDefault("google.token_path", filepath.Join(DataDir(), "google-token.json"))
	v.SetDefault("google.calendar_timezone", "America/Los_Angeles")
	v.SetDefault("rate_limit.requests_per_second", 0.2)
	v.SetDefault("rate_limit.check_interval", 0.1)
	v.SetDefault("rate_limit.max_burst", 10)
	v.SetDefault("maps.language", "zh-CN")
	v.SetDefault("history.path", filepath.Join(DataDir(), "history.db"))
	v.SetDefault("log.level", "warn")
}

// Load reads the configuration from the environment. It does not validate;
// commands call Validate once flags have been applied.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	// viper treats an empty variable as unset. For the history path an
	// explicit empty value means "do not persist".
	if path, ok := os.LookupEnv(bindings["history.path"]); ok && strings.TrimSpace(path) == "" {
		cfg.History.Path = ""
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.LLM.BaseURL), "/")
	return &cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	return errors.Join(append(c.llmErrors(), c.toolErrors()...)...)
}

// ValidateTools checks only the settings the tool registry needs. `serve`
// uses it because an MCP client brings its own model.
func (c *Config) ValidateTools() error {
	return errors.Join(c.toolErrors()...)
}

func (c *Config) llmErrors() []error {
	var errs []error

	switch c.LLM.Provider {
	case ProviderDeepSeek:
		if c.LLM.APIKey == "" {
			errs = append(errs, errors.New("DEEPSEEK_API_KEY is required"))
		}
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when LLM_PROVIDER=gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q, must be one of: deepseek, gemini", c.LLM.Provider))
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("DEEPSEEK_TEMPERATURE must be between 0 and 2, got %g", c.LLM.Temperature))
	}
	if c.LLM.MaxContextTokens <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONTEXT_TOKENS must be positive, got %d", c.LLM.MaxContextTokens))
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_REQUESTS_PER_SECOND must be greater than 0, got %g", c.RateLimit.RequestsPerSecond))
	}
	if c.RateLimit.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_CHECK_INTERVAL must be greater than 0, got %g", c.RateLimit.CheckInterval))
	}
	if c.RateLimit.MaxBurst <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_MAX_BURST must be greater than 0, got %d", c.RateLimit.MaxBurst))
	}
	return errs
}

func (c *Config) toolErrors() []error {
	var errs []error
	if c.Google.AuthEmail == "" {
		errs = append(errs, errors.New("GOOGLE_CLOUD_AUTH_EMAIL is required"))
	}
	if c.Google.CalendarTimezone != "" {
		if _, err := time.LoadLocation(c.Google.CalendarTimezone); err != nil {
			errs = append(errs, fmt.Errorf("invalid GOOGLE_CALENDAR_TIMEZONE %q: %w", c.Google.CalendarTimezone, err))
		}
	}
	return errs
}

// Model returns the model name for the selected provider.
func (c *Config) Model() string {
	if c.LLM.Provider == ProviderGemini {
		return c.LLM.GeminiModel
	}
	return c.LLM.Model
}

// DataDir returns the per-user directory holding the token cache and the
// history database.
func DataDir() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, ".cache")
		} else {
			dir = os.TempDir()
		}
	}
	return filepath.Join(dir, AppName)
}
