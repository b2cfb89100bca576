package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("GOOGLE_CLOUD_AUTH_EMAIL", "me@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderDeepSeek, cfg.LLM.Provider)
	assert.Equal(t, "https://api.deepseek.com", cfg.LLM.BaseURL)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, filepath.Join("creds", "credentials.json"), cfg.Google.CredentialsPath)
	assert.Equal(t, "America/Los_Angeles", cfg.Google.CalendarTimezone)
	assert.InDelta(t, 0.2, cfg.RateLimit.RequestsPerSecond, 1e-9)
	assert.Equal(t, 10, cfg.RateLimit.MaxBurst)
	assert.Equal(t, "zh-CN", cfg.Maps.Language)
	assert.Equal(t, "deepseek-chat", cfg.Model())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("DEEPSEEK_API_BASE", "https://proxy.example.com/v1/")
	t.Setenv("GOOGLE_CLOUD_AUTH_EMAIL", "me@example.com")
	t.Setenv("RATE_LIMIT_MAX_BURST", "3")
	t.Setenv("RATE_LIMIT_CHECK_INTERVAL", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model())
	assert.Equal(t, "https://proxy.example.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 3, cfg.RateLimit.MaxBurst)
	assert.Equal(t, "500ms", cfg.RateLimit.CheckIntervalDuration().String())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_HistoryPath(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(DataDir(), "history.db"), cfg.History.Path)

	t.Setenv("ASSISTANT_HISTORY_PATH", "/tmp/chat.db")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/chat.db", cfg.History.Path)

	t.Setenv("ASSISTANT_HISTORY_PATH", "")
	t.Setenv("MAX_CONTEXT_TOKENS", "")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.History.Path, "an empty path disables history")
	assert.Equal(t, 64000, cfg.LLM.MaxContextTokens, "other empty variables keep their defaults")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LLM: LLMConfig{
				Provider:         ProviderDeepSeek,
				APIKey:           "sk-test",
				Temperature:      0.7,
				MaxContextTokens: 1000,
			},
			Google:    GoogleConfig{AuthEmail: "me@example.com", CalendarTimezone: "UTC"},
			RateLimit: RateLimitConfig{RequestsPerSecond: 1, CheckInterval: 0.1, MaxBurst: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.LLM.APIKey = "" }, wantErr: "DEEPSEEK_API_KEY is required"},
		{name: "gemini without key", mutate: func(c *Config) { c.LLM.Provider = ProviderGemini }, wantErr: "GEMINI_API_KEY"},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "other" }, wantErr: "unsupported LLM_PROVIDER"},
		{name: "temperature too high", mutate: func(c *Config) { c.LLM.Temperature = 2.5 }, wantErr: "DEEPSEEK_TEMPERATURE"},
		{name: "missing email", mutate: func(c *Config) { c.Google.AuthEmail = "" }, wantErr: "GOOGLE_CLOUD_AUTH_EMAIL"},
		{name: "bad timezone", mutate: func(c *Config) { c.Google.CalendarTimezone = "Mars/Olympus" }, wantErr: "GOOGLE_CALENDAR_TIMEZONE"},
		{name: "zero rate", mutate: func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, wantErr: "RATE_LIMIT_REQUESTS_PER_SECOND"},
		{name: "zero burst", mutate: func(c *Config) { c.RateLimit.MaxBurst = 0 }, wantErr: "RATE_LIMIT_MAX_BURST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_JoinsAllErrors(t *testing.T) {
	cfg := &Config{LLM: LLMConfig{Provider: ProviderDeepSeek}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEEPSEEK_API_KEY")
	assert.Contains(t, err.Error(), "GOOGLE_CLOUD_AUTH_EMAIL")
	assert.Contains(t, err.Error(), "RATE_LIMIT_MAX_BURST")
}

func TestValidateTools_IgnoresLLMSettings(t *testing.T) {
	cfg := &Config{Google: GoogleConfig{AuthEmail: "me@example.com", CalendarTimezone: "Asia/Shanghai"}}
	assert.NoError(t, cfg.ValidateTools())
	assert.Error(t, cfg.Validate())

	cfg.Google.CalendarTimezone = "Mars/Olympus"
	err := cfg.ValidateTools()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_CALENDAR_TIMEZONE")
}

func TestDataDir(t *testing.T) {
	assert.Equal(t, AppName, filepath.Base(DataDir()))
}
