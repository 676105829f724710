package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// No config.yaml in the temp dir.
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadscout.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 0.001)
	assert.Equal(t, "tavily", cfg.Search.Provider)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, 3, cfg.Search.NewsCount)
	assert.Equal(t, "https://api.tavily.com", cfg.Tavily.BaseURL)
	assert.Equal(t, "basic", cfg.Tavily.SearchDepth)
	assert.Equal(t, 15000, cfg.Fetch.MaxChars)
	assert.Equal(t, 60, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, "native", cfg.PDF.Provider)
	assert.Equal(t, "medium", cfg.OpenAI.SearchContextSize)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.Equal(t, 5, cfg.Leads.Count)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leads
llm:
  provider: anthropic
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 15000, cfg.Fetch.MaxChars)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADSCOUT_STORE_DRIVER", "mysql")
	t.Setenv("LEADSCOUT_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadSecretsFromEnv(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LEADSCOUT_TAVILY_KEY", "tvly-123")
	t.Setenv("LEADSCOUT_OPENAI_KEY", "sk-abc")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tvly-123", cfg.Tavily.Key)
	assert.Equal(t, "sk-abc", cfg.OpenAI.Key)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadExplicitPath(t *testing.T) {
	chdirTemp(t)
	path := filepath.Join(t.TempDir(), "leadscout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("leads:\n  count: 8\ndetail:\n  fields_file: fields.ko.yaml\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Leads.Count)
	assert.Equal(t, "fields.ko.yaml", cfg.Detail.FieldsFile)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with defaults and keys populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "leadscout.db"
	cfg.LLM.Provider = "openai"
	cfg.OpenAI.Key = "sk-test"
	cfg.Search.Provider = "tavily"
	cfg.Tavily.Key = "tvly-test"
	cfg.Fetch.MaxChars = 15000
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateServe_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("serve"))
}

func TestValidateServe_MissingKeys(t *testing.T) {
	cfg := validDefaults()
	cfg.OpenAI.Key = ""
	cfg.Tavily.Key = ""
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai.key is required")
	assert.Contains(t, err.Error(), "tavily.key is required")
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateProviders(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		mode    string
		wantErr string
	}{
		{
			name:    "anthropic without key",
			mutate:  func(c *Config) { c.LLM.Provider = "anthropic" },
			mode:    "leads",
			wantErr: "anthropic.key is required",
		},
		{
			name:    "perplexity without key",
			mutate:  func(c *Config) { c.LLM.Provider = "perplexity" },
			mode:    "analyze",
			wantErr: "perplexity.key is required",
		},
		{
			name:    "unknown llm",
			mutate:  func(c *Config) { c.LLM.Provider = "bard" },
			mode:    "leads",
			wantErr: `llm.provider "bard" is not supported`,
		},
		{
			name:    "jina without key",
			mutate:  func(c *Config) { c.Search.Provider = "jina" },
			mode:    "details",
			wantErr: "jina.key is required",
		},
		{
			name:    "unknown store driver",
			mutate:  func(c *Config) { c.Store.Driver = "oracle" },
			mode:    "migrate",
			wantErr: `store.driver "oracle" is not supported`,
		},
		{
			name:    "missing database url",
			mutate:  func(c *Config) { c.Store.DatabaseURL = "" },
			mode:    "profile",
			wantErr: "store.database_url is required",
		},
		{
			name:    "zero max chars",
			mutate:  func(c *Config) { c.Fetch.MaxChars = 0 },
			mode:    "analyze",
			wantErr: "fetch.max_chars must be > 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate(tt.mode)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDetailsSkipsStore(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""
	assert.NoError(t, cfg.Validate("details"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
