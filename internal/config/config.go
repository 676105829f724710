package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Tavily     TavilyConfig     `yaml:"tavily" mapstructure:"tavily"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	PDF        PDFConfig        `yaml:"pdf" mapstructure:"pdf"`
	ObjStore   ObjStoreConfig   `yaml:"objstore" mapstructure:"objstore"`
	Detail     DetailConfig     `yaml:"detail" mapstructure:"detail"`
	Leads      LeadsConfig      `yaml:"leads" mapstructure:"leads"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LLMConfig selects the model provider used for structured extraction and
// web-search-backed lead research.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	Model          string `yaml:"model" mapstructure:"model"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	WebSearchUses  int64  `yaml:"web_search_uses" mapstructure:"web_search_uses"`
	ResearchTokens int64  `yaml:"research_tokens" mapstructure:"research_tokens"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	Model             string `yaml:"model" mapstructure:"model"`
	ResearchModel     string `yaml:"research_model" mapstructure:"research_model"`
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	SearchContextSize string `yaml:"search_context_size" mapstructure:"search_context_size"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// SearchConfig selects the web search backend.
type SearchConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"`
	MaxResults int    `yaml:"max_results" mapstructure:"max_results"`
	NewsCount  int    `yaml:"news_count" mapstructure:"news_count"`
}

// TavilyConfig holds Tavily search API settings.
type TavilyConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	SearchDepth string `yaml:"search_depth" mapstructure:"search_depth"`
}

// JinaConfig holds Jina search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// FetchConfig configures document downloads.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerHost float64 `yaml:"rate_per_host" mapstructure:"rate_per_host"`
	MaxChars    int     `yaml:"max_chars" mapstructure:"max_chars"`
}

// PDFConfig selects the PDF text reader: "native", "poppler" or "auto".
type PDFConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// ObjStoreConfig configures the S3-compatible bucket holding uploaded
// profile documents.
type ObjStoreConfig struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
}

// DetailConfig configures the company detail pipeline. An empty
// FieldsFile uses the built-in field list.
type DetailConfig struct {
	FieldsFile string `yaml:"fields_file" mapstructure:"fields_file"`
}

// LeadsConfig configures the lead-discovery pipeline.
type LeadsConfig struct {
	Count int `yaml:"count" mapstructure:"count"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An empty path
// looks for an optional config.yaml in the working directory; an explicit
// path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadscout.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.web_search_uses", 5)
	v.SetDefault("anthropic.research_tokens", 4096)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.research_model", "gpt-4o")
	v.SetDefault("openai.search_context_size", "medium")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.max_results", 3)
	v.SetDefault("search.news_count", 3)
	v.SetDefault("tavily.base_url", "https://api.tavily.com")
	v.SetDefault("tavily.search_depth", "basic")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("fetch.user_agent", "leadscout/1.0")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.rate_per_host", 20.0)
	v.SetDefault("fetch.max_chars", 15000)
	v.SetDefault("pdf.provider", "native")
	v.SetDefault("pdf.pdftotext_path", "pdftotext")
	v.SetDefault("objstore.bucket", "company-profiles")
	v.SetDefault("leads.count", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Secrets have no defaults but must still resolve from the environment.
	for _, key := range []string{
		"anthropic.key", "anthropic.base_url",
		"openai.key", "openai.base_url",
		"perplexity.key", "tavily.key", "jina.key",
		"objstore.endpoint", "objstore.access_key", "objstore.secret_key",
		"detail.fields_file",
	} {
		_ = v.BindEnv(key)
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command needs are present. Mode is
// one of "serve", "details", "leads", "analyze", "profile", "company" or "migrate".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "migrate":
		errs = append(errs, c.validateStore()...)
	case "details":
		errs = append(errs, c.validateLLM()...)
		errs = append(errs, c.validateSearch()...)
	case "leads", "analyze":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateLLM()...)
	case "profile", "company":
		errs = append(errs, c.validateStore()...)
	case "serve":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateLLM()...)
		errs = append(errs, c.validateSearch()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Fetch.MaxChars <= 0 {
		errs = append(errs, "fetch.max_chars must be > 0")
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "postgres", "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

func (c *Config) validateLLM() []string {
	switch c.LLM.Provider {
	case "anthropic":
		if c.Anthropic.Key == "" {
			return []string{"anthropic.key is required"}
		}
	case "openai":
		if c.OpenAI.Key == "" {
			return []string{"openai.key is required"}
		}
	case "perplexity":
		if c.Perplexity.Key == "" {
			return []string{"perplexity.key is required"}
		}
	default:
		return []string{fmt.Sprintf("llm.provider %q is not supported", c.LLM.Provider)}
	}
	return nil
}

func (c *Config) validateSearch() []string {
	switch c.Search.Provider {
	case "tavily":
		if c.Tavily.Key == "" {
			return []string{"tavily.key is required"}
		}
	case "jina":
		if c.Jina.Key == "" {
			return []string{"jina.key is required"}
		}
	default:
		return []string{fmt.Sprintf("search.provider %q is not supported", c.Search.Provider)}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
