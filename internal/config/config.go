package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Feeds  []string     `yaml:"feeds" mapstructure:"feeds"`
	Ledger LedgerConfig `yaml:"ledger" mapstructure:"ledger"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Brief  BriefConfig  `yaml:"brief" mapstructure:"brief"`
	Mail   MailConfig   `yaml:"mail" mapstructure:"mail"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// LedgerConfig configures the ledger backend.
type LedgerConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // fs, sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`     // fs directory or sqlite file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FetchConfig configures feed retrieval.
type FetchConfig struct {
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxConcurrent int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	PerHostRate   float64 `yaml:"per_host_rate" mapstructure:"per_host_rate"`
	PerHostBurst  int     `yaml:"per_host_burst" mapstructure:"per_host_burst"`
}

// LLMConfig selects and configures the ranking model provider.
type LLMConfig struct {
	Provider  string          `yaml:"provider" mapstructure:"provider"` // azure or anthropic
	Azure     AzureConfig     `yaml:"azure" mapstructure:"azure"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	MaxTokens int             `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AzureConfig holds Azure OpenAI settings.
type AzureConfig struct {
	Endpoint   string `yaml:"endpoint" mapstructure:"endpoint"`
	Key        string `yaml:"api_key" mapstructure:"api_key"`
	Deployment string `yaml:"deployment" mapstructure:"deployment"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// BriefConfig configures briefing artifacts.
type BriefConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// MailConfig configures SMTP delivery of the briefing.
type MailConfig struct {
	Host     string   `yaml:"host" mapstructure:"host"`
	Port     int      `yaml:"port" mapstructure:"port"`
	Username string   `yaml:"username" mapstructure:"username"`
	Password string   `yaml:"password" mapstructure:"password"`
	From     string   `yaml:"from" mapstructure:"from"`
	To       []string `yaml:"to" mapstructure:"to"`
}

// ServerConfig configures the briefing server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// defaultFeeds is the fixed cybersecurity source list the pipeline polls when
// no feeds are configured.
var defaultFeeds = []string{
	"https://krebsonsecurity.com/feed/",
	"https://www.bleepingcomputer.com/feed/",
	"https://www.mandiant.com/resources/rss",
	"https://www.microsoft.com/en-us/security/blog/feed/",
	"https://blog.google/threat-analysis-group/rss/",
	"https://unit42.paloaltonetworks.com/feed/",
	"https://www.cisa.gov/alerts.xml",
	"https://www.cisa.gov/advisories.xml",
	"https://www.darkreading.com/rss.xml",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HERMES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("feeds", defaultFeeds)
	v.SetDefault("ledger.driver", "fs")
	v.SetDefault("ledger.path", "ledger")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_concurrent", 4)
	v.SetDefault("fetch.user_agent", "hermes-cli/1.0")
	v.SetDefault("fetch.per_host_rate", 2)
	v.SetDefault("fetch.per_host_burst", 2)
	v.SetDefault("llm.provider", "azure")
	v.SetDefault("llm.azure.deployment", "gpt-5.2-chat")
	v.SetDefault("llm.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("brief.output_dir", ".")
	v.SetDefault("mail.port", 587)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings a stage needs before it starts, so a
// misconfigured pipeline fails up front instead of after ingestion.
func (c *Config) Validate(stage string) error {
	switch stage {
	case "fetch":
		if len(c.Feeds) == 0 {
			return eris.New("config: no feed sources configured")
		}
	case "brief":
		switch c.LLM.Provider {
		case "azure":
			if c.LLM.Azure.Endpoint == "" || c.LLM.Azure.Key == "" {
				return eris.New("config: llm.azure.endpoint and llm.azure.api_key are required")
			}
		case "anthropic":
			if c.LLM.Anthropic.Key == "" {
				return eris.New("config: llm.anthropic.key is required")
			}
		default:
			return eris.Errorf("config: unknown llm provider %q", c.LLM.Provider)
		}
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
