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
	Sheriff     SourceConfig    `yaml:"sheriff" mapstructure:"sheriff"`
	Corrections SourceConfig    `yaml:"corrections" mapstructure:"corrections"`
	Anthropic   AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Enrich      EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Linkage     LinkageConfig   `yaml:"linkage" mapstructure:"linkage"`
	Store       StoreConfig     `yaml:"store" mapstructure:"store"`
	Server      ServerConfig    `yaml:"server" mapstructure:"server"`
	Log         LogConfig       `yaml:"log" mapstructure:"log"`
}

// SourceConfig configures one roster site.
type SourceConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// PhotoBase prefixes relative image paths found on detail pages.
	PhotoBase string `yaml:"photo_base" mapstructure:"photo_base"`
	// IDPrefix is prepended to numeric identifiers in detail URLs.
	IDPrefix    string `yaml:"id_prefix" mapstructure:"id_prefix"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	DelaySecs   int    `yaml:"delay_secs" mapstructure:"delay_secs"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig holds text-transformation API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// EnrichConfig configures the enrichment orchestrator.
type EnrichConfig struct {
	BatchSize   int `yaml:"batch_size" mapstructure:"batch_size"`
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// LinkageConfig configures record merging.
type LinkageConfig struct {
	Mode        string `yaml:"mode" mapstructure:"mode"`
	Threshold   int    `yaml:"threshold" mapstructure:"threshold"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// StoreConfig configures the run database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the records API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sheriff.base_url", "https://apps.sheriff.org/ArrestSearch/InmateDetail/")
	v.SetDefault("sheriff.photo_base", "https://apps.sheriff.org")
	v.SetDefault("sheriff.delay_secs", 3)
	v.SetDefault("sheriff.timeout_secs", 30)
	v.SetDefault("corrections.base_url", "https://pubapps.fdc.myflorida.com/OffenderSearch/detail.aspx?Page=Detail&TypeSearch=AI&DCNumber=")
	v.SetDefault("corrections.photo_base", "https://pubapps.fdc.myflorida.com")
	v.SetDefault("corrections.delay_secs", 1)
	v.SetDefault("corrections.timeout_secs", 30)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.timeout_secs", 60)
	v.SetDefault("enrich.batch_size", 20)
	v.SetDefault("enrich.max_attempts", 3)
	v.SetDefault("linkage.mode", "join")
	v.SetDefault("linkage.threshold", 85)
	v.SetDefault("linkage.concurrency", 4)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "roster.db")
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
