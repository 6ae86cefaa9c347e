package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration. Values come from an optional
// config.yaml plus environment overrides (PORTFOLIO_SERVER_PORT and so on),
// with defaults suitable for local single-user deployments.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Provider ProviderConfig `mapstructure:"provider"`
	Advisor  AdvisorConfig  `mapstructure:"advisor"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ProviderConfig configures the generative-language provider boundary.
type ProviderConfig struct {
	BaseURL       string        `mapstructure:"baseUrl"`
	APIKey        string        `mapstructure:"apiKey"`
	Temperature   float64       `mapstructure:"temperature"`
	ModelCacheTTL time.Duration `mapstructure:"modelCacheTtl"`
	// PreferredPatterns rank discovered models; earlier patterns win.
	PreferredPatterns []string `mapstructure:"preferredPatterns"`
	// DefaultModels is the hard-coded pool used when discovery fails.
	DefaultModels []string `mapstructure:"defaultModels"`
}

// AdvisorConfig bounds the advisory request loop.
type AdvisorConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	RetryAttempts  int           `mapstructure:"retryAttempts"`
	RetryBackoff   time.Duration `mapstructure:"retryBackoff"`
	WindowCapacity int           `mapstructure:"windowCapacity"`
	QueueSize      int           `mapstructure:"queueSize"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from path (directory holding config.yaml, may be
// empty for env/defaults only) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("database.path", "./portfolio.db")
	v.SetDefault("provider.baseUrl", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("provider.temperature", 0.7)
	v.SetDefault("provider.modelCacheTtl", time.Hour)
	v.SetDefault("provider.preferredPatterns", []string{"flash", "pro"})
	v.SetDefault("provider.defaultModels", []string{"gemini-1.5-flash", "gemini-1.5-pro"})
	v.SetDefault("advisor.timeout", 45*time.Second)
	v.SetDefault("advisor.retryAttempts", 3)
	v.SetDefault("advisor.retryBackoff", 5*time.Second)
	v.SetDefault("advisor.windowCapacity", 6)
	v.SetDefault("advisor.queueSize", 16)
	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.AddConfigPath(path)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
