package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Crawler configuration
	Crawler CrawlerConfig `mapstructure:"crawler"`

	// Content transform configuration
	Transform TransformConfig `mapstructure:"transform"`

	// API Keys
	APIs APIConfig `mapstructure:"apis"`

	// Metrics configuration
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig holds crawler-specific configuration
type CrawlerConfig struct {
	MaxPages           int           `mapstructure:"max_pages"`
	MaxPagesLimit      int           `mapstructure:"max_pages_limit"`
	RequestsPerSecond  float64       `mapstructure:"requests_per_second"`
	UserAgent          string        `mapstructure:"user_agent"`
	Timeout            time.Duration `mapstructure:"timeout"`
	MaxBodyBytes       int64         `mapstructure:"max_body_bytes"`
	Retries            int           `mapstructure:"retries"`
	RetryBackoff       time.Duration `mapstructure:"retry_backoff"`
	ExcludedExtensions []string      `mapstructure:"excluded_extensions"`
	Extraction         string        `mapstructure:"extraction"` // "full" or "readable"
}

// TransformConfig holds prompt and budget settings for the content transform service
type TransformConfig struct {
	Mode              string        `mapstructure:"mode"` // "structure" or "summarize"
	SummaryParagraphs int           `mapstructure:"summary_paragraphs"`
	MaxInputChars     int           `mapstructure:"max_input_chars"`
	Retries           int           `mapstructure:"retries"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
	GuidePath         string        `mapstructure:"guide_path"`
	Business          string        `mapstructure:"business"`
}

// APIConfig holds API keys and endpoints
type APIConfig struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Endpoint    string        `mapstructure:"endpoint"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// DefaultExcludedExtensions are path suffixes that never point at crawlable pages
var DefaultExcludedExtensions = []string{".pdf", ".jpg", ".png", ".zip", ".docx", ".gif", ".mp3", ".mp4"}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.crawlscribe")
	}

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	loadFromEnv(&config)

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Crawler defaults
	v.SetDefault("crawler.max_pages", 5)
	v.SetDefault("crawler.max_pages_limit", 20)
	v.SetDefault("crawler.requests_per_second", 0)
	v.SetDefault("crawler.user_agent", "Mozilla/5.0")
	v.SetDefault("crawler.timeout", "10s")
	v.SetDefault("crawler.max_body_bytes", 5*1024*1024)
	v.SetDefault("crawler.retries", 0)
	v.SetDefault("crawler.retry_backoff", "500ms")
	v.SetDefault("crawler.excluded_extensions", DefaultExcludedExtensions)
	v.SetDefault("crawler.extraction", "full")

	// Transform defaults
	v.SetDefault("transform.mode", "structure")
	v.SetDefault("transform.summary_paragraphs", 3)
	v.SetDefault("transform.max_input_chars", 30000)
	v.SetDefault("transform.retries", 0)
	v.SetDefault("transform.retry_backoff", "2s")

	// API defaults
	v.SetDefault("apis.gemini.model", "gemini-1.5-pro-latest")
	v.SetDefault("apis.gemini.endpoint", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("apis.gemini.temperature", 0.4)
	v.SetDefault("apis.gemini.timeout", "120s")

	// Metrics defaults
	v.SetDefault("metrics.textfile", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("CRAWLSCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("apis.gemini.api_key", "CRAWLSCRIBE_APIS_GEMINI_API_KEY", "GOOGLE_API_KEY")
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	if config.APIs.Gemini.APIKey != "" {
		return
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.APIs.Gemini.APIKey = apiKey
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Crawler.MaxPagesLimit <= 0 {
		return fmt.Errorf("crawler.max_pages_limit must be positive")
	}
	if c.Crawler.MaxPages < 1 || c.Crawler.MaxPages > c.Crawler.MaxPagesLimit {
		return fmt.Errorf("crawler.max_pages must be between 1 and %d", c.Crawler.MaxPagesLimit)
	}
	if c.Crawler.Timeout <= 0 {
		return fmt.Errorf("crawler.timeout must be positive")
	}
	if c.Crawler.Retries < 0 || c.Transform.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.Crawler.RequestsPerSecond < 0 {
		return fmt.Errorf("crawler.requests_per_second must not be negative")
	}
	switch c.Crawler.Extraction {
	case "full", "readable":
	default:
		return fmt.Errorf("crawler.extraction must be full or readable, got %q", c.Crawler.Extraction)
	}
	switch c.Transform.Mode {
	case "structure", "summarize":
	default:
		return fmt.Errorf("transform.mode must be structure or summarize, got %q", c.Transform.Mode)
	}
	if c.Transform.MaxInputChars <= 0 {
		return fmt.Errorf("transform.max_input_chars must be positive")
	}
	return nil
}
