package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is the identification header sent with every request.
const DefaultUserAgent = "Googlebot (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"

// Config holds all configuration options for the forum archiver
type Config struct {
	// Forum request settings
	Forum ForumConfig `yaml:"forum" json:"forum"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ForumConfig holds the headers sent to the forum
type ForumConfig struct {
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	Accept    string `yaml:"accept" json:"accept"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestDelay time.Duration `yaml:"request_delay" json:"request_delay"`
	// MaxAttempts is how often a request failing with a transient error is tried
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts"`
	// RetryDelay is the first backoff delay; it doubles on every retry
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory   string `yaml:"base_directory" json:"base_directory"`
	OverwriteImages bool   `yaml:"overwrite_images" json:"overwrite_images"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Forum: ForumConfig{
			UserAgent: DefaultUserAgent,
			Accept:    "application/json",
		},
		RateLimit: RateLimitConfig{
			RequestDelay: 500 * time.Millisecond,
			MaxAttempts:  1,
			RetryDelay:   2 * time.Second,
		},
		Output: OutputConfig{
			BaseDirectory:   ".",
			OverwriteImages: false,
		},
		Download: DownloadConfig{
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   "",
			Format: "text",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if userAgent := os.Getenv("FORUMDUMP_USER_AGENT"); userAgent != "" {
		c.Forum.UserAgent = userAgent
	}

	if delay := os.Getenv("FORUMDUMP_REQUEST_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid FORUMDUMP_REQUEST_DELAY: %w", err)
		}
		c.RateLimit.RequestDelay = d
	}

	if attempts := os.Getenv("FORUMDUMP_MAX_ATTEMPTS"); attempts != "" {
		n, err := strconv.Atoi(attempts)
		if err != nil {
			return fmt.Errorf("invalid FORUMDUMP_MAX_ATTEMPTS: %w", err)
		}
		c.RateLimit.MaxAttempts = n
	}

	if outputDir := os.Getenv("FORUMDUMP_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if overwrite := os.Getenv("FORUMDUMP_OVERWRITE_IMAGES"); overwrite != "" {
		c.Output.OverwriteImages = strings.ToLower(overwrite) == "true"
	}

	if timeout := os.Getenv("FORUMDUMP_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid FORUMDUMP_TIMEOUT: %w", err)
		}
		c.Download.Timeout = d
	}

	if logLevel := os.Getenv("FORUMDUMP_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"forumdump.yaml",
		".forumdump.yaml",
		".forumdump.yml",
		filepath.Join(home, ".config", "forumdump", "config.yaml"),
		filepath.Join(home, ".forumdump.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Forum.UserAgent) == "" {
		errs = append(errs, errors.New("user agent is required"))
	}

	if c.RateLimit.RequestDelay < 0 {
		errs = append(errs, errors.New("request delay cannot be negative"))
	}

	if c.RateLimit.MaxAttempts < 1 {
		errs = append(errs, errors.New("max attempts must be at least 1"))
	}

	if c.RateLimit.RetryDelay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("invalid log format"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if userAgent, ok := flags["user-agent"].(string); ok && userAgent != "" {
		c.Forum.UserAgent = userAgent
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if delay, ok := flags["delay"].(time.Duration); ok {
		c.RateLimit.RequestDelay = delay
	}
	if attempts, ok := flags["retries"].(int); ok && attempts > 0 {
		c.RateLimit.MaxAttempts = attempts
	}
	if overwrite, ok := flags["overwrite"].(bool); ok {
		c.Output.OverwriteImages = overwrite
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".forumdump.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
