// Package config provides configuration management for the RDS MCP server.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all configuration for the MCP server
type Config struct {
	// AWS configuration
	Region          string `json:"region"`
	AccessKey       string `json:"access_key,omitempty"`        // Optional, from env/flags only
	SecretAccessKey string `json:"secret_access_key,omitempty"` // Optional, from env/flags only

	// Inference service configuration
	OpenAIAPIKey  string `json:"openai_api_key,omitempty"` // Empty disables the LLM resolver
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`
	Model         string `json:"model"`

	// Cache tuning
	DirectoryTTL      time.Duration `json:"directory_ttl"`       // Instance directory snapshot TTL
	ResolverCacheSize int           `json:"resolver_cache_size"` // Max memoized name resolutions

	// Rate limiting for AWS API calls
	RateLimit       int  `json:"rate_limit"` // requests per second
	RateLimitBurst  int  `json:"rate_limit_burst"`
	EnableRateLimit bool `json:"enable_rate_limit"`

	// Observability
	EnableTracing   bool   `json:"enable_tracing"`
	HealthPort      int    `json:"health_port"`      // 0 disables the health HTTP server
	HealthBindAddr  string `json:"health_bind_addr"` // Default 127.0.0.1
	MetricsEndpoint bool   `json:"metrics_endpoint"` // Expose Prometheus /metrics on the health server

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // json or console
}

// Load builds a configuration from defaults and environment variables.
// CLI flags registered via RegisterFlags take precedence once parsed.
func Load() (*Config, error) {
	cfg := &Config{
		Model:             "gpt-4o-mini",
		DirectoryTTL:      5 * time.Minute,
		ResolverCacheSize: 256,
		RateLimit:         25,
		RateLimitBurst:    5,
		EnableRateLimit:   true,
		EnableTracing:     false,
		HealthPort:        0,
		HealthBindAddr:    "127.0.0.1",
		MetricsEndpoint:   false,
		LogLevel:          "info",
		LogFormat:         "console",
	}

	loadFromEnv(cfg)

	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.SecretAccessKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAIBaseURL = v
	}
	if v := os.Getenv("RDS_MCP_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("RDS_MCP_DIRECTORY_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DirectoryTTL = d
		}
	}
	if v := os.Getenv("RDS_MCP_RESOLVER_CACHE_SIZE"); v != "" {
		var size int
		if _, err := fmt.Sscanf(v, "%d", &size); err == nil {
			cfg.ResolverCacheSize = size
		}
	}
	if v := os.Getenv("RDS_MCP_RATE_LIMIT"); v != "" {
		var limit int
		if _, err := fmt.Sscanf(v, "%d", &limit); err == nil {
			cfg.RateLimit = limit
		}
	}
	if v := os.Getenv("RDS_MCP_RATE_LIMIT_BURST"); v != "" {
		var burst int
		if _, err := fmt.Sscanf(v, "%d", &burst); err == nil {
			cfg.RateLimitBurst = burst
		}
	}
	if v := os.Getenv("RDS_MCP_ENABLE_RATE_LIMIT"); v != "" {
		cfg.EnableRateLimit = v == "true" || v == "1"
	}
	if v := os.Getenv("RDS_MCP_ENABLE_TRACING"); v != "" {
		cfg.EnableTracing = v == "true" || v == "1"
	}
	if v := os.Getenv("RDS_MCP_HEALTH_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.HealthPort = port
		}
	}
	if v := os.Getenv("RDS_MCP_HEALTH_BIND_ADDR"); v != "" {
		cfg.HealthBindAddr = v
	}
	if v := os.Getenv("RDS_MCP_METRICS_ENDPOINT"); v != "" {
		cfg.MetricsEndpoint = v == "true" || v == "1"
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

// RegisterFlags binds CLI flags to the configuration. Values already loaded
// from the environment become flag defaults, so flags win when set.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Region, "region", c.Region, "AWS region (required)")
	fs.StringVar(&c.AccessKey, "access-key", c.AccessKey, "AWS access key (optional when using IAM roles)")
	fs.StringVar(&c.SecretAccessKey, "secret-access-key", c.SecretAccessKey, "AWS secret access key (optional when using IAM roles)")
	fs.StringVar(&c.OpenAIAPIKey, "openai-api-key", c.OpenAIAPIKey, "OpenAI API key for name resolution (optional)")
	fs.StringVar(&c.Model, "model", c.Model, "Model to use for name resolution")
	fs.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Port for the health/metrics HTTP server (0 disables)")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Region == "" {
		return errors.New("AWS region is required (set AWS_REGION or --region)")
	}

	// Static credentials come as a pair or not at all; a lone half falls
	// back to the default chain and silently ignores the other, so reject it.
	if (c.AccessKey == "") != (c.SecretAccessKey == "") {
		return errors.New("access-key and secret-access-key must be provided together, or neither for IAM role usage")
	}

	if c.DirectoryTTL <= 0 {
		return errors.New("directory TTL must be positive")
	}
	if c.ResolverCacheSize <= 0 {
		return errors.New("resolver cache size must be positive")
	}
	if c.RateLimit <= 0 && c.EnableRateLimit {
		return errors.New("rate_limit must be positive when rate limiting is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// HasStaticCredentials reports whether explicit AWS credentials were supplied
func (c *Config) HasStaticCredentials() bool {
	return c.AccessKey != "" && c.SecretAccessKey != ""
}

// ResolverEnabled reports whether the inference-based resolver can be used
func (c *Config) ResolverEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// Redact returns a copy of the config with sensitive data removed
func (c *Config) Redact() *Config {
	redacted := *c
	redacted.SecretAccessKey = maskKey(redacted.SecretAccessKey)
	redacted.OpenAIAPIKey = maskKey(redacted.OpenAIAPIKey)
	return &redacted
}

// maskKey returns a masked version of a secret for safe logging
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
