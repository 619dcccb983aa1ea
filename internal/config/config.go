package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Session  SessionConfig  `mapstructure:"session"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         string `mapstructure:"SERVER_PORT"`
	Host         string `mapstructure:"SERVER_HOST"`
	Env          string `mapstructure:"ENV"`
	ReadTimeout  string `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout string `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"DATABASE_URL"`
	MaxOpenConns int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnLifetime string `mapstructure:"DATABASE_CONN_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

// GatewayConfig configures the hosted-checkout payment gateway client.
// Contract selects how installment instructions are sent: "schedule" posts
// an explicit per-installment schedule, "count" a plain count directive.
type GatewayConfig struct {
	BaseURL  string `mapstructure:"GATEWAY_BASE_URL"`
	ShopID   string `mapstructure:"GATEWAY_SHOP_ID"`
	Secret   string `mapstructure:"GATEWAY_SECRET"`
	Currency string `mapstructure:"GATEWAY_CURRENCY"`
	Timeout  string `mapstructure:"GATEWAY_TIMEOUT"`
	Contract string `mapstructure:"GATEWAY_CONTRACT"`
}

type SessionConfig struct {
	TTL string `mapstructure:"SESSION_TTL"`
}

// SweepConfig drives the cmd/scheduler status sweep over recent unpaid links
type SweepConfig struct {
	Spec   string `mapstructure:"SWEEP_CRON_SPEC"`
	MaxAge string `mapstructure:"SWEEP_MAX_AGE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_LIFETIME", "30m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("GATEWAY_CURRENCY", "ARS")
	viper.SetDefault("GATEWAY_TIMEOUT", "10s")
	viper.SetDefault("GATEWAY_CONTRACT", "count")
	viper.SetDefault("SESSION_TTL", "12h")
	viper.SetDefault("SWEEP_CRON_SPEC", "0 0 */2 * * *")
	viper.SetDefault("SWEEP_MAX_AGE", "168h")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("GATEWAY_BASE_URL is required")
	}

	if c.Gateway.ShopID == "" || c.Gateway.Secret == "" {
		return fmt.Errorf("GATEWAY_SHOP_ID and GATEWAY_SECRET are required")
	}

	if c.Gateway.Contract != "count" && c.Gateway.Contract != "schedule" {
		return fmt.Errorf("GATEWAY_CONTRACT must be \"count\" or \"schedule\"")
	}

	for name, value := range map[string]string{
		"SERVER_READ_TIMEOUT":    c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":   c.Server.WriteTimeout,
		"DATABASE_CONN_LIFETIME": c.Database.ConnLifetime,
		"GATEWAY_TIMEOUT":        c.Gateway.Timeout,
		"SESSION_TTL":            c.Session.TTL,
		"SWEEP_MAX_AGE":          c.Sweep.MaxAge,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", name, err)
		}
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetGatewayTimeout returns the gateway request timeout as duration
func (c *Config) GetGatewayTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Gateway.Timeout)
	return timeout
}

// GetSessionTTL returns the session lifetime as duration
func (c *Config) GetSessionTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Session.TTL)
	return ttl
}

// GetReadTimeout returns the server read timeout as duration
func (c *Config) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

// GetWriteTimeout returns the server write timeout as duration
func (c *Config) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.WriteTimeout)
	return d
}

// GetConnLifetime returns the database connection lifetime as duration
func (c *Config) GetConnLifetime() time.Duration {
	d, _ := time.ParseDuration(c.Database.ConnLifetime)
	return d
}

// GetSweepMaxAge returns how far back the status sweep looks
func (c *Config) GetSweepMaxAge() time.Duration {
	d, _ := time.ParseDuration(c.Sweep.MaxAge)
	return d
}
