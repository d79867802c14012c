package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/spf13/viper"
)

const VERSION = "1.0"

// Config is the top-level process configuration, assembled once at startup
// from environment variables (and an optional .env file).
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Delivery    DeliveryConfig
	Environment string
	APIBaseURL  string
	LogLevel    string
	Version     string
}

// ServerConfig controls the HTTP front door (C4, C7, C8).
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig configures the C1 persistent store connection.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig configures the C2 cache and C3 queue backing store.
type RedisConfig struct {
	URL string
}

// DeliveryConfig controls the C5 worker pool and C6 retention purger.
type DeliveryConfig struct {
	HTTPTimeout    time.Duration
	WorkerCount    int
	RetentionHours int
	PurgeInterval  time.Duration
	SchedulerPoll  time.Duration
}

// LoadOptions controls how configuration is assembled.
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// DSN builds the lib/pq connection string for the database.
func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	if c.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.DBName, sslMode)
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

// Load loads the configuration with default options, reading .env if present.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "webhookrelay")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("HTTP_TIMEOUT", 5)
	v.SetDefault("WORKER_COUNT", 4)
	v.SetDefault("RETENTION_HOURS", 72)
	v.SetDefault("PURGE_INTERVAL_MINUTES", 60)
	v.SetDefault("SCHEDULER_POLL_SECONDS", 1)
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("API_BASE_URL", "")
	v.SetDefault("VERSION", VERSION)

	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		Delivery: DeliveryConfig{
			HTTPTimeout:    time.Duration(v.GetInt("HTTP_TIMEOUT")) * time.Second,
			WorkerCount:    v.GetInt("WORKER_COUNT"),
			RetentionHours: v.GetInt("RETENTION_HOURS"),
			PurgeInterval:  time.Duration(v.GetInt("PURGE_INTERVAL_MINUTES")) * time.Minute,
			SchedulerPoll:  time.Duration(v.GetInt("SCHEDULER_POLL_SECONDS")) * time.Second,
		},
		Environment: v.GetString("ENVIRONMENT"),
		APIBaseURL:  v.GetString("API_BASE_URL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	return cfg, nil
}

// IsDevelopment returns true if the environment is set to development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
