package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
	Rate     RateConfig     `mapstructure:"rate"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

type AuthConfig struct {
	// HMAC secret for verifying bearer tokens issued by the upstream auth
	// service. Empty secret disables the admin API entirely.
	JWTSecret string `mapstructure:"jwt_secret"`
	AdminRole string `mapstructure:"admin_role"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr            string `mapstructure:"addr"`
	Password        string `mapstructure:"password"`
	DB              int    `mapstructure:"db"`
	StatsTTLSeconds int    `mapstructure:"stats_ttl_seconds"`
}

// LoggingConfig controls the request logging interceptor.
type LoggingConfig struct {
	TrackedMethods []string `mapstructure:"tracked_methods"`
	ExcludedPaths  []string `mapstructure:"excluded_paths"`
	QueueSize      int      `mapstructure:"queue_size"`
}

// CleanupConfig controls the retention job.
type CleanupConfig struct {
	RetentionHours int    `mapstructure:"retention_hours"`
	Schedule       string `mapstructure:"schedule"` // cron expression
}

type RateConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. REQTRAIL_DATABASE_DSN
	viper.SetEnvPrefix("reqtrail")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("auth.admin_role", "admin")
	viper.SetDefault("redis.stats_ttl_seconds", 30)
	viper.SetDefault("logging.tracked_methods", []string{"POST", "PUT", "PATCH", "DELETE"})
	viper.SetDefault("logging.excluded_paths", []string{"/api/visitors"})
	viper.SetDefault("logging.queue_size", 1000)
	viper.SetDefault("cleanup.retention_hours", 24)
	viper.SetDefault("cleanup.schedule", "0 2 * * *")
	viper.SetDefault("rate.requests_per_second", 10)
	viper.SetDefault("rate.burst", 20)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
