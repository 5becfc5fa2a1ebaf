package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load,
// e.g. ELECTIVE_DATABASE_URL for database.url.
const EnvPrefix = "ELECTIVE"

// defaults lists every configuration key. Keys must be registered here for
// environment variables to reach them during unmarshalling.
var defaults = map[string]any{
	"server.port":                      8080,
	"server.log_level":                 "info",
	"server.shutdown_timeout_seconds":  15,
	"database.url":                     "",
	"database.max_open_conns":          25,
	"database.max_idle_conns":          5,
	"auth.jwt_secret":                  "",
	"auth.token_lifetime_minutes":      60,
	"auth.admin_username":              "hod",
	"auth.admin_password_hash":         "",
	"recommendation.k_neighbors":       10,
	"recommendation.top_n":             10,
	"recommendation.workers":           4,
	"enrollment.default_seats":         60,
	"enrollment.max_retries":           3,
	"enrollment.rate_limit_per_minute": 30,
	"audit.queue_size":                 256,
	"audit.worker_count":               2,
	"cors.allowed_origins":             []string{},
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from config files. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path. An empty path searches
// for config.yaml in the working directory and tolerates its absence; an
// explicit path must exist.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
