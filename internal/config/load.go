package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variables read by Load.
const EnvPrefix = "TASK_API"

// legacyEnv lists unprefixed environment variables accepted as fallbacks
// for configuration keys, in addition to the TASK_API_* names.
var legacyEnv = map[string][]string{
	"server.port":       {"PORT"},
	"server.log_level":  {"LOG_LEVEL"},
	"database.url":      {"DATABASE_URL"},
	"database.host":     {"DB_HOST"},
	"database.port":     {"DB_PORT"},
	"database.name":     {"DB_NAME"},
	"database.user":     {"DB_USER"},
	"database.password": {"DB_PASSWORD"},
	"database.sslmode":  {"DB_SSLMODE"},
}

// setDefaults registers every configuration key with its default value.
// Viper only unmarshals keys it knows about, so every field needs one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "taskdb")
	v.SetDefault("database.user", "taskuser")
	v.SetDefault("database.password", "taskpassword")
	v.SetDefault("database.sslmode", "")
	v.SetDefault("database.sqlite_path", "task_api.db")
	v.SetDefault("database.max_open_conns", 15)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)
	v.SetDefault("database.auto_migrate", true)
}

// bindEnv binds each key to its TASK_API_* variable followed by any legacy names.
func bindEnv(v *viper.Viper) error {
	for _, key := range v.AllKeys() {
		names := []string{key, EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		names = append(names, legacyEnv[key]...)
		if err := v.BindEnv(names...); err != nil {
			return fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}
	return nil
}

// Load configuration from environment variables and optionally config files.
// Sources in increasing precedence: defaults, config.yaml (in . or ./config),
// a .env file in the working directory, and the process environment.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// A missing .env file is normal; variables already set in the
	// environment are never overridden by it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
