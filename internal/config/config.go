package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Supported values for DatabaseConfig.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// ShutdownTimeout returns the graceful shutdown deadline.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
//
// For Postgres the connection string is either URL verbatim or, when URL is
// empty, assembled from Host, Port, Name, User and Password.
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"      validate:"required,oneof=postgres sqlite"`
	URL        string `mapstructure:"url"         validate:"omitempty,url"`
	Host       string `mapstructure:"host"        validate:"required_without=URL"`
	Port       int    `mapstructure:"port"        validate:"gt=0,lt=65536"`
	Name       string `mapstructure:"name"        validate:"required_without=URL"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	SSLMode    string `mapstructure:"sslmode"     validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`

	MaxOpenConns           int  `mapstructure:"max_open_conns"             validate:"gt=0"`
	MaxIdleConns           int  `mapstructure:"max_idle_conns"             validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetimeMinutes int  `mapstructure:"conn_max_lifetime_minutes"  validate:"gte=0"`
	AutoMigrate            bool `mapstructure:"auto_migrate"`
}

// DSN returns the Postgres connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	switch {
	case c.User != "" && c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.SSLMode}}.Encode()
	}
	return u.String()
}

// SafeDSN returns the connection string with the password masked,
// suitable for logging.
func (c DatabaseConfig) SafeDSN() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}
	return maskDatabaseURL(c.DSN())
}

// ConnMaxLifetime returns the maximum amount of time a pooled connection may be reused.
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// maskDatabaseURL masks the password in a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	return parsedURL.Redacted()
}

// String implements fmt.Stringer without exposing credentials.
func (c DatabaseConfig) String() string {
	return fmt.Sprintf("%s(%s)", c.Driver, c.SafeDSN())
}
