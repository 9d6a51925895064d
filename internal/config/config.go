package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the service settings loaded from environment variables.
type Config struct {
	XPSParserURL    string
	DbDriver        string
	DbDsn           string
	HttpPort        int
	GrpcPort        int
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Load reads the configuration from environment variables, substituting defaults for unset values.
// It only fails on values that cannot be parsed; use Validate for semantic checks.
func Load() (*Config, error) {
	httpPort, err := getEnvInt(EnvHTTPPort, DefaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvHTTPPort, err)
	}

	grpcPort, err := getEnvInt(EnvGRPCPort, DefaultGRPCPort)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvGRPCPort, err)
	}

	shutdownTimeout, err := getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvShutdownTimeout, err)
	}

	return &Config{
		XPSParserURL:    strings.TrimSpace(os.Getenv(EnvXPSParserURL)),
		DbDriver:        strings.ToLower(getEnvString(EnvDbDriver, DefaultDbDriver)),
		DbDsn:           getEnvString(EnvDbDsn, DefaultDbDsn),
		HttpPort:        httpPort,
		GrpcPort:        grpcPort,
		LogLevel:        normalizeLogLevel(getEnvString(EnvLogLevel, DefaultLogLevel)),
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

// Validate checks everything the serve command needs before any component is constructed.
func (c *Config) Validate() error {
	var errs []error

	if err := ValidateParserURL(c.XPSParserURL); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvXPSParserURL, err))
	}

	switch c.DbDriver {
	case DriverPostgres:
		if c.DbDsn == "" {
			errs = append(errs, fmt.Errorf("%s is required for the postgres driver", EnvDbDsn))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("%s: unsupported driver %q", EnvDbDriver, c.DbDriver))
	}

	if c.HttpPort <= 0 || c.HttpPort > 65535 {
		errs = append(errs, fmt.Errorf("%s: port %d out of range", EnvHTTPPort, c.HttpPort))
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		errs = append(errs, fmt.Errorf("%s: port %d out of range", EnvGRPCPort, c.GrpcPort))
	}

	return errors.Join(errs...)
}

// ValidateParserURL accepts absolute http(s) URLs only.
func ValidateParserURL(raw string) error {
	if raw == "" {
		return errors.New("parser base URL is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse parser base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("parser base URL must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("parser base URL must include a host")
	}
	return nil
}

// RedactedDSN hides the password part of the DSN so it can be logged.
func (c *Config) RedactedDSN() string {
	parsed, err := url.Parse(c.DbDsn)
	if err != nil || parsed.User == nil {
		if c.DbDsn == "" {
			return "(not set)"
		}
		return fmt.Sprintf("(set, length %d)", len(c.DbDsn))
	}
	return parsed.Redacted()
}

func getEnvString(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return parsed, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}

	return parsed, nil
}

func normalizeLogLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return strings.ToLower(level)
	case "warning":
		return "warn"
	default:
		return DefaultLogLevel
	}
}
