package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mushroom-datastore/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvXPSParserURL,
		config.EnvDbDriver,
		config.EnvDbDsn,
		config.EnvHTTPPort,
		config.EnvGRPCPort,
		config.EnvLogLevel,
		config.EnvShutdownTimeout,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDbDriver, cfg.DbDriver)
	assert.Equal(t, config.DefaultDbDsn, cfg.DbDsn)
	assert.Equal(t, config.DefaultHTTPPort, cfg.HttpPort)
	assert.Equal(t, config.DefaultGRPCPort, cfg.GrpcPort)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, config.DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.XPSParserURL)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvXPSParserURL, "http://xps-reader:5000/xps_reader/")
	t.Setenv(config.EnvDbDriver, "MEMORY")
	t.Setenv(config.EnvHTTPPort, "9090")
	t.Setenv(config.EnvGRPCPort, "0")
	t.Setenv(config.EnvLogLevel, "warning")
	t.Setenv(config.EnvShutdownTimeout, "3s")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://xps-reader:5000/xps_reader/", cfg.XPSParserURL)
	assert.Equal(t, config.DriverMemory, cfg.DbDriver)
	assert.Equal(t, 9090, cfg.HttpPort)
	assert.Equal(t, 0, cfg.GrpcPort)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRejectsUnparsableValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvHTTPPort, "eighty")

	_, err := config.Load()
	assert.ErrorContains(t, err, config.EnvHTTPPort)
}

func TestValidateRequiresParserURL(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, config.EnvXPSParserURL)
}

func TestValidateParserURL(t *testing.T) {
	cases := map[string]bool{
		"http://localhost:5000/xps_reader/": true,
		"https://parser.example.com/":       true,
		"":                                  false,
		"localhost:5000":                    false,
		"ftp://parser/":                     false,
		"http://":                           false,
		"://broken":                         false,
	}

	for raw, ok := range cases {
		err := config.ValidateParserURL(raw)
		if ok {
			assert.NoError(t, err, raw)
		} else {
			assert.Error(t, err, raw)
		}
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{
		XPSParserURL: "http://localhost:5000/",
		DbDriver:     "clickhouse",
		HttpPort:     8080,
	}
	assert.ErrorContains(t, cfg.Validate(), "unsupported driver")
}

func TestRedactedDSN(t *testing.T) {
	cfg := &config.Config{DbDsn: "postgres://user:secret@db:5432/datastore"}
	assert.NotContains(t, cfg.RedactedDSN(), "secret")
	assert.Contains(t, cfg.RedactedDSN(), "db:5432")
}
