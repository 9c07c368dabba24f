// Package config loads layered YAML configuration the way la2go's
// internal/config does, extended with an environment-file overlay and
// APP__-prefixed environment variable overrides (spec §6).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds PostgreSQL connection parameters, carried from
// la2go's internal/config.DatabaseConfig.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns int32 `yaml:"max_conns"`
	MinConns int32 `yaml:"min_conns"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	base := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)

	var params []string
	if d.MaxConns > 0 {
		params = append(params, fmt.Sprintf("pool_max_conns=%d", d.MaxConns))
	}
	if d.MinConns > 0 {
		params = append(params, fmt.Sprintf("pool_min_conns=%d", d.MinConns))
	}
	if len(params) > 0 {
		return base + "&" + strings.Join(params, "&")
	}
	return base
}

func defaultDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     5432,
		User:     "embervale",
		Password: "embervale",
		DBName:   "embervale",
		SSLMode:  "disable",
	}
}

// TelemetryConfig controls logging format/level and optional OTLP export
// (spec §4.7).
type TelemetryConfig struct {
	LogLevel     string `yaml:"log_level"`    // debug, info, warn, error
	LogFormat    string `yaml:"log_format"`   // text, json
	MetricsAddr  string `yaml:"metrics_addr"` // bind addr for /metrics
	OTLPEndpoint string `yaml:"otlp_endpoint"` // empty disables OTLP export
	ServiceName  string `yaml:"service_name"`
}

func defaultTelemetry(metricsAddr string) TelemetryConfig {
	return TelemetryConfig{
		LogLevel:    "info",
		LogFormat:   "text",
		MetricsAddr: metricsAddr,
		ServiceName: "mmo-server",
	}
}

// loadLayered reads base.yaml, overlays an environment-specific file
// (local/staging/production), then overlays APP__SECTION__FIELD
// environment variables onto dst. dst must be a pointer to a struct
// whose fields (and nested struct fields) carry `yaml` tags.
func loadLayered(dir, environment string, dst any) error {
	_ = godotenv.Load() // optional .env, ignored if absent

	basePath := filepath.Join(dir, "base.yaml")
	if err := mergeYAMLFile(basePath, dst); err != nil {
		return fmt.Errorf("loading base config %s: %w", basePath, err)
	}

	if environment == "" {
		environment = envOr("APP_ENVIRONMENT", "local")
	}
	envPath := filepath.Join(dir, environment+".yaml")
	if err := mergeYAMLFile(envPath, dst); err != nil {
		return fmt.Errorf("loading %s config %s: %w", environment, envPath, err)
	}

	if err := applyEnvOverrides(dst, "APP"); err != nil {
		return fmt.Errorf("applying APP__ environment overrides: %w", err)
	}
	return nil
}

// mergeYAMLFile unmarshals path onto dst if it exists; missing files are
// not an error since defaults already live on dst before loadLayered runs.
func mergeYAMLFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, dst)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
