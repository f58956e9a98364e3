// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Auth      AuthConfig
	Federated FederatedConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	// BasePath is the directory for the sqlite database, search index, and keys.
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// CORSOrigin is the allowed browser origin (single origin, credentials enabled).
	CORSOrigin string
}

// AuthConfig holds local authentication configuration. The PASETO symmetric
// key itself lives under Data.BasePath and is loaded or generated at startup.
type AuthConfig struct {
	AccessTokenDuration time.Duration
}

// FederatedConfig holds the federated identity provider configuration.
// When Issuer is empty the federated token path is disabled.
type FederatedConfig struct {
	// Provider is the label stored in users.auth_provider for provisioned profiles.
	Provider string
	Issuer   string
	Audience string
	JWKSURL  string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load parses the given command-line arguments and builds the configuration.
// Split out from LoadConfig so tests can supply explicit arguments.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("booknook", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for data storage")
	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigin := fs.String("cors-origin", "", "Allowed browser origin")
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	fedProvider := fs.String("federated-provider", "", "Label stored for federated profiles")
	fedIssuer := fs.String("federated-issuer", "", "Federated identity provider issuer URL")
	fedAudience := fs.String("federated-audience", "", "Expected audience of federated tokens")
	fedJWKSURL := fs.String("federated-jwks-url", "", "JWKS endpoint of the federated provider")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", "./data"),
		},
		Server: ServerConfig{
			Port:       getConfigValue(*port, "PORT", "8080"),
			CORSOrigin: getConfigValue(*corsOrigin, "CORS_ORIGIN", "http://localhost:5173"),
		},
		Federated: FederatedConfig{
			Provider: getConfigValue(*fedProvider, "FEDERATED_PROVIDER", "federated"),
			Issuer:   getConfigValue(*fedIssuer, "FEDERATED_ISSUER", ""),
			Audience: getConfigValue(*fedAudience, "FEDERATED_AUDIENCE", ""),
			JWKSURL:  getConfigValue(*fedJWKSURL, "FEDERATED_JWKS_URL", ""),
		},
	}

	var err error
	cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Auth.AccessTokenDuration, err = parseDurationValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", 8*time.Hour)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// FederatedEnabled reports whether the federated token path is configured.
func (c *Config) FederatedEnabled() bool {
	return c.Federated.Issuer != "" && c.Federated.JWKSURL != ""
}

// getConfigValue returns the first non-empty value: flag, env var, default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// parseDurationValue resolves a duration with the standard precedence.
func parseDurationValue(flagValue, envKey string, defaultValue time.Duration) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", envKey, err)
	}
	return d, nil
}

// loadEnvFile reads KEY=VALUE pairs from a file into the process environment.
// Existing environment variables are not overwritten.
func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
