// Package config loads service configuration from config.yaml, an optional
// .env file, and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration for the service.
type Config struct {
	Server struct {
		Port           int      `mapstructure:"port"`
		BodyLimit      string   `mapstructure:"body_limit"`
		LogLevel       string   `mapstructure:"log_level"`
		LogJSON        bool     `mapstructure:"log_json"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"server"`
	Mongo struct {
		URI      string `mapstructure:"uri"`
		Database string `mapstructure:"database"`
	} `mapstructure:"mongo"`
	Gemini struct {
		APIKey     string        `mapstructure:"api_key"`
		Model      string        `mapstructure:"model"`
		MaxRetries int           `mapstructure:"max_retries"`
		BaseDelay  time.Duration `mapstructure:"base_delay"`
		Timeout    time.Duration `mapstructure:"timeout"`
	} `mapstructure:"gemini"`
	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		ExpiryMinutes int    `mapstructure:"expiry_minutes"`
	} `mapstructure:"auth"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment.
// envFile, when non-empty, is loaded first so config.yaml values can
// reference the same variables locally and in deployment.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		// Best effort: a local .env is optional.
		_ = godotenv.Load()
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("prdflow")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// The unprefixed name is what Gemini tooling conventionally uses.
	_ = viper.BindEnv("gemini.api_key", "PRDFLOW_GEMINI_API_KEY", "GEMINI_API_KEY")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Running purely on env vars and defaults is supported.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.body_limit", "10M")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.log_json", false)
	viper.SetDefault("server.allowed_origins", []string{"*"})

	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "prdflow")

	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("gemini.max_retries", 3)
	viper.SetDefault("gemini.base_delay", 2*time.Second)
	viper.SetDefault("gemini.timeout", 30*time.Second)

	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.expiry_minutes", 1440)

	viper.SetDefault("tls.enable", false)
}

// GeminiConfigured reports whether an API key is present. The service still
// starts without one; AI endpoints answer 503 until a key is configured.
func (c *Config) GeminiConfigured() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}
