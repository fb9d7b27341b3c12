package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix namespaces every environment variable read by Load.
	EnvPrefix = "confluence"

	defaultLogLevel    = "info"
	defaultLogFormat   = "json"
	defaultHTTPTimeout = 30 * time.Second
)

// Config represents the full application configuration loaded from file/env.
type Config struct {
	Server     ServerConfig       `mapstructure:"server"`
	BaseURL    string             `mapstructure:"base_url"`
	Credential ServiceCredentials `mapstructure:",squash"`
}

// ServerConfig holds server-specific options.
type ServerConfig struct {
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// ServiceCredentials describes basic authentication for the Confluence site.
type ServiceCredentials struct {
	Email    string `mapstructure:"email"`
	APIToken string `mapstructure:"api_token"`
}

// Load reads configuration from the provided directory or file and from
// CONFLUENCE_* environment variables. Environment values win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if path != "" {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			v.AddConfigPath(path)
		} else {
			v.SetConfigFile(path)
		}
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper already knows about.
	for _, key := range []string{"base_url", "email", "api_token"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	v.SetDefault("server.log_level", defaultLogLevel)
	v.SetDefault("server.log_format", defaultLogFormat)
	v.SetDefault("server.http_timeout", defaultHTTPTimeout)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.applyNetrcDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL == "" {
		return fmt.Errorf("config: base_url is required (set CONFLUENCE_BASE_URL)")
	}

	if err := c.Credential.validate(); err != nil {
		return err
	}

	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}

	switch strings.ToLower(c.Server.LogFormat) {
	case "":
		c.Server.LogFormat = defaultLogFormat
	case "json", "text":
	default:
		return fmt.Errorf("config: unsupported server.log_format %q", c.Server.LogFormat)
	}

	if c.Server.HTTPTimeout < 0 {
		return fmt.Errorf("config: server.http_timeout must not be negative")
	}

	return nil
}

func (s ServiceCredentials) validate() error {
	if strings.TrimSpace(s.Email) == "" {
		return fmt.Errorf("config: email is required (set CONFLUENCE_EMAIL)")
	}
	if strings.TrimSpace(s.APIToken) == "" {
		return fmt.Errorf("config: api_token is required (set CONFLUENCE_API_TOKEN)")
	}
	return nil
}
