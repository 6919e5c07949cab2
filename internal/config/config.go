// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package config loads rushd configuration from defaults, an optional
// YAML file, and command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Default values applied before any file or flag overrides.
const (
	DefaultServerAddr  = "127.0.0.1:8000"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultBaseURL     = "http://127.0.0.1:8000"
	DefaultLogFormat   = "json"
	DefaultSessionTTL  = 24 * time.Hour
	DefaultMailPort    = 587
)

// Config holds the full rushd configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Mail     MailConfig     `koanf:"mail"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr        string `koanf:"addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	// BaseURL is the externally reachable URL of the control plane,
	// used when building confirmation links.
	BaseURL string `koanf:"base_url"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// SessionConfig configures session token issuance.
type SessionConfig struct {
	SigningKey string        `koanf:"signing_key"`
	TTL        time.Duration `koanf:"ttl"`
}

// MailConfig configures the SMTP relay used for confirmation emails.
type MailConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Format string `koanf:"format"`
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:        DefaultServerAddr,
			MetricsAddr: DefaultMetricsAddr,
			BaseURL:     DefaultBaseURL,
		},
		Session: SessionConfig{
			TTL: DefaultSessionTTL,
		},
		Mail: MailConfig{
			Port: DefaultMailPort,
		},
		Log: LogConfig{
			Format: DefaultLogFormat,
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path (if
// non-empty), then the given flag set. Secrets may also come from the
// environment: DATABASE_URL, SESSION_SIGNING_KEY, and SMTP_PASSWORD
// override empty values.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		// Only flags the user actually set participate, so flag
		// defaults never clobber file values.
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return f.Name, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides fills empty secret fields from the environment.
func applyEnvOverrides(cfg *Config) {
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.Session.SigningKey == "" {
		cfg.Session.SigningKey = os.Getenv("SESSION_SIGNING_KEY")
	}
	if cfg.Mail.Password == "" {
		cfg.Mail.Password = os.Getenv("SMTP_PASSWORD")
	}
}

// Validate checks that the configuration can run a server.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required (or set DATABASE_URL)")
	}
	if c.Session.SigningKey == "" {
		return fmt.Errorf("session.signing_key is required (or set SESSION_SIGNING_KEY)")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	return nil
}

// MailEnabled reports whether an SMTP relay is configured. When false,
// confirmation emails are logged instead of sent.
func (c *Config) MailEnabled() bool {
	return c.Mail.Host != "" && c.Mail.From != ""
}
