// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

// Package config holds application configuration loaded with Koanf v2.
//
// Loading order (later layers override earlier ones):
//  1. Defaults: built-in values for every setting
//  2. Config file: optional YAML file (CONFIG_PATH, ./config.yaml,
//     /etc/reelrank/config.yaml)
//  3. Environment variables: REELRANK_* plus a small set of compatibility
//     names (RUN_ID, PORT, ...) used by hosting platforms
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Data      DataConfig      `koanf:"data"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ArtifactsConfig pins the serving process to one training run.
//
// The run directory {dir}/{run_id} is read-only input for the server and
// the write target for the trainer.
type ArtifactsConfig struct {
	// Dir is the artifacts root directory.
	Dir string `koanf:"dir"`

	// RunID selects which training run to serve.
	RunID string `koanf:"run_id"`
}

// DataConfig holds dataset locations used by the trainer and the catalog loader.
type DataConfig struct {
	// Dir is the root directory for downloaded datasets. The MovieLens
	// archive extracts to {dir}/ml-latest-small.
	Dir string `koanf:"dir"`
}

// APIConfig holds query-parameter bounds for the serving endpoints.
// Defaults match the published interface; changing them changes the contract.
type APIConfig struct {
	DefaultK           int `koanf:"default_k"`
	MaxK               int `koanf:"max_k"`
	DefaultSearchLimit int `koanf:"default_search_limit"`
	MaxSearchLimit     int `koanf:"max_search_limit"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds log level and output format.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}

	if c.Artifacts.Dir == "" {
		return fmt.Errorf("artifacts.dir must not be empty")
	}
	if c.Artifacts.RunID == "" {
		return fmt.Errorf("artifacts.run_id must not be empty")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir must not be empty")
	}

	if c.API.DefaultK < 1 || c.API.DefaultK > c.API.MaxK {
		return fmt.Errorf("api.default_k must be between 1 and api.max_k, got %d", c.API.DefaultK)
	}
	if c.API.MaxK < 1 {
		return fmt.Errorf("api.max_k must be at least 1, got %d", c.API.MaxK)
	}
	if c.API.DefaultSearchLimit < 1 || c.API.DefaultSearchLimit > c.API.MaxSearchLimit {
		return fmt.Errorf("api.default_search_limit must be between 1 and api.max_search_limit, got %d", c.API.DefaultSearchLimit)
	}
	if c.API.MaxSearchLimit < 1 {
		return fmt.Errorf("api.max_search_limit must be at least 1, got %d", c.API.MaxSearchLimit)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}

// RunDir returns the artifact directory for the configured run id.
func (c *Config) RunDir() string {
	return c.Artifacts.Dir + "/" + c.Artifacts.RunID
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
