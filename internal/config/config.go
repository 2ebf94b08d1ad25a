package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	defaultListenAddr      = "127.0.0.1:4173"
	defaultBackendURL      = "http://127.0.0.1:5000"
	defaultAssetsDir       = "ui"
	defaultLogLevel        = "INFO"
	defaultShutdownTimeout = 10 * time.Second

	envListenAddr      = "LISTEN_ADDR"
	envPort            = "PORT"
	envBackendURL      = "FORMWIRE_BACKEND_URL"
	envAssetsDir       = "FORMWIRE_ASSETS_DIR"
	envLogLevel        = "FORMWIRE_LOG_LEVEL"
	envShutdownTimeout = "FORMWIRE_SHUTDOWN_TIMEOUT"
)

// Config captures runtime settings for the UI server.
type Config struct {
	ListenAddr string
	// BackendURL is the application that renders pages, issues CSRF tokens
	// and answers form submissions.
	BackendURL      string
	AssetsDir       string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// FromEnv constructs a Config by reading environment variables with defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:      defaultListenAddr,
		BackendURL:      defaultBackendURL,
		AssetsDir:       defaultAssetsDir,
		LogLevel:        defaultLogLevel,
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if v := strings.TrimSpace(os.Getenv(envListenAddr)); v != "" {
		cfg.ListenAddr = v
	} else if port := strings.TrimSpace(os.Getenv(envPort)); port != "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", port)
	}
	if v := strings.TrimSpace(os.Getenv(envBackendURL)); v != "" {
		cfg.BackendURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envAssetsDir)); v != "" {
		cfg.AssetsDir = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(envShutdownTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s %q: %w", envShutdownTimeout, v, err)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

// Backend parses BackendURL.
func (c Config) Backend() (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(c.BackendURL))
	if err != nil {
		return nil, fmt.Errorf("config: invalid backend url %q: %w", c.BackendURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("config: backend url %q must be an absolute http(s) url", c.BackendURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u, nil
}

// Validate ensures the configuration is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("config: listen address is required")
	}
	if _, err := c.Backend(); err != nil {
		return err
	}
	if strings.TrimSpace(c.AssetsDir) == "" {
		return fmt.Errorf("config: assets directory is required")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: shutdown timeout must be positive")
	}
	return nil
}
