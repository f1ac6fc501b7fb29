package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	EnvSigningPublicOrigin = "ATTEST_SIGNING_PUBLIC_ORIGIN"
	EnvSigningSessionTTL   = "ATTEST_SIGNING_SESSION_TTL"
	EnvSigningBasePath     = "ATTEST_SIGNING_BASE_PATH"
)

// SigningConfig controls signing links and session lifetime.
type SigningConfig struct {
	// PublicOrigin is the scheme and host external signers reach the
	// service on, e.g. https://sign.example.com.
	PublicOrigin string `toml:"public_origin"`
	SessionTTL   string `toml:"session_ttl"`
	BasePath     string `toml:"base_path"`
}

// SessionTTLDuration returns SessionTTL as a time.Duration.
func (c *SigningConfig) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *SigningConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *SigningConfig) Merge(overlay *SigningConfig) {
	if overlay.PublicOrigin != "" {
		c.PublicOrigin = overlay.PublicOrigin
	}
	if overlay.SessionTTL != "" {
		c.SessionTTL = overlay.SessionTTL
	}
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
}

func (c *SigningConfig) loadDefaults() {
	if c.PublicOrigin == "" {
		c.PublicOrigin = "http://localhost:8080"
	}
	if c.SessionTTL == "" {
		c.SessionTTL = "168h"
	}
	if c.BasePath == "" {
		c.BasePath = "/sign"
	}
}

func (c *SigningConfig) loadEnv() {
	if v := os.Getenv(EnvSigningPublicOrigin); v != "" {
		c.PublicOrigin = v
	}
	if v := os.Getenv(EnvSigningSessionTTL); v != "" {
		c.SessionTTL = v
	}
	if v := os.Getenv(EnvSigningBasePath); v != "" {
		c.BasePath = v
	}
}

func (c *SigningConfig) validate() error {
	c.PublicOrigin = strings.TrimRight(c.PublicOrigin, "/")

	u, err := url.Parse(c.PublicOrigin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid public_origin %q", c.PublicOrigin)
	}

	ttl, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return fmt.Errorf("invalid session_ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}

	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base_path must start with /")
	}
	return nil
}
