package jwt

import (
	"errors"
	"time"
)

// Config configures the JWT token service.
// The service signs with HS256 only; the secret is process-wide configuration
// loaded once at startup.
type Config struct {
	// Secret is the HMAC signing key. Required — a missing secret fails
	// Validate so the process refuses to start rather than issuing
	// unverifiable tokens.
	Secret string `mapstructure:"secret"`

	// Issuer is the "iss" claim (optional).
	Issuer string `mapstructure:"issuer"`

	// AccessTokenTTL is the lifetime of issued tokens (default: 7 days).
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 7 * 24 * time.Hour
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("jwt: secret is required")
	}
	if c.AccessTokenTTL < 0 {
		return errors.New("jwt: access_token_ttl must be positive")
	}
	return nil
}
