package auth

import (
	"fmt"

	"github.com/scribely/scribely/auth/jwt"
	"github.com/scribely/scribely/auth/password"
)

// Config composes the authentication sub-configurations for loading from
// YAML/env via mapstructure.
type Config struct {
	// JWT configures the token service.
	JWT jwt.Config `mapstructure:"jwt"`

	// Password configures password hashing.
	Password password.Config `mapstructure:"password"`
}

// ApplyDefaults sets sensible defaults on the sub-configurations.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
}

// Validate checks the sub-configurations. A missing JWT secret fails here,
// at startup, not on the first issue/verify call.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("auth.password: %w", err)
	}
	return nil
}
