package auth

import (
	"fmt"
	"os"
)

// Config holds OIDC verification parameters.
type Config struct {
	Issuer   string `toml:"issuer"`
	ClientID string `toml:"client_id"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Issuer   string
	ClientID string
}

// Finalize applies environment variable overrides and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
}

func (c *Config) validate() error {
	if c.Issuer == "" {
		return fmt.Errorf("issuer required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required")
	}
	return nil
}
