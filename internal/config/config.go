// Package config manages server-wide configuration stored in
// server_config.json, created with defaults on first start.
package config

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const fileName = "server_config.json"

// Config stores all server-wide configuration.
type Config struct {
	// JWTSecret is the secret used to sign JWT tokens.
	// Auto-generated if empty on first load.
	JWTSecret []byte `json:"jwt_secret"`

	// RateLimits defines rate limiting configuration.
	RateLimits RateLimits `json:"rate_limits"`

	// Admin is the bootstrap administrator account, created only when the
	// users collection is empty.
	Admin AdminBootstrap `json:"admin"`
}

// RateLimits defines rate limiting configuration (requests per minute).
type RateLimits struct {
	// AuthRatePerMin limits authentication attempts. 0 means unlimited.
	AuthRatePerMin int `json:"auth_rate_per_min"`

	// APIRatePerMin limits all other API requests per client. 0 means
	// unlimited.
	APIRatePerMin int `json:"api_rate_per_min"`
}

// Validate checks that rate limit values are non-negative.
func (r *RateLimits) Validate() error {
	if r.AuthRatePerMin < 0 {
		return errors.New("auth_rate_per_min must be non-negative")
	}
	if r.APIRatePerMin < 0 {
		return errors.New("api_rate_per_min must be non-negative")
	}
	return nil
}

// AdminBootstrap holds the credentials seeded on an empty deployment.
type AdminBootstrap struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if len(c.JWTSecret) == 0 {
		return errors.New("jwt_secret must not be empty")
	}
	if c.Admin.Email == "" || c.Admin.Password == "" {
		return errors.New("admin email and password must not be empty")
	}
	return c.RateLimits.Validate()
}

func defaultConfig() (*Config, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return &Config{
		JWTSecret: secret,
		RateLimits: RateLimits{
			AuthRatePerMin: 10,
			APIRatePerMin:  600,
		},
		Admin: AdminBootstrap{
			Email:    "admin@academia.local",
			Password: "change-me",
			Name:     "Administrator",
		},
	}, nil
}

// Load reads the configuration from dir, creating the file with generated
// defaults when it does not exist yet.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		cfg, err := defaultConfig()
		if err != nil {
			return nil, err
		}
		if err := save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	// Older files may predate the generated secret.
	if len(cfg.JWTSecret) == 0 {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		cfg.JWTSecret = secret
		if err := save(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &cfg, nil
}

func save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	// The file holds the JWT secret and admin credential.
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
