package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
}

type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	FrontendOrigin string `yaml:"frontend_origin"`
	Production     bool   `yaml:"production"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CredentialSource selects how the authorization gate reads the session
// credential. Exactly one is active per deployment.
type CredentialSource string

const (
	CredentialSourceCookie CredentialSource = "cookie"
	CredentialSourceBearer CredentialSource = "bearer"
)

type AuthConfig struct {
	JWTSecret        string           `yaml:"jwt_secret"`
	TokenTTL         time.Duration    `yaml:"token_ttl"`
	CredentialSource CredentialSource `yaml:"credential_source"`
	CookieSameSite   string           `yaml:"cookie_samesite"`
	GoogleClientID   string           `yaml:"google_client_id"`
}

type EmailConfig struct {
	SMTP SMTPConfig `yaml:"smtp"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NOTES_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("NOTES_SMTP_PASSWORD"); v != "" {
		c.Email.SMTP.Password = v
	}
	if v := os.Getenv("NOTES_GOOGLE_CLIENT_ID"); v != "" {
		c.Auth.GoogleClientID = v
	}
}

func (c *Config) validate() error {
	// The signing secret has no fallback. A missing or weak secret is a
	// startup defect, not something to paper over with a default.
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	switch c.Auth.CredentialSource {
	case "", CredentialSourceCookie, CredentialSourceBearer:
	default:
		return fmt.Errorf("auth.credential_source must be %q or %q", CredentialSourceCookie, CredentialSourceBearer)
	}
	switch c.Auth.CookieSameSite {
	case "", "lax", "none":
	default:
		return fmt.Errorf("auth.cookie_samesite must be \"lax\" or \"none\"")
	}
	if c.Email.SMTP.Host == "" {
		return fmt.Errorf("email.smtp.host is required")
	}
	if c.Email.SMTP.Port == 0 {
		return fmt.Errorf("email.smtp.port is required")
	}
	if c.Email.SMTP.From == "" {
		return fmt.Errorf("email.smtp.from is required")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/notes.db"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if c.Auth.CredentialSource == "" {
		c.Auth.CredentialSource = CredentialSourceCookie
	}
	if c.Auth.CookieSameSite == "" {
		c.Auth.CookieSameSite = "lax"
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
