package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port               int    `env:"PORT" envDefault:"8080"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	RedisURL           string `env:"REDIS_URL,required"`
	JWTSecret          string `env:"JWT_SECRET,required"`
	AdminCreationToken string `env:"ADMIN_CREATION_TOKEN"`

	UserTokenTTLSeconds  int `env:"USER_TOKEN_TTL_SECONDS" envDefault:"3600"`
	AdminTokenTTLSeconds int `env:"ADMIN_TOKEN_TTL_SECONDS" envDefault:"604800"`

	LinkCacheTTLSeconds   int `env:"LINK_CACHE_TTL_SECONDS" envDefault:"120"`
	LinkCacheMaxEntries   int `env:"LINK_CACHE_MAX_ENTRIES" envDefault:"500"`
	SearchCacheTTLSeconds int `env:"SEARCH_CACHE_TTL_SECONDS" envDefault:"60"`
	SearchCacheMaxEntries int `env:"SEARCH_CACHE_MAX_ENTRIES" envDefault:"250"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`

	PortalBaseURL string `env:"PORTAL_BASE_URL" envDefault:"http://localhost:5173"`
	StaticDir     string `env:"STATIC_DIR" envDefault:"static"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) UserTokenTTL() time.Duration {
	return time.Duration(c.UserTokenTTLSeconds) * time.Second
}

func (c *Config) AdminTokenTTL() time.Duration {
	return time.Duration(c.AdminTokenTTLSeconds) * time.Second
}

func (c *Config) LinkCacheTTL() time.Duration {
	return time.Duration(c.LinkCacheTTLSeconds) * time.Second
}

func (c *Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.SearchCacheTTLSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if isProduction {
		if err := validateSecret("JWT_SECRET", c.JWTSecret); err != nil {
			return err
		}
		if c.AdminCreationToken != "" {
			if err := validateSecret("ADMIN_CREATION_TOKEN", c.AdminCreationToken); err != nil {
				return err
			}
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	if c.AdminCreationToken == "" {
		log.Warn().Msg("ADMIN_CREATION_TOKEN is empty: admin signup is disabled")
	}
	if c.SMTPHost == "" {
		log.Warn().Msg("SMTP_HOST is empty: password reset emails will be logged instead of sent")
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
