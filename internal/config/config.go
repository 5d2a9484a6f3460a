package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
)

type Config struct {
	ServerPort int

	ShopAPIURL     string
	ShopAPITimeout time.Duration

	TokenDB string

	LogLevel string

	KafkaBrokers []string
	KafkaTopic   string

	VisitorTTL   time.Duration
	CookieSecure bool

	// SessionKey signs the visitor cookie. Nil when SESSION_KEY is unset or
	// shorter than 32 bytes once decoded.
	SessionKey []byte
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotenv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := FromEnv()
	if err := pkgconfig.Require(cfg.ShopAPIURL, "SHOP_API_URL"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func FromEnv() *Config {
	return &Config{
		ServerPort: pkgconfig.EnvIntDefault("SERVER_PORT", 8080),

		ShopAPIURL:     os.Getenv("SHOP_API_URL"),
		ShopAPITimeout: time.Duration(pkgconfig.EnvIntDefault("SHOP_API_TIMEOUT", 10)) * time.Second,

		TokenDB: pkgconfig.EnvDefault("TOKEN_DB", "storefront.db"),

		LogLevel: pkgconfig.EnvDefault("LOG_LEVEL", "info"),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   pkgconfig.EnvDefault("KAFKA_TOPIC", "storefront_events"),

		VisitorTTL:   time.Duration(pkgconfig.EnvIntDefault("VISITOR_TTL_MINUTES", 30)) * time.Minute,
		CookieSecure: pkgconfig.EnvBoolDefault("COOKIE_SECURE", false),
		SessionKey:   sessionKey(os.Getenv("SESSION_KEY")),
	}
}

func sessionKey(raw string) []byte {
	if raw == "" {
		return nil
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(key) < 32 {
		return nil
	}
	return key
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// DefaultCLITokenDB is where shopctl keeps its tokens when TOKEN_DB is unset.
func DefaultCLITokenDB() string {
	if v := os.Getenv("TOKEN_DB"); v != "" {
		return v
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "shopctl.db"
	}
	return filepath.Join(dir, "shopctl", "tokens.db")
}
