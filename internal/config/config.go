// Package config declares the portal's environment configuration.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/speakerdesk/internal/backend"
	"github.com/dmitrymomot/speakerdesk/internal/session"
	pkgconfig "github.com/dmitrymomot/speakerdesk/pkg/config"
	"github.com/dmitrymomot/speakerdesk/pkg/cookie"
	"github.com/dmitrymomot/speakerdesk/pkg/httpserver"
	"github.com/dmitrymomot/speakerdesk/pkg/ratelimiter"
	"github.com/dmitrymomot/speakerdesk/pkg/redis"
)

const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

type App struct {
	Name string `env:"APP_NAME" envDefault:"speakerdesk"`
	Env  string `env:"APP_ENV" envDefault:"development"`
}

type Sessions struct {
	TokenStore   string        `env:"TOKEN_STORE" envDefault:"memory"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	KeyPrefix    string        `env:"TOKEN_KEY_PREFIX" envDefault:"speakerdesk:token:"`
	RegistrySize int           `env:"SESSION_REGISTRY_SIZE" envDefault:"10000"`
	IdleTimeout  time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	Cookie       session.CookieConfig
}

// Config is everything `speakerdesk serve` needs.
type Config struct {
	App      App
	Backend  backend.Config
	HTTP     httpserver.Config
	Cookie   cookie.Config
	Sessions Sessions
	Redis    redis.Config

	// AuthRateLimit throttles login and signup per client IP
	// (AUTH_RATE_LIMIT_CAPACITY and friends).
	AuthRateLimit ratelimiter.Config `envPrefix:"AUTH_"`
}

// Load reads Config from the environment and .env.
func Load() (Config, error) {
	var cfg Config
	if err := pkgconfig.Load(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Sessions.TokenStore {
	case TokenStoreMemory, TokenStoreRedis:
	default:
		return fmt.Errorf("%w: TOKEN_STORE must be %q or %q, got %q",
			session.ErrInvalidStoreCfg, TokenStoreMemory, TokenStoreRedis, c.Sessions.TokenStore)
	}
	if c.Sessions.RegistrySize <= 0 {
		return fmt.Errorf("%w: SESSION_REGISTRY_SIZE must be positive", session.ErrInvalidStoreCfg)
	}
	return nil
}
