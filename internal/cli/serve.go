package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/speakerdesk/internal/backend"
	"github.com/dmitrymomot/speakerdesk/internal/config"
	"github.com/dmitrymomot/speakerdesk/internal/portal"
	"github.com/dmitrymomot/speakerdesk/internal/session"
	"github.com/dmitrymomot/speakerdesk/pkg/clientip"
	"github.com/dmitrymomot/speakerdesk/pkg/cookie"
	"github.com/dmitrymomot/speakerdesk/pkg/httpserver"
	"github.com/dmitrymomot/speakerdesk/pkg/logger"
	"github.com/dmitrymomot/speakerdesk/pkg/ratelimiter"
	"github.com/dmitrymomot/speakerdesk/pkg/redis"
	"github.com/dmitrymomot/speakerdesk/pkg/requestid"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin portal",
		Long: `Run the admin portal HTTP server.

Configuration is read from the environment and an optional .env file.
COOKIE_SECRETS is required. Set TOKEN_STORE=redis to keep bearer tokens in
Redis (REDIS_URL) so sessions survive restarts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logger.New(
		logger.WithEnvironment(cfg.App.Env, cfg.App.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	storage, checks, closeStorage, err := tokenStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	cookies, err := cookie.New(cfg.Cookie)
	if err != nil {
		return fmt.Errorf("cookies: %w", err)
	}

	limiter, err := authLimiter(cfg)
	if err != nil {
		return err
	}

	p, err := portal.New(portal.Deps{
		API:      backend.New(cfg.Backend, backend.WithLogger(log)),
		Registry: session.NewRegistry(storage, cfg.Sessions.RegistrySize, cfg.Sessions.IdleTimeout),
		Cookies:  cookies,
		Cookie:   cfg.Sessions.Cookie,
		Logger:   log,

		AuthLimiter: limiter,
		Checks:      checks,
	})
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "starting portal",
		slog.String("addr", cfg.HTTP.Addr),
		slog.String("backend", cfg.Backend.URL),
		slog.String("token_store", cfg.Sessions.TokenStore),
	)
	return httpserver.New(cfg.HTTP, log).Run(ctx, p.Handler())
}

// tokenStorage builds the configured TokenStorage with its readiness checks
// and a function releasing it.
func tokenStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (session.TokenStorage, []httpserver.Check, func(), error) {
	if cfg.Sessions.TokenStore != config.TokenStoreRedis {
		return session.NewMemoryTokenStorage(), nil, func() {}, nil
	}

	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Error("close redis", logger.Error(err))
		}
	}
	checks := []httpserver.Check{{Name: "redis", Fn: redis.Healthcheck(client)}}
	return session.NewRedisTokenStorage(client, cfg.Sessions.KeyPrefix, cfg.Sessions.TokenTTL), checks, closeFn, nil
}

// authLimiter keeps one bucket per client IP, forgotten once it would be
// full again.
func authLimiter(cfg config.Config) (*ratelimiter.Bucket, error) {
	rl := cfg.AuthRateLimit
	idle := rl.RefillInterval
	if rl.RefillRate > 0 {
		idle *= time.Duration(rl.Capacity/rl.RefillRate + 1)
	}
	store := ratelimiter.NewMemoryStore(cfg.Sessions.RegistrySize, idle)
	limiter, err := ratelimiter.NewBucket(store, rl)
	if err != nil {
		return nil, fmt.Errorf("auth rate limit: %w", err)
	}
	return limiter, nil
}
