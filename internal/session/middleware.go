package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/speakerdesk/pkg/cookie"
	"github.com/dmitrymomot/speakerdesk/pkg/logger"
)

// CookieConfig configures the portal-session cookie.
type CookieConfig struct {
	Name   string        `env:"SESSION_COOKIE_NAME" envDefault:"sd_sid"`
	MaxAge time.Duration `env:"SESSION_COOKIE_MAX_AGE" envDefault:"720h"`
}

// Middleware resolves the portal session from its signed cookie, issuing a
// new id when the cookie is missing or tampered with, and puts the Store in
// the request context.
func Middleware(reg *Registry, cookies *cookie.Manager, cfg CookieConfig, log *slog.Logger) func(http.Handler) http.Handler {
	if cfg.Name == "" {
		cfg.Name = "sd_sid"
	}
	log = log.With(logger.Component("session"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid, err := cookies.GetSigned(r, cfg.Name)
			if err != nil {
				if !errors.Is(err, cookie.ErrCookieNotFound) {
					log.WarnContext(r.Context(), "rejected session cookie", logger.Error(err))
				}
				sid = uuid.NewString()
			}
			// Sliding expiry.
			cookies.SetSigned(w, cfg.Name, sid, cfg.MaxAge)

			store, err := reg.Get(r.Context(), sid)
			if err != nil {
				log.ErrorContext(r.Context(), "load session",
					logger.SessionID(sid),
					logger.Error(err),
				)
				store = NewStore(sid, nil)
			}

			next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), store)))
		})
	}
}
