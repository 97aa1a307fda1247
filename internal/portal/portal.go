package portal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/speakerdesk/handler"
	"github.com/dmitrymomot/speakerdesk/internal/backend"
	"github.com/dmitrymomot/speakerdesk/internal/guard"
	"github.com/dmitrymomot/speakerdesk/internal/session"
	"github.com/dmitrymomot/speakerdesk/pkg/binder"
	"github.com/dmitrymomot/speakerdesk/pkg/clientip"
	"github.com/dmitrymomot/speakerdesk/pkg/cookie"
	"github.com/dmitrymomot/speakerdesk/pkg/httpserver"
	"github.com/dmitrymomot/speakerdesk/pkg/logger"
	"github.com/dmitrymomot/speakerdesk/pkg/ratelimiter"
	"github.com/dmitrymomot/speakerdesk/pkg/requestid"
)

var (
	ErrMissingBackend  = errors.New("portal.missing_backend")
	ErrMissingRegistry = errors.New("portal.missing_registry")
	ErrMissingCookies  = errors.New("portal.missing_cookies")
)

var (
	binderForm  = binder.Form()
	binderQuery = binder.Query()
	binderPath  = binder.Path(chi.URLParam)
)

// Deps are the collaborators of the portal.
type Deps struct {
	API      *backend.Client
	Registry *session.Registry
	Cookies  *cookie.Manager
	Cookie   session.CookieConfig
	Logger   *slog.Logger

	// AuthLimiter throttles login and signup attempts per client IP.
	// Nil disables throttling.
	AuthLimiter *ratelimiter.Bucket

	// Checks are run by /readyz.
	Checks []httpserver.Check
}

// Portal serves the admin pages.
type Portal struct {
	api         *backend.Client
	registry    *session.Registry
	cookies     *cookie.Manager
	cookieCfg   session.CookieConfig
	initializer *session.Initializer
	views       *Views
	limiter     *ratelimiter.Bucket
	checks      []httpserver.Check
	log         *slog.Logger
	onError     handler.ErrorHandler[handler.Context]
}

func New(deps Deps) (*Portal, error) {
	switch {
	case deps.API == nil:
		return nil, ErrMissingBackend
	case deps.Registry == nil:
		return nil, ErrMissingRegistry
	case deps.Cookies == nil:
		return nil, ErrMissingCookies
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	views, err := NewViews()
	if err != nil {
		return nil, fmt.Errorf("portal views: %w", err)
	}

	return &Portal{
		api:         deps.API,
		registry:    deps.Registry,
		cookies:     deps.Cookies,
		cookieCfg:   deps.Cookie,
		initializer: session.NewInitializer(deps.API, log),
		views:       views,
		limiter:     deps.AuthLimiter,
		checks:      deps.Checks,
		log:         log.With(logger.Component("portal")),
		onError:     handler.NewErrorHandler(log, views.ErrorHandlerConfig()),
	}, nil
}

// Handler returns the routed portal.
func (p *Portal) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(accessLog(p.log))

	r.Get("/healthz", httpserver.Liveness())
	r.Get("/readyz", httpserver.Readiness(p.log, p.checks...))

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(p.registry, p.cookies, p.cookieCfg, p.log))
		r.Use(p.initializer.Middleware)

		r.Group(func(r chi.Router) {
			r.Use(guard.PublicOnly)
			r.Get("/login", wrap(p, p.loginForm))
			r.Post("/login", wrap(p, p.login, binderForm))
			r.Get("/signup", wrap(p, p.signupForm))
			r.Post("/signup", wrap(p, p.signup, binderForm))
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.Protected)
			r.Post("/logout", wrap(p, p.logout))
			r.Get("/", wrap(p, p.listEvents, binderQuery))
			r.Post("/events", wrap(p, p.createEvent, binderForm))
			r.Get("/events/{id}/responses", wrap(p, p.eventResponses, binderPath))
			r.Get("/settings", wrap(p, p.settings))
			r.Post("/settings", wrap(p, p.updateSettings, binderForm))
		})

		r.NotFound(wrap(p, p.notFound))
	})

	return r
}

func (p *Portal) handleError(ctx Context, err error) {
	p.onError(ctx, err)
}

func (p *Portal) notFound(_ Context, _ struct{}) handler.Response {
	return handler.ResponseFunc(func(http.ResponseWriter, *http.Request) error {
		return handler.NewHTTPError(http.StatusNotFound, "Page not found")
	})
}

// base fills the fields shared by every page.
func base(ctx Context, title string) Base {
	return Base{Title: title, State: ctx.Session().Snapshot()}
}
