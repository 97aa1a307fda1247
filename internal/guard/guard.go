// Package guard enforces which routes need an authenticated session and
// which are only for visitors.
package guard

import (
	"net/http"

	"github.com/dmitrymomot/speakerdesk/handler"
	"github.com/dmitrymomot/speakerdesk/internal/session"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	Render Decision = iota
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "render"
	}
}

// Decide applies the access policy. A route with requireAuth=false is
// public-only: authenticated sessions are sent home.
func Decide(requireAuth, authenticated bool) Decision {
	switch {
	case requireAuth && !authenticated:
		return RedirectLogin
	case !requireAuth && authenticated:
		return RedirectHome
	default:
		return Render
	}
}

// Target returns the redirect path for d, or "" for Render.
func (d Decision) Target() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectHome:
		return HomePath
	default:
		return ""
	}
}

// Protected lets only authenticated sessions through.
func Protected(next http.Handler) http.Handler {
	return middleware(true, next)
}

// PublicOnly lets only unauthenticated sessions through.
func PublicOnly(next http.Handler) http.Handler {
	return middleware(false, next)
}

// middleware writes nothing but the redirect when the check fails.
func middleware(requireAuth bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := session.StateFromContext(r.Context())
		d := Decide(requireAuth, state.IsAuthenticated())
		if d == Render {
			next.ServeHTTP(w, r)
			return
		}
		_ = handler.SendRedirect(w, r, d.Target())
	})
}
