package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/speakerdesk/pkg/logger"
)

// UserFetcher fetches the profile that owns token.
type UserFetcher interface {
	CurrentUser(ctx context.Context, token string) (*UserProfile, error)
}

// Initializer loads the user for stores that have a token but no user.
type Initializer struct {
	users UserFetcher
	log   *slog.Logger
}

func NewInitializer(users UserFetcher, log *slog.Logger) *Initializer {
	if log == nil {
		log = slog.Default()
	}
	return &Initializer{users: users, log: log.With(logger.Component("session_initializer"))}
}

// Hydrate fetches and applies the current user when s has a token and no
// user. Failures leave the user empty and the error untouched. It reports
// whether a user was applied.
func (i *Initializer) Hydrate(ctx context.Context, s *Store) bool {
	state := s.Snapshot()
	if state.Token == "" || state.User != nil {
		return false
	}

	ticket := s.Begin()
	if ticket.Token == "" {
		return false
	}

	user, err := i.users.CurrentUser(ctx, ticket.Token)
	if err != nil {
		i.log.WarnContext(ctx, "current user fetch failed",
			logger.SessionID(s.Key()),
			logger.Error(err),
		)
		return false
	}

	if !s.ApplyUser(ticket, user) {
		attrs := []any{logger.SessionID(s.Key())}
		if user != nil {
			attrs = append(attrs, logger.UserID(user.ID))
		}
		i.log.DebugContext(ctx, "discarded current user", attrs...)
		return false
	}
	return true
}

// Middleware hydrates the request's Store before calling next.
func (i *Initializer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := FromContext(r.Context()); ok {
			i.Hydrate(r.Context(), s)
		}
		next.ServeHTTP(w, r)
	})
}
