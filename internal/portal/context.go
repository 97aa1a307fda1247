package portal

import (
	"net/http"

	"github.com/dmitrymomot/speakerdesk/handler"
	"github.com/dmitrymomot/speakerdesk/internal/session"
)

// Context is the handler context of portal routes.
type Context interface {
	handler.Context
	Session() *session.Store
}

type portalContext struct {
	handler.Context
	store *session.Store
}

func (c portalContext) Session() *session.Store { return c.store }

// newContext falls back to a detached empty store outside the session
// middleware, so handlers never see a nil Session.
func newContext(w http.ResponseWriter, r *http.Request) Context {
	store, ok := session.FromContext(r.Context())
	if !ok {
		store = session.NewStore("", nil)
	}
	return portalContext{Context: handler.NewContext(w, r), store: store}
}

func wrap[R any](p *Portal, h handler.HandlerFunc[Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithContextFactory[Context, R](newContext),
		handler.WithErrorHandler[Context, R](p.handleError),
		handler.WithBinders[Context, R](binders...),
	)
}
