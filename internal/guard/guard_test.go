package guard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerdesk/handler"
	"github.com/dmitrymomot/speakerdesk/internal/guard"
	"github.com/dmitrymomot/speakerdesk/internal/session"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		requireAuth, authenticated bool
		want                       guard.Decision
	}{
		{true, false, guard.RedirectLogin},
		{true, true, guard.Render},
		{false, false, guard.Render},
		{false, true, guard.RedirectHome},
	}
	for _, tc := range cases {
		t.Run(tc.want.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, guard.Decide(tc.requireAuth, tc.authenticated))
		})
	}

	assert.Equal(t, "/login", guard.RedirectLogin.Target())
	assert.Equal(t, "/", guard.RedirectHome.Target())
	assert.Empty(t, guard.Render.Target())
}

func storeWith(t *testing.T, token string, user *session.UserProfile) *session.Store {
	t.Helper()
	s := session.NewStore("sid", nil)
	if token != "" {
		require.NoError(t, s.SetCredentials(context.Background(), user, token))
	}
	return s
}

func serve(h http.Handler, s *session.Store, req *http.Request) *httptest.ResponseRecorder {
	if s != nil {
		req = req.WithContext(session.WithStore(req.Context(), s))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var content = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("content"))
})

func TestProtected(t *testing.T) {
	h := guard.Protected(content)

	t.Run("no session", func(t *testing.T) {
		rec := serve(h, nil, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.NotContains(t, rec.Body.String(), "content")
	})

	t.Run("token without user", func(t *testing.T) {
		s := storeWith(t, "t1", nil)
		rec := serve(h, s, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("authenticated", func(t *testing.T) {
		s := storeWith(t, "t1", &session.UserProfile{ID: "1"})
		rec := serve(h, s, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "content", rec.Body.String())
	})

	t.Run("htmx", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/events", nil)
		req.Header.Set(handler.HXRequest, "true")
		rec := serve(h, nil, req)
		assert.Equal(t, "/login", rec.Header().Get(handler.HXRedirect))
		assert.NotContains(t, rec.Body.String(), "content")
	})

	t.Run("datastar", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", "text/event-stream")
		rec := serve(h, nil, req)
		assert.Contains(t, rec.Body.String(), "/login")
		assert.NotContains(t, rec.Body.String(), "content")
	})
}

func TestPublicOnly(t *testing.T) {
	h := guard.PublicOnly(content)

	t.Run("visitor sees the form", func(t *testing.T) {
		rec := serve(h, session.NewStore("sid", nil), httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, "content", rec.Body.String())
	})

	t.Run("authenticated session is sent home", func(t *testing.T) {
		s := storeWith(t, "t1", &session.UserProfile{ID: "1"})
		rec := serve(h, s, httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.NotContains(t, rec.Body.String(), "content")
	})
}
