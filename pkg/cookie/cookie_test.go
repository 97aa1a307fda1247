package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerdesk/pkg/cookie"
)

const (
	secretA = "0123456789abcdef0123456789abcdef"
	secretB = "fedcba9876543210fedcba9876543210"
)

func roundTrip(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNew(t *testing.T) {
	_, err := cookie.New(cookie.Config{Secrets: " , "})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New(cookie.Config{Secrets: "short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)

	m, err := cookie.New(cookie.Config{Secrets: secretA + "," + secretB})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestSigned(t *testing.T) {
	m, err := cookie.New(cookie.Config{Secrets: secretA})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.SetSigned(rec, "sid", "session-1", time.Hour)

	c := rec.Result().Cookies()[0]
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 3600, c.MaxAge)

	value, err := m.GetSigned(roundTrip(t, rec), "sid")
	require.NoError(t, err)
	assert.Equal(t, "session-1", value)

	t.Run("tampered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		parts := strings.SplitN(c.Value, "|", 2)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "c2Vzc2lvbi0y|" + parts[1]})
		_, err := m.GetSigned(req, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "sid")
		assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
	})

	t.Run("rotated secret still verifies", func(t *testing.T) {
		rotated, err := cookie.New(cookie.Config{Secrets: secretB + "," + secretA})
		require.NoError(t, err)
		value, err := rotated.GetSigned(roundTrip(t, rec), "sid")
		require.NoError(t, err)
		assert.Equal(t, "session-1", value)
	})
}

func TestFlash(t *testing.T) {
	m, err := cookie.New(cookie.Config{Secrets: secretA})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetFlash(rec, "notice", "Profile updated"))

	out := httptest.NewRecorder()
	var msg string
	require.NoError(t, m.GetFlash(out, roundTrip(t, rec), "notice", &msg))
	assert.Equal(t, "Profile updated", msg)

	deleted := out.Result().Cookies()
	require.Len(t, deleted, 1)
	assert.Equal(t, -1, deleted[0].MaxAge)
}
