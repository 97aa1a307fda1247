package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerdesk/internal/session"
	"github.com/dmitrymomot/speakerdesk/pkg/logger"
)

type fakeFetcher struct {
	calls  atomic.Int32
	user   *session.UserProfile
	err    error
	before func()
}

func (f *fakeFetcher) CurrentUser(_ context.Context, token string) (*session.UserProfile, error) {
	f.calls.Add(1)
	if f.before != nil {
		f.before()
	}
	return f.user, f.err
}

func TestInitializer_NoTokenNoCall(t *testing.T) {
	fetcher := &fakeFetcher{user: user("1", "A")}
	initr := session.NewInitializer(fetcher, logger.Discard())

	s := session.NewStore("sid", nil)
	assert.False(t, initr.Hydrate(context.Background(), s))
	assert.Zero(t, fetcher.calls.Load())
}

func TestInitializer_UserPresentNoCall(t *testing.T) {
	fetcher := &fakeFetcher{user: user("1", "A")}
	initr := session.NewInitializer(fetcher, logger.Discard())

	s := session.NewStore("sid", nil)
	require.NoError(t, s.SetCredentials(context.Background(), user("1", "A"), "t1"))

	assert.False(t, initr.Hydrate(context.Background(), s))
	assert.Zero(t, fetcher.calls.Load())
}

func TestInitializer_TokenWithoutUser(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryTokenStorage()
	require.NoError(t, storage.Save(ctx, "sid", "t1"))

	reg := session.NewRegistry(storage, 10, 0)
	s, err := reg.Get(ctx, "sid")
	require.NoError(t, err)

	fetcher := &fakeFetcher{user: user("1", "A")}
	initr := session.NewInitializer(fetcher, logger.Discard())

	assert.True(t, initr.Hydrate(ctx, s))
	assert.Equal(t, int32(1), fetcher.calls.Load())

	state := s.Snapshot()
	assert.Equal(t, "1", state.User.ID)
	assert.True(t, state.IsAuthenticated())
}

func TestInitializer_FailureLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	reg := session.NewRegistry(session.NewMemoryTokenStorage(), 10, 0)
	s, _ := reg.Get(ctx, "sid")
	require.NoError(t, s.SetCredentials(ctx, user("1", "A"), "t1"))
	s.SetUser(nil)
	s.SetError("previous")

	initr := session.NewInitializer(&fakeFetcher{err: errors.New("unreachable")}, logger.Discard())

	assert.False(t, initr.Hydrate(ctx, s))
	state := s.Snapshot()
	assert.Nil(t, state.User)
	assert.Equal(t, "previous", state.Error)
	assert.Equal(t, "t1", state.Token)
}

func TestInitializer_LogoutDuringFetch(t *testing.T) {
	ctx := context.Background()
	s := session.NewStore("sid", nil)
	require.NoError(t, s.SetCredentials(ctx, user("1", "A"), "t1"))
	s.SetUser(nil)

	fetcher := &fakeFetcher{user: user("1", "A")}
	fetcher.before = func() { _ = s.Logout(ctx) }

	initr := session.NewInitializer(fetcher, logger.Discard())
	assert.False(t, initr.Hydrate(ctx, s))
	assert.Equal(t, session.State{}, s.Snapshot())
}

func TestInitializer_NilUserIsNotApplied(t *testing.T) {
	ctx := context.Background()
	s := session.NewStore("sid", nil)
	require.NoError(t, s.SetCredentials(ctx, user("1", "A"), "t1"))
	s.SetUser(nil)

	fetcher := &fakeFetcher{}
	initr := session.NewInitializer(fetcher, logger.New(logger.WithLevel(slog.LevelDebug), logger.WithOutput(io.Discard)))

	require.NotPanics(t, func() {
		assert.False(t, initr.Hydrate(ctx, s))
	})
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Nil(t, s.Snapshot().User)
	assert.Equal(t, "t1", s.Snapshot().Token)
}

func TestInitializer_Middleware(t *testing.T) {
	ctx := context.Background()
	s := session.NewStore("sid", nil)
	require.NoError(t, s.SetCredentials(ctx, user("1", "A"), "t1"))
	s.SetUser(nil)

	initr := session.NewInitializer(&fakeFetcher{user: user("1", "A")}, logger.Discard())

	var seen bool
	h := initr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.StateFromContext(r.Context()).IsAuthenticated()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req.WithContext(session.WithStore(req.Context(), s)))
	assert.True(t, seen)

	// Requests without a store pass through.
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
