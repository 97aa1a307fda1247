package backend

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/speakerdesk/internal/session"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Bio         string `json:"bio,omitempty"`
	ContactInfo string `json:"contactInfo,omitempty"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	AccessToken string               `json:"accessToken"`
	User        *session.UserProfile `json:"user"`
}

// Login exchanges credentials for a token. Every failure is an *AuthError.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*AuthResponse, error) {
	done := c.status.start(OpLogin)
	resp, err := c.authenticate(ctx, "auth/login", in, LoginFailedMessage)
	done(err)
	return resp, err
}

// Signup registers a user and returns its token. Every failure is an
// *AuthError.
func (c *Client) Signup(ctx context.Context, in SignupRequest) (*AuthResponse, error) {
	done := c.status.start(OpSignup)
	resp, err := c.authenticate(ctx, "auth/signup", in, SignupFailedMessage)
	done(err)
	return resp, err
}

func (c *Client) authenticate(ctx context.Context, path string, payload any, fallback string) (*AuthResponse, error) {
	req, err := jsonRequest(http.MethodPost, path, payload)
	if err != nil {
		return nil, newAuthError(err, fallback)
	}

	var out AuthResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, newAuthError(err, fallback)
	}
	if out.AccessToken == "" {
		return nil, &AuthError{Message: fallback, Err: ErrMissingToken}
	}

	c.InvalidateCurrentUser(out.AccessToken)
	return &out, nil
}

// Logout revokes token on the backend. Callers clear the local session
// whatever the outcome.
func (c *Client) Logout(ctx context.Context, token string) error {
	done := c.status.start(OpLogout)
	c.InvalidateCurrentUser(token)

	err := c.do(ctx, request{method: http.MethodPost, path: "auth/logout", token: token}, nil)
	done(err)
	return err
}

// CurrentUser returns the profile owning token. Concurrent calls for the
// same token share one request, and successful results are cached until
// InvalidateCurrentUser. token must not be empty.
func (c *Client) CurrentUser(ctx context.Context, token string) (*session.UserProfile, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if u, ok := c.users.Get(token); ok {
		return u.Clone(), nil
	}

	ch := c.flight.DoChan(token, func() (any, error) {
		gen := c.generation.Load()
		done := c.status.start(OpCurrentUser)

		// Shared by every waiter, so it must outlive the first caller's
		// cancellation. The http.Client timeout still bounds it.
		var u session.UserProfile
		err := c.do(context.WithoutCancel(ctx), request{method: http.MethodGet, path: "auth/me", token: token}, &u)
		done(err)
		if err != nil {
			return nil, err
		}

		if c.generation.Load() == gen {
			c.users.Put(token, &u)
		}
		return &u, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*session.UserProfile).Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// InvalidateCurrentUser drops the cached profile for token. Requests in
// flight when it is called do not repopulate the cache.
func (c *Client) InvalidateCurrentUser(token string) {
	c.generation.Add(1)
	c.users.Remove(token)
	c.flight.Forget(token)
}
