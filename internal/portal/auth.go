package portal

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/dmitrymomot/speakerdesk/handler"
	"github.com/dmitrymomot/speakerdesk/internal/backend"
	"github.com/dmitrymomot/speakerdesk/internal/guard"
	"github.com/dmitrymomot/speakerdesk/pkg/clientip"
	"github.com/dmitrymomot/speakerdesk/pkg/logger"
)

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type signupForm struct {
	Name        string `form:"name"`
	Email       string `form:"email"`
	Password    string `form:"password"`
	Bio         string `form:"bio"`
	ContactInfo string `form:"contactInfo"`
}

// loginForm renders a fresh form, so a failure from an earlier visit is
// not shown again.
func (p *Portal) loginForm(ctx Context, _ struct{}) handler.Response {
	ctx.Session().ClearError()
	return p.views.Render(http.StatusOK, "login", loginPage{Base: base(ctx, "Sign in")})
}

func (p *Portal) login(ctx Context, req loginForm) handler.Response {
	s := ctx.Session()
	s.ClearError()

	if msg, limited := p.throttle(ctx); limited {
		s.SetError(msg)
		return p.views.Render(http.StatusTooManyRequests, "login", loginPage{
			Base:  base(ctx, "Sign in"),
			Email: req.Email,
		})
	}

	resp, err := p.api.Login(ctx, backend.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		p.log.InfoContext(ctx, "login failed", logger.SessionID(s.Key()), logger.Error(err))
		s.SetError(backend.MessageOf(err, backend.LoginFailedMessage))
		return p.views.Render(http.StatusUnprocessableEntity, "login", loginPage{
			Base:  base(ctx, "Sign in"),
			Email: req.Email,
		})
	}

	if err := s.SetCredentials(ctx, resp.User, resp.AccessToken); err != nil {
		p.log.ErrorContext(ctx, "persist session token", logger.SessionID(s.Key()), logger.Error(err))
	}
	if p.limiter != nil {
		_ = p.limiter.Reset(ctx, authLimitKey(ctx))
	}
	p.log.InfoContext(ctx, "user logged in", logger.SessionID(s.Key()), logger.UserID(userID(resp)))
	return handler.Redirect(guard.HomePath)
}

func (p *Portal) signupForm(ctx Context, _ struct{}) handler.Response {
	ctx.Session().ClearError()
	return p.views.Render(http.StatusOK, "signup", signupPage{Base: base(ctx, "Sign up")})
}

func (p *Portal) signup(ctx Context, req signupForm) handler.Response {
	s := ctx.Session()
	s.ClearError()

	if msg, limited := p.throttle(ctx); limited {
		s.SetError(msg)
		req.Password = ""
		return p.views.Render(http.StatusTooManyRequests, "signup", signupPage{
			Base: base(ctx, "Sign up"),
			Form: req,
		})
	}

	resp, err := p.api.Signup(ctx, backend.SignupRequest{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Bio:         req.Bio,
		ContactInfo: req.ContactInfo,
	})
	if err != nil {
		p.log.InfoContext(ctx, "signup failed", logger.SessionID(s.Key()), logger.Error(err))
		s.SetError(backend.MessageOf(err, backend.SignupFailedMessage))
		req.Password = ""
		return p.views.Render(http.StatusUnprocessableEntity, "signup", signupPage{
			Base: base(ctx, "Sign up"),
			Form: req,
		})
	}

	if err := s.SetCredentials(ctx, resp.User, resp.AccessToken); err != nil {
		p.log.ErrorContext(ctx, "persist session token", logger.SessionID(s.Key()), logger.Error(err))
	}
	p.log.InfoContext(ctx, "user signed up", logger.SessionID(s.Key()), logger.UserID(userID(resp)))
	return handler.Redirect(guard.HomePath)
}

// logout always ends the local session. A backend failure is only logged.
func (p *Portal) logout(ctx Context, _ struct{}) handler.Response {
	s := ctx.Session()
	if token := s.Snapshot().Token; token != "" {
		if err := p.api.Logout(ctx, token); err != nil {
			p.log.WarnContext(ctx, "backend logout failed", logger.SessionID(s.Key()), logger.Error(err))
		}
	}
	if err := s.Logout(ctx); err != nil {
		p.log.ErrorContext(ctx, "delete session token", logger.SessionID(s.Key()), logger.Error(err))
	}
	p.registry.Forget(s.Key())
	return handler.Redirect(guard.LoginPath)
}

// expireOnUnauthorized ends the local session when the backend no longer
// accepts its token. It reports whether it did.
func (p *Portal) expireOnUnauthorized(ctx Context, err error) bool {
	if !backend.IsUnauthorized(err) {
		return false
	}
	s := ctx.Session()
	p.api.InvalidateCurrentUser(s.Snapshot().Token)
	if lerr := s.Logout(ctx); lerr != nil {
		p.log.ErrorContext(ctx, "delete session token", logger.SessionID(s.Key()), logger.Error(lerr))
	}
	p.log.InfoContext(ctx, "session token rejected by backend", logger.SessionID(s.Key()))
	return true
}

// throttle takes one auth attempt from the client's bucket. When the bucket
// is empty it returns the message to show instead of calling the backend.
func (p *Portal) throttle(ctx Context) (string, bool) {
	if p.limiter == nil {
		return "", false
	}
	res, err := p.limiter.Allow(ctx, authLimitKey(ctx))
	if err != nil {
		p.log.WarnContext(ctx, "auth rate limiter failed", logger.Error(err))
		return "", false
	}
	if res.Allowed() {
		return "", false
	}
	secs := max(1, int(math.Ceil(res.RetryAfter(time.Now()).Seconds())))
	p.log.WarnContext(ctx, "auth attempts throttled", logger.SessionID(ctx.Session().Key()))
	return fmt.Sprintf("Too many attempts. Try again in %d seconds.", secs), true
}

func authLimitKey(ctx Context) string {
	return "auth:" + clientip.FromContext(ctx)
}

func userID(resp *backend.AuthResponse) string {
	if resp.User == nil {
		return ""
	}
	return resp.User.ID
}
