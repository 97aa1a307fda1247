package portal

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dmitrymomot/speakerdesk/handler"
	"github.com/dmitrymomot/speakerdesk/internal/backend"
	"github.com/dmitrymomot/speakerdesk/internal/guard"
	"github.com/dmitrymomot/speakerdesk/internal/session"
	"github.com/dmitrymomot/speakerdesk/pkg/cookie"
	"github.com/dmitrymomot/speakerdesk/pkg/logger"
)

const (
	settingsPath        = "/settings"
	flashNotice         = "notice"
	profileUpdated      = "Profile updated"
	updateProfileFailed = "Failed to update profile"
)

type settingsForm struct {
	Name        string                `form:"name"`
	Email       string                `form:"email"`
	Bio         string                `form:"bio"`
	ContactInfo string                `form:"contactInfo"`
	Image       *multipart.FileHeader `file:"image"`
}

func (p *Portal) settings(ctx Context, _ struct{}) handler.Response {
	data := settingsPage{Base: base(ctx, "Settings")}

	var notice string
	err := p.cookies.GetFlash(ctx.ResponseWriter(), ctx.Request(), flashNotice, &notice)
	switch {
	case err == nil:
		data.Notice = notice
	case !errors.Is(err, cookie.ErrCookieNotFound):
		p.log.DebugContext(ctx, "unreadable flash", logger.Error(err))
	}

	return p.views.Render(http.StatusOK, "settings", data)
}

func (p *Portal) updateSettings(ctx Context, form settingsForm) handler.Response {
	s := ctx.Session()
	state := s.Snapshot()

	in := profileChanges(state.User, form)
	if in.IsEmpty() && form.Image == nil {
		p.log.DebugContext(ctx, "profile unchanged", logger.SessionID(s.Key()))
		return handler.Redirect(settingsPath)
	}

	user, err := p.updateProfile(ctx, state.Token, in, form.Image)
	if err != nil {
		if p.expireOnUnauthorized(ctx, err) {
			return handler.Redirect(guard.LoginPath)
		}
		p.log.WarnContext(ctx, "update profile failed", logger.SessionID(s.Key()), logger.Error(err))
		return p.views.Render(statusFor(err), "settings", settingsPage{
			Base:  base(ctx, "Settings"),
			Error: backend.MessageOf(err, updateProfileFailed),
		})
	}

	s.SetUser(user)
	if err := p.cookies.SetFlash(ctx.ResponseWriter(), flashNotice, profileUpdated); err != nil {
		p.log.WarnContext(ctx, "set flash", logger.Error(err))
	}
	return handler.Redirect(settingsPath)
}

func (p *Portal) updateProfile(ctx Context, token string, in backend.UpdateProfileRequest, image *multipart.FileHeader) (*session.UserProfile, error) {
	if image != nil {
		f, err := image.Open()
		if err != nil {
			return nil, fmt.Errorf("open uploaded image: %w", err)
		}
		defer f.Close()
		in.Image = &backend.Image{Filename: image.Filename, Content: f}
	}
	return p.api.UpdateProfile(ctx, token, in)
}

// profileChanges keeps the form fields that differ from the current profile.
// Name and email are never cleared; bio and contact info may be.
func profileChanges(current *session.UserProfile, form settingsForm) backend.UpdateProfileRequest {
	if current == nil {
		current = &session.UserProfile{}
	}
	var contactInfo string
	if current.ContactInfo != nil {
		contactInfo = *current.ContactInfo
	}

	var in backend.UpdateProfileRequest
	if form.Name != "" && form.Name != current.Name {
		in.Name = &form.Name
	}
	if form.Email != "" && form.Email != current.Email {
		in.Email = &form.Email
	}
	if form.Bio != current.Bio {
		in.Bio = &form.Bio
	}
	if form.ContactInfo != contactInfo {
		in.ContactInfo = &form.ContactInfo
	}
	return in
}
