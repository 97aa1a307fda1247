package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dmitrymomot/speakerdesk/internal/session"
)

// Image is a profile picture upload.
type Image struct {
	Filename string
	Content  io.Reader
}

// UpdateProfileRequest changes the set fields of the profile. A field set to
// an empty string is sent, which clears it.
type UpdateProfileRequest struct {
	Name        *string
	Email       *string
	Bio         *string
	ContactInfo *string
	Image       *Image
}

// IsEmpty reports whether the request would change nothing.
func (r UpdateProfileRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Bio == nil && r.ContactInfo == nil &&
		(r.Image == nil || r.Image.Content == nil)
}

func (r UpdateProfileRequest) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct {
		name  string
		value *string
	}{
		{"name", r.Name},
		{"email", r.Email},
		{"bio", r.Bio},
		{"contactInfo", r.ContactInfo},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := mw.WriteField(f.name, *f.value); err != nil {
			return nil, "", err
		}
	}

	if r.Image != nil && r.Image.Content != nil {
		fw, err := mw.CreateFormFile("image", r.Image.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, r.Image.Content); err != nil {
			return nil, "", fmt.Errorf("copy image: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// UpdateProfile patches the profile of token's owner and returns the new
// profile. The cached current user for token is dropped on success.
func (c *Client) UpdateProfile(ctx context.Context, token string, in UpdateProfileRequest) (*session.UserProfile, error) {
	body, contentType, err := in.encode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	done := c.status.start(OpUpdateProfile)
	var out session.UserProfile
	err = c.do(ctx, request{
		method:      http.MethodPatch,
		path:        "user/profile",
		token:       token,
		body:        body,
		contentType: contentType,
	}, &out)
	done(err)
	if err != nil {
		return nil, err
	}

	c.InvalidateCurrentUser(token)
	return &out, nil
}
