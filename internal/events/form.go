// Package events holds the portal's event form rules and pagination view
// model.
package events

import (
	"strconv"
	"strings"

	"github.com/dmitrymomot/speakerdesk/handler"
	"github.com/dmitrymomot/speakerdesk/internal/backend"
)

// Form is the "add event" form as submitted by the browser.
type Form struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	DateTime    string `form:"dateTime"`
	Duration    string `form:"duration"`
	ZoomLink    string `form:"zoomLink"`
}

// Validate checks the form and converts it to a create request. The returned
// ValidationError is keyed by form field name.
func (f Form) Validate() (backend.CreateEventRequest, error) {
	errs := handler.NewValidationError()

	if strings.TrimSpace(f.Title) == "" {
		errs.Add("title", "Title is required")
	}
	if strings.TrimSpace(f.Description) == "" {
		errs.Add("description", "Description is required")
	}
	if f.DateTime == "" {
		errs.Add("dateTime", "Date & Time is required")
	}
	duration, err := strconv.Atoi(strings.TrimSpace(f.Duration))
	if err != nil || duration <= 0 {
		errs.Add("duration", "Duration must be greater than 0")
	}

	if !errs.IsEmpty() {
		return backend.CreateEventRequest{}, errs
	}

	return backend.CreateEventRequest{
		Title:       f.Title,
		Description: f.Description,
		DateTime:    f.DateTime,
		Duration:    duration,
		ZoomLink:    strings.TrimSpace(f.ZoomLink),
	}, nil
}
