package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DateTime    time.Time  `json:"dateTime"`
	ZoomLink    string     `json:"zoomLink"`
	Duration    int        `json:"duration"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
	CreatorID   string     `json:"creatorId"`
}

type PaginationLink struct {
	Label  string  `json:"label"`
	Active bool    `json:"active"`
	URL    *string `json:"url"`
	Page   int     `json:"page"`
}

type Pagination struct {
	Page         int              `json:"page"`
	ItemsPerPage int              `json:"itemsPerPage"`
	Links        []PaginationLink `json:"links"`
	Total        int              `json:"total"`
	LastPage     int              `json:"lastPage"`
	Prev         *int             `json:"prev"`
	Next         *int             `json:"next"`
}

// EventsPage is one page of events.
type EventsPage struct {
	Data    []Event `json:"data"`
	Payload struct {
		Pagination Pagination `json:"pagination"`
	} `json:"payload"`
}

type ResponseStatus string

const (
	ResponseYes   ResponseStatus = "YES"
	ResponseNo    ResponseStatus = "NO"
	ResponseMaybe ResponseStatus = "MAYBE"
)

type Responder struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EventResponse is one attendee's answer to an event invitation.
type EventResponse struct {
	ID        string         `json:"id"`
	Status    ResponseStatus `json:"status"`
	UserID    string         `json:"userId"`
	EventID   string         `json:"eventId"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt *time.Time     `json:"deletedAt"`
	User      Responder      `json:"user"`
}

type ResponsesPage struct {
	Data    []EventResponse `json:"data"`
	Payload struct {
		Pagination Pagination `json:"pagination"`
	} `json:"payload"`
}

// Count returns how many responses have status.
func (p *ResponsesPage) Count(status ResponseStatus) int {
	n := 0
	for _, r := range p.Data {
		if r.Status == status {
			n++
		}
	}
	return n
}

type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DateTime    string `json:"dateTime"`
	Duration    int    `json:"duration"`
	ZoomLink    string `json:"zoomLink,omitempty"`
}

// UpdateEventRequest patches the non-nil fields.
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DateTime    *string `json:"dateTime,omitempty"`
	Duration    *int    `json:"duration,omitempty"`
	ZoomLink    *string `json:"zoomLink,omitempty"`
}

// ListEvents returns a page of events. Non-positive page and limit fall back
// to DefaultPage and DefaultLimit.
func (c *Client) ListEvents(ctx context.Context, token string, page, limit int) (*EventsPage, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	done := c.status.start(OpListEvents)
	var out EventsPage
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "event",
		token:  token,
		query:  url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}},
	}, &out)
	done(err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetEvent(ctx context.Context, token, id string) (*Event, error) {
	var out Event
	if err := c.do(ctx, request{method: http.MethodGet, path: "event/" + url.PathEscape(id), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateEvent(ctx context.Context, token string, in CreateEventRequest) (*Event, error) {
	req, err := jsonRequest(http.MethodPost, "event", in)
	if err != nil {
		return nil, err
	}
	req.token = token

	done := c.status.start(OpCreateEvent)
	var out Event
	err = c.do(ctx, req, &out)
	done(err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEvent(ctx context.Context, token, id string, in UpdateEventRequest) (*Event, error) {
	req, err := jsonRequest(http.MethodPatch, "event/"+url.PathEscape(id), in)
	if err != nil {
		return nil, err
	}
	req.token = token

	var out Event
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEvent(ctx context.Context, token, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "event/" + url.PathEscape(id), token: token}, nil)
}

// EventResponses returns the attendee responses of event id. The backend
// serves them from the event resource itself.
func (c *Client) EventResponses(ctx context.Context, token, id string) (*ResponsesPage, error) {
	var out ResponsesPage
	if err := c.do(ctx, request{method: http.MethodGet, path: "event/" + url.PathEscape(id), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
