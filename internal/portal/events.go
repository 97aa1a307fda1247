package portal

import (
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/speakerdesk/handler"
	"github.com/dmitrymomot/speakerdesk/internal/backend"
	"github.com/dmitrymomot/speakerdesk/internal/events"
	"github.com/dmitrymomot/speakerdesk/internal/guard"
	"github.com/dmitrymomot/speakerdesk/pkg/logger"
)

const (
	loadEventsFailed    = "Failed to load events"
	createEventFailed   = "Failed to create event"
	loadResponsesFailed = "Failed to load event responses"
)

type listRequest struct {
	Page int `query:"page"`
}

// page falls back to the first page for missing or non-positive values.
func (r listRequest) page() int {
	if r.Page < 1 {
		return backend.DefaultPage
	}
	return r.Page
}

type responsesRequest struct {
	ID string `path:"id"`
}

func (p *Portal) listEvents(ctx Context, req listRequest) handler.Response {
	data, err := p.loadEvents(ctx, req.page())
	if p.expireOnUnauthorized(ctx, err) {
		return handler.Redirect(guard.LoginPath)
	}
	return p.views.Render(http.StatusOK, "events", data)
}

func (p *Portal) createEvent(ctx Context, form events.Form) handler.Response {
	in, err := form.Validate()
	if err != nil {
		var verr handler.ValidationError
		errors.As(err, &verr)
		data, _ := p.loadEvents(ctx, queryPage(ctx.Request()))
		data.Form = form
		data.Errors = verr
		return p.views.Render(http.StatusUnprocessableEntity, "events", data)
	}

	s := ctx.Session()
	if _, err := p.api.CreateEvent(ctx, s.Snapshot().Token, in); err != nil {
		if p.expireOnUnauthorized(ctx, err) {
			return handler.Redirect(guard.LoginPath)
		}
		p.log.WarnContext(ctx, "create event failed", logger.SessionID(s.Key()), logger.Error(err))
		data, _ := p.loadEvents(ctx, queryPage(ctx.Request()))
		data.Form = form
		data.FormError = backend.MessageOf(err, createEventFailed)
		return p.views.Render(statusFor(err), "events", data)
	}

	return handler.Redirect(events.PageURL(1))
}

// loadEvents builds the events page model. A backend failure is reported in
// LoadError and returned.
func (p *Portal) loadEvents(ctx Context, page int) (eventsPage, error) {
	data := eventsPage{Base: base(ctx, "Events")}

	res, err := p.api.ListEvents(ctx, data.State.Token, page, backend.DefaultLimit)
	if err != nil {
		p.log.WarnContext(ctx, "list events failed", logger.SessionID(ctx.Session().Key()), logger.Error(err))
		data.LoadError = backend.MessageOf(err, loadEventsFailed)
		data.Pager = events.NewPager(backend.Pagination{Page: page})
		return data, err
	}

	data.Events = res.Data
	data.Pager = events.NewPager(res.Payload.Pagination)
	return data, nil
}

// eventResponses loads the event and its responses in parallel.
func (p *Portal) eventResponses(ctx Context, req responsesRequest) handler.Response {
	data := responsesPage{Base: base(ctx, "Event Responses")}
	token := data.State.Token

	var (
		event     *backend.Event
		responses *backend.ResponsesPage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = p.api.GetEvent(gctx, token, req.ID)
		return err
	})
	g.Go(func() error {
		var err error
		responses, err = p.api.EventResponses(gctx, token, req.ID)
		return err
	})

	if err := g.Wait(); err != nil {
		if p.expireOnUnauthorized(ctx, err) {
			return handler.Redirect(guard.LoginPath)
		}
		p.log.WarnContext(ctx, "load event responses failed",
			logger.SessionID(ctx.Session().Key()),
			logger.Error(err),
		)
		data.Error = backend.MessageOf(err, loadResponsesFailed)
		return p.views.Render(statusFor(err), "responses", data)
	}

	data.Event = event
	data.Responses = responses.Data
	data.Yes = responses.Count(backend.ResponseYes)
	data.No = responses.Count(backend.ResponseNo)
	data.Maybe = responses.Count(backend.ResponseMaybe)
	return p.views.Render(http.StatusOK, "responses", data)
}

// queryPage reads ?page= for handlers bound to another request type.
func queryPage(r *http.Request) int {
	var req listRequest
	if err := binderQuery(r, &req); err != nil {
		return backend.DefaultPage
	}
	return req.page()
}

// statusFor maps a backend failure to the status of the page showing it.
func statusFor(err error) int {
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		return http.StatusNotFound
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
