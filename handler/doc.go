// Package handler turns typed request handlers into http.HandlerFunc values.
//
// A handler receives a Context and a bound request value and returns a
// Response. Responses render themselves, choosing between a full HTML page,
// a DataStar server-sent event or an htmx header depending on who asked:
//
//	r.Post("/events", handler.Wrap(createEvent,
//		handler.WithBinders[handler.Context, EventForm](binder.Form()),
//		handler.WithErrorHandler[handler.Context, EventForm](errHandler),
//	))
package handler
