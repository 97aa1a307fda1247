package handler

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

// TemplOption is datastar's element patch option.
type TemplOption = datastar.PatchElementOption

// WithTarget sets the CSS selector a DataStar patch applies to.
func WithTarget(selector string) TemplOption {
	return datastar.WithSelector(selector)
}

// WithPatchMode sets how a DataStar patch merges into the DOM.
func WithPatchMode(mode datastar.ElementPatchMode) TemplOption {
	return datastar.WithMode(mode)
}

const (
	PatchOuter   = datastar.ElementPatchModeOuter
	PatchInner   = datastar.ElementPatchModeInner
	PatchPrepend = datastar.ElementPatchModePrepend
)

type templResponse struct {
	component templ.Component
	partial   templ.Component
	status    int
	options   []TemplOption
}

func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		patch := t.component
		if t.partial != nil {
			patch = t.partial
		}
		return datastar.NewSSE(w, r).PatchElementTempl(patch, t.options...)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if t.status != 0 {
		w.WriteHeader(t.status)
	}
	return t.component.Render(r.Context(), w)
}

// Templ renders component as a page, or patches it over SSE for DataStar.
func Templ(component templ.Component, opts ...TemplOption) Response {
	return templResponse{component: component, options: opts}
}

// TemplWithStatus is Templ with an explicit status code for regular requests.
// SSE responses always start with 200.
func TemplWithStatus(status int, component templ.Component, opts ...TemplOption) Response {
	return templResponse{component: component, status: status, options: opts}
}

// TemplPartial patches partial for DataStar requests and renders full with
// status for everything else.
func TemplPartial(status int, partial, full templ.Component, opts ...TemplOption) Response {
	return templResponse{component: full, partial: partial, status: status, options: opts}
}
