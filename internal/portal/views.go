package portal

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/speakerdesk/handler"
	"github.com/dmitrymomot/speakerdesk/internal/backend"
	"github.com/dmitrymomot/speakerdesk/internal/events"
	"github.com/dmitrymomot/speakerdesk/internal/session"
)

//go:embed views/*.html
var viewsFS embed.FS

const mainTarget = "#main"

var pageNames = []string{"login", "signup", "events", "responses", "settings", "error"}

// Base is embedded in every page model.
type Base struct {
	Title  string
	State  session.State
	Notice string
}

type loginPage struct {
	Base
	Email string
}

type signupPage struct {
	Base
	Form signupForm
}

type eventsPage struct {
	Base
	Events    []backend.Event
	Pager     events.Pager
	Form      events.Form
	Errors    handler.ValidationError
	FormError string
	LoadError string
}

type responsesPage struct {
	Base
	Event     *backend.Event
	Responses []backend.EventResponse
	Yes       int
	No        int
	Maybe     int
	Error     string
}

type settingsPage struct {
	Base
	Error string
}

type errorPage struct {
	Base
	handler.ErrorPageParams
}

// Views renders the embedded page templates as templ components.
type Views struct {
	pages map[string]*template.Template
}

// NewViews parses every page against the shared layout.
func NewViews() (*Views, error) {
	layout, err := template.New("").Funcs(funcs()).ParseFS(viewsFS, "views/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	v := &Views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(viewsFS, "views/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// Page is the full document for page name.
func (v *Views) Page(name string, data any) templ.Component {
	return templ.FromGoHTML(v.pages[name].Lookup("layout"), data)
}

// Main is only the #main region of page name.
func (v *Views) Main(name string, data any) templ.Component {
	return templ.FromGoHTML(v.pages[name].Lookup("main"), data)
}

// Render answers with the full page, or with a #main patch for DataStar.
func (v *Views) Render(status int, name string, data any) handler.Response {
	return handler.TemplPartial(status, v.Main(name, data), v.Page(name, data), handler.WithTarget(mainTarget))
}

// ErrorHandlerConfig renders request errors with the error page.
func (v *Views) ErrorHandlerConfig() handler.ErrorHandlerConfig {
	data := func(p handler.ErrorPageParams) errorPage {
		return errorPage{Base: Base{Title: http.StatusText(p.StatusCode)}, ErrorPageParams: p}
	}
	return handler.ErrorHandlerConfig{
		ErrorPage: func(p handler.ErrorPageParams) templ.Component {
			return v.Page("error", data(p))
		},
		ErrorPartial: func(p handler.ErrorPageParams) templ.Component {
			return v.Main("error", data(p))
		},
		Target: mainTarget,
	}
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"roleLabel":   roleLabel,
		"date":        formatDate,
		"deref":       deref,
		"statusClass": statusClass,
	}
}

// roleLabel turns SPEAKER into Speaker. A Caser keeps state, so each call
// gets its own.
func roleLabel(r session.Role) string {
	return cases.Title(language.English).String(strings.ToLower(string(r)))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 2006 15:04")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func statusClass(s backend.ResponseStatus) string {
	switch s {
	case backend.ResponseYes:
		return "yes"
	case backend.ResponseNo:
		return "no"
	default:
		return "maybe"
	}
}
