package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/speakerdesk/pkg/logger"
	"github.com/dmitrymomot/speakerdesk/pkg/requestid"
)

// ErrorPageParams is passed to the error page component.
type ErrorPageParams struct {
	Error      string
	StatusCode int
	RequestID  string
}

// ErrorHandlerConfig configures NewErrorHandler.
type ErrorHandlerConfig struct {
	// ErrorPage renders the error for regular and DataStar requests.
	// Nil falls back to http.Error.
	ErrorPage func(ErrorPageParams) templ.Component

	// ErrorPartial, when set, is what DataStar requests get patched with
	// instead of ErrorPage.
	ErrorPartial func(ErrorPageParams) templ.Component

	// Target is the DataStar patch selector for the error component.
	Target string
}

// ErrorInfo is an error classified for display and logging.
type ErrorInfo struct {
	StatusCode int
	Message    string
	LogLevel   slog.Level
}

func classifyError(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Message:    "An error occurred processing your request",
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		info.StatusCode = httpErr.Code
		info.Message = httpErr.Key
	}

	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		info.StatusCode = http.StatusUnprocessableEntity
		info.Message = validationErr.Error()
	}

	info.LogLevel = slog.LevelError
	if info.StatusCode < http.StatusInternalServerError {
		info.LogLevel = slog.LevelWarn
	}
	return info
}

// NewErrorHandler logs err at a level chosen by its status and renders the
// configured error page.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Target == "" {
		cfg.Target = "#flash"
	}

	return func(ctx Context, err error) {
		r, w := ctx.Request(), ctx.ResponseWriter()
		info := classifyError(err)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.Error(err),
			logger.Status(info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if cfg.ErrorPage == nil {
			http.Error(w, info.Message, info.StatusCode)
			return
		}

		params := ErrorPageParams{
			Error:      info.Message,
			StatusCode: info.StatusCode,
			RequestID:  requestid.FromContext(r.Context()),
		}
		resp := TemplWithStatus(info.StatusCode, cfg.ErrorPage(params), WithTarget(cfg.Target))
		if cfg.ErrorPartial != nil {
			resp = TemplPartial(info.StatusCode, cfg.ErrorPartial(params), cfg.ErrorPage(params), WithTarget(cfg.Target))
		}
		if renderErr := resp.Render(w, r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error page",
				logger.Error(renderErr),
				logger.Component("error_handler"),
			)
		}
	}
}
