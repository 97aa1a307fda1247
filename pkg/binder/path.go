package binder

import (
	"net/http"
)

// Path binds route parameters to fields tagged `path:"name"`, reading each
// value through extractor (chi.URLParam for chi routers).
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindWith(v, "path", func(name string) []string {
			if value := extractor(r, name); value != "" {
				return []string{value}
			}
			return nil
		}, ErrInvalidPath)
	}
}
