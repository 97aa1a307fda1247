package handler

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"
)

type redirectResponse struct {
	url string
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	return SendRedirect(w, req, r.url)
}

// Redirect answers with a 303, an HX-Redirect header for htmx or an SSE
// redirect for DataStar.
func Redirect(url string) Response {
	return redirectResponse{url: url}
}

// SendRedirect writes the redirect Redirect describes. Middleware uses it
// directly.
func SendRedirect(w http.ResponseWriter, r *http.Request, url string) error {
	switch {
	case IsDataStar(r):
		return datastar.NewSSE(w, r).Redirect(url)
	case IsHTMX(r):
		w.Header().Set(HXRedirect, url)
		w.WriteHeader(http.StatusNoContent)
		return nil
	default:
		http.Redirect(w, r, url, http.StatusSeeOther)
		return nil
	}
}
