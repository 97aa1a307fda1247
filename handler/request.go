package handler

import (
	"net/http"
	"strings"
)

const (
	// DataStar sends this Accept header or the datastar query parameter.
	DataStarAcceptHeader = "text/event-stream"
	DataStarQueryParam   = "datastar"

	HXRequest  = "HX-Request"
	HXBoosted  = "HX-Boosted"
	HXRedirect = "HX-Redirect"
	HXRefresh  = "HX-Refresh"
)

// IsDataStar reports whether the request came from DataStar.
func IsDataStar(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), DataStarAcceptHeader) {
		return true
	}
	return r.URL.Query().Has(DataStarQueryParam)
}

// IsHTMX reports whether the request came from htmx. Boosted requests are
// full navigations and are not treated as htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HXRequest) == "true" && r.Header.Get(HXBoosted) != "true"
}
