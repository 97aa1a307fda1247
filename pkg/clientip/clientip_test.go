package clientip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/speakerdesk/pkg/clientip"
)

func TestFromRequest(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"remote addr without port", nil, "192.0.2.1", "192.0.2.1"},
		{"cloudflare first", map[string]string{"CF-Connecting-IP": "203.0.113.9", "X-Real-IP": "198.51.100.1"}, "10.0.0.1:80", "203.0.113.9"},
		{"first valid forwarded", map[string]string{"X-Forwarded-For": "garbage, 203.0.113.7, 10.0.0.2"}, "10.0.0.1:80", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.1"}, "10.0.0.1:80", "198.51.100.1"},
		{"invalid headers fall through", map[string]string{"CF-Connecting-IP": "nope"}, "10.0.0.1:80", "10.0.0.1"},
		{"ipv6 normalized", nil, "[2001:db8:0:0::1]:443", "2001:db8::1"},
		{"nothing valid", nil, "pipe", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, clientip.FromRequest(r))
		})
	}
}

func TestMiddlewareAndExtractor(t *testing.T) {
	var got string
	h := clientip.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = clientip.FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.5:999"
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "192.0.2.5", got)

	extract := clientip.LoggerExtractor()
	attr, ok := extract(clientip.WithContext(context.Background(), got))
	assert.True(t, ok)
	assert.Equal(t, "192.0.2.5", attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
