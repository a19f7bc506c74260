package httpclient

import (
	"net/http"
)

// middlewareTransport adds the User-Agent and credentials to each request.
// Credentials are only sent to the host of the request the caller made;
// a redirect to another host goes out without them.
type middlewareTransport struct {
	base      http.RoundTripper
	userAgent string
	auth      Auth
}

// RoundTrip implements http.RoundTripper.
func (m *middlewareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if m.userAgent != "" {
		r.Header.Set("User-Agent", m.userAgent)
	}
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", "application/json")
	}
	if r.Header.Get("Authorization") == "" && r.URL.Host == originHost(req) {
		m.auth.apply(r)
	}
	return m.base.RoundTrip(r)
}

// originHost returns the host of the first request in a redirect chain.
func originHost(req *http.Request) string {
	for req.Response != nil && req.Response.Request != nil {
		req = req.Response.Request
	}
	return req.URL.Host
}

// redirectPolicy follows a bounded number of redirects.
func redirectPolicy(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return http.ErrUseLastResponse
	}
	return nil
}
