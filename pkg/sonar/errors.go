package sonar

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for API failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrUnauthorized indicates the credentials were missing, wrong or
	// lacked the permission the endpoint requires (401 and 403).
	ErrUnauthorized = errors.New("sonar: unauthorized")

	// ErrNotFound indicates the project or resource does not exist (404).
	ErrNotFound = errors.New("sonar: not found")

	// ErrRateLimited indicates the server kept answering 429.
	ErrRateLimited = errors.New("sonar: rate limited")

	// ErrRejected indicates any other 4xx response.
	ErrRejected = errors.New("sonar: request rejected")

	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("sonar: server error")

	// ErrMalformed indicates a 2xx response that could not be decoded.
	ErrMalformed = errors.New("sonar: malformed response")
)

// StatusError is a non-2xx API response.
type StatusError struct {
	Endpoint string
	Code     int

	// Messages holds the "errors[].msg" values of the response body.
	Messages []string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("sonar: %s: %d %s", e.Endpoint, e.Code, http.StatusText(e.Code))
	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, "; ")
	}
	return msg
}

// Unwrap maps the status code to its sentinel.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
		return ErrUnauthorized
	case e.Code == http.StatusNotFound:
		return ErrNotFound
	case e.Code == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Code >= 500:
		return ErrServer
	}
	return ErrRejected
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// apiErrors is the body SonarQube sends with most 4xx responses.
type apiErrors struct {
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}
