package instapaper

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotImplemented is returned by operations the Instapaper API exposes but
// this client does not support yet.
var ErrNotImplemented = errors.New("not implemented")

// AuthenticationError is returned when the access token endpoint does not
// answer with a token pair.
type AuthenticationError struct {
	Body string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: no token in response %q", e.Body)
}

// RemoteAPIError represents an error element returned by the Instapaper API,
// or a 401/403 response without one.
type RemoteAPIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("instapaper error %d: %s", e.Code, e.Message)
}

// IsAuthError reports whether err means the credentials or the access token
// were rejected.
func IsAuthError(err error) bool {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return true
	}
	var apiErr *RemoteAPIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// InvalidArgumentError is returned before any request is sent when an
// argument is out of range.
type InvalidArgumentError struct {
	Name string
	Err  error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %v", e.Name, e.Err)
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure of the underlying HTTP round trip.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// errorFromItem converts an element tagged "error" into a RemoteAPIError.
func errorFromItem(item map[string]any) *RemoteAPIError {
	return &RemoteAPIError{
		Code:    int(int64Attr(item, "error_code")),
		Message: stringAttr(item, "message"),
	}
}
