// Package apperr defines the typed errors services return. The HTTP layer
// maps each Kind to a status code, so handlers never pick statuses by hand.
package apperr

import "net/http"

// Kind categorizes an error for HTTP mapping and for tests that assert on
// failure class rather than message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindForbidden
	KindUnauthorized
	KindInternal
	// KindConfiguration marks a missing or invalid tenant setting, e.g. an
	// org without OAuth client credentials.
	KindConfiguration
	// KindUpstream marks a failed call to a third-party provider.
	KindUpstream
	// KindUpstreamAuth marks a provider rejecting our stored credentials;
	// the tenant usually has to reconnect the integration.
	KindUpstreamAuth
)

var httpStatus = map[Kind]int{
	KindNotFound:      http.StatusNotFound,
	KindValidation:    http.StatusBadRequest,
	KindConflict:      http.StatusConflict,
	KindForbidden:     http.StatusForbidden,
	KindUnauthorized:  http.StatusUnauthorized,
	KindInternal:      http.StatusInternalServerError,
	KindConfiguration: http.StatusBadRequest,
	KindUpstream:      http.StatusBadGateway,
	KindUpstreamAuth:  http.StatusBadGateway,
}

// Error is the domain error type. Message is safe to return to clients;
// Err carries the underlying cause for logs and errors.Is chains.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	Details any
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error Kind to a response status. Unrecognized kinds
// fall back to 400 rather than 500 so an unmapped error never masquerades
// as a server fault.
func (e *Error) HTTPStatus() int {
	if status, ok := httpStatus[e.Kind]; ok {
		return status
	}
	return http.StatusBadRequest
}

// Wrap attaches a kind and client-facing message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error      { return &Error{Kind: KindNotFound, Message: message} }
func Validation(message string) *Error    { return &Error{Kind: KindValidation, Message: message} }
func Conflict(message string) *Error      { return &Error{Kind: KindConflict, Message: message} }
func Forbidden(message string) *Error     { return &Error{Kind: KindForbidden, Message: message} }
func Unauthorized(message string) *Error  { return &Error{Kind: KindUnauthorized, Message: message} }
func Internal(message string) *Error      { return &Error{Kind: KindInternal, Message: message} }
func Configuration(message string) *Error { return &Error{Kind: KindConfiguration, Message: message} }
func Upstream(message string) *Error      { return &Error{Kind: KindUpstream, Message: message} }
func UpstreamAuth(message string) *Error  { return &Error{Kind: KindUpstreamAuth, Message: message} }
