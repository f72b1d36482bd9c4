package response

import (
	"errors"
	"net/http"
	"strings"
)

// HTTPError is a structured error carrying the status it should be served with.
type HTTPError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewHTTPError builds an error for status with the standard code and message.
// Unknown statuses become 500.
func NewHTTPError(status int) HTTPError {
	text := http.StatusText(status)
	if text == "" {
		status = http.StatusInternalServerError
		text = http.StatusText(status)
	}
	return HTTPError{
		Status:  status,
		Code:    statusCodeName(text),
		Message: text,
	}
}

// statusCodeName turns "Method Not Allowed" into "method_not_allowed".
func statusCodeName(text string) string {
	text = strings.ToLower(text)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-':
			return '_'
		}
		return -1
	}, text)
}

func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode lets the router's default error handler pick the status.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// Is matches any HTTPError with the same status and code.
func (e HTTPError) Is(target error) bool {
	var other HTTPError
	if !errors.As(target, &other) {
		return false
	}
	return e.Status == other.Status && e.Code == other.Code
}

// WithMessage returns a copy with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy with details merged over the existing ones.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	e.Details = merged
	return e
}

// WithError returns a copy recording err as the "cause" detail.
func (e HTTPError) WithError(err error) HTTPError {
	if err == nil {
		return e
	}
	return e.WithDetails(map[string]any{"cause": err.Error()})
}

var (
	ErrBadRequest            = NewHTTPError(http.StatusBadRequest)
	ErrUnauthorized          = NewHTTPError(http.StatusUnauthorized)
	ErrForbidden             = NewHTTPError(http.StatusForbidden)
	ErrNotFound              = NewHTTPError(http.StatusNotFound)
	ErrMethodNotAllowed      = NewHTTPError(http.StatusMethodNotAllowed)
	ErrConflict              = NewHTTPError(http.StatusConflict)
	ErrRequestEntityTooLarge = NewHTTPError(http.StatusRequestEntityTooLarge)
	ErrUnprocessableEntity   = NewHTTPError(http.StatusUnprocessableEntity)
	ErrTooManyRequests       = NewHTTPError(http.StatusTooManyRequests)
	ErrInternalServerError   = NewHTTPError(http.StatusInternalServerError)
	ErrServiceUnavailable    = NewHTTPError(http.StatusServiceUnavailable)
)

type statusCoder interface {
	StatusCode() int
}

// AsHTTPError converts err into an HTTPError. HTTPErrors pass through;
// errors exposing StatusCode() keep that status. Client errors record the
// cause, server errors do not, so internals never reach the client.
func AsHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCoder
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	out := NewHTTPError(status)
	if out.Status < http.StatusInternalServerError {
		out = out.WithError(err)
	}
	return out
}
