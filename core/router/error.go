package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/waypoint/core/handler"
)

var (
	// Resolution errors, handed to the error handler by ServeHTTP.
	ErrNotFound         error = &routingError{status: http.StatusNotFound, msg: "not found"}
	ErrMethodNotAllowed error = &routingError{status: http.StatusMethodNotAllowed, msg: "method not allowed"}

	// Mux errors
	ErrNoContextFactory  = errors.New("no context factory provided")
	ErrNilResponse       = errors.New("nil response")
	ErrNilHandler        = errors.New("nil handler")
	ErrInvalidMethod     = errors.New("invalid http method")
	ErrNilRouter         = errors.New("nil router")
	ErrNilSubrouter      = errors.New("nil subrouter")
	ErrUnsupportedRouter = errors.New("unsupported router implementation")
	ErrRouterSealed      = errors.New("router is sealed: routes cannot be added after serving started")
	ErrLateMiddleware    = errors.New("middlewares must be defined before routes")

	// Pattern errors
	ErrInvalidPattern = errors.New("invalid route path pattern")
	ErrDuplicateParam = errors.New("duplicate parameter name")

	// ErrRegistrationConflict wraps every error caused by two registrations
	// that cannot coexist. The wrapped cause tells which rule was broken.
	ErrRegistrationConflict = errors.New("route registration conflict")
	ErrWildcardPosition     = errors.New("wildcard position must be last")
	ErrParamNameConflict    = errors.New("parameter name differs from existing route")
	ErrMethodConflict       = errors.New("method already bound")
	ErrMountConflict        = errors.New("mount point overlaps existing routes")
	ErrMountCycle           = errors.New("router cannot be mounted inside itself")
)

// routingError is a resolution outcome expressed as an error. It carries
// the status code the boundary should answer with.
type routingError struct {
	status int
	msg    string
}

func (e *routingError) Error() string   { return e.msg }
func (e *routingError) StatusCode() int { return e.status }

// statusCode is implemented by errors that map to an HTTP status.
type statusCode interface {
	StatusCode() int
}

// defaultErrorHandler writes the error text with its status code.
func defaultErrorHandler[C handler.Context](ctx C, err error) {
	w := ctx.ResponseWriter()

	if ww, ok := w.(*responseWriter); ok && ww.Written() {
		return
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	http.Error(w, http.StatusText(status), status)
}

// PanicError is passed to the error handler when a handler panics.
type PanicError interface {
	error
	// Value returns the original panic value.
	Value() any
	// Stack returns the stack trace captured at the panic point.
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any    { return e.value }
func (e *panicError) Stack() []byte { return e.stack }

// Unwrap exposes the panic value when it is an error.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
