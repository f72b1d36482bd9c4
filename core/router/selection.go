package router

import "github.com/dmitrymomot/waypoint/core/handler"

// Outcome tells whether resolution found a handler and, if not, why.
type Outcome uint8

const (
	// NotFound means no registered pattern matches the path.
	NotFound Outcome = iota
	// MethodNotAllowed means the path matches but the method is not bound.
	MethodNotAllowed
	// Matched means a handler was selected.
	Matched
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case MethodNotAllowed:
		return "method not allowed"
	default:
		return "not found"
	}
}

// Selection is the result of resolving a method and path.
// Selections are plain values; resolving the same input against the same
// router always yields an equal Selection.
type Selection[C handler.Context] struct {
	Outcome Outcome

	// Handler is the bound route handler, set only when Matched.
	Handler handler.HandlerFunc[C]

	// Params holds every capture along the match. When mounted routers
	// capture the same name, the innermost router's value wins.
	Params map[string]string

	// Pattern is the full matched pattern, mount prefixes included.
	Pattern string

	// Allowed lists the methods bound at the path, sorted, when the outcome
	// is MethodNotAllowed.
	Allowed []string

	middlewares []handler.Middleware[C]
}

// Found reports whether a handler was selected.
func (s Selection[C]) Found() bool {
	return s.Outcome == Matched
}

// Err returns ErrNotFound or ErrMethodNotAllowed for unmatched selections.
func (s Selection[C]) Err() error {
	switch s.Outcome {
	case Matched:
		return nil
	case MethodNotAllowed:
		return ErrMethodNotAllowed
	default:
		return ErrNotFound
	}
}

// Endpoint returns the selected handler wrapped in the middleware of every
// router crossed during resolution, outermost router first. It is nil when
// nothing matched.
func (s Selection[C]) Endpoint() handler.HandlerFunc[C] {
	if s.Handler == nil {
		return nil
	}
	return handler.Chain(s.Handler, s.middlewares...)
}
