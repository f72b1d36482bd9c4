package health

import (
	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/response"
)

// Liveness answers "ALIVE" without checking dependencies.
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}

// NoContent answers 204 with no body.
func NoContent[C handler.Context](C) handler.Response {
	return response.NoContent()
}
