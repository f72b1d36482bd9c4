package middleware

import (
	"net/http"

	"github.com/dmitrymomot/waypoint/core/response"
)

// statusWriter is satisfied by the router's response writer.
type statusWriter interface {
	http.ResponseWriter
	Status() int
	Size() int
}

// trackingWriter records status and size when the writer passed to a
// response does not already do so.
type trackingWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *trackingWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *trackingWriter) Status() int { return w.status }
func (w *trackingWriter) Size() int   { return w.size }

func (w *trackingWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func track(w http.ResponseWriter) statusWriter {
	if sw, ok := w.(statusWriter); ok {
		return sw
	}
	return &trackingWriter{ResponseWriter: w}
}

// statusOf is the status the client receives. When the response returned an
// error before writing, the router's error handler writes it later, so the
// status is derived from the error.
func statusOf(w statusWriter, err error) int {
	if s := w.Status(); s != 0 {
		return s
	}
	if err != nil {
		return response.AsHTTPError(err).Status
	}
	return http.StatusOK
}
