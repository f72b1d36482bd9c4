package response

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/waypoint/core/handler"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// write sets the content type and status, then writes body unless the
// status forbids one.
func write(w http.ResponseWriter, contentType string, status int, body []byte) error {
	if status == 0 {
		status = http.StatusOK
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	if len(body) == 0 || !bodyAllowed(status) {
		return nil
	}
	_, err := w.Write(body)
	return err
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status < 200:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

// String creates a text/plain response with 200 OK status.
func String(content string) handler.Response {
	return StringWithStatus(content, http.StatusOK)
}

// StringWithStatus creates a text/plain response. Zero status means 200.
func StringWithStatus(content string, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return write(w, contentTypeText, status, []byte(content))
	}
}

// HTML writes content as text/html with 200 OK status.
func HTML(content string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return write(w, contentTypeHTML, http.StatusOK, []byte(content))
	}
}

// Bytes writes raw content with the given content type.
func Bytes(content []byte, contentType string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return write(w, contentType, http.StatusOK, content)
	}
}

// JSON creates an application/json response with 200 OK status.
func JSON(v any) handler.Response {
	return JSONWithStatus(v, http.StatusOK)
}

// JSONWithStatus encodes v straight into the response. A zero status means
// 204 for nil data and 200 otherwise.
func JSONWithStatus(v any, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if status == 0 {
			status = http.StatusOK
			if v == nil {
				status = http.StatusNoContent
			}
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(status)
		if !bodyAllowed(status) {
			return nil
		}
		return json.NewEncoder(w).Encode(v)
	}
}

// NoContent creates a 204 No Content response.
func NoContent() handler.Response {
	return Status(http.StatusNoContent)
}

// Status writes an empty response with the given status code.
func Status(code int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return write(w, "", code, nil)
	}
}

// Redirect replies with a redirect to url. Codes outside 3xx fall back to 302.
func Redirect(url string, code int) handler.Response {
	if code < 300 || code > 399 {
		code = http.StatusFound
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		http.Redirect(w, r, url, code)
		return nil
	}
}

// Error returns a response that writes nothing and yields err, leaving the
// rendering to the router's error handler.
func Error(err error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return err
	}
}

// Handler serves the request with a plain http.Handler.
func Handler(h http.Handler) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		h.ServeHTTP(w, r)
		return nil
	}
}
