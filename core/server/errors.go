package server

import "errors"

var (
	ErrMissingAddress       = errors.New("server address is required")
	ErrNilHandler           = errors.New("server handler is nil")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrListen               = errors.New("failed to listen")
	ErrHTTPServer           = errors.New("HTTP server error")
	ErrHTTPShutdown         = errors.New("HTTP shutdown error")
)
