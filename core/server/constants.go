package server

import "time"

const (
	// DefaultReadTimeout bounds reading the entire request, body included.
	DefaultReadTimeout = 15 * time.Second

	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout is how long keep-alive connections wait for the next request.
	DefaultIdleTimeout = 60 * time.Second

	DefaultShutdownTimeout = 30 * time.Second

	DefaultMaxHeaderBytes = 1 << 20 // 1 MB
)
