// Package server runs an http.Handler with production defaults and graceful
// shutdown driven by a context.
//
// # Usage
//
//	cfg := config.MustLoad(&server.Config{})
//	srv, err := server.NewFromConfig(*cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, r))
//	return g.Wait()
//
// Run binds the listener, serves until ctx is cancelled and then calls Stop,
// which waits up to the shutdown timeout for in-flight requests. Bind errors
// are returned immediately and wrap ErrListen.
//
// Addr reports the bound address while running, so tests can listen on ":0".
//
// # Configuration
//
// Config is read with core/config from SERVER_ADDR, SERVER_READ_TIMEOUT,
// SERVER_READ_HEADER_TIMEOUT, SERVER_WRITE_TIMEOUT, SERVER_IDLE_TIMEOUT,
// SERVER_SHUTDOWN_TIMEOUT and SERVER_MAX_HEADER_BYTES.
package server
