// Package server runs an http.Handler with production timeouts and graceful
// shutdown.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	return g.Wait()
//
// Run returns nil when ctx is canceled and the server shuts down cleanly, so
// it can sit next to other workers in an errgroup. TLS is expected to be
// terminated in front of the portal.
package server
