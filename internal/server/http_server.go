package server

import (
	"context"
	"net/http"
)

// httpServer is the seam between the run loop and net/http. Both the ops
// listener and the metrics listener go through it, and tests substitute
// stubs to observe shutdown ordering.
type httpServer interface {
	ListenAndServe() error
	Shutdown(context.Context) error
	Addr() string
	Handler() http.Handler
}

// netHTTPServer adapts *http.Server to the httpServer seam.
type netHTTPServer struct {
	srv *http.Server
}

func (s netHTTPServer) Addr() string          { return s.srv.Addr }
func (s netHTTPServer) Handler() http.Handler { return s.srv.Handler }

func (s netHTTPServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s netHTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
