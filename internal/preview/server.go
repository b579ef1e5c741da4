package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
	"git.home.luguber.info/inful/courseforge/internal/metrics"
)

// Server serves the output directory with build health and metrics.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// noCache stops browsers from keeping stale pages between rebuilds.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// newMux wires the site, /healthz and /metrics.
func newMux(outputDir string, status http.Handler, reg *prom.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", noCache(http.FileServer(http.Dir(outputDir))))
	mux.Handle("/healthz", status)
	if reg != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(reg))
	}
	return mux
}

// Listen binds addr and starts serving in the background.
func Listen(addr string, handler http.Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to bind preview server").
			WithContext("addr", addr).
			Fatal().
			Build()
	}
	s := &Server{
		srv: &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server stopped", logfields.Error(err))
		}
	}()
	return s, nil
}

// Addr is the bound listen address.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// URL is the base URL of the site.
func (s *Server) URL() string { return fmt.Sprintf("http://%s/", s.Addr()) }

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
