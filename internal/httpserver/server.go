// Package httpserver is the debug/metrics HTTP surface every long-lived
// fleet process (ttgateway, ttcoordinator, ttaggregator) exposes
// alongside its real work: a liveness probe and a Prometheus scrape
// endpoint, nothing more — there is no REST or GraphQL API in scope here.
package httpserver

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/treetalker/ttcloud/pkg/log"
)

// Server wraps an http.Server with the same listen/serve/graceful-
// shutdown shape cmd/cc-backend's main used, trimmed to the two routes
// this fleet needs.
type Server struct {
	inner *http.Server
}

// New builds a Server listening on addr. healthy is polled by /healthz;
// it should report whether this process's bus connection and store are
// usable.
func New(addr string, healthy func() error) *Server {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		if err := healthy(); err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}
		rw.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	logged := handlers.CustomLoggingHandler(log.InfoWriter, r, func(w io.Writer, params handlers.LogFormatterParams) {
		log.Finfof(w, "%s %s (%d)", params.Request.Method, params.URL.RequestURI(), params.StatusCode)
	})

	return &Server{inner: &http.Server{
		Addr:         addr,
		Handler:      logged,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}}
}

// Start runs the server in a background goroutine. Listen failures other
// than a clean Shutdown are logged as errors; the process keeps running
// without the HTTP surface.
func (s *Server) Start() {
	go func() {
		if err := s.inner.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("httpserver: listen failed: %v", err)
		}
	}()
}

// Stop gracefully shuts the server down, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
