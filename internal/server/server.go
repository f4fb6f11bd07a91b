package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows its own routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	Patterns() []string                               // Patterns lists what has been registered
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Loopback is a short-lived HTTP server bound before it starts serving, so the
// browser can be sent to it without racing the listener.
type Loopback struct {
	srv      *http.Server
	listener net.Listener
	errs     chan error
}

// Listen binds addr and serves h in the background. Use "127.0.0.1:0" for any free port.
func Listen(addr string, h http.Handler) (*Loopback, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	lb := &Loopback{
		srv:      &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second},
		listener: ln,
		errs:     make(chan error, 1),
	}

	go func() {
		if err := lb.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lb.errs <- err
		}
	}()

	return lb, nil
}

// Addr returns the bound address, with the real port when ":0" was requested.
func (l *Loopback) Addr() string {
	return l.listener.Addr().String()
}

// Errors delivers a fatal serve error, if one happens.
func (l *Loopback) Errors() <-chan error {
	return l.errs
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (l *Loopback) Shutdown(ctx context.Context) error {
	return l.srv.Shutdown(ctx)
}

// RequestLogger logs one line per request at debug level.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("callback request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
