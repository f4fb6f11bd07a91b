package server

import (
	"net/http"
	"slices"
)

// BasicRouter serves the handful of routes the sign-in listener needs.
//
// Method routing relies on the "METHOD /path" patterns of [http.ServeMux], so a wrong method on a
// known path gets a 405 from the mux itself.
type BasicRouter struct {
	mux      *http.ServeMux
	chain    []Middleware
	patterns []string
}

// NewBasicRouter creates an empty [BasicRouter].
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware. Routes registered earlier are not rewrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.chain = append(r.chain, middleware...)
}

// Handle registers handler for method and path.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.register(method+" "+path, handler)
}

// Handler registers every route returned by [Handler.Routes], for any method.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.register(route, handler)
	}
}

// Patterns lists the registered patterns in registration order.
func (r *BasicRouter) Patterns() []string {
	return slices.Clone(r.patterns)
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *BasicRouter) register(pattern string, handler http.Handler) {
	// first middleware added ends up outermost
	for _, mw := range slices.Backward(r.chain) {
		handler = mw(handler)
	}
	r.patterns = append(r.patterns, pattern)
	r.mux.Handle(pattern, handler)
}
