// Package module mounts self-contained HTTP handlers under single-segment
// path prefixes such as "/api".
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/crobbins327/histocartography/pkg/middleware"
)

// Module serves requests under its prefix through its own middleware chain.
// The inner handler sees paths with the prefix removed.
type Module struct {
	prefix  string
	handler http.Handler
	chain   middleware.Chain
}

// New returns a Module for prefix. It panics unless prefix is a single
// segment with a leading slash.
func New(prefix string, handler http.Handler) *Module {
	if prefix == "" || prefix[0] != '/' || strings.Count(prefix, "/") != 1 {
		panic(fmt.Sprintf("module prefix must be a single segment like /api: %q", prefix))
	}
	return &Module{prefix: prefix, handler: handler}
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module chain.
func (m *Module) Use(mw ...middleware.Func) {
	m.chain = append(m.chain, mw...)
}

// Serve strips the prefix and dispatches through the middleware chain.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	inner := req.Clone(req.Context())
	inner.URL.Path = strings.TrimPrefix(req.URL.Path, m.prefix)
	inner.URL.RawPath = ""
	if inner.URL.Path == "" {
		inner.URL.Path = "/"
	}
	m.chain.Then(m.handler).ServeHTTP(w, inner)
}

// Router dispatches on the first path segment to mounted modules and sends
// everything else to a plain ServeMux.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers a handler outside every module, e.g. health checks.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount routes the module's prefix to it.
func (r *Router) Mount(m *Module) {
	r.modules[m.prefix] = m
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	segment, _, _ := strings.Cut(strings.TrimPrefix(req.URL.Path, "/"), "/")
	if m, ok := r.modules["/"+segment]; ok {
		m.Serve(w, req)
		return
	}
	r.native.ServeHTTP(w, req)
}
