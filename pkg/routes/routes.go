// Package routes declares handler groups once and uses the declaration
// both to register a ServeMux and to fill the OpenAPI paths.
package routes

import (
	"net/http"
	"strings"

	"github.com/crobbins327/histocartography/pkg/openapi"
)

// Route binds a method and pattern to a handler. Routes without an
// operation are served but left out of the document.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Group shares a path prefix across its routes and children.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

func (g Group) walk(prefix string, fn func(path string, r Route)) {
	prefix += g.Prefix
	for _, r := range g.Routes {
		fn(prefix+r.Pattern, r)
	}
	for _, child := range g.Children {
		child.walk(prefix, fn)
	}
}

// Register adds every route of groups to mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.walk("", func(path string, r Route) {
			mux.HandleFunc(r.Method+" "+path, r.Handler)
		})
	}
}

// Document adds every documented route to spec under basePath. Trailing
// wildcards such as {key...} are written as {key}.
func Document(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, g := range groups {
		g.walk(basePath, func(path string, r Route) {
			if r.OpenAPI == nil {
				return
			}
			path = strings.Replace(path, "...}", "}", 1)
			if path == "" {
				path = "/"
			}

			item, ok := spec.Paths[path]
			if !ok {
				item = &openapi.PathItem{}
				spec.Paths[path] = item
			}
			switch r.Method {
			case http.MethodGet:
				item.Get = r.OpenAPI
			case http.MethodPost:
				item.Post = r.OpenAPI
			case http.MethodDelete:
				item.Delete = r.OpenAPI
			}
		})
	}
}
