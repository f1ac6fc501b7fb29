// Package routes declares handler tables that domain handlers expose and the
// server registers onto a ServeMux.
package routes

import (
	"net/http"

	"github.com/JaimeStill/attest/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler. OpenAPI, when set,
// documents the route in the generated API description.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Group collects routes under a common prefix. Children inherit the prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups to mux as "METHOD prefix+pattern".
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.walk("", func(path string, r Route) {
			mux.HandleFunc(r.Method+" "+path, r.Handler)
		})
	}
}

// Describe adds every documented route in groups to spec, with basePath
// prepended to each path. Undocumented routes are skipped.
func Describe(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, g := range groups {
		g.walk(basePath, func(path string, r Route) {
			if r.OpenAPI != nil {
				spec.AddOperation(r.Method, path, r.OpenAPI)
			}
		})
	}
}

func (g Group) walk(parent string, fn func(path string, r Route)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		fn(prefix+r.Pattern, r)
	}
	for _, child := range g.Children {
		child.walk(prefix, fn)
	}
}
