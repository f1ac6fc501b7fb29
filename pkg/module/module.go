// Package module mounts independently configured HTTP sub-applications
// (the JSON API, the public signing page) under single-segment prefixes.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JaimeStill/attest/pkg/middleware"
)

// Module strips its prefix from incoming requests and hands them to an inner
// router wrapped in the module's own middleware stack.
type Module struct {
	prefix     string
	router     http.Handler
	middleware *middleware.Stack
}

// New creates a Module for a single-segment prefix such as "/api" or "/sign".
// Panics if the prefix is empty, missing a leading slash, or nested.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Handler returns the inner router wrapped with the module's middleware stack.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.router)
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Serve strips the module prefix from the request path and dispatches to the inner router.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, withPath(req, trimPrefix(req.URL.Path, m.prefix)))
}

// Use appends middleware to the module's stack.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

func withPath(req *http.Request, path string) *http.Request {
	u := new(url.URL)
	*u = *req.URL
	u.Path = path
	u.RawPath = ""

	r := req.Clone(req.Context())
	r.URL = u
	return r
}

func trimPrefix(fullPath, prefix string) string {
	if path := strings.TrimPrefix(fullPath, prefix); path != "" {
		return path
	}
	return "/"
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
