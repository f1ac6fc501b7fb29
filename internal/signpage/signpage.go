// Package signpage serves the unauthenticated page an external signer opens
// from a signing link. Each request rebuilds the signer's flow from the
// session, so the server holds no per-signer state between requests.
package signpage

import (
	"embed"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/attest/internal/signing"
	"github.com/JaimeStill/attest/pkg/module"
	"github.com/JaimeStill/attest/pkg/web"
)

//go:embed templates static
var content embed.FS

var (
	signView   = web.ViewDef{Template: "sign.html", Title: "Sign document"}
	errorView  = web.ViewDef{Template: "error.html", Title: "Signing unavailable"}
	signedView = web.ViewDef{Template: "signed.html", Title: "Document signed"}
)

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"dataURL": func(s string) template.URL {
		if strings.HasPrefix(s, "data:image/png;base64,") || strings.HasPrefix(s, "data:image/jpeg;base64,") {
			return template.URL(s)
		}
		return ""
	},
}

// NewModule creates the signing page module mounted at basePath.
func NewModule(sys signing.System, basePath string, logger *slog.Logger) (*module.Module, error) {
	pages, err := web.NewTemplateSet(
		content,
		"templates/layouts/*.html",
		"templates/pages",
		"app",
		basePath,
		funcs,
		signView, errorView, signedView,
	)
	if err != nil {
		return nil, err
	}

	h := NewHandler(sys, pages, logger)

	router := web.NewRouter()
	router.SetFallback(h.NotFound)

	mux := router.Mux()
	mux.HandleFunc("GET /static/", web.DistServer(content, "static", "/static"))
	mux.HandleFunc("GET /{id}", h.Page)
	mux.HandleFunc("POST /{id}", h.Submit)

	return module.New(basePath, router), nil
}
