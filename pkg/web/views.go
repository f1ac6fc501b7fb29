// Package web renders server-side pages from embedded templates and serves
// their static assets.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// ViewDef names a page template and its document title.
type ViewDef struct {
	Template string
	Title    string
}

// ViewData is the root value every page template receives.
// BasePath lets templates build module-relative URLs via {{ .BasePath }}.
type ViewData struct {
	Title    string
	BasePath string
	Data     any
}

// TemplateSet holds one parsed template tree per view, each a clone of the
// shared layouts, parsed once at startup.
type TemplateSet struct {
	views    map[string]*template.Template
	layout   string
	basePath string
}

// NewTemplateSet parses the layouts matched by layoutGlob, then clones them
// once per view and parses the view from viewSubdir into the clone. Any parse
// error fails construction.
func NewTemplateSet(
	fsys fs.FS,
	layoutGlob, viewSubdir, layout, basePath string,
	funcs template.FuncMap,
	views ...ViewDef,
) (*TemplateSet, error) {
	layouts, err := template.New("").Funcs(funcs).ParseFS(fsys, layoutGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	viewFS, err := fs.Sub(fsys, viewSubdir)
	if err != nil {
		return nil, err
	}

	parsed := make(map[string]*template.Template, len(views))
	for _, v := range views {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", v.Template, err)
		}
		if _, err := t.ParseFS(viewFS, v.Template); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", v.Template, err)
		}
		parsed[v.Template] = t
	}

	return &TemplateSet{
		views:    parsed,
		layout:   layout,
		basePath: basePath,
	}, nil
}

// BasePath returns the URL prefix the set was created with.
func (ts *TemplateSet) BasePath() string {
	return ts.basePath
}

// Render executes view into a buffer and writes it with status. Nothing is
// written if execution fails.
func (ts *TemplateSet) Render(w http.ResponseWriter, status int, view ViewDef, data any) error {
	t, ok := ts.views[view.Template]
	if !ok {
		return fmt.Errorf("template not found: %s", view.Template)
	}

	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, ts.layout, ViewData{
		Title:    view.Title,
		BasePath: ts.basePath,
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("execute %s: %w", view.Template, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// PageHandler renders view with status and no data.
func (ts *TemplateSet) PageHandler(view ViewDef, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ts.Render(w, status, view, nil); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}
