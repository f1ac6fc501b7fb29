package web

import (
	"io/fs"
	"net/http"
)

// DistServer serves files from subdir of fsys with urlPrefix stripped from the
// request path. Directory listings are disabled.
func DistServer(fsys fs.FS, subdir, urlPrefix string) http.HandlerFunc {
	sub, err := fs.Sub(fsys, subdir)
	if err != nil {
		panic("failed to create sub-filesystem: " + err.Error())
	}
	files := http.StripPrefix(urlPrefix, http.FileServer(http.FS(sub)))

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	}
}
