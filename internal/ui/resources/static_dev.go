//go:build dev

package resources

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// staticDir locates static/ next to this file, so edits to store.css show
// up without a rebuild.
func staticDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return StaticDirectoryPath
	}
	return filepath.Join(filepath.Dir(filename), "static")
}

// Handler serves the static directory from disk.
func Handler() http.Handler {
	dir := staticDir()
	slog.Info("serving static assets from disk", "path", dir)

	files := http.FileServer(http.FS(os.DirFS(dir)))
	return http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		files.ServeHTTP(w, r)
	}))
}

// StaticPath returns the URL path of a static asset.
func StaticPath(name string) string {
	return "/static/" + name
}
