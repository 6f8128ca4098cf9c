package main

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/wozniakbe/viewswitch"
)

//go:embed all:views
var embeddedViews embed.FS

// viewFiles returns the embedded view tree rooted at views/.
func viewFiles() fs.FS {
	sub, err := fs.Sub(embeddedViews, "views")
	if err != nil {
		panic(err)
	}
	return sub
}

// listViews returns the logical names of every view in fsys, mobile
// variants included, e.g. "Home/Index" and "Home/Index.Mobile".
func listViews(fsys fs.FS) ([]string, error) {
	var names []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && path.Ext(p) == ".html" {
			names = append(names, strings.TrimSuffix(p, ".html"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing views: %w", err)
	}
	return names, nil
}

// NewRouter registers all routes and wraps them with the middleware chain.
func NewRouter(app *App, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /{$}", app.Index())
	mux.HandleFunc("GET /Home/Index", app.Index())
	mux.HandleFunc("GET /Home/About", app.About())
	mux.HandleFunc("GET /Home/Contact", app.Contact())

	mux.Handle("GET "+viewswitch.DefaultSwitchPath, app.SwitchView())
	mux.Handle("POST "+viewswitch.DefaultSwitchPath, app.SwitchView())

	// Middleware chain: RequestID → Recovery → RequestLogging → mux
	var handler http.Handler = mux
	handler = RequestLogging(logger)(handler)
	handler = Recovery(logger)(handler)
	handler = RequestID()(handler)

	return handler
}
