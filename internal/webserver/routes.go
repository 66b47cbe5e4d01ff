package webserver

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/mjimenezh/gaiabench/internal/webapi"
)

//go:embed static
var staticAssets embed.FS

// registerRoutes sets up API and dashboard routes on the given mux.
func registerRoutes(mux *http.ServeMux, cfg Config) error {
	webapi.RegisterRoutes(mux, cfg.Store, cfg.Run)

	staticFS, err := fs.Sub(staticAssets, "static")
	if err != nil {
		return fmt.Errorf("failed to create sub filesystem for static assets: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))
	return nil
}
