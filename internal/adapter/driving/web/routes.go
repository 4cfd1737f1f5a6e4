package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// The page is served at /, its actions under /app/*, and static assets are
// served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Index)

	mux.HandleFunc("POST /app/model", h.SelectModel)
	mux.HandleFunc("POST /app/input/file", h.UploadFile)
	mux.HandleFunc("POST /app/input/paste", h.Paste)
	mux.HandleFunc("POST /app/analyze", h.Analyze)
}
