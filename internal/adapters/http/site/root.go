// Package site serves the embedded engagement explorer.
package site

import (
	"context"
	"net/http"
)

// Register attaches the explorer routes to mux: the page at / and its assets under /static/.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	root := NewRootHandler()
	mux.HandleFunc("GET /{$}", root.HandleRoot)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// RootHandler handles root path requests
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests and serves the explorer page.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, staticSub(), "index.html")
}
