// Package server serves the seed documents over HTTP for local development.
package server

import (
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"
)

// SeedHandler serves the JSON documents of a file system, e.g. GET /data/mock-users.json.
type SeedHandler struct {
	fsys   fs.FS
	prefix string
	logger *slog.Logger
}

func NewSeedHandler(fsys fs.FS, prefix string) *SeedHandler {
	return &SeedHandler{
		fsys:   fsys,
		prefix: "/" + strings.Trim(prefix, "/") + "/",
		logger: slog.Default(),
	}
}

// Pattern is the ServeMux pattern the handler should be mounted on.
func (h *SeedHandler) Pattern() string {
	return "GET " + h.prefix
}

func (h *SeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutPrefix(r.URL.Path, h.prefix)
	if !ok || name == "" || strings.Contains(name, "/") || path.Ext(name) != ".json" || !fs.ValidPath(name) {
		http.NotFound(w, r)
		return
	}

	content, err := fs.ReadFile(h.fsys, name)
	if err != nil {
		h.logger.Debug("Seed document not found",
			slog.String("name", name),
			slog.Any("error", err),
		)
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(content); err != nil {
		h.logger.Warn("Failed to write seed document", slog.String("name", name), slog.Any("error", err))
	}
}

// CORSMiddleware allows browser clients from allowedOrigins to fetch seed documents.
func CORSMiddleware(allowedOrigins []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (slices.Contains(allowedOrigins, origin) || slices.Contains(allowedOrigins, "*")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "3600")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
