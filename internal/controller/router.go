package controller

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Get("/ws", c.handleWebsocket)
		r.Get("/rooms/{room-id}", c.getRoom)
		r.Get("/videos/meta", c.getVideoMeta)
	})

	if c.cfg.StaticDir != "" {
		if info, err := os.Stat(c.cfg.StaticDir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(c.cfg.StaticDir)))
		} else {
			c.logger.Warn("static dir is not served", "static_dir", c.cfg.StaticDir, "error", err)
		}
	}

	return r
}
