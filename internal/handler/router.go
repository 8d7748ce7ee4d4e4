package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
)

// NewRouter собирает маршруты API поверх chi.
func NewRouter(h *ImageHandler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(RequestLogger(logger))

	r.Get("/", h.ServeIndex)
	r.Get("/health", h.Health)

	r.Route("/api/images", func(r chi.Router) {
		r.Get("/", h.ListImages)
		r.Post("/analyze", h.AnalyzeImage)
		r.Post("/analyze-batch", h.AnalyzeBatch)
		r.Post("/analyze-url", h.AnalyzeURL)
		r.Post("/analyze-urls", h.AnalyzeURLs)
		r.Post("/fetch-from-url", h.FetchFromURL)
		r.Post("/delete-batch", h.DeleteBatch)
		r.Get("/{imageID}", h.GetImage)
		r.Delete("/{imageID}", h.DeleteImage)
	})

	return r
}
