package handler

import (
	"net/http"
	"os"
	"path/filepath"
)

// Каталоги, в которых ищем статику: локальный запуск и запуск из
// контейнера раскладывают её по-разному.
var staticDirs = []string{"web/static", "static"}

// ServeIndex — отдаёт главную страницу. Если статика не найдена ни по
// одному из путей, отвечает JSON-заглушкой.
func (h *ImageHandler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	for _, dir := range staticDirs {
		path := filepath.Join(dir, "index.html")
		if _, err := os.Stat(path); err == nil {
			http.ServeFile(w, r, path)
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Image Quality Assessment API",
	}, h.logger)
}
