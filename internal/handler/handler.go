package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"imageqa/internal/config"
	"imageqa/internal/usecase"
)

// ImageHandler — обработчик HTTP-запросов анализа изображений.
type ImageHandler struct {
	useCase usecase.AnalysisUseCase
	cfg     *config.Config
	logger  *slog.Logger
}

// NewImageHandler создаёт новый экземпляр ImageHandler.
func NewImageHandler(uc usecase.AnalysisUseCase, cfg *config.Config, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		useCase: uc,
		cfg:     cfg,
		logger:  logger,
	}
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// respondWithUseCaseError выбирает HTTP-статус по типу ошибки бизнес-логики.
func (h *ImageHandler) respondWithUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error(), h.logger)
	case errors.Is(err, usecase.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Изображение не найдено", h.logger)
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error(), h.logger)
	}
}

// urlRequest — тело запросов с одним URL.
type urlRequest struct {
	URL string `json:"url"`
}

// AnalyzeImage — принимает один файл (multipart-поле "file"),
// прогоняет через конвейер и возвращает полный результат анализа.
func (h *ImageHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Warn("missing multipart file field", "error", err)
		respondWithError(w, http.StatusBadRequest, "Не передан файл (поле file)", h.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Не удалось прочитать файл", h.logger)
		return
	}

	analysis, err := h.useCase.AnalyzeUpload(r.Context(), data, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Error("failed to analyze image", "filename", header.Filename, "error", err)
		h.respondWithUseCaseError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, analysis, h.logger)
}

// batchAnalysisResponse — ответ пакетных endpoint'ов анализа.
type batchAnalysisResponse struct {
	Results interface{} `json:"results"`
	Failed  interface{} `json:"failed"`
}

// AnalyzeBatch — принимает несколько файлов (multipart-поле "files");
// каждый файл обрабатывается независимо.
func (h *ImageHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректный multipart-запрос", h.logger)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		respondWithError(w, http.StatusBadRequest, "Не переданы файлы (поле files)", h.logger)
		return
	}

	items := make([]usecase.UploadItem, 0, len(fileHeaders))
	failed := make([]usecase.BatchFailure, 0)

	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			failed = append(failed, usecase.BatchFailure{Filename: fh.Filename, Error: "не удалось открыть файл"})
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			failed = append(failed, usecase.BatchFailure{Filename: fh.Filename, Error: "не удалось прочитать файл"})
			continue
		}
		items = append(items, usecase.UploadItem{
			Data:        data,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}

	results, pipelineFailed := h.useCase.AnalyzeUploadBatch(r.Context(), items)
	failed = append(failed, pipelineFailed...)

	respondWithJSON(w, http.StatusOK, batchAnalysisResponse{Results: results, Failed: failed}, h.logger)
}

// AnalyzeURL — скачивает изображение по URL и анализирует его.
func (h *ImageHandler) AnalyzeURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		respondWithError(w, http.StatusBadRequest, "Не указан url", h.logger)
		return
	}

	analysis, err := h.useCase.AnalyzeImageURL(r.Context(), req.URL)
	if err != nil {
		h.logger.Error("failed to analyze image by url", "url", req.URL, "error", err)
		h.respondWithUseCaseError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, analysis, h.logger)
}

// AnalyzeURLs — анализирует изображения по списку URL.
func (h *ImageHandler) AnalyzeURLs(w http.ResponseWriter, r *http.Request) {
	var urls []string
	if err := json.NewDecoder(r.Body).Decode(&urls); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ожидается JSON-массив URL", h.logger)
		return
	}

	results, failed := h.useCase.AnalyzeImageURLs(r.Context(), urls)
	respondWithJSON(w, http.StatusOK, batchAnalysisResponse{Results: results, Failed: failed}, h.logger)
}

// urlImagesResponse — ответ endpoint'а извлечения URL изображений.
type urlImagesResponse struct {
	Images []string `json:"images"`
	Count  int      `json:"count"`
}

// FetchFromURL — возвращает URL изображений, найденных на веб-странице.
func (h *ImageHandler) FetchFromURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		respondWithError(w, http.StatusBadRequest, "Не указан url", h.logger)
		return
	}

	urls, err := h.useCase.ExtractImageURLs(r.Context(), req.URL)
	if err != nil {
		h.logger.Warn("failed to extract image urls", "url", req.URL, "error", err)
		h.respondWithUseCaseError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, urlImagesResponse{Images: urls, Count: len(urls)}, h.logger)
}

// GetImage — возвращает сохранённый анализ по ID.
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageID")

	analysis, err := h.useCase.GetAnalysis(r.Context(), imageID)
	if err != nil {
		h.respondWithUseCaseError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, analysis, h.logger)
}

// imageListResponse — ответ endpoint'а списка с пагинацией.
type imageListResponse struct {
	Images     interface{} `json:"images"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// ListImages — возвращает страницу анализов, сортировка по created_at
// по убыванию. page_size ограничен сверху 100.
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := h.useCase.ListAnalyses(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list analyses", "error", err)
		respondWithError(w, http.StatusInternalServerError, err.Error(), h.logger)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	respondWithJSON(w, http.StatusOK, imageListResponse{
		Images:     items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, h.logger)
}

// DeleteImage — удаляет анализ: файл из хранилища best-effort,
// запись из бд обязательно.
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageID")

	if _, err := h.useCase.DeleteAnalysis(r.Context(), imageID); err != nil {
		h.respondWithUseCaseError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Изображение успешно удалено",
		"id":      imageID,
	}, h.logger)
}

// batchDeleteResponse — ответ пакетного удаления.
type batchDeleteResponse struct {
	Deleted []string               `json:"deleted"`
	Failed  []usecase.BatchFailure `json:"failed"`
	Count   int                    `json:"count"`
}

// DeleteBatch — удаляет несколько анализов по списку ID.
func (h *ImageHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ожидается JSON-массив ID", h.logger)
		return
	}

	deleted, failed := h.useCase.DeleteAnalysisBatch(r.Context(), ids)

	respondWithJSON(w, http.StatusOK, batchDeleteResponse{
		Deleted: deleted,
		Failed:  failed,
		Count:   len(deleted),
	}, h.logger)
}

// healthResponse — ответ health check: жив ли процесс и заполнена ли
// обязательная конфигурация.
type healthResponse struct {
	Status    string          `json:"status"`
	Service   string          `json:"service"`
	Timestamp string          `json:"timestamp"`
	Config    map[string]bool `json:"config"`
}

// Health — health check процесса и полноты конфигурации.
func (h *ImageHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   "imageqa",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Config: map[string]bool{
			"openai_api_key": h.cfg.OpenAIAPIKey != "",
			"database_url":   h.cfg.DatabaseURL != "",
			"s3_endpoint":    h.cfg.S3Endpoint != "",
			"s3_credentials": h.cfg.S3AccessKeyID != "" && h.cfg.S3SecretAccessKey != "",
		},
	}, h.logger)
}
