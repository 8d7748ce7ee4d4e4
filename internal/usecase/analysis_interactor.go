package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"imageqa/internal/core/ports"
	"imageqa/internal/domain"
)

// Допустимые content-type загружаемых изображений.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// maxFileSize — максимальный размер изображения (10 MiB).
const maxFileSize = 10 * 1024 * 1024

// analysisUseCase реализует AnalysisUseCase.
type analysisUseCase struct {
	analysisStorage ports.AnalysisStorage
	fileStorage     ports.FileStorage
	vision          ports.VisionAnalyzer
	fetcher         ports.ImageFetcher
	scraper         ports.PageScraper
	logger          *slog.Logger
}

// NewAnalysisUseCase создает новый экземпляр AnalysisUseCase,
// принимает реализации портов.
func NewAnalysisUseCase(
	analysisStorage ports.AnalysisStorage,
	fileStorage ports.FileStorage,
	vision ports.VisionAnalyzer,
	fetcher ports.ImageFetcher,
	scraper ports.PageScraper,
	logger *slog.Logger,
) AnalysisUseCase {
	return &analysisUseCase{
		analysisStorage: analysisStorage,
		fileStorage:     fileStorage,
		vision:          vision,
		fetcher:         fetcher,
		scraper:         scraper,
		logger:          logger,
	}
}

// extensionOf возвращает расширение имени файла (часть после последней
// точки), по умолчанию "jpg".
func extensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx == -1 || idx == len(name)-1 {
		return "jpg"
	}
	return name[idx+1:]
}

// AnalyzeUpload прогоняет один файл через конвейер:
// валидация → загрузка в хранилище → анализ моделью → сохранение в бд.
// При сбое анализа или сохранения загруженный файл удаляется (компенсация).
func (uc *analysisUseCase) AnalyzeUpload(ctx context.Context, data []byte, filename, contentType string) (*domain.ImageAnalysis, error) {
	// 1. Валидация до каких-либо побочных эффектов
	if !allowedContentTypes[contentType] {
		return nil, fmt.Errorf("%w: недопустимый тип файла %q", ErrValidation, contentType)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("%w: файл больше %d МБ", ErrValidation, maxFileSize/(1024*1024))
	}

	if filename == "" {
		filename = "image.jpg"
	}

	// 2. Загрузка в объектное хранилище под свежим ID
	id := uuid.New().String()
	key := fmt.Sprintf("%s.%s", id, extensionOf(filename))

	publicURL, err := uc.fileStorage.UploadFile(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		// Ничего не создано — компенсация не нужна
		return nil, fmt.Errorf("ошибка загрузки в хранилище: %w", err)
	}

	// 3. Анализ vision-моделью
	scores, err := uc.vision.AnalyzeImage(ctx, publicURL)
	if err != nil {
		uc.compensate(ctx, key)
		return nil, fmt.Errorf("ошибка анализа изображения: %w", err)
	}

	// 4. Сохранение результата в бд
	analysis := &domain.ImageAnalysis{
		ID:       id,
		URL:      publicURL,
		Filename: filename,
		Scores:   scores,
	}
	if err := uc.analysisStorage.SaveAnalysis(ctx, analysis); err != nil {
		uc.compensate(ctx, key)
		return nil, fmt.Errorf("ошибка сохранения анализа: %w", err)
	}

	uc.logger.Info("image analyzed successfully",
		"id", id,
		"filename", filename,
		"overall_score", scores.Overall.Score,
	)
	return analysis, nil
}

// compensate удаляет загруженный файл после сбоя следующего шага
// конвейера. Ошибка удаления только логируется: исходная ошибка важнее.
func (uc *analysisUseCase) compensate(ctx context.Context, key string) {
	if err := uc.fileStorage.DeleteFile(ctx, key); err != nil {
		uc.logger.Warn("failed to clean up uploaded file", "key", key, "error", err)
	}
}

// AnalyzeUploadBatch обрабатывает файлы последовательно; сбой одного
// элемента записывается в failed и не прерывает остальные.
func (uc *analysisUseCase) AnalyzeUploadBatch(ctx context.Context, items []UploadItem) ([]domain.ImageAnalysis, []BatchFailure) {
	results := make([]domain.ImageAnalysis, 0, len(items))
	failed := make([]BatchFailure, 0)

	for _, item := range items {
		analysis, err := uc.AnalyzeUpload(ctx, item.Data, item.Filename, item.ContentType)
		if err != nil {
			failed = append(failed, BatchFailure{Filename: item.Filename, Error: err.Error()})
			continue
		}
		results = append(results, *analysis)
	}

	return results, failed
}

// AnalyzeImageURL скачивает изображение по URL и прогоняет его через тот же
// конвейер, что и загруженный файл.
func (uc *analysisUseCase) AnalyzeImageURL(ctx context.Context, rawURL string) (*domain.ImageAnalysis, error) {
	data, contentType, err := uc.fetcher.FetchImage(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	filename := filenameFromURL(rawURL)

	return uc.AnalyzeUpload(ctx, data, filename, contentType)
}

// filenameFromURL возвращает последний сегмент пути URL,
// по умолчанию "image.jpg".
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "image.jpg"
	}
	segments := strings.Split(parsed.Path, "/")
	name := segments[len(segments)-1]
	if name == "" {
		return "image.jpg"
	}
	return name
}

// AnalyzeImageURLs обрабатывает список URL последовательно и независимо.
func (uc *analysisUseCase) AnalyzeImageURLs(ctx context.Context, urls []string) ([]domain.ImageAnalysis, []BatchFailure) {
	results := make([]domain.ImageAnalysis, 0, len(urls))
	failed := make([]BatchFailure, 0)

	for _, rawURL := range urls {
		analysis, err := uc.AnalyzeImageURL(ctx, rawURL)
		if err != nil {
			failed = append(failed, BatchFailure{URL: rawURL, Error: err.Error()})
			continue
		}
		results = append(results, *analysis)
	}

	return results, failed
}

// GetAnalysis возвращает анализ по ID; отсутствие записи — ErrNotFound.
func (uc *analysisUseCase) GetAnalysis(ctx context.Context, id string) (*domain.ImageAnalysis, error) {
	analysis, err := uc.analysisStorage.GetAnalysisByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении анализа: %w", err)
	}
	if analysis == nil {
		return nil, ErrNotFound
	}
	return analysis, nil
}

// ListAnalyses возвращает страницу кратких записей и общее количество.
func (uc *analysisUseCase) ListAnalyses(ctx context.Context, page, pageSize int) ([]domain.ImageListItem, int, error) {
	items, total, err := uc.analysisStorage.ListAnalyses(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка при получении списка анализов: %w", err)
	}
	return items, total, nil
}

// DeleteAnalysis удаляет анализ. Файл из хранилища удаляется best-effort
// (ошибка не мешает удалению записи), запись из бд — обязательно.
func (uc *analysisUseCase) DeleteAnalysis(ctx context.Context, id string) (domain.DeleteOutcome, error) {
	outcome := domain.DeleteOutcome{}

	analysis, err := uc.analysisStorage.GetAnalysisByID(ctx, id)
	if err != nil {
		return outcome, fmt.Errorf("ошибка при получении анализа: %w", err)
	}
	if analysis == nil {
		return outcome, ErrNotFound
	}

	// Расширение восстанавливаем из сохранённого URL
	key := fmt.Sprintf("%s.%s", id, extensionOf(analysis.URL))

	if err := uc.fileStorage.DeleteFile(ctx, key); err != nil {
		uc.logger.Warn("storage delete failed, record will still be removed", "id", id, "error", err)
	} else {
		outcome.StorageDeleted = true
	}

	if err := uc.analysisStorage.DeleteAnalysis(ctx, id); err != nil {
		return outcome, fmt.Errorf("ошибка при удалении записи анализа: %w", err)
	}
	outcome.RecordDeleted = true

	uc.logger.Info("analysis deleted",
		"id", id,
		"storage_deleted", outcome.StorageDeleted,
	)
	return outcome, nil
}

// DeleteAnalysisBatch удаляет анализы по списку ID; элементы независимы.
func (uc *analysisUseCase) DeleteAnalysisBatch(ctx context.Context, ids []string) ([]string, []BatchFailure) {
	deleted := make([]string, 0, len(ids))
	failed := make([]BatchFailure, 0)

	for _, id := range ids {
		if _, err := uc.DeleteAnalysis(ctx, id); err != nil {
			failed = append(failed, BatchFailure{ID: id, Error: err.Error()})
			continue
		}
		deleted = append(deleted, id)
	}

	return deleted, failed
}

// ExtractImageURLs возвращает URL изображений с веб-страницы.
// Ошибки загрузки страницы считаются ошибкой входных данных.
func (uc *analysisUseCase) ExtractImageURLs(ctx context.Context, pageURL string) ([]string, error) {
	urls, err := uc.scraper.ExtractImageURLs(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return urls, nil
}
