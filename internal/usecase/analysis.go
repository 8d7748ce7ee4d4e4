package usecase

import (
	"context"

	"imageqa/internal/domain"
)

// UploadItem — один файл из multipart-загрузки.
type UploadItem struct {
	Data        []byte
	Filename    string
	ContentType string
}

// BatchFailure — неуспешный элемент пакетной операции.
// Заполняется то поле-идентификатор, которое есть у элемента.
type BatchFailure struct {
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url,omitempty"`
	ID       string `json:"id,omitempty"`
	Error    string `json:"error"`
}

// AnalysisUseCase определяет бизнес-логику анализа изображений:
// конвейер валидация → загрузка → анализ → сохранение с компенсирующей
// очисткой хранилища при сбое после загрузки.
type AnalysisUseCase interface {
	// AnalyzeUpload прогоняет один загруженный файл через конвейер.
	AnalyzeUpload(ctx context.Context, data []byte, filename, contentType string) (*domain.ImageAnalysis, error)

	// AnalyzeUploadBatch обрабатывает файлы последовательно и независимо:
	// сбой одного элемента не прерывает остальные.
	AnalyzeUploadBatch(ctx context.Context, items []UploadItem) ([]domain.ImageAnalysis, []BatchFailure)

	// AnalyzeImageURL скачивает изображение по URL и прогоняет через конвейер.
	AnalyzeImageURL(ctx context.Context, rawURL string) (*domain.ImageAnalysis, error)

	// AnalyzeImageURLs обрабатывает список URL последовательно и независимо.
	AnalyzeImageURLs(ctx context.Context, urls []string) ([]domain.ImageAnalysis, []BatchFailure)

	// GetAnalysis возвращает анализ по ID (ErrNotFound, если записи нет).
	GetAnalysis(ctx context.Context, id string) (*domain.ImageAnalysis, error)

	// ListAnalyses возвращает страницу кратких записей и общее количество.
	ListAnalyses(ctx context.Context, page, pageSize int) ([]domain.ImageListItem, int, error)

	// DeleteAnalysis удаляет анализ: файл из хранилища best-effort,
	// запись из бд обязательно. Исходы — в DeleteOutcome.
	DeleteAnalysis(ctx context.Context, id string) (domain.DeleteOutcome, error)

	// DeleteAnalysisBatch удаляет анализы по списку ID независимо друг
	// от друга; возвращает удалённые ID и неуспешные элементы.
	DeleteAnalysisBatch(ctx context.Context, ids []string) ([]string, []BatchFailure)

	// ExtractImageURLs возвращает URL изображений с веб-страницы.
	ExtractImageURLs(ctx context.Context, pageURL string) ([]string, error)
}
