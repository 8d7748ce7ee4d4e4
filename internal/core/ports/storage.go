package ports

import (
	"context"
	"io"

	"imageqa/internal/domain"
)

// AnalysisStorage определяет методы для взаимодействия с хранилищем
// результатов анализа (PostgreSQL).
type AnalysisStorage interface {
	// SaveAnalysis сохраняет запись анализа и проставляет CreatedAt.
	SaveAnalysis(ctx context.Context, analysis *domain.ImageAnalysis) error

	// GetAnalysisByID возвращает анализ по ID.
	// Если запись не найдена, возвращает (nil, nil) — это не ошибка.
	GetAnalysisByID(ctx context.Context, id string) (*domain.ImageAnalysis, error)

	// ListAnalyses возвращает страницу кратких записей (сортировка по
	// created_at по убыванию) и общее количество записей.
	ListAnalyses(ctx context.Context, page, pageSize int) ([]domain.ImageListItem, int, error)

	// DeleteAnalysis удаляет запись по ID. Отсутствие записи не ошибка.
	DeleteAnalysis(ctx context.Context, id string) error
}

// FileStorage определяет интерфейс для работы с файловым хранилищем (AWS S3, MinIO).
type FileStorage interface {
	// UploadFile загружает файл в хранилище и возвращает его публичный URL.
	// `key` — уникальное имя файла в хранилище (например, "{uuid}.jpg").
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)

	// DeleteFile удаляет файл из хранилища по его ключу.
	DeleteFile(ctx context.Context, key string) error
}
