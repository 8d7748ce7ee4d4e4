package ports

import (
	"context"

	"imageqa/internal/domain"
)

// VisionAnalyzer определяет интерфейс для оценки качества изображения
// vision-моделью. Модель недетерминирована: два вызова для одного
// изображения могут вернуть разные оценки.
type VisionAnalyzer interface {
	// AnalyzeImage отправляет изображение по публичному URL на анализ
	// и возвращает полный набор оценок либо ошибку — частичных
	// результатов не бывает.
	AnalyzeImage(ctx context.Context, imageURL string) (domain.ImageScores, error)
}

// ImageFetcher определяет интерфейс для скачивания изображения по URL
// из внешней сети.
type ImageFetcher interface {
	// FetchImage скачивает изображение и возвращает содержимое
	// и content-type (без параметров после ";").
	FetchImage(ctx context.Context, rawURL string) (data []byte, contentType string, err error)
}

// PageScraper определяет интерфейс для извлечения URL изображений
// с веб-страницы (best-effort).
type PageScraper interface {
	ExtractImageURLs(ctx context.Context, pageURL string) ([]string, error)
}
