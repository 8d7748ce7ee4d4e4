package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"imageqa/internal/domain"
)

// PostgresStorage реализует ports.AnalysisStorage поверх PostgreSQL.
type PostgresStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresStorage(db *sqlx.DB, logger *slog.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, logger: logger}
}

// analysisRow — строка таблицы image_analyses. Scores хранится как JSONB
// и разворачивается в domain.ImageScores отдельно.
type analysisRow struct {
	ID        string          `db:"id"`
	URL       string          `db:"url"`
	Filename  string          `db:"filename"`
	Scores    json.RawMessage `db:"scores"`
	CreatedAt time.Time       `db:"created_at"`
}

// SaveAnalysis сохраняет запись анализа в бд. Проставляет CreatedAt,
// так что вызывающему не нужно перечитывать запись.
func (s *PostgresStorage) SaveAnalysis(ctx context.Context, analysis *domain.ImageAnalysis) error {
	start := time.Now()

	analysis.CreatedAt = time.Now().UTC()

	scoresJSON, err := json.Marshal(analysis.Scores)
	if err != nil {
		return fmt.Errorf("ошибка сериализации оценок: %w", err)
	}

	row := analysisRow{
		ID:        analysis.ID,
		URL:       analysis.URL,
		Filename:  analysis.Filename,
		Scores:    scoresJSON,
		CreatedAt: analysis.CreatedAt,
	}

	query := `
	INSERT INTO image_analyses (id, url, filename, scores, created_at)
	VALUES (:id, :url, :filename, :scores, :created_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		s.logger.Error("failed to save analysis", "id", analysis.ID, "error", err)
		return fmt.Errorf("ошибка при сохранении анализа: %w", err)
	}

	s.logger.Info("analysis saved successfully",
		"id", analysis.ID,
		"filename", analysis.Filename,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetAnalysisByID получает анализ по ID. Отсутствие записи — не ошибка:
// возвращается (nil, nil).
func (s *PostgresStorage) GetAnalysisByID(ctx context.Context, id string) (*domain.ImageAnalysis, error) {
	start := time.Now()

	var row analysisRow
	query := `SELECT id, url, filename, scores, created_at FROM image_analyses WHERE id = $1 LIMIT 1`

	err := s.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("analysis not found", "id", id)
			return nil, nil
		}
		s.logger.Error("failed to get analysis by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении анализа по ID: %w", err)
	}

	var scores domain.ImageScores
	if err := json.Unmarshal(row.Scores, &scores); err != nil {
		return nil, fmt.Errorf("ошибка чтения оценок анализа %s: %w", id, err)
	}

	s.logger.Info("analysis retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &domain.ImageAnalysis{
		ID:        row.ID,
		URL:       row.URL,
		Filename:  row.Filename,
		Scores:    scores,
		CreatedAt: row.CreatedAt,
	}, nil
}

// ListAnalyses возвращает страницу кратких записей (сортировка по created_at
// по убыванию) и общее количество записей вне зависимости от страницы.
func (s *PostgresStorage) ListAnalyses(ctx context.Context, page, pageSize int) ([]domain.ImageListItem, int, error) {
	start := time.Now()

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT count(*) FROM image_analyses`); err != nil {
		s.logger.Error("failed to count analyses", "error", err)
		return nil, 0, fmt.Errorf("ошибка при подсчёте записей: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
	SELECT id, url, filename, scores, created_at FROM image_analyses
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2
	`

	var rows []analysisRow
	if err := s.db.SelectContext(ctx, &rows, query, pageSize, offset); err != nil {
		s.logger.Error("failed to list analyses", "page", page, "page_size", pageSize, "error", err)
		return nil, 0, fmt.Errorf("ошибка при получении списка анализов: %w", err)
	}

	items := make([]domain.ImageListItem, 0, len(rows))
	for _, row := range rows {
		var scores domain.ImageScores
		if err := json.Unmarshal(row.Scores, &scores); err != nil {
			// Битый блок оценок не должен ронять весь список
			s.logger.Warn("skipping analysis with unreadable scores", "id", row.ID, "error", err)
			continue
		}
		items = append(items, domain.ImageListItem{
			ID:           row.ID,
			URL:          row.URL,
			Filename:     row.Filename,
			OverallScore: scores.Overall.Score,
			CreatedAt:    row.CreatedAt,
		})
	}

	s.logger.Info("listed analyses successfully",
		"page", page,
		"page_size", pageSize,
		"count", len(items),
		"total", total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return items, total, nil
}

// DeleteAnalysis удаляет запись по ID. Отсутствие записи не считается
// ошибкой — удаление идемпотентно.
func (s *PostgresStorage) DeleteAnalysis(ctx context.Context, id string) error {
	start := time.Now()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM image_analyses WHERE id = $1`, id); err != nil {
		s.logger.Error("failed to delete analysis", "id", id, "error", err)
		return fmt.Errorf("ошибка при удалении анализа: %w", err)
	}

	s.logger.Info("analysis deleted",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
