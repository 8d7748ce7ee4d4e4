package domain

import (
	"fmt"
	"time"
)

// ScoreDetail представляет оценку изображения по одному критерию:
// балл от 1 до 100 и короткое пояснение модели.
type ScoreDetail struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// ImageScores представляет полную оценку качества изображения.
// Шесть критериев обязательны; Faces заполняется только если
// на изображении есть лица, иначе поле отсутствует (null).
type ImageScores struct {
	Sharpness   ScoreDetail  `json:"sharpness"`
	Lighting    ScoreDetail  `json:"lighting"`
	Composition ScoreDetail  `json:"composition"`
	Color       ScoreDetail  `json:"color"`
	Exposure    ScoreDetail  `json:"exposure"`
	Faces       *ScoreDetail `json:"faces,omitempty"`
	Overall     ScoreDetail  `json:"overall"`
}

// Validate проверяет, что все обязательные оценки присутствуют
// и каждый балл лежит в диапазоне [1, 100].
func (s *ImageScores) Validate() error {
	checks := map[string]ScoreDetail{
		"sharpness":   s.Sharpness,
		"lighting":    s.Lighting,
		"composition": s.Composition,
		"color":       s.Color,
		"exposure":    s.Exposure,
		"overall":     s.Overall,
	}
	for name, d := range checks {
		if err := validateDetail(name, d); err != nil {
			return err
		}
	}
	if s.Faces != nil {
		if err := validateDetail("faces", *s.Faces); err != nil {
			return err
		}
	}
	return nil
}

func validateDetail(name string, d ScoreDetail) error {
	if d.Score < 1 || d.Score > 100 {
		return fmt.Errorf("оценка %q вне диапазона [1,100]: %d", name, d.Score)
	}
	if d.Explanation == "" {
		return fmt.Errorf("оценка %q без пояснения", name)
	}
	return nil
}

// ImageAnalysis представляет результат анализа изображения,
// соответствует таблице image_analyses в бд.
type ImageAnalysis struct {
	ID        string      `json:"id" db:"id"`
	URL       string      `json:"url" db:"url"`
	Filename  string      `json:"filename" db:"filename"`
	Scores    ImageScores `json:"scores"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// ImageListItem — сокращённое представление анализа для списков.
type ImageListItem struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Filename     string    `json:"filename"`
	OverallScore int       `json:"overall_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// DeleteOutcome — результат удаления анализа.
// Удаление из хранилища best-effort, удаление записи из бд обязательно,
// поэтому исходы фиксируются по отдельности.
type DeleteOutcome struct {
	StorageDeleted bool `json:"storage_deleted"`
	RecordDeleted  bool `json:"record_deleted"`
}
