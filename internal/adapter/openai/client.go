// internal/adapter/openai/client.go
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"imageqa/internal/domain"
	"imageqa/internal/util"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// Client представляет клиент для взаимодействия с OpenAI Vision API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewClient создает новый экземпляр Client.
func NewClient(apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
	}
}

// AnalyzeImage отправляет изображение на анализ vision-модели и возвращает
// полный набор оценок. Любая проблема с ответом модели (битый JSON,
// отсутствующий критерий, балл вне диапазона) — единая ошибка анализа,
// частичный результат не возвращается.
func (c *Client) AnalyzeImage(ctx context.Context, imageURL string) (domain.ImageScores, error) {
	if c.apiKey == "" {
		return domain.ImageScores{}, fmt.Errorf("OPENAI_API_KEY не задан")
	}

	body := map[string]any{
		"model": c.model,
		"messages": []any{
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": analysisPrompt},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": imageURL}},
				},
			},
		},
		"max_tokens": 1000,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return domain.ImageScores{}, fmt.Errorf("ошибка сериализации запроса к OpenAI: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return domain.ImageScores{}, fmt.Errorf("ошибка создания запроса к OpenAI: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ImageScores{}, fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return domain.ImageScores{}, fmt.Errorf("openai вернул статус %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return domain.ImageScores{}, fmt.Errorf("ошибка декодирования ответа OpenAI: %w", err)
	}
	if len(raw.Choices) == 0 {
		return domain.ImageScores{}, fmt.Errorf("openai вернул пустой ответ")
	}

	return parseScores(raw.Choices[0].Message.Content)
}

// scoresPayload — структура JSON-ответа модели. Указатели позволяют
// отличить отсутствующий критерий от нулевого.
type scoresPayload struct {
	Sharpness   *domain.ScoreDetail `json:"sharpness"`
	Lighting    *domain.ScoreDetail `json:"lighting"`
	Composition *domain.ScoreDetail `json:"composition"`
	Color       *domain.ScoreDetail `json:"color"`
	Exposure    *domain.ScoreDetail `json:"exposure"`
	Faces       *domain.ScoreDetail `json:"faces"`
	Overall     *domain.ScoreDetail `json:"overall"`
}

// parseScores разбирает текст ответа модели в ImageScores.
// Сначала пробуем распарсить как есть (сняв code fences); если не вышло —
// вырезаем подстроку от первой '{' до последней '}' и пробуем ещё раз.
func parseScores(content string) (domain.ImageScores, error) {
	text := util.StripCodeFences(content)

	var payload scoresPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		extracted := util.ExtractJSONObject(text)
		if err2 := json.Unmarshal([]byte(extracted), &payload); err2 != nil {
			return domain.ImageScores{}, fmt.Errorf("ответ модели не является корректным JSON: %w", err)
		}
	}

	required := map[string]*domain.ScoreDetail{
		"sharpness":   payload.Sharpness,
		"lighting":    payload.Lighting,
		"composition": payload.Composition,
		"color":       payload.Color,
		"exposure":    payload.Exposure,
		"overall":     payload.Overall,
	}
	for name, d := range required {
		if d == nil {
			return domain.ImageScores{}, fmt.Errorf("в ответе модели отсутствует критерий %q", name)
		}
	}

	scores := domain.ImageScores{
		Sharpness:   *payload.Sharpness,
		Lighting:    *payload.Lighting,
		Composition: *payload.Composition,
		Color:       *payload.Color,
		Exposure:    *payload.Exposure,
		Faces:       payload.Faces,
		Overall:     *payload.Overall,
	}
	if err := scores.Validate(); err != nil {
		return domain.ImageScores{}, fmt.Errorf("некорректные оценки в ответе модели: %w", err)
	}
	return scores, nil
}
