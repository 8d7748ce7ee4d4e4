package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const validModelJSON = `{
	"sharpness": {"score": 85, "explanation": "Sharp focus"},
	"lighting": {"score": 78, "explanation": "Balanced"},
	"composition": {"score": 90, "explanation": "Good framing"},
	"color": {"score": 82, "explanation": "Accurate"},
	"exposure": {"score": 75, "explanation": "Slightly dark"},
	"faces": null,
	"overall": {"score": 82, "explanation": "Good quality"}
}`

// newMockOpenAIServer создаёт тестовый сервер, имитирующий chat completions
// endpoint. content — текст, который модель «вернула».
func newMockOpenAIServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("метод запроса = %s, ожидается POST", r.Method)
		}
		if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
			t.Errorf("Authorization = %q, ожидается Bearer-токен", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(serverURL string) *Client {
	c := NewClient("sk-test", "gpt-4o")
	c.baseURL = serverURL
	return c
}

func TestAnalyzeImage_PlainJSON(t *testing.T) {
	srv := newMockOpenAIServer(t, validModelJSON)
	defer srv.Close()

	scores, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "http://example.com/a.jpg")
	if err != nil {
		t.Fatalf("AnalyzeImage() вернул ошибку: %v", err)
	}
	if scores.Overall.Score != 82 {
		t.Errorf("overall.score = %d, ожидается 82", scores.Overall.Score)
	}
	if scores.Faces != nil {
		t.Error("faces должен отсутствовать при null в ответе модели")
	}
}

func TestAnalyzeImage_FencedJSON(t *testing.T) {
	fenced := "```json\n" + validModelJSON + "\n```"
	srv := newMockOpenAIServer(t, fenced)
	defer srv.Close()

	scores, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "http://example.com/a.jpg")
	if err != nil {
		t.Fatalf("AnalyzeImage() не справился с code fences: %v", err)
	}
	if scores.Sharpness.Score != 85 {
		t.Errorf("sharpness.score = %d, ожидается 85", scores.Sharpness.Score)
	}
}

func TestAnalyzeImage_SurroundingText(t *testing.T) {
	// Модель добавила текст вокруг JSON — толерантный парсер должен
	// вырезать объект от первой '{' до последней '}'.
	noisy := "Here is my assessment:\n" + validModelJSON + "\nHope this helps!"
	srv := newMockOpenAIServer(t, noisy)
	defer srv.Close()

	scores, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "http://example.com/a.jpg")
	if err != nil {
		t.Fatalf("AnalyzeImage() не справился с текстом вокруг JSON: %v", err)
	}
	if scores.Lighting.Score != 78 {
		t.Errorf("lighting.score = %d, ожидается 78", scores.Lighting.Score)
	}
}

func TestAnalyzeImage_FacesPresent(t *testing.T) {
	withFaces := strings.Replace(validModelJSON,
		`"faces": null`,
		`"faces": {"score": 64, "explanation": "Face slightly blurred"}`, 1)
	srv := newMockOpenAIServer(t, withFaces)
	defer srv.Close()

	scores, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "http://example.com/a.jpg")
	if err != nil {
		t.Fatalf("AnalyzeImage() вернул ошибку: %v", err)
	}
	if scores.Faces == nil {
		t.Fatal("faces должен присутствовать")
	}
	if scores.Faces.Score != 64 {
		t.Errorf("faces.score = %d, ожидается 64", scores.Faces.Score)
	}
}

func TestAnalyzeImage_OutOfRangeScore(t *testing.T) {
	bad := strings.Replace(validModelJSON, `"score": 82, "explanation": "Good quality"`,
		`"score": 150, "explanation": "Good quality"`, 1)
	srv := newMockOpenAIServer(t, bad)
	defer srv.Close()

	if _, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "http://example.com/a.jpg"); err == nil {
		t.Fatal("AnalyzeImage() должен отклонять балл вне [1,100]")
	}
}

func TestAnalyzeImage_MissingCriterion(t *testing.T) {
	bad := strings.Replace(validModelJSON, `"composition": {"score": 90, "explanation": "Good framing"},`, "", 1)
	srv := newMockOpenAIServer(t, bad)
	defer srv.Close()

	if _, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "http://example.com/a.jpg"); err == nil {
		t.Fatal("AnalyzeImage() должен отклонять ответ без обязательного критерия")
	}
}

func TestAnalyzeImage_MalformedJSON(t *testing.T) {
	srv := newMockOpenAIServer(t, "sorry, I cannot analyze this image")
	defer srv.Close()

	if _, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "http://example.com/a.jpg"); err == nil {
		t.Fatal("AnalyzeImage() должен вернуть ошибку для не-JSON ответа")
	}
}

func TestAnalyzeImage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limit"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AnalyzeImage(context.Background(), "http://example.com/a.jpg")
	if err == nil {
		t.Fatal("AnalyzeImage() должен вернуть ошибку при не-200 статусе")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("ошибка %q должна содержать статус 429", err)
	}
}

func TestAnalyzeImage_EmptyAPIKey(t *testing.T) {
	c := NewClient("", "gpt-4o")
	if _, err := c.AnalyzeImage(context.Background(), "http://example.com/a.jpg"); err == nil {
		t.Fatal("AnalyzeImage() без API-ключа должен вернуть ошибку")
	}
}
