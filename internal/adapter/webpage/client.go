// internal/adapter/webpage/client.go
package webpage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Расширения изображений, которые считаем пригодными для анализа.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// Паттерны для извлечения URL изображений из HTML.
// Для srcset берётся только первый кандидат (до запятой/пробела).
var imgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)<img[^>]+data-src=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)<source[^>]+srcset=["']([^"']+)["']`),
}

// Client представляет клиент для скачивания веб-страниц и изображений
// из внешней сети. Все запросы ограничены таймаутом 30 секунд.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient создает новый экземпляр Client.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// ExtractImageURLs скачивает HTML-страницу и возвращает абсолютные URL
// изображений с неё. Порядок результата не гарантируется (дубликаты
// схлопываются через set).
func (c *Client) ExtractImageURLs(ctx context.Context, pageURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("некорректный URL страницы: %w", err)
	}
	req.Header.Set("User-Agent", "curl/8.0")
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить страницу: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("не удалось загрузить страницу: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	htmlBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать страницу: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("некорректный URL страницы: %w", err)
	}

	urls := extractFromHTML(base, string(htmlBytes))

	c.logger.Info("image urls extracted from page",
		"page", pageURL,
		"count", len(urls),
	)
	return urls, nil
}

// extractFromHTML применяет паттерны к HTML и собирает set абсолютных URL
// с разрешёнными расширениями.
func extractFromHTML(base *url.URL, html string) []string {
	seen := make(map[string]struct{})

	for _, pattern := range imgPatterns {
		for _, match := range pattern.FindAllStringSubmatch(html, -1) {
			candidate := firstSrcsetCandidate(match[1])

			ref, err := url.Parse(strings.TrimSpace(candidate))
			if err != nil {
				continue
			}
			abs := base.ResolveReference(ref)

			if !hasAllowedExtension(abs.Path) {
				continue
			}
			seen[abs.String()] = struct{}{}
		}
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	return urls
}

// firstSrcsetCandidate возвращает первый URL из значения srcset:
// часть до запятой, без дескриптора ("2x" и т.п.) после пробела.
func firstSrcsetCandidate(value string) string {
	value = strings.Split(value, ",")[0]
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// refererFor возвращает Referer для хоста изображения.
// Домены Wikimedia без него отдают 403.
func refererFor(host string) string {
	if strings.HasSuffix(host, "wikimedia.org") || strings.HasSuffix(host, "wikipedia.org") {
		return "https://en.wikipedia.org/"
	}
	return ""
}

func hasAllowedExtension(path string) bool {
	path = strings.ToLower(path)
	idx := strings.LastIndex(path, ".")
	if idx == -1 {
		return false
	}
	return allowedExtensions[path[idx:]]
}

// FetchImage скачивает изображение по URL и возвращает содержимое
// и content-type (без параметров). Для доменов Wikimedia подставляется
// Referer — без него они отдают 403.
func (c *Client) FetchImage(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("некорректный URL изображения: %w", err)
	}
	req.Header.Set("User-Agent", "curl/8.0")
	req.Header.Set("Accept", "image/*,*/*")

	if parsed, err := url.Parse(rawURL); err == nil {
		if referer := refererFor(parsed.Hostname()); referer != "" {
			req.Header.Set("Referer", referer)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("не удалось скачать изображение: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("не удалось скачать изображение: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("не удалось прочитать изображение: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	contentType = strings.TrimSpace(strings.Split(contentType, ";")[0])

	return data, contentType, nil
}
