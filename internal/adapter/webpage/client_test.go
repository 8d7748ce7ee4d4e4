package webpage

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractImageURLs(t *testing.T) {
	html := `<html><body>
		<img src="/a.jpg" alt="a">
		<img data-src="/lazy/b.png">
		<source srcset="https://x.example/b.png 2x, https://x.example/c.png 1x">
		<img src="/a.jpg">
		<img src="/doc.pdf">
		<img src="/noext">
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(html))
	}))
	defer srv.Close()

	urls, err := NewClient(testLogger()).ExtractImageURLs(context.Background(), srv.URL+"/page")
	if err != nil {
		t.Fatalf("ExtractImageURLs() вернул ошибку: %v", err)
	}

	want := []string{
		srv.URL + "/a.jpg",
		srv.URL + "/lazy/b.png",
		"https://x.example/b.png",
	}
	sort.Strings(urls)
	sort.Strings(want)

	if len(urls) != len(want) {
		t.Fatalf("получено %d URL (%v), ожидается %d (%v)", len(urls), urls, len(want), want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, ожидается %q", i, urls[i], want[i])
		}
	}
}

func TestExtractImageURLs_SrcsetFirstCandidateOnly(t *testing.T) {
	html := `<source srcset="https://x.example/first.webp 640w, https://x.example/second.webp 1280w">`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(html))
	}))
	defer srv.Close()

	urls, err := NewClient(testLogger()).ExtractImageURLs(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ExtractImageURLs() вернул ошибку: %v", err)
	}
	if len(urls) != 1 {
		t.Fatalf("получено %d URL, ожидается 1: %v", len(urls), urls)
	}
	if urls[0] != "https://x.example/first.webp" {
		t.Errorf("urls[0] = %q, ожидается первый кандидат srcset", urls[0])
	}
}

func TestExtractImageURLs_RemoteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(testLogger()).ExtractImageURLs(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("ExtractImageURLs() должен вернуть ошибку при статусе 403")
	}
}

func TestFetchImage(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "image/*,*/*" {
			t.Errorf("Accept = %q, ожидается image/*,*/*", got)
		}
		if got := r.Header.Get("Referer"); got != "" {
			t.Errorf("Referer = %q, для обычного хоста не ожидается", got)
		}
		w.Header().Set("Content-Type", "image/jpeg; charset=binary")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	data, contentType, err := NewClient(testLogger()).FetchImage(context.Background(), srv.URL+"/img.jpg")
	if err != nil {
		t.Fatalf("FetchImage() вернул ошибку: %v", err)
	}
	if len(data) != len(payload) {
		t.Errorf("получено %d байт, ожидается %d", len(data), len(payload))
	}
	if contentType != "image/jpeg" {
		t.Errorf("contentType = %q, ожидается image/jpeg без параметров", contentType)
	}
}

// rewriteTransport направляет все запросы на тестовый сервер,
// сохраняя исходный URL запроса для проверки заголовков.
type rewriteTransport struct {
	target string
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rewritten := req.Clone(req.Context())
	target, err := url.Parse(rt.target)
	if err != nil {
		return nil, err
	}
	rewritten.URL.Scheme = target.Scheme
	rewritten.URL.Host = target.Host
	return http.DefaultTransport.RoundTrip(rewritten)
}

func TestFetchImage_WikimediaReferer(t *testing.T) {
	var gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	c := NewClient(testLogger())
	c.httpClient.Transport = &rewriteTransport{target: srv.URL}

	_, _, err := c.FetchImage(context.Background(), "https://upload.wikimedia.org/img.png")
	if err != nil {
		t.Fatalf("FetchImage() вернул ошибку: %v", err)
	}
	if gotReferer != "https://en.wikipedia.org/" {
		t.Errorf("Referer = %q, для хоста wikimedia ожидается https://en.wikipedia.org/", gotReferer)
	}
}

func TestRefererFor(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"upload.wikimedia.org", "https://en.wikipedia.org/"},
		{"commons.wikimedia.org", "https://en.wikipedia.org/"},
		{"ru.wikipedia.org", "https://en.wikipedia.org/"},
		{"example.com", ""},
		{"wikimedia.org.evil.com", ""},
	}
	for _, tt := range tests {
		if got := refererFor(tt.host); got != tt.want {
			t.Errorf("refererFor(%q) = %q, ожидается %q", tt.host, got, tt.want)
		}
	}
}

func TestFetchImage_DefaultContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil // подавляем авто-детект
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	_, contentType, err := NewClient(testLogger()).FetchImage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchImage() вернул ошибку: %v", err)
	}
	if contentType != "image/jpeg" {
		t.Errorf("contentType = %q, ожидается image/jpeg по умолчанию", contentType)
	}
}

func TestFetchImage_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := NewClient(testLogger()).FetchImage(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("FetchImage() должен вернуть ошибку при статусе 404")
	}
}
