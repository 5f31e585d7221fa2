package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lablink-dev/figgen/pkg/cache"
	figerrors "github.com/lablink-dev/figgen/pkg/errors"
	"github.com/lablink-dev/figgen/pkg/httputil"
	"github.com/lablink-dev/figgen/pkg/observability"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(c, "test:", time.Hour, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilBackend(t *testing.T) {
	// Nil backend disables caching but the client still works
	client := NewClient(nil, "test:", time.Hour, nil)

	fetchCount := 0
	var value string
	fetch := func() error {
		fetchCount++
		value = "fetched"
		return nil
	}

	for i := 0; i < 2; i++ {
		if err := client.Cached(context.Background(), "key", false, &value, fetch); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
	}
	if fetchCount != 2 {
		t.Errorf("fetch count = %d, want 2 (nothing cached with nil backend)", fetchCount)
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)
	client.http = server.Client()

	var resp response
	err := client.Get(context.Background(), server.URL, &resp)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeaders(t *testing.T) {
	var receivedCustom, receivedDefault string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedCustom = r.Header.Get("X-Custom")
		receivedDefault = r.Header.Get("X-Default")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, map[string]string{"X-Default": "default"})
	client.http = server.Client()

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Custom": "custom"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if receivedCustom != "custom" {
		t.Errorf("custom header = %q, want %q", receivedCustom, "custom")
	}
	if receivedDefault != "default" {
		t.Errorf("default header = %q, want %q", receivedDefault, "default")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var receivedHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeader = r.Header.Get("X-Override")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, map[string]string{"X-Override": "default"})
	client.http = server.Client()

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if receivedHeader != "overridden" {
		t.Errorf("header = %q, want %q", receivedHeader, "overridden")
	}
}

func TestClientGetText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("package:\n  name: numpy\n"))
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)
	client.http = server.Client()

	text, err := client.GetText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetText() error: %v", err)
	}
	if text != "package:\n  name: numpy\n" {
		t.Errorf("GetText() = %q, want raw body", text)
	}
}

func TestClientGetInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)
	client.http = server.Client()

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if err == nil {
		t.Fatal("Get() should return error for non-JSON body")
	}
	if figerrors.GetCode(err) != figerrors.ErrCodeParse {
		t.Errorf("Get() error code = %q, want PARSE_ERROR", figerrors.GetCode(err))
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)
	client.http = server.Client()

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestClientGet500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)
	client.http = server.Client()

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if err == nil {
		t.Error("Get() should return error for 500")
	}

	var retryErr *httputil.RetryableError
	if !errors.As(err, &retryErr) {
		t.Errorf("Get() error should be RetryableError, got %T", err)
	}
}

func TestClientCached(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)

	fetchCount := 0
	type testData struct {
		Value string `json:"value"`
	}
	var value testData

	fetch := func() error {
		fetchCount++
		value = testData{Value: "fetched"}
		return nil
	}

	// First call fetches and populates the cache
	if err := client.Cached(context.Background(), "key", false, &value, fetch); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Fatalf("fetch count = %d, want 1", fetchCount)
	}

	// Second call hits the cache
	value = testData{}
	if err := client.Cached(context.Background(), "key", false, &value, fetch); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1 (second call should hit cache)", fetchCount)
	}
	if value.Value != "fetched" {
		t.Errorf("cached value = %q, want %q", value.Value, "fetched")
	}
}

func TestClientCachedRefresh(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)

	fetchCount := 0
	var value string
	fetch := func() error {
		fetchCount++
		value = "fetched"
		return nil
	}

	// Populate the cache, then refresh bypasses it
	for i := 0; i < 2; i++ {
		if err := client.Cached(context.Background(), "key", true, &value, fetch); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
	}
	if fetchCount != 2 {
		t.Errorf("fetch count = %d, want 2 (refresh should always fetch)", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)

	var value string
	fetchCount := 0
	fetch := func() error {
		fetchCount++
		return ErrNotFound // Non-retryable error
	}

	err := client.Cached(context.Background(), "error-key", false, &value, fetch)
	if err == nil {
		t.Error("Cached() should return error when fetch fails")
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1 (not-found is not retried)", fetchCount)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantErr    bool
		wantType   error
		isRetryErr bool
	}{
		{
			name:    "200 OK",
			code:    200,
			wantErr: false,
		},
		{
			name:     "404 Not Found",
			code:     404,
			wantErr:  true,
			wantType: ErrNotFound,
		},
		{
			name:       "429 Too Many Requests",
			code:       429,
			wantErr:    true,
			isRetryErr: true,
		},
		{
			name:       "500 Internal Server Error",
			code:       500,
			wantErr:    true,
			isRetryErr: true,
		},
		{
			name:       "502 Bad Gateway",
			code:       502,
			wantErr:    true,
			isRetryErr: true,
		},
		{
			name:       "503 Service Unavailable",
			code:       503,
			wantErr:    true,
			isRetryErr: true,
		},
		{
			name:    "400 Bad Request",
			code:    400,
			wantErr: true,
		},
		{
			name:    "403 Forbidden",
			code:    403,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)

			if tt.wantErr {
				if err == nil {
					t.Error("checkStatus() should return error")
				}
				if tt.wantType != nil && !errors.Is(err, tt.wantType) {
					t.Errorf("checkStatus() error = %v, want %v", err, tt.wantType)
				}
				if tt.isRetryErr {
					var retryErr *httputil.RetryableError
					if !errors.As(err, &retryErr) {
						t.Errorf("checkStatus() error should be RetryableError, got %T", err)
					}
				}
			} else {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestNormalizePkgName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Package", "package"},
		{"underscore to dash", "my_package", "my-package"},
		{"trim spaces", "  package  ", "package"},
		{"combined", "  My_Package  ", "my-package"},
		{"empty", "", ""},
		{"already normalized", "my-package", "my-package"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePkgName(tt.input); got != tt.want {
				t.Errorf("NormalizePkgName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient()
	if client == nil {
		t.Fatal("NewHTTPClient() returned nil")
	}
	if client.Timeout != httpTimeout {
		t.Errorf("Timeout = %v, want %v", client.Timeout, httpTimeout)
	}
}

type countingHTTPHooks struct {
	observability.NoopHTTPHooks
	requests  int
	responses int
}

func (h *countingHTTPHooks) OnRequest(context.Context, string, string, string) { h.requests++ }
func (h *countingHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {
	h.responses++
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits   int
	misses int
	sets   int
}

func (h *countingCacheHooks) OnHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnSet(context.Context, string, int) { h.sets++ }

func TestClientEmitsObservabilityEvents(t *testing.T) {
	defer observability.Reset()

	httpEvents := &countingHTTPHooks{}
	cacheEvents := &countingCacheHooks{}
	observability.SetHTTPHooks(httpEvents)
	observability.SetCacheHooks(cacheEvents)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)
	client.http = server.Client()

	var resp map[string]string
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if httpEvents.requests != 1 || httpEvents.responses != 1 {
		t.Errorf("http events = %d requests, %d responses, want 1 and 1",
			httpEvents.requests, httpEvents.responses)
	}

	var value string
	fetch := func() error {
		value = "fetched"
		return nil
	}
	for i := 0; i < 2; i++ {
		if err := client.Cached(context.Background(), "key", false, &value, fetch); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
	}
	if cacheEvents.misses != 1 || cacheEvents.sets != 1 || cacheEvents.hits != 1 {
		t.Errorf("cache events = %d misses, %d sets, %d hits, want 1 each",
			cacheEvents.misses, cacheEvents.sets, cacheEvents.hits)
	}
}
