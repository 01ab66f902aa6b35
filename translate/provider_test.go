package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(id, baseURL string) *Client {
	prov, err := ResolveProvider(id, Provider{BaseURL: baseURL, APIKey: "test-key", Timeout: 5 * time.Second})
	if err != nil {
		panic(err)
	}
	c := NewClient(prov)
	c.RetryInterval = time.Millisecond
	return c
}

func TestClientAnthropicRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("anthropic-version = %q", got)
		}

		var req struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			System    string `json:"system"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != DefaultModel || req.MaxTokens != 1000 || req.System != "" {
			t.Errorf("unexpected request: %s", body)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" ||
			!strings.HasPrefix(req.Messages[0].Content, "Translate the following English to French.") ||
			!strings.Contains(req.Messages[0].Content, "\nSave changes\n") {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		io.WriteString(w, `{"content":[{"type":"text","text":"  Enregistrer les modifications \n"}]}`)
	}))
	defer srv.Close()

	got, err := newTestClient(ProviderAnthropic, srv.URL).Translate(context.Background(), "Save changes", "en", "fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Enregistrer les modifications" {
		t.Fatalf("Translate() = %q", got)
	}
}

func TestClientProviderFormats(t *testing.T) {
	tests := []struct {
		id       string
		path     string
		header   string
		value    string
		response string
	}{
		{
			id: ProviderOpenAI, path: "/chat/completions",
			header: "Authorization", value: "Bearer test-key",
			response: `{"choices":[{"message":{"content":"مرحبا"}}]}`,
		},
		{
			id: ProviderGoogle, path: "/v1beta/models/gemini-2.0-flash:generateContent",
			header: "x-goog-api-key", value: "test-key",
			response: `{"candidates":[{"content":{"parts":[{"text":"مرحبا"}]}}]}`,
		},
		{
			id: ProviderOllama, path: "/chat/completions",
			header: "Authorization", value: "Bearer test-key",
			response: `{"choices":[{"message":{"content":"مرحبا"}}]}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tc.path {
					t.Errorf("path = %s, want %s", r.URL.Path, tc.path)
				}
				if got := r.Header.Get(tc.header); got != tc.value {
					t.Errorf("%s = %q, want %q", tc.header, got, tc.value)
				}
				io.WriteString(w, tc.response)
			}))
			defer srv.Close()

			got, err := newTestClient(tc.id, srv.URL).Translate(context.Background(), "Hello there", "en", "ar")
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			if got != "مرحبا" {
				t.Fatalf("Translate() = %q", got)
			}
		})
	}
}

func TestClientRetries(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		maxRetries int
		wantErr    bool
		wantCalls  int32
	}{
		{name: "server error then success", statuses: []int{500, 200}, wantCalls: 2},
		{name: "rate limited then success", statuses: []int{429, 200}, wantCalls: 2},
		{name: "client error is not retried", statuses: []int{400}, wantErr: true, wantCalls: 1},
		{name: "retries exhausted", statuses: []int{503, 503, 503, 503}, maxRetries: 2, wantErr: true, wantCalls: 3},
		{name: "retries disabled", statuses: []int{503, 200}, maxRetries: -1, wantErr: true, wantCalls: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				status := tc.statuses[len(tc.statuses)-1]
				if int(n) <= len(tc.statuses) {
					status = tc.statuses[n-1]
				}
				if status == http.StatusTooManyRequests {
					w.Header().Set("Retry-After", "0")
				}
				w.WriteHeader(status)
				if status == http.StatusOK {
					io.WriteString(w, `{"content":[{"type":"text","text":"ok"}]}`)
					return
				}
				io.WriteString(w, `{"error":{"message":"nope"}}`)
			}))
			defer srv.Close()

			c := newTestClient(ProviderAnthropic, srv.URL)
			c.MaxRetries = tc.maxRetries
			_, err := c.Translate(context.Background(), "Some text", "en", "fr")
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got := atomic.LoadInt32(&calls); got != tc.wantCalls {
				t.Fatalf("calls = %d, want %d", got, tc.wantCalls)
			}
		})
	}
}

func TestClientHonoursCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestClient(ProviderAnthropic, srv.URL)
	if _, err := c.Translate(ctx, "Some text", "en", "fr"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestExtractResponseText(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "anthropic", body: `{"content":[{"type":"thinking"},{"type":"text","text":"a"}]}`, want: "a"},
		{name: "openai", body: `{"choices":[{"message":{"content":"b"}}]}`, want: "b"},
		{name: "gemini", body: `{"candidates":[{"content":{"parts":[{"text":"c"}]}}]}`, want: "c"},
		{name: "api error", body: `{"error":{"message":"invalid key"}}`, wantErr: true},
		{name: "unknown shape", body: `{"foo":"bar"}`, wantErr: true},
		{name: "not json", body: `<html>`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractResponseText([]byte(tc.body))
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseRetryDelay(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "7")
	if got := parseRetryDelay(h, nil); got != 7*time.Second {
		t.Errorf("Retry-After header: got %v", got)
	}

	body := []byte(`{"error":{"details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"30s"}]}}`)
	if got := parseRetryDelay(http.Header{}, body); got != 35*time.Second {
		t.Errorf("RetryInfo: got %v", got)
	}

	if got := parseRetryDelay(http.Header{}, []byte(`{}`)); got != defaultRetryDelay {
		t.Errorf("default: got %v", got)
	}
}

func TestResolveProvider(t *testing.T) {
	prov, err := ResolveProvider(ProviderAnthropic, Provider{Model: "claude-x", Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if prov.Model != "claude-x" || prov.Timeout != time.Second || prov.BaseURL != "https://api.anthropic.com/v1" {
		t.Fatalf("unexpected provider: %+v", prov)
	}
	if !prov.NeedsKey() {
		t.Error("anthropic needs a key")
	}

	ollama, err := ResolveProvider(ProviderOllama, Provider{})
	if err != nil || ollama.NeedsKey() {
		t.Fatalf("ollama: %+v, %v", ollama, err)
	}

	if _, err := ResolveProvider("nope", Provider{}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRenderPrompt(t *testing.T) {
	got := RenderPrompt("", "ar", "zh", "سلام")
	if !strings.HasPrefix(got, "Translate the following Arabic to Simplified Chinese.") {
		t.Errorf("unexpected prompt head: %q", got)
	}
	if !strings.Contains(got, "Maintain Islamic terminology accurately") || !strings.Contains(got, "\nسلام\n") {
		t.Errorf("unexpected prompt: %q", got)
	}

	custom := RenderPrompt("{{sourceLang}}|{{targetLang}}|{{text}}", "en", "fr", "Hi")
	if custom != "English|French|Hi" {
		t.Errorf("custom prompt = %q", custom)
	}
}

func TestIsQuranicVerse(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"إِنَّ اللَّهَ يُحِبُّ التَّوَّابِينَ", true},
		{"لَا تَقْنَطُوا مِن رَّحْمَةِ", true},
		{"بِسْمِ", true}, // diacritics above 30%
		{"مرحبا بكم في الموقع", false},
		{"سبحان الله", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsQuranicVerse(tc.text); got != tc.want {
			t.Errorf("IsQuranicVerse(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}
