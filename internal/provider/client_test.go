package provider_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/concall/internal/provider"
	"github.com/JaimeStill/concall/pkg/formatting"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, srv *httptest.Server, apiKey string) *provider.Client {
	t.Helper()
	cfg := &provider.Config{BaseURL: srv.URL, APIKey: apiKey}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return provider.New(cfg, discardLogger())
}

func envelope(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	})
	return string(b)
}

func TestClientModelAndEndpoint(t *testing.T) {
	cfg := &provider.Config{BaseURL: "https://generativelanguage.googleapis.com/v1/", APIKey: "k"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	c := provider.New(cfg, discardLogger())

	if c.Model() != provider.DefaultModel {
		t.Errorf("model = %s, want %s", c.Model(), provider.DefaultModel)
	}
	want := "https://generativelanguage.googleapis.com/v1/models/gemini-2.5-flash:generateContent"
	if c.Endpoint() != want {
		t.Errorf("endpoint = %s, want %s", c.Endpoint(), want)
	}
}

func TestSummarizeRequestShape(t *testing.T) {
	var (
		gotPath   string
		gotKey    string
		gotMethod string
		gotBody   map[string]any
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, envelope(`{"company":"Acme"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv, "secret")
	if _, err := c.Summarize(context.Background(), "transcript body"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %s", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("api key header = %q", gotKey)
	}

	gen, _ := gotBody["generationConfig"].(map[string]any)
	if gen["temperature"] != float64(0) {
		t.Errorf("temperature = %v, want 0", gen["temperature"])
	}
	if gen["maxOutputTokens"] != float64(3000) {
		t.Errorf("maxOutputTokens = %v, want 3000", gen["maxOutputTokens"])
	}

	contents, _ := gotBody["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("contents length = %d, want 1", len(contents))
	}
	first := contents[0].(map[string]any)
	if first["role"] != "user" {
		t.Errorf("role = %v, want user", first["role"])
	}
	text := first["parts"].([]any)[0].(map[string]any)["text"].(string)
	if !strings.HasSuffix(text, "transcript body") {
		t.Error("prompt should end with the transcript")
	}
}

func TestSummarizeParsesFencedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, envelope("```json\n{\"company\":\"Acme\",\"quarter\":\"Q1\"}\n```"))
	}))
	defer srv.Close()

	payload, err := newClient(t, srv, "k").Summarize(context.Background(), "t")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T, want map", payload)
	}
	if obj["company"] != "Acme" || obj["quarter"] != "Q1" {
		t.Errorf("payload = %v", obj)
	}
}

func TestSummarizeRecoversTrailingText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, envelope(`{"company":"Acme"} trailing commentary`))
	}))
	defer srv.Close()

	payload, err := newClient(t, srv, "k").Summarize(context.Background(), "t")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if payload.(map[string]any)["company"] != "Acme" {
		t.Errorf("payload = %v", payload)
	}
}

func TestSummarizeInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, envelope("I cannot help with that."))
	}))
	defer srv.Close()

	_, err := newClient(t, srv, "k").Summarize(context.Background(), "t")
	if !errors.Is(err, provider.ErrInvalidJSON) {
		t.Fatalf("error = %v, want ErrInvalidJSON", err)
	}

	var perr *formatting.ParseError
	if !errors.As(err, &perr) {
		t.Fatal("expected *formatting.ParseError in chain")
	}
	if perr.Raw != "I cannot help with that." {
		t.Errorf("raw = %q", perr.Raw)
	}
}

func TestSummarizeInvalidResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no candidates", `{"candidates":[]}`},
		{"missing candidates", `{}`},
		{"blank text", envelope("   ")},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`},
		{"malformed", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newClient(t, srv, "k").Summarize(context.Background(), "t")
			if !errors.Is(err, provider.ErrInvalidResponse) {
				t.Errorf("error = %v, want ErrInvalidResponse", err)
			}
		})
	}
}

func TestSummarizeRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"quota"}}`)
	}))
	defer srv.Close()

	_, err := newClient(t, srv, "k").Summarize(context.Background(), "t")
	if !errors.Is(err, provider.ErrRequestFailed) {
		t.Fatalf("error = %v, want ErrRequestFailed", err)
	}

	var rerr *provider.RequestError
	if !errors.As(err, &rerr) {
		t.Fatal("expected *RequestError")
	}
	if rerr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", rerr.StatusCode)
	}
	body, ok := rerr.Body.(map[string]any)
	if !ok {
		t.Fatalf("body type = %T, want decoded JSON", rerr.Body)
	}
	if body["error"].(map[string]any)["message"] != "quota" {
		t.Errorf("body = %v", body)
	}
}

func TestSummarizeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newClient(t, srv, "k")
	srv.Close()

	_, err := c.Summarize(context.Background(), "t")
	var rerr *provider.RequestError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *RequestError", err)
	}
	if rerr.StatusCode != 0 {
		t.Errorf("status = %d, want 0", rerr.StatusCode)
	}
}

func TestSummarizeMissingAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := newClient(t, srv, "").Summarize(context.Background(), "t")
	if !errors.Is(err, provider.ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
	if called {
		t.Error("provider should not be called without an api key")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&provider.RequestError{StatusCode: 500}, http.StatusBadGateway},
		{provider.ErrInvalidResponse, http.StatusBadGateway},
		{provider.ErrInvalidJSON, http.StatusBadGateway},
		{provider.ErrMissingAPIKey, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := provider.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
