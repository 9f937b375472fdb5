package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func completionBody(content string) string {
	return `{"choices":[{"message":{"content":` + content + `}}]}`
}

func TestGenerateCaptionParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(`"{\"caption\": \"A wild ride from start to finish.\", \"hashtags\": [\"#Clips\", \"daily vlog\"]}"`)))
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"},
		WithHTTPClient(server.Client()),
	)
	caption, err := client.GenerateCaption(context.Background(), "My Ride", "Rides Channel")
	if err != nil {
		t.Fatalf("generate caption: %v", err)
	}
	if caption.Text != "A wild ride from start to finish." {
		t.Fatalf("caption = %q", caption.Text)
	}
	if len(caption.Hashtags) != 2 || caption.Hashtags[0] != "clips" || caption.Hashtags[1] != "dailyvlog" {
		t.Fatalf("hashtags = %v", caption.Hashtags)
	}
}

func TestGenerateCaptionRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream busy", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(completionBody(`"{\"caption\": \"Second try works.\", \"hashtags\": []}"`)))
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"},
		WithRetryBackoff(time.Millisecond, 5*time.Millisecond),
		WithSleeper(func(time.Duration) {}),
	)
	caption, err := client.GenerateCaption(context.Background(), "Retry Video", "")
	if err != nil {
		t.Fatalf("generate caption: %v", err)
	}
	if caption.Text != "Second try works." {
		t.Fatalf("caption = %q", caption.Text)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestGenerateCaptionDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"},
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.GenerateCaption(context.Background(), "Nope", ""); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on 401)", calls.Load())
	}
}

func TestGenerateCaptionRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "test-model"})
	if _, err := client.GenerateCaption(context.Background(), "Title", ""); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestDecodeLLMJSONHandlesCodeFences(t *testing.T) {
	payload := "```json\n{\"caption\": \"Fenced.\", \"hashtags\": []}\n```"
	var parsed Caption
	if err := DecodeLLMJSON(payload, &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.Text != "Fenced." {
		t.Fatalf("caption = %q", parsed.Text)
	}
}

func TestDecodeLLMJSONExtractsEmbeddedObject(t *testing.T) {
	payload := `Sure, here you go: {"caption": "Embedded.", "hashtags": ["fun"]}`
	var parsed Caption
	if err := DecodeLLMJSON(payload, &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.Text != "Embedded." || len(parsed.Hashtags) != 1 {
		t.Fatalf("parsed = %+v", parsed)
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionBody(`"{\"ok\": true}"`)))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}
