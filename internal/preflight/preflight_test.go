package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"reelforge/internal/config"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Staging directory", dir)
	if !result.Passed {
		t.Fatalf("writable directory failed check: %s", result.Detail)
	}

	missing := CheckDirectoryAccess("Staging directory", filepath.Join(dir, "missing"))
	if missing.Passed {
		t.Fatal("missing directory passed check")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	notDir := CheckDirectoryAccess("Staging directory", file)
	if notDir.Passed {
		t.Fatal("regular file passed directory check")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	ok := CheckFreeSpace("Free space", dir, 1)
	if !ok.Passed {
		t.Fatalf("one byte of headroom should pass: %s", ok.Detail)
	}

	huge := CheckFreeSpace("Free space", dir, 1<<62)
	if huge.Passed {
		t.Fatal("absurd requirement passed")
	}
}

func TestCheckLLMMissingKey(t *testing.T) {
	result := CheckLLM(context.Background(), "Caption LLM", config.LLMConfig{})
	if result.Passed {
		t.Fatal("missing API key passed")
	}
	if result.Detail != "API key missing" {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestCheckLLMReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "{\"ok\": true}"}}]}`))
	}))
	t.Cleanup(server.Close)

	result := CheckLLM(context.Background(), "Caption LLM", config.LLMConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	})
	if !result.Passed {
		t.Fatalf("reachable API failed check: %s", result.Detail)
	}
}

func TestRunAllCoversDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.ReviewDir = filepath.Join(base, "review")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	cfg.Caption.Enabled = false

	results := RunAll(context.Background(), &cfg)
	if len(results) != 4 {
		t.Fatalf("results = %d, want 4", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("%s failed: %s", r.Name, r.Detail)
		}
	}
}
