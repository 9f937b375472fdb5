package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"reelforge/internal/queue"
)

func TestAddQueuesVideo(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{"add", "https://youtu.be/abc123"}, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Queued video as item #1")

	item, err := env.store.FindBySourceURL(context.Background(), "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if item == nil || item.Status != queue.StatusPending {
		t.Fatalf("item = %+v", item)
	}
}

func TestAddFailsWhenDedupeLookupFails(t *testing.T) {
	env := setupCLITestEnv(t)

	db, err := sql.Open("sqlite", env.store.Path())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := db.Exec("DROP TABLE queue_items"); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	if _, err := runCLI(t, []string{"add", "https://youtu.be/broken"}, env.configPath); err == nil {
		t.Fatal("expected an error when the dedupe lookup cannot run")
	}
}

func TestAddDetectsDuplicates(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := runCLI(t, []string{"add", "https://youtu.be/dup"}, env.configPath); err != nil {
		t.Fatalf("first add: %v", err)
	}
	out, err := runCLI(t, []string{"add", "https://youtu.be/dup"}, env.configPath)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	requireContains(t, out, "Already queued as item #1")
}

func TestAddRejectsInvalidURL(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := runCLI(t, []string{"add", "not a url"}, env.configPath); err == nil {
		t.Fatal("expected error for invalid URL")
	}
	if _, err := runCLI(t, []string{"add", "ftp://example.com/video"}, env.configPath); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

func TestAddFileQueuesLocalVideo(t *testing.T) {
	env := setupCLITestEnv(t)

	path := filepath.Join(t.TempDir(), "local_video.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := runCLI(t, []string{"add-file", path}, env.configPath)
	if err != nil {
		t.Fatalf("add-file: %v", err)
	}
	requireContains(t, out, "Queued local file as item #1")

	item, err := env.store.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item.Status != queue.StatusFetched {
		t.Fatalf("status = %s, want fetched", item.Status)
	}
	if item.DownloadedFile != path {
		t.Fatalf("downloaded file = %q", item.DownloadedFile)
	}
}

func TestAddFileRejectsUnknownExtension(t *testing.T) {
	env := setupCLITestEnv(t)

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("text"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := runCLI(t, []string{"add-file", path}, env.configPath); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
