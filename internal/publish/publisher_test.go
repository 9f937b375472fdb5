package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelforge/internal/logging"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/testsupport"
)

func newCaptionedItem(t *testing.T, store *queue.Store, stagingDir, title string) *queue.Item {
	t.Helper()
	item, err := store.NewVideo(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("new video: %v", err)
	}
	item.Title = title

	itemStaging := filepath.Join(stagingDir, fmt.Sprintf("queue-%d", item.ID))
	clipPath := testsupport.WriteFile(t, itemStaging, "clip.mp4", []byte("clip bytes"))
	item.ClipFile = clipPath
	item.Caption = "A great clip.\n\n#clips"
	return item
}

func TestExecutePublishesClipAndCaption(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := newCaptionedItem(t, store, cfg.Paths.StagingDir, "My Great Clip")
	publisher := NewPublisherWithDependencies(cfg, store, logging.NewNop(), nil)

	if err := publisher.Prepare(ctx, item); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := publisher.Execute(ctx, item); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := filepath.Join(cfg.Paths.LibraryDir, "My_Great_Clip.mp4")
	if item.FinalFile != want {
		t.Fatalf("final file = %q, want %q", item.FinalFile, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("published file missing: %v", err)
	}

	captionPath := strings.TrimSuffix(want, ".mp4") + ".txt"
	contents, err := os.ReadFile(captionPath)
	if err != nil {
		t.Fatalf("caption sidecar missing: %v", err)
	}
	if !strings.Contains(string(contents), "#clips") {
		t.Fatalf("caption sidecar contents = %q", contents)
	}

	staging := filepath.Join(cfg.Paths.StagingDir, fmt.Sprintf("queue-%d", item.ID))
	if _, err := os.Stat(staging); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("staging directory was not cleaned up")
	}
}

func TestExecuteAvoidsNameCollisions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.WriteFile(t, cfg.Paths.LibraryDir, "Collision.mp4", []byte("existing"))

	item := newCaptionedItem(t, store, cfg.Paths.StagingDir, "Collision")
	publisher := NewPublisherWithDependencies(cfg, store, logging.NewNop(), nil)
	if err := publisher.Execute(ctx, item); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := filepath.Join(cfg.Paths.LibraryDir, "Collision-2.mp4")
	if item.FinalFile != want {
		t.Fatalf("final file = %q, want %q", item.FinalFile, want)
	}
}

func TestExecuteRequiresClipFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := store.NewVideo(ctx, "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("new video: %v", err)
	}

	publisher := NewPublisherWithDependencies(cfg, store, logging.NewNop(), nil)
	err = publisher.Execute(ctx, item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteReportsMissingClipFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := store.NewVideo(ctx, "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("new video: %v", err)
	}
	item.ClipFile = filepath.Join(cfg.Paths.StagingDir, "queue-999", "clip.mp4")

	publisher := NewPublisherWithDependencies(cfg, store, logging.NewNop(), nil)
	err = publisher.Execute(ctx, item)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if services.FailureStatus(err) != queue.StatusReview {
		t.Fatal("missing clip should route to review")
	}
}

func TestExecuteSkipsSidecarWithoutCaption(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := newCaptionedItem(t, store, cfg.Paths.StagingDir, "Silent")
	item.Caption = ""

	publisher := NewPublisherWithDependencies(cfg, store, logging.NewNop(), nil)
	if err := publisher.Execute(ctx, item); err != nil {
		t.Fatalf("execute: %v", err)
	}

	captionPath := strings.TrimSuffix(item.FinalFile, ".mp4") + ".txt"
	if _, err := os.Stat(captionPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("unexpected caption sidecar")
	}
}
