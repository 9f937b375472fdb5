package caption

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reelforge/internal/logging"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/services/llm"
	"reelforge/internal/testsupport"
)

type fakeCaptionClient struct {
	caption llm.Caption
	err     error
	called  bool
}

func (f *fakeCaptionClient) GenerateCaption(ctx context.Context, videoTitle, channel string) (llm.Caption, error) {
	f.called = true
	return f.caption, f.err
}

func (f *fakeCaptionClient) HealthCheck(ctx context.Context) error { return nil }

func clippedItem(t *testing.T, store *queue.Store, downloadDir string) *queue.Item {
	t.Helper()
	clipPath := testsupport.WriteFile(t, downloadDir, "clip.mp4", []byte("clip"))
	item, err := store.NewFile(context.Background(), clipPath)
	if err != nil {
		t.Fatalf("new file: %v", err)
	}
	item.ClipFile = clipPath
	return item
}

func TestExecuteComposesCaptionWithHashtags(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := clippedItem(t, store, cfg.Paths.DownloadDir)
	client := &fakeCaptionClient{caption: llm.Caption{
		Text:     "Big moment from the stream.",
		Hashtags: []string{"clips", "gaming", "highlights"},
	}}

	captioner := NewCaptionerWithDependencies(cfg, store, logging.NewNop(), client, nil)
	if err := captioner.Prepare(ctx, item); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := captioner.Execute(ctx, item); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if !client.called {
		t.Fatal("LLM client was not invoked")
	}
	if !strings.HasPrefix(item.Caption, "Big moment from the stream.") {
		t.Fatalf("caption = %q", item.Caption)
	}
	if !strings.Contains(item.Caption, "#clips #gaming #highlights") {
		t.Fatalf("hashtag block missing: %q", item.Caption)
	}
}

func TestExecuteLimitsHashtags(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Caption.HashtagLimit = 2
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := clippedItem(t, store, cfg.Paths.DownloadDir)
	client := &fakeCaptionClient{caption: llm.Caption{
		Text:     "Quick cut.",
		Hashtags: []string{"one", "two", "three", "four"},
	}}

	captioner := NewCaptionerWithDependencies(cfg, store, logging.NewNop(), client, nil)
	if err := captioner.Execute(ctx, item); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.Contains(item.Caption, "#three") {
		t.Fatalf("hashtag limit not applied: %q", item.Caption)
	}
	if !strings.Contains(item.Caption, "#one #two") {
		t.Fatalf("expected first two hashtags: %q", item.Caption)
	}
}

func TestExecuteFallsBackWhenLLMFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := clippedItem(t, store, cfg.Paths.DownloadDir)
	client := &fakeCaptionClient{err: errors.New("rate limited")}

	captioner := NewCaptionerWithDependencies(cfg, store, logging.NewNop(), client, nil)
	if err := captioner.Execute(ctx, item); err != nil {
		t.Fatalf("LLM failure must not fail the stage: %v", err)
	}
	if item.Caption != cfg.Caption.Fallback {
		t.Fatalf("caption = %q, want fallback %q", item.Caption, cfg.Caption.Fallback)
	}
}

func TestExecuteFallsBackWhenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := clippedItem(t, store, cfg.Paths.DownloadDir)
	captioner := NewCaptionerWithDependencies(cfg, store, logging.NewNop(), nil, nil)
	if err := captioner.Execute(ctx, item); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if item.Caption != cfg.Caption.Fallback {
		t.Fatalf("caption = %q, want fallback", item.Caption)
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

	captioner := NewCaptionerWithDependencies(cfg, store, logging.NewNop(), nil, nil)
	err = captioner.Execute(ctx, item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClampCaptionKeepsInstagramLimit(t *testing.T) {
	long := strings.Repeat("a", maxCaptionLength+500)
	clamped := clampCaption(long)
	if len([]rune(clamped)) > maxCaptionLength {
		t.Fatalf("clamped length = %d", len([]rune(clamped)))
	}
}
