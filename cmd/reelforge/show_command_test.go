package main

import (
	"context"
	"testing"

	"reelforge/internal/queue"
)

func TestShowDisplaysItemDetails(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item, err := env.store.NewVideo(ctx, "https://youtu.be/show-me")
	if err != nil {
		t.Fatalf("new video: %v", err)
	}
	item.Title = "Show Me"
	item.Caption = "A caption.\n\n#clips"
	meta := queue.Metadata{Title: "Show Me", Channel: "Creators", DurationSeconds: 300}
	if err := item.SetMetadata(meta); err != nil {
		t.Fatalf("set metadata: %v", err)
	}
	if err := env.store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	out, err := runCLI(t, []string{"show", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Show Me")
	requireContains(t, out, "https://youtu.be/show-me")
	requireContains(t, out, "Channel: Creators")
	requireContains(t, out, "#clips")
}

func TestShowUnknownItem(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := runCLI(t, []string{"show", "42"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown item")
	}
}
