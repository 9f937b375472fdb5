package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelforge/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantDownloads := filepath.Join(tempHome, ".local", "share", "reelforge", "downloads")
	if cfg.Paths.DownloadDir != wantDownloads {
		t.Fatalf("unexpected download dir: got %q want %q", cfg.Paths.DownloadDir, wantDownloads)
	}
	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "reels") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.Clip.DurationSeconds != 15 {
		t.Fatalf("unexpected clip duration: %d", cfg.Clip.DurationSeconds)
	}
	if cfg.Clip.Width != 1080 || cfg.Clip.Height != 1080 {
		t.Fatalf("unexpected clip geometry: %dx%d", cfg.Clip.Width, cfg.Clip.Height)
	}
	if cfg.Clip.Selection != "center" {
		t.Fatalf("unexpected clip selection: %q", cfg.Clip.Selection)
	}
	if !strings.Contains(cfg.Download.Format, "bestvideo") {
		t.Fatalf("unexpected download format: %q", cfg.Download.Format)
	}
	if !cfg.Caption.Enabled {
		t.Fatal("expected captioning enabled by default")
	}
	if cfg.Caption.Fallback == "" {
		t.Fatal("expected a fallback caption by default")
	}
	if cfg.Workflow.HeartbeatInterval != config.Default().Workflow.HeartbeatInterval {
		t.Fatalf("unexpected heartbeat interval: %d", cfg.Workflow.HeartbeatInterval)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.DownloadDir, cfg.Paths.StagingDir, cfg.Paths.LogDir, cfg.Paths.ReviewDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "reelforge.toml")

	type payload struct {
		Clip struct {
			DurationSeconds int    `toml:"duration_seconds"`
			Selection       string `toml:"selection"`
		} `toml:"clip"`
		Download struct {
			Format string `toml:"format"`
		} `toml:"download"`
	}
	custom := payload{}
	custom.Clip.DurationSeconds = 30
	custom.Clip.Selection = "start"
	custom.Download.Format = "best[ext=mp4]"

	encoded, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Clip.DurationSeconds != 30 {
		t.Fatalf("unexpected clip duration: %d", cfg.Clip.DurationSeconds)
	}
	if cfg.Clip.Selection != "start" {
		t.Fatalf("unexpected selection: %q", cfg.Clip.Selection)
	}
	if cfg.Download.Format != "best[ext=mp4]" {
		t.Fatalf("unexpected download format: %q", cfg.Download.Format)
	}
	// Defaults still fill the sections the file omitted.
	if cfg.Clip.FPS != 30 {
		t.Fatalf("unexpected fps default: %d", cfg.Clip.FPS)
	}
}

func TestValidateRejectsBadClipSettings(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantSub string
	}{
		{
			name:    "zero duration",
			mutate:  func(c *config.Config) { c.Clip.DurationSeconds = 0 },
			wantSub: "clip.duration_seconds",
		},
		{
			name:    "odd width",
			mutate:  func(c *config.Config) { c.Clip.Width = 1081 },
			wantSub: "must be even",
		},
		{
			name:    "unknown selection",
			mutate:  func(c *config.Config) { c.Clip.Selection = "golden" },
			wantSub: "clip.selection",
		},
		{
			name:    "negative offset",
			mutate:  func(c *config.Config) { c.Clip.Selection = "offset"; c.Clip.StartOffsetSeconds = -1 },
			wantSub: "start_offset_seconds",
		},
		{
			name: "heartbeat timeout below interval",
			mutate: func(c *config.Config) {
				c.Workflow.HeartbeatInterval = 30
				c.Workflow.HeartbeatTimeout = 30
			},
			wantSub: "heartbeat_timeout",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[clip]") {
		t.Fatal("sample config missing [clip] section")
	}
}
