package clip

import (
	"testing"

	"reelforge/internal/config"
)

func clipConfig(selection string, duration, offset int) config.Clip {
	return config.Clip{
		DurationSeconds:    duration,
		Selection:          selection,
		StartOffsetSeconds: offset,
		Width:              1080,
		Height:             1920,
		FPS:                30,
		VideoCodec:         "libx264",
		AudioCodec:         "aac",
	}
}

func TestBuildPlanCenterSelection(t *testing.T) {
	plan, err := BuildPlan(120, clipConfig("center", 30, 0))
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if plan.StartSeconds != 45 {
		t.Fatalf("start = %f, want 45", plan.StartSeconds)
	}
	if plan.DurationSeconds != 30 {
		t.Fatalf("duration = %f, want 30", plan.DurationSeconds)
	}
}

func TestBuildPlanDefaultsToCenter(t *testing.T) {
	plan, err := BuildPlan(100, clipConfig("", 40, 0))
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if plan.StartSeconds != 30 {
		t.Fatalf("start = %f, want 30", plan.StartSeconds)
	}
}

func TestBuildPlanStartSelection(t *testing.T) {
	plan, err := BuildPlan(120, clipConfig("start", 30, 0))
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if plan.StartSeconds != 0 {
		t.Fatalf("start = %f, want 0", plan.StartSeconds)
	}
}

func TestBuildPlanOffsetClampedToWindow(t *testing.T) {
	plan, err := BuildPlan(60, clipConfig("offset", 30, 100))
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if plan.StartSeconds != 30 {
		t.Fatalf("start = %f, want 30", plan.StartSeconds)
	}
}

func TestBuildPlanShortSourceUsesWholeVideo(t *testing.T) {
	plan, err := BuildPlan(10, clipConfig("center", 30, 0))
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if plan.StartSeconds != 0 {
		t.Fatalf("start = %f, want 0", plan.StartSeconds)
	}
	if plan.DurationSeconds != 10 {
		t.Fatalf("duration = %f, want 10", plan.DurationSeconds)
	}
}

func TestBuildPlanCarriesRenderSettings(t *testing.T) {
	plan, err := BuildPlan(120, clipConfig("center", 30, 0))
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if plan.Width != 1080 || plan.Height != 1920 || plan.FPS != 30 {
		t.Fatalf("render settings not carried: %+v", plan)
	}
	if plan.VideoCodec != "libx264" || plan.AudioCodec != "aac" {
		t.Fatalf("codecs not carried: %+v", plan)
	}
}

func TestBuildPlanRejectsUnknownSelection(t *testing.T) {
	if _, err := BuildPlan(120, clipConfig("golden", 30, 0)); err == nil {
		t.Fatal("expected error for unknown selection")
	}
}

func TestBuildPlanRejectsZeroDurationSource(t *testing.T) {
	if _, err := BuildPlan(0, clipConfig("center", 30, 0)); err == nil {
		t.Fatal("expected error for zero duration source")
	}
}
