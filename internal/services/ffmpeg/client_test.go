package ffmpeg

import (
	"strings"
	"testing"
)

func TestBuildArgsIncludesClipWindow(t *testing.T) {
	args := buildArgs(Request{
		Input:           "/tmp/source.mp4",
		Output:          "/tmp/clip.mp4",
		StartSeconds:    99.2,
		DurationSeconds: 15,
		Width:           1080,
		Height:          1080,
		FPS:             30,
		VideoCodec:      "libx264",
		AudioCodec:      "aac",
	})

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-ss 99.200",
		"-t 15.000",
		"/tmp/source.mp4",
		"/tmp/clip.mp4",
		"scale=1080:1080:force_original_aspect_ratio=increase,crop=1080:1080,fps=30",
		"-progress pipe:1",
		"yuv420p",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
}

func TestScanProgressReportsPercent(t *testing.T) {
	payload := strings.Join([]string{
		"frame=120",
		"out_time_us=7500000",
		"speed=4.2x",
		"progress=continue",
		"out_time_us=15000000",
		"progress=end",
	}, "\n")

	var updates []Progress
	scanProgress(strings.NewReader(payload), 15, func(p Progress) {
		updates = append(updates, p)
	})

	if len(updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(updates))
	}
	if updates[0].Percent < 49 || updates[0].Percent > 51 {
		t.Fatalf("first percent = %f, want ~50", updates[0].Percent)
	}
	if updates[0].SpeedFactor != 4.2 {
		t.Fatalf("speed = %f", updates[0].SpeedFactor)
	}
	if updates[1].Percent != 100 {
		t.Fatalf("final percent = %f, want 100", updates[1].Percent)
	}
}

func TestScanProgressIgnoresGarbage(t *testing.T) {
	payload := "not a progress line\nout_time_us=abc\nprogress=continue\n"
	var updates []Progress
	scanProgress(strings.NewReader(payload), 15, func(p Progress) {
		updates = append(updates, p)
	})
	if len(updates) != 1 || updates[0].Percent != 0 {
		t.Fatalf("updates = %+v", updates)
	}
}

func TestValidateRequest(t *testing.T) {
	err := validateRequest(Request{Input: "", Output: "out.mp4", DurationSeconds: 15})
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	err = validateRequest(Request{Input: "in.mp4", Output: "out.mp4", DurationSeconds: 0})
	if err == nil {
		t.Fatal("expected error for zero duration")
	}
}
