package clip

import (
	"errors"
	"fmt"

	"reelforge/internal/config"
)

// Plan describes the exact cut the renderer should perform.
type Plan struct {
	StartSeconds    float64
	DurationSeconds float64
	Width           int
	Height          int
	FPS             int
	VideoCodec      string
	AudioCodec      string
}

// BuildPlan computes the clip window for a source of the given duration.
// The clip duration is clamped to the source; the start point depends on the
// configured selection mode and is always adjusted so the window fits.
func BuildPlan(sourceDuration float64, cfg config.Clip) (Plan, error) {
	if sourceDuration <= 0 {
		return Plan{}, errors.New("source duration unknown or zero")
	}

	duration := float64(cfg.DurationSeconds)
	if duration > sourceDuration {
		duration = sourceDuration
	}

	var start float64
	switch cfg.Selection {
	case "start":
		start = 0
	case "offset":
		start = float64(cfg.StartOffsetSeconds)
	case "center", "":
		start = (sourceDuration - duration) / 2
	default:
		return Plan{}, fmt.Errorf("unknown clip selection %q", cfg.Selection)
	}

	maxStart := sourceDuration - duration
	if start > maxStart {
		start = maxStart
	}
	if start < 0 {
		start = 0
	}

	return Plan{
		StartSeconds:    start,
		DurationSeconds: duration,
		Width:           cfg.Width,
		Height:          cfg.Height,
		FPS:             cfg.FPS,
		VideoCodec:      cfg.VideoCodec,
		AudioCodec:      cfg.AudioCodec,
	}, nil
}
