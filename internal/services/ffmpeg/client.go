// Package ffmpeg renders clips by driving the ffmpeg binary.
package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// Request describes a single clip render.
type Request struct {
	Binary          string
	Input           string
	Output          string
	StartSeconds    float64
	DurationSeconds float64
	Width           int
	Height          int
	FPS             int
	VideoCodec      string
	AudioCodec      string
}

// Progress reports encode advancement against the requested clip duration.
type Progress struct {
	Percent     float64
	OutTimeUs   int64
	SpeedFactor float64
}

// ProgressFunc receives periodic progress updates during a render.
type ProgressFunc func(Progress)

// Client renders clips. Implementations shell out to ffmpeg.
type Client interface {
	Render(ctx context.Context, req Request, onProgress ProgressFunc) error
	Available(binary string) error
}

type cliClient struct{}

// NewClient returns a Client backed by the ffmpeg binary.
func NewClient() Client {
	return &cliClient{}
}

func (c *cliClient) Available(binary string) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	return nil
}

func (c *cliClient) Render(ctx context.Context, req Request, onProgress ProgressFunc) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	binary := strings.TrimSpace(req.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	args := buildArgs(req)
	cmd := exec.CommandContext(ctx, binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanProgress(stdout, req.DurationSeconds, onProgress)
	}()

	waitErr := cmd.Wait()
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitErr != nil {
		detail := lastLines(stderr.String(), 5)
		if detail != "" {
			return fmt.Errorf("ffmpeg: %w: %s", waitErr, detail)
		}
		return fmt.Errorf("ffmpeg: %w", waitErr)
	}
	return nil
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.Input) == "" {
		return errors.New("render: empty input path")
	}
	if strings.TrimSpace(req.Output) == "" {
		return errors.New("render: empty output path")
	}
	if req.DurationSeconds <= 0 {
		return errors.New("render: duration must be positive")
	}
	return nil
}

// buildArgs assembles the ffmpeg invocation through ffmpeg-go's graph builder
// so the argument order stays canonical. Progress is streamed over stdout as
// key=value pairs.
func buildArgs(req Request) []string {
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d",
		req.Width, req.Height, req.Width, req.Height, req.FPS,
	)

	stream := ffmpeggo.Input(req.Input, ffmpeggo.KwArgs{
		"ss": formatSeconds(req.StartSeconds),
	}).Output(req.Output, ffmpeggo.KwArgs{
		"t":        formatSeconds(req.DurationSeconds),
		"vf":       filter,
		"c:v":      req.VideoCodec,
		"c:a":      req.AudioCodec,
		"b:a":      "128k",
		"pix_fmt":  "yuv420p",
		"movflags": "+faststart",
	}).OverWriteOutput().GlobalArgs("-progress", "pipe:1", "-nostats", "-loglevel", "error")

	return stream.GetArgs()
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

// scanProgress parses the key=value stream ffmpeg writes under -progress and
// converts out_time_us into a percentage of the target duration.
func scanProgress(r interface{ Read([]byte) (int, error) }, targetSeconds float64, onProgress ProgressFunc) {
	scanner := bufio.NewScanner(r)
	current := Progress{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
				current.OutTimeUs = us
				if targetSeconds > 0 {
					percent := float64(us) / 1e6 / targetSeconds * 100
					if percent > 100 {
						percent = 100
					}
					current.Percent = percent
				}
			}
		case "speed":
			if factor, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64); err == nil {
				current.SpeedFactor = factor
			}
		case "progress":
			if value == "end" {
				current.Percent = 100
			}
			if onProgress != nil {
				onProgress(current)
			}
		}
	}
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
