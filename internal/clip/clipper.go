package clip

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/media/probe"
	"reelforge/internal/notifications"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/services/ffmpeg"
	"reelforge/internal/stage"
)

// Clipper cuts the configured window out of a downloaded video.
type Clipper struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	client   ffmpeg.Client
	notifier notifications.Service
}

var clipProbe = probe.Inspect

// NewClipper builds a clipper with the default ffmpeg client.
func NewClipper(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Clipper {
	return NewClipperWithDependencies(cfg, store, logger, ffmpeg.NewClient(), notifications.NewService(cfg))
}

// NewClipperWithDependencies allows injecting custom dependencies (used for tests).
func NewClipperWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client ffmpeg.Client, notifier notifications.Service) *Clipper {
	c := &Clipper{
		store:    store,
		cfg:      cfg,
		client:   client,
		notifier: notifier,
	}
	c.SetLogger(logger)
	return c
}

// SetLogger updates the clipper's logging destination while preserving component labeling.
func (c *Clipper) SetLogger(logger *slog.Logger) {
	c.logger = logging.NewComponentLogger(logger, "clipper")
}

func (c *Clipper) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	item.InitProgress("Clipping", "Starting clip render")
	logger.Debug("starting clip preparation")
	return nil
}

func (c *Clipper) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)

	source := strings.TrimSpace(item.DownloadedFile)
	if source == "" {
		return services.Wrap(
			services.ErrValidation,
			"clipping",
			"validate inputs",
			"No downloaded file available for clipping; ensure the fetch stage completed",
			nil,
		)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(
			services.ErrNotFound,
			"clipping",
			"validate inputs",
			"Downloaded file is missing from disk",
			err,
		)
	}

	sourceDuration, err := c.sourceDuration(ctx, item)
	if err != nil {
		return err
	}

	plan, err := BuildPlan(sourceDuration, c.cfg.Clip)
	if err != nil {
		return services.Wrap(
			services.ErrValidation,
			"clipping",
			"plan clip",
			"Could not compute a clip window for this source",
			err,
		)
	}

	stagingDir := filepath.Join(c.cfg.Paths.StagingDir, fmt.Sprintf("queue-%d", item.ID))
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration,
			"clipping",
			"prepare staging directory",
			"Cannot create staging directory; check paths in config",
			err,
		)
	}
	output := filepath.Join(stagingDir, "clip.mp4")

	logger.Info("rendering clip",
		logging.String("input", source),
		logging.String("output", output),
		logging.Float64("start_seconds", plan.StartSeconds),
		logging.Float64("duration_seconds", plan.DurationSeconds),
	)

	const progressPersistInterval = 2 * time.Second
	var lastPersisted time.Time

	err = c.client.Render(ctx, ffmpeg.Request{
		Binary:          c.cfg.FFmpegBinary(),
		Input:           source,
		Output:          output,
		StartSeconds:    plan.StartSeconds,
		DurationSeconds: plan.DurationSeconds,
		Width:           plan.Width,
		Height:          plan.Height,
		FPS:             plan.FPS,
		VideoCodec:      plan.VideoCodec,
		AudioCodec:      plan.AudioCodec,
	}, func(progress ffmpeg.Progress) {
		if time.Since(lastPersisted) < progressPersistInterval {
			return
		}
		lastPersisted = time.Now()
		copy := *item
		copy.SetProgress("Clipping", "Rendering clip", progress.Percent)
		if err := c.store.UpdateProgress(ctx, &copy); err != nil {
			logger.Warn("failed to persist clip progress", logging.Error(err))
		}
	})
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"clipping",
			"render",
			"ffmpeg failed to render the clip",
			err,
		)
	}

	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		return services.Wrap(
			services.ErrExternalTool,
			"clipping",
			"verify output",
			"ffmpeg produced no output file",
			err,
		)
	}

	item.ClipFile = output
	if err := c.recordClipSpec(item, plan, logger); err != nil {
		return err
	}

	item.SetProgressComplete("Clipped", "Clip rendered")
	logger.Info("clip rendered", logging.String("file", output), logging.Int64("bytes", info.Size()))

	if c.notifier != nil {
		if err := c.notifier.NotifyClipCompleted(ctx, item.DisplayTitle()); err != nil {
			logger.Warn("clip completion notification failed", logging.Error(err))
		}
	}
	return nil
}

// sourceDuration prefers the duration recorded at fetch time and falls back
// to probing the file, which covers items added directly from disk.
func (c *Clipper) sourceDuration(ctx context.Context, item *queue.Item) (float64, error) {
	meta, err := item.Metadata()
	if err == nil && meta.DurationSeconds > 0 {
		return meta.DurationSeconds, nil
	}

	result, err := clipProbe(ctx, c.cfg.FFprobeBinary(), item.DownloadedFile)
	if err != nil {
		return 0, services.Wrap(
			services.ErrExternalTool,
			"clipping",
			"probe source",
			"ffprobe could not inspect the source file",
			err,
		)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return 0, services.Wrap(
			services.ErrValidation,
			"clipping",
			"probe source",
			"Source file reports no duration",
			nil,
		)
	}
	if item.MediaInfoJSON == "" {
		item.MediaInfoJSON = string(result.RawJSON())
	}
	return duration, nil
}

func (c *Clipper) recordClipSpec(item *queue.Item, plan Plan, logger *slog.Logger) error {
	meta, err := item.Metadata()
	if err != nil {
		logger.Warn("discarding unreadable item metadata", logging.Error(err))
		meta = queue.Metadata{}
	}
	meta.Clip = &queue.ClipSpec{
		StartSeconds:    plan.StartSeconds,
		DurationSeconds: plan.DurationSeconds,
		Width:           plan.Width,
		Height:          plan.Height,
		FPS:             plan.FPS,
		VideoCodec:      plan.VideoCodec,
		AudioCodec:      plan.AudioCodec,
	}
	if err := item.SetMetadata(meta); err != nil {
		return services.Wrap(services.ErrTransient, "clipping", "store clip spec", "", err)
	}
	return nil
}

func (c *Clipper) HealthCheck(ctx context.Context) stage.Health {
	const name = "clipper"
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(c.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if c.client == nil {
		return stage.Unhealthy(name, "ffmpeg client unavailable")
	}
	if err := c.client.Available(c.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
