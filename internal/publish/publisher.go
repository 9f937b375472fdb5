package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/notifications"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/stage"
	"reelforge/internal/textutil"
)

// Publisher moves finished clips into the library alongside their captions.
type Publisher struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
}

// NewPublisher builds a publisher.
func NewPublisher(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Publisher {
	return NewPublisherWithDependencies(cfg, store, logger, notifications.NewService(cfg))
}

// NewPublisherWithDependencies allows injecting custom dependencies (used for tests).
func NewPublisherWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Publisher {
	p := &Publisher{
		store:    store,
		cfg:      cfg,
		notifier: notifier,
	}
	p.SetLogger(logger)
	return p
}

// SetLogger updates the publisher's logging destination while preserving component labeling.
func (p *Publisher) SetLogger(logger *slog.Logger) {
	p.logger = logging.NewComponentLogger(logger, "publisher")
}

func (p *Publisher) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	item.InitProgress("Publishing", "Moving clip to library")
	logger.Debug("starting publish preparation")
	return nil
}

func (p *Publisher) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)

	clipFile := strings.TrimSpace(item.ClipFile)
	if clipFile == "" {
		return services.Wrap(
			services.ErrValidation,
			"publishing",
			"validate inputs",
			"No clip file available for publishing; ensure the clipping stage completed",
			nil,
		)
	}
	if _, err := os.Stat(clipFile); err != nil {
		return services.Wrap(
			services.ErrNotFound,
			"publishing",
			"validate inputs",
			"Clip file is missing from disk",
			err,
		)
	}

	libraryDir := strings.TrimSpace(p.cfg.Paths.LibraryDir)
	if err := os.MkdirAll(libraryDir, 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration,
			"publishing",
			"prepare library directory",
			"Cannot create library directory; check paths in config",
			err,
		)
	}

	base := textutil.SanitizeFileName(item.DisplayTitle())
	finalPath, err := availablePath(libraryDir, base, ".mp4")
	if err != nil {
		return services.Wrap(services.ErrTransient, "publishing", "pick destination", "", err)
	}

	if err := moveFile(clipFile, finalPath); err != nil {
		return services.Wrap(
			services.ErrTransient,
			"publishing",
			"move clip",
			"Failed to move the clip into the library",
			err,
		)
	}
	item.FinalFile = finalPath

	if caption := strings.TrimSpace(item.Caption); caption != "" {
		captionPath := strings.TrimSuffix(finalPath, ".mp4") + ".txt"
		if err := os.WriteFile(captionPath, []byte(caption+"\n"), 0o644); err != nil {
			logger.Warn("failed to write caption sidecar", logging.Error(err))
		}
	}

	p.cleanupStaging(item, logger)

	item.SetProgressComplete("Completed", "Clip published to library")
	logger.Info("clip published", logging.String("file", finalPath))

	if p.notifier != nil {
		if err := p.notifier.NotifyClipReady(ctx, item.DisplayTitle(), finalPath); err != nil {
			logger.Warn("publish notification failed", logging.Error(err))
		}
	}
	return nil
}

// cleanupStaging removes the per-item staging directory once the clip is safe
// in the library. Downloads are kept for retries and manual inspection.
func (p *Publisher) cleanupStaging(item *queue.Item, logger *slog.Logger) {
	stagingDir := filepath.Join(p.cfg.Paths.StagingDir, fmt.Sprintf("queue-%d", item.ID))
	if err := os.RemoveAll(stagingDir); err != nil {
		logger.Warn("failed to clean staging directory", logging.Error(err))
	}
}

// availablePath returns the first non-colliding path for base+ext in dir.
func availablePath(dir, base, ext string) (string, error) {
	candidate := filepath.Join(dir, base+ext)
	if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
		return candidate, nil
	}
	for i := 2; i < 1000; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ext))
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no available filename for %s in %s", base, dir)
}

// moveFile renames when possible and falls back to copy+remove for cross
// device moves.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("close destination: %w", err)
	}
	return os.Remove(src)
}

func (p *Publisher) HealthCheck(ctx context.Context) stage.Health {
	const name = "publisher"
	if p.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(p.cfg.Paths.LibraryDir) == "" {
		return stage.Unhealthy(name, "library directory not configured")
	}
	return stage.Healthy(name)
}
