package fetch

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/media/probe"
	"reelforge/internal/notifications"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/services/ytdlp"
	"reelforge/internal/stage"
)

// Fetcher downloads source videos with yt-dlp.
type Fetcher struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	client   ytdlp.Client
	notifier notifications.Service
}

var fetchProbe = probe.Inspect

// NewFetcher builds a fetcher with the default yt-dlp client.
func NewFetcher(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Fetcher {
	return NewFetcherWithDependencies(cfg, store, logger, ytdlp.NewClient(), notifications.NewService(cfg))
}

// NewFetcherWithDependencies allows injecting custom dependencies (used for tests).
func NewFetcherWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client ytdlp.Client, notifier notifications.Service) *Fetcher {
	f := &Fetcher{
		store:    store,
		cfg:      cfg,
		client:   client,
		notifier: notifier,
	}
	f.SetLogger(logger)
	return f
}

// SetLogger updates the fetcher's logging destination while preserving component labeling.
func (f *Fetcher) SetLogger(logger *slog.Logger) {
	f.logger = logging.NewComponentLogger(logger, "fetcher")
}

func (f *Fetcher) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, f.logger)
	item.InitProgress("Downloading", "Starting download")
	logger.Debug("starting fetch preparation")
	return nil
}

func (f *Fetcher) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, f.logger)

	url := strings.TrimSpace(item.SourceURL)
	if url == "" {
		return services.Wrap(
			services.ErrValidation,
			"fetching",
			"validate inputs",
			"No source URL on queue item; re-add the video",
			nil,
		)
	}

	if err := os.MkdirAll(f.cfg.Paths.DownloadDir, 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration,
			"fetching",
			"prepare download directory",
			"Cannot create download directory; check paths in config",
			err,
		)
	}

	if f.notifier != nil {
		if err := f.notifier.NotifyFetchStarted(ctx, item.DisplayTitle()); err != nil {
			logger.Warn("fetch start notification failed", logging.Error(err))
		}
	}

	downloadCtx := ctx
	if f.cfg.Download.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		downloadCtx, cancel = context.WithTimeout(ctx, time.Duration(f.cfg.Download.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	logger.Info("starting download",
		logging.String("url", url),
		logging.String("format", f.cfg.Download.Format),
	)

	const progressPersistInterval = 2 * time.Second
	var lastPersisted time.Time

	download, err := f.client.Download(downloadCtx, ytdlp.Request{
		URL:               url,
		OutputDir:         f.cfg.Paths.DownloadDir,
		Format:            f.cfg.Download.Format,
		RestrictFilenames: f.cfg.Download.RestrictFilenames,
		Retries:           f.cfg.Download.Retries,
	}, func(progress ytdlp.Progress) {
		if time.Since(lastPersisted) < progressPersistInterval {
			return
		}
		lastPersisted = time.Now()
		copy := *item
		copy.SetProgress("Downloading", "Downloading video", progress.Percent)
		if err := f.store.UpdateProgress(ctx, &copy); err != nil {
			logger.Warn("failed to persist download progress", logging.Error(err))
		}
	})
	if err != nil {
		if downloadCtx.Err() == context.DeadlineExceeded {
			return services.Wrap(
				services.ErrTimeout,
				"fetching",
				"download",
				"Download exceeded the configured timeout",
				err,
			)
		}
		return services.Wrap(
			services.ErrExternalTool,
			"fetching",
			"download",
			"yt-dlp failed; check the URL and network connectivity",
			err,
		)
	}

	if _, statErr := os.Stat(download.FilePath); statErr != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"fetching",
			"verify output",
			"yt-dlp reported success but the output file is missing",
			statErr,
		)
	}

	item.DownloadedFile = download.FilePath
	if item.Title == "" && download.Title != "" {
		item.Title = download.Title
	}

	if err := f.inspectDownload(ctx, item, download, logger); err != nil {
		return err
	}

	item.SetProgressComplete("Downloaded", "Download complete")
	logger.Info("download complete",
		logging.String("file", item.DownloadedFile),
		logging.String("title", item.Title),
	)

	if f.notifier != nil {
		if err := f.notifier.NotifyFetchCompleted(ctx, item.DisplayTitle()); err != nil {
			logger.Warn("fetch completion notification failed", logging.Error(err))
		}
	}
	return nil
}

// inspectDownload probes the downloaded file and records duration, stream
// details, and the video identity yt-dlp extracted for the later stages.
func (f *Fetcher) inspectDownload(ctx context.Context, item *queue.Item, download *ytdlp.Download, logger *slog.Logger) error {
	result, err := fetchProbe(ctx, f.cfg.FFprobeBinary(), item.DownloadedFile)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"fetching",
			"probe download",
			"ffprobe could not inspect the downloaded file",
			err,
		)
	}
	if result.VideoStreamCount() == 0 {
		return services.Wrap(
			services.ErrValidation,
			"fetching",
			"probe download",
			"Downloaded file has no video stream",
			nil,
		)
	}

	item.MediaInfoJSON = string(result.RawJSON())

	meta, err := item.Metadata()
	if err != nil {
		logger.Warn("discarding unreadable item metadata", logging.Error(err))
		meta = queue.Metadata{}
	}
	meta.Title = item.Title
	meta.WebpageURL = item.SourceURL
	meta.DurationSeconds = result.DurationSeconds()
	if download != nil {
		meta.VideoID = download.VideoID
		meta.Channel = download.Channel
		meta.UploadDate = download.UploadDate
	}
	if err := item.SetMetadata(meta); err != nil {
		return services.Wrap(services.ErrTransient, "fetching", "store metadata", "", err)
	}
	return nil
}

func (f *Fetcher) HealthCheck(ctx context.Context) stage.Health {
	const name = "fetcher"
	if f.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(f.cfg.Paths.DownloadDir) == "" {
		return stage.Unhealthy(name, "download directory not configured")
	}
	if f.client == nil {
		return stage.Unhealthy(name, "yt-dlp client unavailable")
	}
	if err := f.client.Available(); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
