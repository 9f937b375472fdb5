// Package ytdlp wraps yt-dlp for video downloads.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	ytdlplib "github.com/lrstanley/go-ytdlp"
)

// Request describes a single download.
type Request struct {
	URL               string
	OutputDir         string
	Format            string
	RestrictFilenames bool
	Retries           int
}

// Download reports what yt-dlp produced.
type Download struct {
	FilePath   string
	Title      string
	VideoID    string
	Channel    string
	UploadDate string
}

// Progress reports download advancement as a percentage of total bytes.
type Progress struct {
	Percent         float64
	DownloadedBytes int
	TotalBytes      int
}

// ProgressFunc receives periodic progress updates during a download.
type ProgressFunc func(Progress)

// Client downloads videos. Implementations shell out to yt-dlp.
type Client interface {
	Download(ctx context.Context, req Request, onProgress ProgressFunc) (*Download, error)
	Available() error
}

type cliClient struct{}

// NewClient returns a Client backed by the yt-dlp binary on PATH.
func NewClient() Client {
	return &cliClient{}
}

func (c *cliClient) Available() error {
	if _, err := exec.LookPath("yt-dlp"); err != nil {
		return fmt.Errorf("yt-dlp not found on PATH: %w", err)
	}
	return nil
}

func (c *cliClient) Download(ctx context.Context, req Request, onProgress ProgressFunc) (*Download, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, errors.New("download: empty url")
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return nil, errors.New("download: empty output directory")
	}

	// No overwrites: a retried item reuses the file from the earlier attempt.
	dl := ytdlplib.New().
		NoOverwrites().
		NoPlaylist().
		Output(outputDir + "/%(title)s.%(ext)s")
	if req.Format != "" {
		dl = dl.Format(req.Format)
	}
	if req.RestrictFilenames {
		dl = dl.RestrictFilenames()
	}
	if onProgress != nil {
		dl.ProgressFunc(500*time.Millisecond, func(update ytdlplib.ProgressUpdate) {
			progress := Progress{
				DownloadedBytes: update.DownloadedBytes,
				TotalBytes:      update.TotalBytes,
			}
			if update.TotalBytes > 0 {
				progress.Percent = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
			}
			onProgress(progress)
		})
	}

	result, err := runWithRetry(ctx, dl, url, req.Retries)
	if err != nil {
		return nil, err
	}

	return extractDownload(result)
}

func runWithRetry(ctx context.Context, dl *ytdlplib.Command, url string, retries int) (*ytdlplib.Result, error) {
	if retries < 0 {
		retries = 0
	}
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := dl.Run(ctx, url)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("yt-dlp run: %w", lastErr)
}

func extractDownload(result *ytdlplib.Result) (*Download, error) {
	if result == nil {
		return nil, errors.New("yt-dlp returned no result")
	}
	info, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("extract download info: %w", err)
	}
	if len(info) == 0 {
		return nil, errors.New("yt-dlp reported no downloaded files")
	}

	download := &Download{VideoID: info[0].ID}
	if info[0].Filename != nil {
		download.FilePath = *info[0].Filename
	}
	if info[0].Title != nil {
		download.Title = *info[0].Title
	}
	if info[0].Channel != nil {
		download.Channel = *info[0].Channel
	} else if info[0].Uploader != nil {
		download.Channel = *info[0].Uploader
	}
	if info[0].UploadDate != nil {
		download.UploadDate = *info[0].UploadDate
	}
	if download.FilePath == "" {
		return nil, errors.New("yt-dlp did not report an output path")
	}
	return download, nil
}
