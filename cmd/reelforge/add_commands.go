package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/config"
	"reelforge/internal/queue"
)

var manualFileExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".webm": {},
	".mov":  {},
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <url>",
		Short: "Add a video URL to the processing queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(args[0])
			parsed, err := url.Parse(raw)
			if err != nil || parsed.Host == "" {
				return fmt.Errorf("invalid URL: %q", raw)
			}
			if parsed.Scheme != "http" && parsed.Scheme != "https" {
				return fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
			}

			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				existing, err := store.FindBySourceURL(cmd.Context(), raw)
				if err != nil {
					return fmt.Errorf("check existing items: %w", err)
				}
				if existing != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Already queued as item #%d (%s)\n", existing.ID, existing.Status)
					return nil
				}

				item, err := store.NewVideo(cmd.Context(), raw)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued video as item #%d\n", item.ID)
				return nil
			})
		},
	}
}

func newAddFileCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add-file <path>",
		Short: "Add a local video file to the processing queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}

			ext := strings.ToLower(filepath.Ext(info.Name()))
			if _, ok := manualFileExtensions[ext]; !ok {
				return fmt.Errorf("unsupported file extension %q", ext)
			}

			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				item, err := store.NewFile(cmd.Context(), absPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued local file as item #%d (%s)\n", item.ID, filepath.Base(absPath))
				return nil
			})
		},
	}
}
