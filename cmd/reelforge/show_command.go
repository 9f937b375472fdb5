package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelforge/internal/config"
	"reelforge/internal/queue"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show full details for a queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item #%d not found", id)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Item #%d\n", item.ID)
				fmt.Fprintf(out, "Title: %s\n", item.DisplayTitle())
				if item.IsProcessing() {
					fmt.Fprintf(out, "Status: %s (in progress)\n", item.Status)
				} else {
					fmt.Fprintf(out, "Status: %s\n", item.Status)
				}
				if item.SourceURL != "" {
					fmt.Fprintf(out, "Source URL: %s\n", item.SourceURL)
				}
				if item.SourcePath != "" {
					fmt.Fprintf(out, "Source path: %s\n", item.SourcePath)
				}
				if item.DownloadedFile != "" {
					fmt.Fprintf(out, "Downloaded file: %s\n", item.DownloadedFile)
				}
				if item.ClipFile != "" {
					fmt.Fprintf(out, "Clip file: %s\n", item.ClipFile)
				}
				if item.FinalFile != "" {
					fmt.Fprintf(out, "Final file: %s\n", item.FinalFile)
				}
				if strings.TrimSpace(item.ProgressStage) != "" {
					fmt.Fprintf(out, "Progress: %s (%.0f%%)\n", item.ProgressStage, item.ProgressPercent)
				}
				if strings.TrimSpace(item.ProgressMessage) != "" {
					fmt.Fprintf(out, "Progress message: %s\n", item.ProgressMessage)
				}
				if item.NeedsReview {
					fmt.Fprintf(out, "Needs review: yes (%s)\n", item.ReviewReason)
				}
				if item.ErrorMessage != "" {
					fmt.Fprintf(out, "Error: %s\n", item.ErrorMessage)
				}
				if meta, err := item.Metadata(); err == nil {
					if meta.Channel != "" {
						fmt.Fprintf(out, "Channel: %s\n", meta.Channel)
					}
					if meta.DurationSeconds > 0 {
						fmt.Fprintf(out, "Source duration: %.1fs\n", meta.DurationSeconds)
					}
					if meta.Clip != nil {
						fmt.Fprintf(out, "Clip window: %.1fs from %.1fs (%dx%d @%dfps)\n",
							meta.Clip.DurationSeconds, meta.Clip.StartSeconds,
							meta.Clip.Width, meta.Clip.Height, meta.Clip.FPS)
					}
				}
				if caption := strings.TrimSpace(item.Caption); caption != "" {
					fmt.Fprintf(out, "Caption:\n%s\n", caption)
				}
				fmt.Fprintf(out, "Created: %s\n", item.CreatedAt.Local().Format(time.RFC3339))
				fmt.Fprintf(out, "Updated: %s\n", item.UpdatedAt.Local().Format(time.RFC3339))
				return nil
			})
		},
	}
}
