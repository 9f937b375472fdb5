package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelforge/internal/logging"
	"reelforge/internal/queue"
	"reelforge/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	logger := logging.WithContext(ctx, base).With(logging.String(logging.FieldComponent, "workflow-manager"))

	message := classifyStageFailure(stageName, stageErr)
	resolved := services.FailureStatus(stageErr)
	if resolved == queue.StatusReview {
		item.SetReview(message)
		m.relocateReviewArtifact(item, logger)
	} else {
		item.SetFailed(message)
	}

	logger.Error("stage failed",
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("resolved_status", string(resolved)),
		logging.String("error_message", message),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastItem(item)
	m.notifyStageFailure(ctx, stageName, item, stageErr, resolved)
	m.checkQueueCompletion(ctx)
}

// relocateReviewArtifact moves a rendered clip out of staging when the item is
// parked for review, so staging cleanup cannot discard the evidence a human
// needs to look at.
func (m *Manager) relocateReviewArtifact(item *queue.Item, logger *slog.Logger) {
	clipFile := strings.TrimSpace(item.ClipFile)
	if clipFile == "" || m.cfg == nil {
		return
	}
	reviewDir := strings.TrimSpace(m.cfg.Paths.ReviewDir)
	if reviewDir == "" {
		return
	}
	if _, err := os.Stat(clipFile); err != nil {
		return
	}
	if err := os.MkdirAll(reviewDir, 0o755); err != nil {
		logger.Warn("could not create review directory", logging.Error(err))
		return
	}
	dest := filepath.Join(reviewDir, fmt.Sprintf("item-%d-%s", item.ID, filepath.Base(clipFile)))
	if err := os.Rename(clipFile, dest); err != nil {
		logger.Warn("could not move clip to review directory", logging.Error(err))
		return
	}
	item.ClipFile = dest
	logger.Info("clip moved to review directory", logging.String("file", dest))
}

func (m *Manager) notifyStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error, resolved queue.Status) {
	if m.notifier == nil || stageErr == nil {
		return
	}
	logger := m.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	var err error
	if resolved == queue.StatusReview {
		err = m.notifier.NotifyReviewRequired(ctx, item.DisplayTitle(), strings.TrimSpace(item.ReviewReason))
	} else {
		err = m.notifier.NotifyError(ctx, stageErr, fmt.Sprintf("%s (item #%d)", stageName, item.ID))
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send failure notification")
		} else {
			logger.Debug("stage failure notification failed", logging.Error(err))
		}
	}
}

func classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		if stageName != "" {
			return fmt.Sprintf("%s failed without error detail", stageName)
		}
		return "workflow failed without error detail"
	}
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}
	return message
}
