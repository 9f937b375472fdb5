package config

import (
	"errors"
	"fmt"
)

var clipSelections = map[string]struct{}{
	"center": {},
	"start":  {},
	"offset": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateClip(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateCaption(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateClip() error {
	if c.Clip.DurationSeconds <= 0 {
		return errors.New("clip.duration_seconds must be positive")
	}
	if c.Clip.Width <= 0 || c.Clip.Height <= 0 {
		return errors.New("clip.width and clip.height must be positive")
	}
	// libx264 with yuv420p requires even dimensions.
	if c.Clip.Width%2 != 0 || c.Clip.Height%2 != 0 {
		return errors.New("clip.width and clip.height must be even")
	}
	if c.Clip.FPS <= 0 {
		return errors.New("clip.fps must be positive")
	}
	if _, ok := clipSelections[c.Clip.Selection]; !ok {
		return fmt.Errorf("clip.selection must be one of center, start, offset (got %q)", c.Clip.Selection)
	}
	if c.Clip.Selection == "offset" && c.Clip.StartOffsetSeconds < 0 {
		return errors.New("clip.start_offset_seconds must be >= 0 when clip.selection is offset")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.Format == "" {
		return errors.New("download.format must be set")
	}
	if c.Download.TimeoutSeconds <= 0 {
		return errors.New("download.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateCaption() error {
	if c.Caption.Enabled && c.LLM.APIKey == "" {
		// Caption generation degrades to the fallback text without a key,
		// so a missing key is not fatal. Validation only rejects a blank
		// fallback because that would publish clips with no caption at all.
		if c.Caption.Fallback == "" {
			return errors.New("caption.fallback must be set")
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
