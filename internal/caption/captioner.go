package caption

import (
	"context"
	"log/slog"
	"strings"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/notifications"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/services/llm"
	"reelforge/internal/stage"
)

// Instagram rejects captions longer than this.
const maxCaptionLength = 2200

// captionClient is the slice of the LLM client the captioner needs.
type captionClient interface {
	GenerateCaption(ctx context.Context, videoTitle, channel string) (llm.Caption, error)
	HealthCheck(ctx context.Context) error
}

// Captioner writes the caption that accompanies a published clip. Caption
// generation is best-effort: when the LLM is unavailable or misbehaves the
// configured fallback caption is used and the item continues.
type Captioner struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	client   captionClient
	notifier notifications.Service
}

// NewCaptioner builds a captioner with the default LLM client.
func NewCaptioner(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Captioner {
	var client captionClient
	if cfg != nil && cfg.Caption.Enabled && strings.TrimSpace(cfg.LLM.APIKey) != "" {
		llmCfg := cfg.GetLLM()
		client = llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
		})
	}
	return NewCaptionerWithDependencies(cfg, store, logger, client, notifications.NewService(cfg))
}

// NewCaptionerWithDependencies allows injecting custom dependencies (used for tests).
func NewCaptionerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client captionClient, notifier notifications.Service) *Captioner {
	c := &Captioner{
		store:    store,
		cfg:      cfg,
		client:   client,
		notifier: notifier,
	}
	c.SetLogger(logger)
	return c
}

// SetLogger updates the captioner's logging destination while preserving component labeling.
func (c *Captioner) SetLogger(logger *slog.Logger) {
	c.logger = logging.NewComponentLogger(logger, "captioner")
}

func (c *Captioner) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	item.InitProgress("Captioning", "Generating caption")
	logger.Debug("starting caption preparation")
	return nil
}

func (c *Captioner) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)

	if strings.TrimSpace(item.ClipFile) == "" {
		return services.Wrap(
			services.ErrValidation,
			"captioning",
			"validate inputs",
			"No clip file available for captioning; ensure the clipping stage completed",
			nil,
		)
	}

	item.Caption = c.buildCaption(ctx, item, logger)

	item.SetProgressComplete("Captioned", "Caption ready")
	logger.Info("caption ready", logging.Int("length", len(item.Caption)))
	return nil
}

func (c *Captioner) buildCaption(ctx context.Context, item *queue.Item, logger *slog.Logger) string {
	fallback := strings.TrimSpace(c.cfg.Caption.Fallback)

	if c.client == nil {
		logger.Debug("caption generation disabled, using fallback")
		return clampCaption(fallback)
	}

	meta, err := item.Metadata()
	if err != nil {
		logger.Warn("unreadable item metadata, using fallback caption", logging.Error(err))
		return clampCaption(fallback)
	}

	title := item.DisplayTitle()
	generated, err := c.client.GenerateCaption(ctx, title, meta.Channel)
	if err != nil {
		logger.Warn("caption generation failed, using fallback", logging.Error(err))
		return clampCaption(fallback)
	}

	return clampCaption(composeCaption(generated, c.cfg.Caption.HashtagLimit))
}

// composeCaption joins the caption text with its hashtag block.
func composeCaption(caption llm.Caption, hashtagLimit int) string {
	text := strings.TrimSpace(caption.Text)
	tags := caption.Hashtags
	if hashtagLimit >= 0 && len(tags) > hashtagLimit {
		tags = tags[:hashtagLimit]
	}
	if len(tags) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n")
	for i, tag := range tags {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('#')
		b.WriteString(tag)
	}
	return b.String()
}

func clampCaption(caption string) string {
	if len(caption) <= maxCaptionLength {
		return caption
	}
	runes := []rune(caption)
	if len(runes) > maxCaptionLength {
		runes = runes[:maxCaptionLength]
	}
	return strings.TrimSpace(string(runes))
}

func (c *Captioner) HealthCheck(ctx context.Context) stage.Health {
	const name = "captioner"
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(c.cfg.Caption.Fallback) == "" {
		return stage.Unhealthy(name, "fallback caption not configured")
	}
	// The LLM being down never blocks the pipeline, so its health is
	// informational only.
	return stage.Healthy(name)
}
