package config

const (
	defaultDownloadDir              = "~/.local/share/reelforge/downloads"
	defaultStagingDir               = "~/.local/share/reelforge/staging"
	defaultLibraryDir               = "~/reels"
	defaultReviewDir                = "~/reels/review"
	defaultLogDir                   = "~/.local/share/reelforge/logs"
	defaultClipDurationSeconds      = 15
	defaultClipWidth                = 1080
	defaultClipHeight               = 1080
	defaultClipFPS                  = 30
	defaultVideoCodec               = "libx264"
	defaultAudioCodec               = "aac"
	defaultClipSelection            = "center"
	defaultDownloadFormat           = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	defaultDownloadTimeoutSeconds   = 1800
	defaultDownloadRetries          = 2
	defaultFallbackCaption          = "Check out this amazing video!"
	defaultHashtagLimit             = 8
	defaultLLMBaseURL               = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                 = "google/gemini-3-flash-preview"
	defaultLLMTimeoutSeconds        = 60
	defaultNotifyRequestTimeout     = 10
	defaultQueuePollInterval        = 5
	defaultErrorRetryInterval       = 10
	defaultHeartbeatInterval        = 15
	defaultHeartbeatTimeout         = 120
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			StagingDir:  defaultStagingDir,
			LibraryDir:  defaultLibraryDir,
			ReviewDir:   defaultReviewDir,
			LogDir:      defaultLogDir,
		},
		Clip: Clip{
			DurationSeconds: defaultClipDurationSeconds,
			Width:           defaultClipWidth,
			Height:          defaultClipHeight,
			FPS:             defaultClipFPS,
			VideoCodec:      defaultVideoCodec,
			AudioCodec:      defaultAudioCodec,
			Selection:       defaultClipSelection,
		},
		Download: Download{
			Format:            defaultDownloadFormat,
			TimeoutSeconds:    defaultDownloadTimeoutSeconds,
			Retries:           defaultDownloadRetries,
			RestrictFilenames: true,
		},
		Caption: Caption{
			Enabled:      true,
			Fallback:     defaultFallbackCaption,
			HashtagLimit: defaultHashtagLimit,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Fetch:          true,
			Clip:           true,
			Publish:        true,
			Queue:          true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
