package llm

import (
	"fmt"
	"strings"
)

// CaptionPrompt captures the instructions sent to the model when writing an
// Instagram caption for a clip. Keep updates centralized here so it is easy
// to tweak without hunting through call sites.
const CaptionPrompt = `You are a social media copywriter. Write a short, engaging Instagram caption for a video clip.

Rules:

- One or two sentences, upbeat but not clickbait.

- Do not mention that the clip came from YouTube or any other platform.

- Do not use emoji in the caption text.

- Suggest up to 8 relevant hashtags, lowercase, without the # prefix.

You must respond ONLY with a JSON object like: {"caption": "text", "hashtags": ["tag1", "tag2"]}

Now write a caption for this video:`

func captionUserPrompt(title, channel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s", title)
	if channel = strings.TrimSpace(channel); channel != "" {
		fmt.Fprintf(&b, "\nChannel: %s", channel)
	}
	return b.String()
}

// normalizeHashtag lowercases a tag and strips the # prefix and inner spaces.
func normalizeHashtag(tag string) string {
	tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	tag = strings.ReplaceAll(tag, " ", "")
	return strings.ToLower(tag)
}
