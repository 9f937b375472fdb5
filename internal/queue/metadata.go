package queue

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Metadata captures what the downloader learned about a source video plus the
// clip plan later stages agreed on. It round-trips through the metadata_json
// column.
type Metadata struct {
	VideoID         string    `json:"video_id,omitempty"`
	Title           string    `json:"title,omitempty"`
	Channel         string    `json:"channel,omitempty"`
	WebpageURL      string    `json:"webpage_url,omitempty"`
	UploadDate      string    `json:"upload_date,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Clip            *ClipSpec `json:"clip,omitempty"`
}

// ClipSpec records the cut the clipping stage performed.
type ClipSpec struct {
	StartSeconds    float64 `json:"start_seconds"`
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	FPS             int     `json:"fps"`
	VideoCodec      string  `json:"video_codec"`
	AudioCodec      string  `json:"audio_codec"`
}

// ParseMetadata decodes a metadata JSON payload. An empty payload yields a
// zero Metadata without error.
func ParseMetadata(payload string) (Metadata, error) {
	var meta Metadata
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(trimmed), &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata: %w", err)
	}
	return meta, nil
}

// Encode serializes metadata back to its storage form.
func (m Metadata) Encode() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(data), nil
}

// Metadata decodes the item's stored metadata.
func (i *Item) Metadata() (Metadata, error) {
	return ParseMetadata(i.MetadataJSON)
}

// SetMetadata serializes and stores metadata on the item.
func (i *Item) SetMetadata(meta Metadata) error {
	encoded, err := meta.Encode()
	if err != nil {
		return err
	}
	i.MetadataJSON = encoded
	if i.Title == "" && meta.Title != "" {
		i.Title = meta.Title
	}
	return nil
}
