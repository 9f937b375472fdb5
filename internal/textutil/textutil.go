// Package textutil provides small helpers for titles and filesystem-safe names.
package textutil

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// TitleFromPath derives a presentable title from a media file path. Separator
// characters become spaces and words are title-cased.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	replacer := strings.NewReplacer("_", " ", "-", " ", ".", " ")
	base = replacer.Replace(base)
	base = CollapseWhitespace(base)
	if base == "" {
		return ""
	}
	return titleCaser.String(base)
}

// CollapseWhitespace trims and folds runs of whitespace into single spaces.
func CollapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// SanitizeFileName strips characters that are unsafe in filenames and folds
// whitespace to underscores. The extension, if any, should be appended by the
// caller.
func SanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return -1
		default:
			return r
		}
	}, name)
	cleaned = CollapseWhitespace(cleaned)
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		return "clip"
	}
	const maxLen = 120
	if len(cleaned) > maxLen {
		cleaned = truncateOnRuneBoundary(cleaned, maxLen)
		cleaned = strings.Trim(cleaned, "._")
	}
	return cleaned
}

// truncateOnRuneBoundary cuts value to at most maxBytes without splitting a
// multibyte rune.
func truncateOnRuneBoundary(value string, maxBytes int) string {
	if len(value) <= maxBytes {
		return value
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}
