// Package linkid extracts canonical video identifiers from free-text links.
//
// Extraction is a pure, total function: unrelated or malformed input yields an
// empty identifier, which callers treat as "nothing to fetch".
package linkid

import (
	"regexp"
	"strings"
)

// thumbnailBase is the provider's static image host.
const thumbnailBase = "https://i.ytimg.com/vi/"

// patterns are evaluated in priority order; the first capture wins.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([^&\n?#]+)`),
	regexp.MustCompile(`/embed/([^&\n?#]+)`),
	regexp.MustCompile(`/v/([^&\n?#]+)`),
	regexp.MustCompile(`youtu\.be/([^&\n?#]+)`),
}

// Extract returns the identifier captured by the first matching link shape, or
// "" when the input matches none of them.
func Extract(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	for _, pattern := range patterns {
		if match := pattern.FindStringSubmatch(text); len(match) > 1 {
			return match[1]
		}
	}
	return ""
}

// ThumbnailURL returns the default thumbnail location for an identifier.
func ThumbnailURL(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	return thumbnailBase + id + "/default.jpg"
}

// LinkInfo describes what can be derived from a stored record link without a
// network round-trip.
type LinkInfo struct {
	LinkURL      string
	ThumbnailURL string
}

// Info derives the canonical link and thumbnail from a previously stored URL.
func Info(stored string) LinkInfo {
	link := strings.TrimSpace(stored)
	if link == "" {
		return LinkInfo{}
	}
	return LinkInfo{
		LinkURL:      link,
		ThumbnailURL: ThumbnailURL(Extract(link)),
	}
}
