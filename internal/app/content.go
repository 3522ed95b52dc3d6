package app

import (
	"regexp"
	"strings"
)

// The image marker grammar: "[Image]: <url>" appended after the text,
// separated by a blank line. It doubles as the on-disk message format,
// so the exact shape must not change.
var (
	imageMarkerRegex = regexp.MustCompile(`(?i)\[Image\]:\s*(https?://\S+)`)
	imageStripRegex  = regexp.MustCompile(`(?i)\n?\n?\s*\[Image\]:\s*https?://\S+`)
)

// EncodeContent folds a message's text and optional image URL into a
// single storable string. With no URL the text is returned unchanged.
func EncodeContent(text, imageURL string) string {
	if imageURL == "" {
		return text
	}
	return text + "\n\n[Image]: " + imageURL
}

// DecodeContent is the inverse of EncodeContent: it extracts the image
// URL if a marker is present and returns the remaining text with the
// marker stripped and trimmed. Content without a marker comes back
// verbatim.
func DecodeContent(content string) (text, imageURL string) {
	m := imageMarkerRegex.FindStringSubmatch(content)
	if m == nil {
		return content, ""
	}
	text = strings.TrimSpace(imageStripRegex.ReplaceAllString(content, ""))
	return text, m[1]
}

// HasImageMarker reports whether content embeds an image reference.
func HasImageMarker(content string) bool {
	return imageMarkerRegex.MatchString(content)
}
