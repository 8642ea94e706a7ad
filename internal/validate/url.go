package validate

import (
	"regexp"
	"strings"
)

// patterns cover the accepted YouTube URL shapes. The capture group is the
// 11-character video ID.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^(?:https?://)?(?:m\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
}

// IsValid reports whether url is a recognized YouTube video URL.
func IsValid(url string) bool {
	_, ok := VideoID(url)
	return ok
}

// VideoID extracts the 11-character video ID from url.
func VideoID(url string) (string, bool) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", false
	}
	for _, p := range patterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// Normalize rewrites url to the canonical watch URL. Unrecognized inputs are
// returned unchanged; callers validate first.
func Normalize(url string) string {
	if id, ok := VideoID(url); ok {
		return "https://www.youtube.com/watch?v=" + id
	}
	return url
}
