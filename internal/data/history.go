package data

import (
	"fmt"
	"time"
)

// HistoryRecord is a durable fact: a completed, successful download.
// Records are immutable once written.
type HistoryRecord struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Filename    string    `json:"filename"`
	CompletedAt time.Time `json:"completedAt"`
	Duration    string    `json:"duration,omitempty"`
	Uploader    string    `json:"uploader,omitempty"`
	FileSize    int64     `json:"fileSize,omitempty"`
	VideoID     string    `json:"videoId,omitempty"`
}

// Stats aggregates the history store.
type Stats struct {
	TotalDownloads int64   `json:"totalDownloads"`
	TotalSizeBytes int64   `json:"totalSizeBytes"`
	TotalSizeMB    float64 `json:"totalSizeMb"`
}

// VideoInfo is descriptive metadata for a source, extracted without
// downloading.
type VideoInfo struct {
	Title             string   `json:"title"`
	Uploader          string   `json:"uploader"`
	Duration          int64    `json:"duration,omitempty"`
	DurationFormatted string   `json:"durationFormatted,omitempty"`
	Thumbnail         string   `json:"thumbnail,omitempty"`
	VideoID           string   `json:"videoId,omitempty"`
	UploadDate        string   `json:"uploadDate,omitempty"`
	ViewCount         int64    `json:"viewCount,omitempty"`
	LikeCount         int64    `json:"likeCount,omitempty"`
	Description       string   `json:"description,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	WebpageURL        string   `json:"webpageUrl,omitempty"`
}

// FormatDuration renders seconds as MM:SS or HH:MM:SS.
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return ""
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
