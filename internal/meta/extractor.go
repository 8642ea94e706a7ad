package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/tinoosan/tunegrab/internal/data"
	"github.com/tinoosan/tunegrab/internal/validate"
)

// Extractor pulls descriptive metadata for a source without downloading it.
// The runner consumes it best-effort: extraction failures degrade the
// history record, they never fail the task.
type Extractor interface {
	Extract(ctx context.Context, url string) (*data.VideoInfo, error)
	// SaveSidecar persists the metadata as a JSON side-artifact and returns
	// the written path.
	SaveSidecar(info *data.VideoInfo) (string, error)
}

// YTDLP implements Extractor by running yt-dlp -J.
type YTDLP struct {
	bin string
	dir string
}

// NewYTDLP creates an extractor using the given binary and sidecar
// directory.
func NewYTDLP(bin, dir string) *YTDLP {
	if bin == "" {
		bin = "yt-dlp"
	}
	return &YTDLP{bin: bin, dir: dir}
}

var _ Extractor = (*YTDLP)(nil)

type infoDump struct {
	Title       string   `json:"title"`
	Uploader    string   `json:"uploader"`
	Duration    int64    `json:"duration"`
	Thumbnail   string   `json:"thumbnail"`
	UploadDate  string   `json:"upload_date"`
	ViewCount   int64    `json:"view_count"`
	LikeCount   int64    `json:"like_count"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	WebpageURL  string   `json:"webpage_url"`
}

func (y *YTDLP) Extract(ctx context.Context, url string) (*data.VideoInfo, error) {
	out, err := exec.CommandContext(ctx, y.bin, "--no-playlist", "-J", url).Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp -J: %w", err)
	}
	var dump infoDump
	if err := json.Unmarshal(out, &dump); err != nil {
		return nil, fmt.Errorf("decode info dump: %w", err)
	}
	info := &data.VideoInfo{
		Title:             dump.Title,
		Uploader:          dump.Uploader,
		Duration:          dump.Duration,
		DurationFormatted: data.FormatDuration(dump.Duration),
		Thumbnail:         dump.Thumbnail,
		UploadDate:        dump.UploadDate,
		ViewCount:         dump.ViewCount,
		LikeCount:         dump.LikeCount,
		Description:       dump.Description,
		Tags:              dump.Tags,
		WebpageURL:        dump.WebpageURL,
	}
	if id, ok := validate.VideoID(url); ok {
		info.VideoID = id
	}
	if info.Title == "" {
		info.Title = "Unknown"
	}
	if info.Uploader == "" {
		info.Uploader = "Unknown"
	}
	return info, nil
}

func (y *YTDLP) SaveSidecar(info *data.VideoInfo) (string, error) {
	if err := os.MkdirAll(y.dir, 0o755); err != nil {
		return "", err
	}
	name := info.VideoID
	if name == "" {
		name = fmt.Sprintf("meta-%d", time.Now().UnixNano())
	}
	path := filepath.Join(y.dir, name+".json")
	b, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
