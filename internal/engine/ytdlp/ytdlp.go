package ytdlp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tinoosan/tunegrab/internal/engine"
)

// Engine implements engine.Fetcher by shelling out to yt-dlp. Progress is
// parsed from the process stdout with --newline so every update lands on
// its own line.
type Engine struct {
	bin string
	dir string
}

// New creates an Engine using the given yt-dlp binary and download
// directory.
func New(bin, dir string) *Engine {
	if bin == "" {
		bin = "yt-dlp"
	}
	return &Engine{bin: bin, dir: dir}
}

var _ engine.Fetcher = (*Engine)(nil)

// probeInfo is the subset of the yt-dlp -J dump we care about.
type probeInfo struct {
	Title    string `json:"title"`
	Uploader string `json:"uploader"`
	Duration int64  `json:"duration"`
}

func (e *Engine) Fetch(ctx context.Context, source string, fn engine.ProgressFunc) (*engine.Result, error) {
	info, err := e.probe(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", source, err)
	}

	outTmpl := filepath.Join(e.dir, "%(title)s.%(ext)s")
	cmd := exec.CommandContext(ctx, e.bin,
		"--no-playlist",
		"--newline",
		"-x", "--audio-format", "mp3",
		"-o", outTmpl,
		source,
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start yt-dlp: %w", err)
	}

	var dest string
	sc := bufio.NewScanner(stdout)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if d, ok := parseDestination(line); ok {
			dest = d
			continue
		}
		if p, ok := parseProgress(line); ok {
			if dest != "" {
				p.Filename = filepath.Base(dest)
			}
			if fn != nil {
				fn(p)
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	filename := expectedFilename(info.Title, dest)
	return &engine.Result{
		Title:    info.Title,
		Uploader: info.Uploader,
		Duration: info.Duration,
		Filename: filename,
	}, nil
}

// probe fetches metadata without downloading, mirroring an info dump
// before the transfer starts.
func (e *Engine) probe(ctx context.Context, source string) (*probeInfo, error) {
	out, err := exec.CommandContext(ctx, e.bin, "--no-playlist", "-J", source).Output()
	if err != nil {
		return nil, err
	}
	var info probeInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("decode -J dump: %w", err)
	}
	return &info, nil
}

// progressRe matches lines like:
//
//	[download]  45.3% of 10.53MiB at 1.25MiB/s ETA 00:04
var progressRe = regexp.MustCompile(`^\[download\]\s+([\d.]+)% of ~?\s*(\S+)(?: at\s+(\S+))?`)

// destRe matches both the downloader and the post-processor destination
// lines.
var destRe = regexp.MustCompile(`^\[(?:download|ExtractAudio)\] Destination: (.+)$`)

func parseProgress(line string) (engine.Progress, bool) {
	m := progressRe.FindStringSubmatch(line)
	if m == nil {
		return engine.Progress{}, false
	}
	var pct float64
	if _, err := fmt.Sscanf(m[1], "%f", &pct); err != nil {
		return engine.Progress{}, false
	}
	p := engine.Progress{
		Percentage: pct,
		Total:      m[2],
	}
	if m[3] != "" && m[3] != "Unknown" {
		p.Speed = m[3]
	}
	return p, true
}

func parseDestination(line string) (string, bool) {
	m := destRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

var invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// expectedFilename prefers the destination reported by the process; when
// none was seen it derives the name from the title the way the output
// template would.
func expectedFilename(title, dest string) string {
	if dest != "" {
		base := filepath.Base(dest)
		ext := filepath.Ext(base)
		if ext != "" && ext != ".mp3" {
			base = strings.TrimSuffix(base, ext) + ".mp3"
		}
		return base
	}
	if title == "" {
		title = "Unknown"
	}
	return invalidNameChars.ReplaceAllString(title, "_") + ".mp3"
}
