package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries all tunables for the service. Values come from the
// environment with sensible defaults; zero values keep the reference
// behavior (no concurrency cap, no fetch timeout).
type Config struct {
	Addr        string
	DownloadDir string
	MetadataDir string
	LogFile     string

	// History selects the history store backend: "inmem" or "postgres".
	History string

	// PollInterval is how often progress streams sample the registry.
	PollInterval time.Duration
	// TerminalGrace is how long a stream lingers after a terminal update so
	// a reconnecting observer can still catch it.
	TerminalGrace time.Duration
	// Retention is how long terminal tasks stay in the registry before the
	// janitor evicts them.
	Retention time.Duration

	// MaxConcurrent caps concurrently running fetches. 0 means unbounded,
	// which is an explicit decision here, not an accident.
	MaxConcurrent int
	// FetchTimeout bounds a single fetch. 0 disables the timeout and a hung
	// engine call hangs its task.
	FetchTimeout time.Duration

	// YTDLPPath is the yt-dlp binary to exec.
	YTDLPPath string
}

// FromEnv builds a Config from TUNEGRAB_* environment variables.
func FromEnv() Config {
	return Config{
		Addr:          getenv("TUNEGRAB_ADDR", ":8080"),
		DownloadDir:   getenv("TUNEGRAB_DOWNLOAD_DIR", "downloads"),
		MetadataDir:   getenv("TUNEGRAB_METADATA_DIR", "metadata"),
		LogFile:       getenv("TUNEGRAB_LOG_FILE", ""),
		History:       getenv("TUNEGRAB_HISTORY", "inmem"),
		PollInterval:  getdur("TUNEGRAB_POLL_INTERVAL_MS", 500) * time.Millisecond,
		TerminalGrace: getdur("TUNEGRAB_TERMINAL_GRACE_MS", 2000) * time.Millisecond,
		Retention:     getdur("TUNEGRAB_RETENTION_MS", 60000) * time.Millisecond,
		MaxConcurrent: getint("TUNEGRAB_MAX_CONCURRENT", 0),
		FetchTimeout:  getdur("TUNEGRAB_FETCH_TIMEOUT_MS", 0) * time.Millisecond,
		YTDLPPath:     getenv("TUNEGRAB_YTDLP", "yt-dlp"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return def
}

func getdur(k string, defMillis int) time.Duration {
	return time.Duration(getint(k, defMillis))
}
