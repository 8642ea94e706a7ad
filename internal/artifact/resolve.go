package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Resolved describes the artifact a finished fetch actually produced.
type Resolved struct {
	Filename string
	Size     int64
}

// Resolve locates the output file for a finished fetch. The engine's
// expected name may not match what landed on disk (the extractor appends
// suffixes to avoid clobbering an existing file), so when the expected path
// is missing we fall back to the most recently modified candidate of the
// expected type.
//
// The mtime fallback can misattribute a file when two tasks complete into
// the same directory at once; only the newest mtime breaks the tie. A miss
// returns ok=false and the caller leaves size/name empty instead of failing
// the task.
func Resolve(dir, expected string) (Resolved, bool) {
	if expected != "" {
		if fi, err := os.Stat(filepath.Join(dir, expected)); err == nil && !fi.IsDir() {
			return Resolved{Filename: expected, Size: fi.Size()}, true
		}
	}

	name, size, mod := newestByExt(dir, ".mp3")
	if name == "" || mod.IsZero() {
		return Resolved{}, false
	}
	return Resolved{Filename: name, Size: size}, true
}

func newestByExt(dir, ext string) (name string, size int64, mod time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, time.Time{}
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(mod) {
			name, size, mod = e.Name(), fi.Size(), fi.ModTime()
		}
	}
	return name, size, mod
}
