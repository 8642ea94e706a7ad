package engine

import "context"

// Fetcher performs the actual fetch/convert of a source into a local audio
// file. Implementations call fn from a single goroutine per fetch, in emit
// order, and return once the transfer is terminal.
type Fetcher interface {
	Fetch(ctx context.Context, source string, fn ProgressFunc) (*Result, error)
}

// ProgressFunc receives periodic status events during a fetch. It must be
// cheap and non-blocking; the runner maps it straight onto a registry update.
type ProgressFunc func(Progress)

// Progress is one status event from an in-flight fetch. Label fields are
// human-readable and may be empty when the engine cannot estimate them.
type Progress struct {
	Percentage float64
	Downloaded string
	Total      string
	Speed      string
	// Filename is the engine's provisional output name. The artifact that
	// actually lands on disk may differ; the runner resolves that after
	// completion.
	Filename string
}

// Result is the terminal outcome of a successful fetch.
type Result struct {
	Title    string
	Uploader string
	Duration int64
	// Filename is the expected output file name, relative to the configured
	// download directory.
	Filename string
}
