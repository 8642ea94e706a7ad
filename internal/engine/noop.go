package engine

import (
	"context"
	"fmt"
)

type noopFetcher struct{}

// NewNoop returns a Fetcher that succeeds immediately without doing any
// work. Useful for development wiring.
func NewNoop() Fetcher {
	return &noopFetcher{}
}

func (f *noopFetcher) Fetch(ctx context.Context, source string, fn ProgressFunc) (*Result, error) {
	fmt.Println("noop: fetch", source)
	if fn != nil {
		fn(Progress{Percentage: 100})
	}
	return &Result{Title: "noop", Filename: "noop.mp3"}, nil
}
