package history

import (
	"context"

	"github.com/tinoosan/tunegrab/internal/data"
)

// Store is the durable record of completed downloads. Insert is idempotent
// on the record's fingerprint; Query returns most-recent-first.
type Store interface {
	Reader
	Writer
}

type Reader interface {
	Query(ctx context.Context, limit, offset int) ([]data.HistoryRecord, error)
	Stats(ctx context.Context) (data.Stats, error)
}

type Writer interface {
	Insert(ctx context.Context, rec *data.HistoryRecord) error
}

// clampLimit bounds a caller-supplied page size to 1..100.
func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > 100 {
		return 100
	}
	return limit
}
