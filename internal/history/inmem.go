package history

import (
	"context"
	"math"
	"sync"

	"github.com/tinoosan/tunegrab/internal/data"
	"github.com/tinoosan/tunegrab/internal/fp"
)

// InMemStore keeps history in process memory. Intended for development and
// tests; records do not survive a restart.
type InMemStore struct {
	mu     sync.RWMutex
	recs   []data.HistoryRecord
	seen   map[string]bool
	nextID int64
}

func NewInMemStore() *InMemStore {
	return &InMemStore{
		seen:   make(map[string]bool),
		nextID: 1,
	}
}

var _ Store = (*InMemStore)(nil)

func (s *InMemStore) Insert(ctx context.Context, rec *data.HistoryRecord) error {
	key := fp.Fingerprint(rec.Source, rec.Filename, rec.CompletedAt)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[key] {
		return nil
	}
	s.seen[key] = true
	r := *rec
	r.ID = s.nextID
	s.nextID++
	s.recs = append(s.recs, r)
	return nil
}

func (s *InMemStore) Query(ctx context.Context, limit, offset int) ([]data.HistoryRecord, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Most recent first: records append in completion order.
	out := make([]data.HistoryRecord, 0, limit)
	for i := len(s.recs) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.recs[i])
	}
	return out, nil
}

func (s *InMemStore) Stats(ctx context.Context) (data.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st data.Stats
	st.TotalDownloads = int64(len(s.recs))
	for _, r := range s.recs {
		st.TotalSizeBytes += r.FileSize
	}
	st.TotalSizeMB = math.Round(float64(st.TotalSizeBytes)/(1024*1024)*100) / 100
	return st, nil
}
