package history

import (
	"context"
	"testing"
	"time"

	"github.com/tinoosan/tunegrab/internal/data"
)

func rec(src, name string, size int64, at time.Time) *data.HistoryRecord {
	return &data.HistoryRecord{
		Source:      src,
		Title:       "Title " + name,
		Filename:    name,
		FileSize:    size,
		CompletedAt: at,
	}
}

func TestInsertAndQueryOrder(t *testing.T) {
	ctx := context.Background()
	s := NewInMemStore()
	base := time.Now()

	for i, name := range []string{"a.mp3", "b.mp3", "c.mp3"} {
		if err := s.Insert(ctx, rec("src"+name, name, 10, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := s.Query(ctx, 2, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Filename != "c.mp3" || got[1].Filename != "b.mp3" {
		t.Fatalf("expected most-recent-first, got %s, %s", got[0].Filename, got[1].Filename)
	}

	got, _ = s.Query(ctx, 2, 2)
	if len(got) != 1 || got[0].Filename != "a.mp3" {
		t.Fatalf("offset paging broken: %+v", got)
	}
}

func TestInsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemStore()
	at := time.Now()

	r := rec("src", "a.mp3", 10, at)
	if err := s.Insert(ctx, r); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, r); err != nil {
		t.Fatalf("replayed Insert: %v", err)
	}

	got, _ := s.Query(ctx, 10, 0)
	if len(got) != 1 {
		t.Fatalf("expected 1 record after replay, got %d", len(got))
	}
}

func TestQueryClampsLimit(t *testing.T) {
	ctx := context.Background()
	s := NewInMemStore()
	base := time.Now()
	for i := 0; i < 3; i++ {
		_ = s.Insert(ctx, rec("src", string(rune('a'+i))+".mp3", 1, base.Add(time.Duration(i)*time.Second)))
	}

	if got, _ := s.Query(ctx, 0, 0); len(got) != 1 {
		t.Fatalf("limit 0 should clamp to 1, got %d records", len(got))
	}
	if got, _ := s.Query(ctx, 1000, -5); len(got) != 3 {
		t.Fatalf("oversized limit / negative offset should still return all, got %d", len(got))
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := NewInMemStore()
	base := time.Now()
	_ = s.Insert(ctx, rec("s1", "a.mp3", 1024*1024, base))
	_ = s.Insert(ctx, rec("s2", "b.mp3", 512*1024, base.Add(time.Second)))

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalDownloads != 2 {
		t.Fatalf("expected 2 downloads, got %d", st.TotalDownloads)
	}
	if st.TotalSizeBytes != 1536*1024 {
		t.Fatalf("unexpected total bytes %d", st.TotalSizeBytes)
	}
	if st.TotalSizeMB != 1.5 {
		t.Fatalf("unexpected MB %v", st.TotalSizeMB)
	}
}
