package history

import (
	"context"
	"database/sql"
	"math"
	"net"
	"net/url"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tinoosan/tunegrab/internal/data"
	"github.com/tinoosan/tunegrab/internal/fp"
)

// PostgresStore implements Store backed by PostgreSQL. It expects a table
// `history` with a unique index on `fingerprint`, created on startup.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a store using the provided DSN.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreFromEnv constructs a DSN using component env vars.
// Recognized envs (with defaults):
//
//	POSTGRES_HOST (postgres), POSTGRES_PORT (5432), POSTGRES_DB (tunegrab),
//	POSTGRES_USER (tunegrab), POSTGRES_PASSWORD (empty), POSTGRES_SSLMODE (disable)
//
// Credentials and db name are URL-encoded to handle special characters
// safely.
func NewPostgresStoreFromEnv() (*PostgresStore, error) {
	host := getenv("POSTGRES_HOST", "postgres")
	port := getenv("POSTGRES_PORT", "5432")
	db := getenv("POSTGRES_DB", "tunegrab")
	user := getenv("POSTGRES_USER", "tunegrab")
	pass := getenv("POSTGRES_PASSWORD", "")
	ssl := getenv("POSTGRES_SSLMODE", "disable")

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, pass),
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + db,
	}
	q := url.Values{}
	q.Set("sslmode", ssl)
	u.RawQuery = q.Encode()
	return NewPostgresStore(u.String())
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS history (
    id BIGSERIAL PRIMARY KEY,
    source TEXT NOT NULL,
    title TEXT NOT NULL,
    filename TEXT NOT NULL,
    completed_at TIMESTAMPTZ NOT NULL,
    duration TEXT NOT NULL DEFAULT '',
    uploader TEXT NOT NULL DEFAULT '',
    file_size BIGINT NOT NULL DEFAULT 0,
    video_id TEXT NOT NULL DEFAULT '',
    fingerprint TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_history_completed_at ON history(completed_at DESC);
`)
	return err
}

var _ Store = (*PostgresStore)(nil)

// Insert writes the record. A fingerprint conflict means the same
// finalization was already recorded and the insert is a no-op.
func (s *PostgresStore) Insert(ctx context.Context, rec *data.HistoryRecord) error {
	key := fp.Fingerprint(rec.Source, rec.Filename, rec.CompletedAt)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO history (source,title,filename,completed_at,duration,uploader,file_size,video_id,fingerprint)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (fingerprint) DO NOTHING`,
		rec.Source, rec.Title, rec.Filename, rec.CompletedAt, rec.Duration, rec.Uploader, rec.FileSize, rec.VideoID, key)
	return err
}

func (s *PostgresStore) Query(ctx context.Context, limit, offset int) ([]data.HistoryRecord, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id,source,title,filename,completed_at,duration,uploader,file_size,video_id
FROM history ORDER BY completed_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []data.HistoryRecord
	for rows.Next() {
		var r data.HistoryRecord
		if err := rows.Scan(&r.ID, &r.Source, &r.Title, &r.Filename, &r.CompletedAt, &r.Duration, &r.Uploader, &r.FileSize, &r.VideoID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context) (data.Stats, error) {
	var st data.Stats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(file_size),0) FROM history`)
	if err := row.Scan(&st.TotalDownloads, &st.TotalSizeBytes); err != nil {
		return data.Stats{}, err
	}
	st.TotalSizeMB = math.Round(float64(st.TotalSizeBytes)/(1024*1024)*100) / 100
	return st, nil
}
