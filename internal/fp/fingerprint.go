package fp

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// NormalizeSource trims surrounding whitespace. Further normalization rules
// (e.g., URL normalization) live in the validate package.
func NormalizeSource(s string) string {
	return strings.TrimSpace(s)
}

// Fingerprint computes a stable hex-encoded SHA-256 over the normalized
// source, the output filename and the completion time. It is used to make
// history inserts idempotent: replaying the same finalization writes the
// same fingerprint and is dropped by the store.
func Fingerprint(source, filename string, completedAt time.Time) string {
	h := sha256.New()
	// NUL separators cannot be confused with field content here.
	h.Write([]byte(NormalizeSource(source)))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(filename)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(completedAt.UnixNano(), 10)))
	return hex.EncodeToString(h.Sum(nil))
}
