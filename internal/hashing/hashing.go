// Package hashing provides content digests for duplicate detection.
//
// Full digests cover every byte and are safe for exact-duplicate
// classification. Chunked digests hash only a bounded prefix and suffix
// window plus the total length; they exist to bound I/O cost on large media
// and detect byte-identical copies only. A chunked digest is not suitable
// for deduplicating re-encoded or trimmed media.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Mode selects how much of the content a digest covers.
type Mode string

const (
	// ModeFull hashes the complete byte content.
	ModeFull Mode = "full"
	// ModeChunked hashes the length plus a prefix and suffix window.
	ModeChunked Mode = "chunked"
)

// DefaultChunkWindow is the prefix/suffix window size for chunked digests.
const DefaultChunkWindow = 1 << 20

// Digest returns the hex-encoded sha256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ChunkedDigest returns a digest over the content length, the first window
// bytes, and the last window bytes of data. Content shorter than twice the
// window degrades to a full digest of the same shape, so the two cases never
// collide for differing content of equal length within the windows.
func ChunkedDigest(data []byte, window int) string {
	if window <= 0 {
		window = DefaultChunkWindow
	}
	h := sha256.New()
	_, _ = h.Write([]byte(strconv.Itoa(len(data))))
	_, _ = h.Write([]byte{0})
	if len(data) <= 2*window {
		_, _ = h.Write(data)
	} else {
		_, _ = h.Write(data[:window])
		_, _ = h.Write([]byte{0})
		_, _ = h.Write(data[len(data)-window:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Policy decides digest mode by content size.
type Policy struct {
	// ChunkThreshold is the size, in bytes, at or above which content is
	// hashed in chunked mode. Zero disables chunking.
	ChunkThreshold int64
	// Window is the prefix/suffix window for chunked digests.
	Window int
}

// ForSize returns the mode the policy selects for content of n bytes.
func (p Policy) ForSize(n int64) Mode {
	if p.ChunkThreshold > 0 && n >= p.ChunkThreshold {
		return ModeChunked
	}
	return ModeFull
}

// DigestWith hashes data using the mode the policy selects for its size.
func (p Policy) DigestWith(data []byte) (string, Mode) {
	if p.ForSize(int64(len(data))) == ModeChunked {
		return ChunkedDigest(data, p.Window), ModeChunked
	}
	return Digest(data), ModeFull
}
