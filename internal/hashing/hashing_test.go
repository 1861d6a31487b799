package hashing_test

import (
	"bytes"
	"strings"
	"testing"

	"blockscan/internal/hashing"
)

func TestDigestIsDeterministic(t *testing.T) {
	a := hashing.Digest([]byte("scratch cat"))
	b := hashing.Digest([]byte("scratch cat"))
	if a != b {
		t.Fatalf("digest not deterministic: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == hashing.Digest([]byte("scratch dog")) {
		t.Fatal("different content produced identical digest")
	}
}

func TestChunkedDigestShortContentMatchesByteIdenticalCopy(t *testing.T) {
	data := []byte("short clip")
	if hashing.ChunkedDigest(data, 1024) != hashing.ChunkedDigest(append([]byte(nil), data...), 1024) {
		t.Fatal("chunked digest differs for identical content")
	}
}

func TestChunkedDigestSeesPrefixSuffixAndLength(t *testing.T) {
	const window = 8
	base := []byte(strings.Repeat("a", 64))

	prefixEdit := append([]byte(nil), base...)
	prefixEdit[0] = 'b'
	suffixEdit := append([]byte(nil), base...)
	suffixEdit[len(suffixEdit)-1] = 'b'
	longer := append(append([]byte(nil), base...), 'a')

	for name, variant := range map[string][]byte{
		"prefix": prefixEdit,
		"suffix": suffixEdit,
		"length": longer,
	} {
		if hashing.ChunkedDigest(base, window) == hashing.ChunkedDigest(variant, window) {
			t.Fatalf("%s change not reflected in chunked digest", name)
		}
	}
}

func TestChunkedDigestBlindToInteriorChanges(t *testing.T) {
	const window = 8
	base := bytes.Repeat([]byte{'x'}, 64)
	interior := append([]byte(nil), base...)
	interior[32] = 'y'

	if hashing.ChunkedDigest(base, window) != hashing.ChunkedDigest(interior, window) {
		t.Fatal("chunked digest should not observe interior bytes outside the windows")
	}
}

func TestPolicySelectsModeBySize(t *testing.T) {
	p := hashing.Policy{ChunkThreshold: 10, Window: 4}
	if got := p.ForSize(9); got != hashing.ModeFull {
		t.Fatalf("below threshold: got %s", got)
	}
	if got := p.ForSize(10); got != hashing.ModeChunked {
		t.Fatalf("at threshold: got %s", got)
	}

	small, mode := p.DigestWith([]byte("tiny"))
	if mode != hashing.ModeFull || small != hashing.Digest([]byte("tiny")) {
		t.Fatalf("small content should use full digest, got mode %s", mode)
	}
	big, mode := p.DigestWith(bytes.Repeat([]byte{'z'}, 32))
	if mode != hashing.ModeChunked || big != hashing.ChunkedDigest(bytes.Repeat([]byte{'z'}, 32), 4) {
		t.Fatalf("large content should use chunked digest, got mode %s", mode)
	}
}

func TestPolicyZeroThresholdDisablesChunking(t *testing.T) {
	p := hashing.Policy{}
	if got := p.ForSize(1 << 40); got != hashing.ModeFull {
		t.Fatalf("zero threshold must disable chunking, got %s", got)
	}
}
