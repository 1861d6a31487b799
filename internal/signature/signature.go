// Package signature extracts canonical logic signatures from block-based
// project containers.
//
// A project container is a zip archive holding one project.json manifest and
// zero or more asset entries. The signature is the ordered sequence of opcode
// tokens over all non-shadow blocks, with targets sorted by name and blocks
// iterated in manifest document order. The result is invariant to sprite
// reordering and to block-id renaming, and sensitive to the executable
// opcode sequence itself.
package signature

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"blockscan/internal/hashing"
)

// ManifestName is the manifest entry inside a project container.
const ManifestName = "project.json"

// SignatureSeparator joins signature tokens into the canonical form.
const SignatureSeparator = "\n"

// Status classifies an extraction outcome.
type Status string

const (
	// StatusOK means the container and manifest both decoded.
	StatusOK Status = "ok"
	// StatusCorruptArchive means the container itself could not be opened.
	StatusCorruptArchive Status = "corrupt-archive"
	// StatusInvalidManifest means the container opened but the manifest entry
	// was missing or not decodable as structured data.
	StatusInvalidManifest Status = "invalid-manifest"
)

// Result carries everything extracted from one project container. A failed
// extraction still carries whatever asset hashes could be read, so callers
// can distinguish a legitimately empty project from a parse failure without
// losing the asset modality.
type Result struct {
	Status      Status
	Signature   []string
	AssetHashes map[string]struct{}
	SpriteCount int
}

// Canonical returns the signature tokens joined with the fixed separator.
// An invalid or empty signature renders as the empty string.
func (r Result) Canonical() string {
	return strings.Join(r.Signature, SignatureSeparator)
}

// Options controls extraction behavior.
type Options struct {
	// Strict serializes each block's input and field literals into its token,
	// catching literal-constant copying at the cost of sensitivity to retyped
	// values.
	Strict bool
}

// Extract parses a project container. It never fails hard: a corrupt archive
// yields StatusCorruptArchive with empty sets, an undecodable manifest yields
// StatusInvalidManifest with a nil signature, zero sprite count, and the
// asset hashes that could still be read.
func Extract(data []byte, opts Options) Result {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{Status: StatusCorruptArchive, AssetHashes: map[string]struct{}{}}
	}

	assets := make(map[string]struct{})
	var manifestData []byte
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		content, err := readEntry(entry)
		if err != nil {
			continue
		}
		if entry.Name == ManifestName {
			manifestData = content
			continue
		}
		assets[hashing.Digest(content)] = struct{}{}
	}

	if manifestData == nil {
		return Result{Status: StatusInvalidManifest, AssetHashes: assets}
	}

	var m manifest
	if err := json.Unmarshal(manifestData, &m); err != nil {
		return Result{Status: StatusInvalidManifest, AssetHashes: assets}
	}

	// Stable sort keeps the original relative order of same-named targets,
	// so the signature stays deterministic even for malformed manifests.
	sort.SliceStable(m.Targets, func(i, j int) bool {
		return m.Targets[i].Name < m.Targets[j].Name
	})

	var tokens []string
	for _, t := range m.Targets {
		for _, b := range t.Blocks.blocks {
			if b.Shadow {
				continue
			}
			tokens = append(tokens, blockToken(b, opts.Strict))
		}
	}

	return Result{
		Status:      StatusOK,
		Signature:   tokens,
		AssetHashes: assets,
		SpriteCount: len(m.Targets),
	}
}

func blockToken(b block, strict bool) string {
	opcode := b.Opcode
	if opcode == "" {
		opcode = "unknown"
	}
	if !strict {
		return opcode
	}
	var sb strings.Builder
	sb.WriteString(opcode)
	writeValues(&sb, "inputs", b.Inputs)
	writeValues(&sb, "fields", b.Fields)
	return sb.String()
}

// writeValues appends a deterministic rendering of a block's value map.
// Keys are sorted; raw JSON is compacted so whitespace differences between
// producers cannot change the token.
func writeValues(sb *strings.Builder, label string, values map[string]json.RawMessage) {
	if len(values) == 0 {
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sb.WriteByte('{')
	sb.WriteString(label)
	for _, k := range keys {
		var compact bytes.Buffer
		raw := values[k]
		if err := json.Compact(&compact, raw); err != nil {
			compact.Reset()
			compact.Write(raw)
		}
		fmt.Fprintf(sb, " %s=%s", k, compact.String())
	}
	sb.WriteByte('}')
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
