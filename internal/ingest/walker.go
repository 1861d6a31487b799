// Package ingest walks batches of submission files and nested container
// archives, producing immutable per-owner records for each modality.
//
// All archive traversal happens against in-memory byte buffers; nothing is
// written to persistent storage. Per-entry failures are isolated: a corrupt
// archive or undecodable image becomes a warning on the batch, never a
// failed run.
package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"blockscan/internal/config"
	"blockscan/internal/hashing"
	"blockscan/internal/imagesim"
	"blockscan/internal/logging"
	"blockscan/internal/owner"
	"blockscan/internal/signature"
)

// Input is one named top-level byte blob: either a flat submission file or a
// container archive.
type Input struct {
	Name string
	Data []byte
}

// Walker routes batch inputs into per-modality records.
type Walker struct {
	analysis config.Analysis
	policy   hashing.Policy
	sigOpts  signature.Options
	logger   *slog.Logger
}

// NewWalker builds a walker from configuration. A nil logger discards logs.
func NewWalker(cfg *config.Config, logger *slog.Logger) *Walker {
	return &Walker{
		analysis: cfg.Analysis,
		policy: hashing.Policy{
			ChunkThreshold: cfg.Analysis.ChunkThresholdBytes,
			Window:         cfg.Analysis.ChunkWindowBytes,
		},
		sigOpts: signature.Options{Strict: cfg.Analysis.StrictSignatures},
		logger:  logging.NewComponentLogger(logger, "walker"),
	}
}

// pending is one routed entry awaiting CPU work. Owners are claimed during
// the sequential discovery pass so identity assignment is deterministic;
// hashing, fingerprinting, and signature extraction then run concurrently.
type pending struct {
	modality Modality
	owner    string
	path     string
	data     []byte
}

// Walk ingests all inputs and returns the completed batch. The only error it
// returns is cancellation; everything else degrades to warnings.
func (w *Walker) Walk(ctx context.Context, inputs []Input) (*Batch, error) {
	state := owner.NewBatchState()
	var entries []pending

	names := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		names = append(names, input.Name)
		w.routeTopLevel(input, state, &entries)
	}

	batch := &Batch{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Inputs:    names,
	}

	projects := make([]*ProjectRecord, len(entries))
	images := make([]*ImageRecord, len(entries))
	videos := make([]*VideoRecord, len(entries))

	err := runPool(ctx, w.analysis.Workers, len(entries), func(i int) {
		entry := entries[i]
		switch entry.modality {
		case ModalityProject:
			projects[i] = w.buildProject(entry, state)
		case ModalityImage:
			images[i] = w.buildImage(entry, state)
		case ModalityVideo:
			videos[i] = w.buildVideo(entry)
		}
	})
	if err != nil {
		return nil, err
	}

	for i := range entries {
		switch {
		case projects[i] != nil:
			batch.Projects = append(batch.Projects, *projects[i])
		case images[i] != nil:
			batch.Images = append(batch.Images, *images[i])
		case videos[i] != nil:
			batch.Videos = append(batch.Videos, *videos[i])
		}
	}
	batch.Warnings = state.Warnings()

	w.logger.Info("batch ingested",
		logging.String("batch", batch.ID),
		logging.Int("projects", len(batch.Projects)),
		logging.Int("images", len(batch.Images)),
		logging.Int("videos", len(batch.Videos)),
		logging.Int("warnings", len(batch.Warnings)),
	)
	return batch, nil
}

func (w *Walker) routeTopLevel(input Input, state *owner.BatchState, entries *[]pending) {
	if isArchiveName(input.Name) || looksLikeZip(input.Data) {
		if kindFor(input.Name) == ModalityProject {
			// .sb3 containers are themselves zips; route as a project, not
			// as an archive to walk into.
			w.routeEntry(input.Name, input.Data, state, entries)
			return
		}
		if err := w.walkArchive("", input.Data, state, entries); err != nil {
			state.Warn(input.Name, "corrupt archive: "+err.Error())
			w.logger.Warn("skipping unreadable archive",
				logging.String("input", input.Name),
				logging.Error(err),
			)
		}
		return
	}
	w.routeEntry(input.Name, input.Data, state, entries)
}

// walkArchive iterates one container's entries, recursing into nested
// containers. prefix carries the path context accumulated from enclosing
// archives: a nested "Amal.zip" contributes "Amal/" to its entries' paths so
// owner inference sees the folder structure the archive represents.
func (w *Walker) walkArchive(prefix string, data []byte, state *owner.BatchState, entries *[]pending) error {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() || skipEntry(entry.Name) {
			continue
		}
		entryPath := path.Join(prefix, entry.Name)
		content, err := readArchiveEntry(entry)
		if err != nil {
			state.Warn(entryPath, "unreadable entry: "+err.Error())
			continue
		}
		if isArchiveName(entryPath) && kindFor(entryPath) != ModalityProject {
			// Nested container: recurse in memory.
			if err := w.walkArchive(stripExt(entryPath), content, state, entries); err != nil {
				state.Warn(entryPath, "corrupt nested archive: "+err.Error())
			}
			continue
		}
		w.routeEntry(entryPath, content, state, entries)
	}
	return nil
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func (w *Walker) routeEntry(entryPath string, data []byte, state *owner.BatchState, entries *[]pending) {
	kind := kindFor(entryPath)
	if kind == "" {
		w.logger.Debug("ignoring entry", logging.String("path", entryPath))
		return
	}
	identity := state.Claim(string(kind), owner.Resolve(entryPath))
	*entries = append(*entries, pending{
		modality: kind,
		owner:    identity,
		path:     entryPath,
		data:     data,
	})
}

func (w *Walker) buildProject(entry pending, state *owner.BatchState) *ProjectRecord {
	res := signature.Extract(entry.data, w.sigOpts)
	switch res.Status {
	case signature.StatusCorruptArchive:
		state.Warn(entry.path, "corrupt project container")
	case signature.StatusInvalidManifest:
		state.Warn(entry.path, "invalid project manifest")
	}
	return &ProjectRecord{
		Owner:       entry.owner,
		Path:        entry.path,
		ContentHash: hashing.Digest(entry.data),
		Extraction:  res,
	}
}

func (w *Walker) buildImage(entry pending, state *owner.BatchState) *ImageRecord {
	fp, err := imagesim.FromBytes(entry.data)
	if err != nil {
		state.Warn(entry.path, "undecodable image")
		w.logger.Warn("excluding undecodable image",
			logging.String("path", entry.path),
			logging.Error(err),
		)
		return nil
	}
	return &ImageRecord{
		Owner:       entry.owner,
		Path:        entry.path,
		ContentHash: hashing.Digest(entry.data),
		Fingerprint: fp,
	}
}

func (w *Walker) buildVideo(entry pending) *VideoRecord {
	digest, _ := w.policy.DigestWith(entry.data)
	return &VideoRecord{
		Owner:       entry.owner,
		Path:        entry.path,
		ContentHash: digest,
		Size:        int64(len(entry.data)),
	}
}

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {},
	".bmp": {}, ".webp": {}, ".tif": {}, ".tiff": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {},
}

func kindFor(name string) Modality {
	ext := strings.ToLower(path.Ext(name))
	switch {
	case ext == ".sb3":
		return ModalityProject
	default:
		if _, ok := imageExtensions[ext]; ok {
			return ModalityImage
		}
		if _, ok := videoExtensions[ext]; ok {
			return ModalityVideo
		}
		return ""
	}
}

func isArchiveName(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".zip" || ext == ".sb3"
}

func looksLikeZip(data []byte) bool {
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K'
}

// skipEntry filters operating-system metadata and junk-path markers.
func skipEntry(entryPath string) bool {
	for _, segment := range strings.Split(entryPath, "/") {
		if segment == "__MACOSX" {
			return true
		}
		if strings.HasPrefix(segment, ".") || strings.HasPrefix(segment, "~") {
			return true
		}
		switch strings.ToLower(segment) {
		case "thumbs.db", "desktop.ini":
			return true
		}
	}
	return false
}

func readArchiveEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
