// Package compare enumerates pairwise similarity findings within one batch.
//
// Each modality is scored independently; no cross-modal comparison exists.
// Classification per pair follows a fixed precedence: exact content hash
// first, then modality-specific scoring. Shared-asset findings are recorded
// independently of logic findings so reused media surfaces even when the
// logic was rewritten.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"blockscan/internal/config"
	"blockscan/internal/imagesim"
	"blockscan/internal/ingest"
	"blockscan/internal/logging"
)

// Options carries the comparison thresholds.
type Options struct {
	CodeSimilarityThreshold   float64
	SharedAssetMinimum        int
	ImageMode                 string
	ImageDistanceTolerance    int
	ImageCorrelationThreshold float64
	Workers                   int
}

// OptionsFromConfig extracts engine options from application configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		CodeSimilarityThreshold:   cfg.Analysis.CodeSimilarityThreshold,
		SharedAssetMinimum:        cfg.Analysis.SharedAssetMinimum,
		ImageMode:                 cfg.Analysis.ImageMode,
		ImageDistanceTolerance:    cfg.Analysis.ImageDistanceTolerance,
		ImageCorrelationThreshold: cfg.Analysis.ImageCorrelationThreshold,
		Workers:                   cfg.Analysis.Workers,
	}
}

// Engine scores all unordered pairs of distinct owners within each modality.
// It never mutates records; each comparison reads two immutable records and
// derives findings.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// NewEngine builds an engine. A nil logger discards logs.
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	return &Engine{opts: opts, logger: logging.NewComponentLogger(logger, "compare")}
}

// Compare scores the whole batch and returns the merged findings list.
// Only cancellation produces an error.
func (e *Engine) Compare(ctx context.Context, batch *ingest.Batch) ([]Finding, error) {
	var findings []Finding

	projectFindings, err := e.comparePairs(ctx, len(batch.Projects), func(i, j int) []Finding {
		return e.compareProjectPair(batch.Projects[i], batch.Projects[j])
	})
	if err != nil {
		return nil, err
	}
	findings = append(findings, projectFindings...)

	imageFindings, err := e.comparePairs(ctx, len(batch.Images), func(i, j int) []Finding {
		return e.compareImagePair(batch.Images[i], batch.Images[j])
	})
	if err != nil {
		return nil, err
	}
	findings = append(findings, imageFindings...)

	videoFindings, err := e.comparePairs(ctx, len(batch.Videos), func(i, j int) []Finding {
		return e.compareVideoPair(batch.Videos[i], batch.Videos[j])
	})
	if err != nil {
		return nil, err
	}
	findings = append(findings, videoFindings...)

	e.logger.Info("comparison complete",
		logging.String("batch", batch.ID),
		logging.Int("findings", len(findings)),
	)
	return findings, nil
}

// comparePairs runs fn for every unordered pair of record indexes across a
// bounded worker pool. Each worker fills its own result slot; the merge at
// the end keeps pair order, which makes runs repeatable even though finding
// order is semantically meaningless.
func (e *Engine) comparePairs(ctx context.Context, n int, fn func(i, j int) []Finding) ([]Finding, error) {
	type pair struct{ i, j int }
	pairs := make([]pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pair{i, j})
		}
	}
	if len(pairs) == 0 {
		return nil, ctx.Err()
	}

	workers := e.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}

	results := make([][]Finding, len(pairs))
	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				p := pairs[idx]
				results[idx] = fn(p.i, p.j)
			}
		}()
	}

	var err error
dispatch:
	for idx := range pairs {
		if err = ctx.Err(); err != nil {
			break dispatch
		}
		select {
		case indexes <- idx:
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		}
	}
	close(indexes)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	var merged []Finding
	for _, sub := range results {
		merged = append(merged, sub...)
	}
	return merged, nil
}

func (e *Engine) compareProjectPair(a, b ingest.ProjectRecord) []Finding {
	if a.ContentHash == b.ContentHash {
		return []Finding{{
			OwnerA:         a.Owner,
			OwnerB:         b.Owner,
			Modality:       ingest.ModalityProject,
			Classification: ClassExactDuplicate,
			Score:          100,
			Note:           "byte-identical project files",
		}}
	}

	var findings []Finding

	sigA := a.Extraction.Signature
	sigB := b.Extraction.Signature
	if len(sigA) > 0 && len(sigB) > 0 {
		ratio := AlignmentRatio(sigA, sigB) * 100
		if ratio >= e.opts.CodeSimilarityThreshold {
			findings = append(findings, Finding{
				OwnerA:         a.Owner,
				OwnerB:         b.Owner,
				Modality:       ingest.ModalityProject,
				Classification: ClassLogicMatch,
				Score:          ratio,
				Note:           fmt.Sprintf("logic similarity %.1f%% over %d and %d opcodes", ratio, len(sigA), len(sigB)),
			})
		}
	}

	if shared := intersectCount(a.Extraction.AssetHashes, b.Extraction.AssetHashes); shared >= e.opts.SharedAssetMinimum {
		findings = append(findings, Finding{
			OwnerA:         a.Owner,
			OwnerB:         b.Owner,
			Modality:       ingest.ModalityProject,
			Classification: ClassSharedAssets,
			Score:          float64(shared),
			SharedAssets:   shared,
			Note:           fmt.Sprintf("%d identical embedded assets", shared),
		})
	}

	return findings
}

func (e *Engine) compareImagePair(a, b ingest.ImageRecord) []Finding {
	if a.ContentHash == b.ContentHash {
		return []Finding{{
			OwnerA:         a.Owner,
			OwnerB:         b.Owner,
			Modality:       ingest.ModalityImage,
			Classification: ClassExactDuplicate,
			Score:          100,
			Note:           "byte-identical image files",
		}}
	}

	switch e.opts.ImageMode {
	case config.ImageModeHistogram:
		corr := imagesim.Correlation(a.Fingerprint, b.Fingerprint)
		if corr >= e.opts.ImageCorrelationThreshold {
			return []Finding{{
				OwnerA:         a.Owner,
				OwnerB:         b.Owner,
				Modality:       ingest.ModalityImage,
				Classification: ClassVisualMatch,
				Score:          corr,
				Note:           fmt.Sprintf("histogram correlation %.1f", corr),
			}}
		}
	default:
		dist, err := imagesim.Distance(a.Fingerprint, b.Fingerprint)
		if err != nil {
			e.logger.Warn("image distance unavailable",
				logging.String("owner_a", a.Owner),
				logging.String("owner_b", b.Owner),
				logging.Error(err),
			)
			return nil
		}
		if dist <= e.opts.ImageDistanceTolerance {
			return []Finding{{
				OwnerA:         a.Owner,
				OwnerB:         b.Owner,
				Modality:       ingest.ModalityImage,
				Classification: ClassVisualMatch,
				Score:          float64(dist),
				Note:           fmt.Sprintf("perceptual hash distance %d bits", dist),
			}}
		}
	}
	return nil
}

func (e *Engine) compareVideoPair(a, b ingest.VideoRecord) []Finding {
	if a.Size != b.Size || a.ContentHash != b.ContentHash {
		return nil
	}
	return []Finding{{
		OwnerA:         a.Owner,
		OwnerB:         b.Owner,
		Modality:       ingest.ModalityVideo,
		Classification: ClassDuplicate,
		Score:          100,
		Note:           "identical size and content hash",
	}}
}

func intersectCount(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	count := 0
	for hash := range a {
		if _, ok := b[hash]; ok {
			count++
		}
	}
	return count
}
