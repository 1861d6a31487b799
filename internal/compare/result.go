package compare

import "blockscan/internal/ingest"

// Classification tags one finding with the rule that produced it.
type Classification string

const (
	// ClassExactDuplicate marks byte-identical content (full or chunked hash).
	ClassExactDuplicate Classification = "exact-duplicate"
	// ClassLogicMatch marks projects whose logic signatures align at or above
	// the configured threshold.
	ClassLogicMatch Classification = "logic-match"
	// ClassSharedAssets marks projects sharing at least the configured number
	// of identical embedded assets, independent of logic similarity.
	ClassSharedAssets Classification = "shared-asset-match"
	// ClassVisualMatch marks images whose descriptors cross the configured
	// similarity threshold.
	ClassVisualMatch Classification = "visual-match"
	// ClassDuplicate marks videos matching on both byte size and content hash.
	ClassDuplicate Classification = "duplicate"
)

// Finding is one pairwise comparison result. Findings form a set: their
// order carries no meaning.
type Finding struct {
	OwnerA         string
	OwnerB         string
	Modality       ingest.Modality
	Classification Classification
	// Score is the classification's primary metric: alignment or correlation
	// percentage (higher is more similar), Hamming distance in phash mode
	// (lower is more similar), or 100 for exact duplicates.
	Score float64
	// SharedAssets is the shared-asset count for shared-asset findings.
	SharedAssets int
	Note         string
}
