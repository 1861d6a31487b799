// Package imagesim produces perceptual descriptors for raster images and
// scores their similarity.
//
// Two descriptor modes are supported. Perceptual-hash mode compares 64-bit
// DCT hashes by Hamming distance: lower distance means more similar, and a
// configurable bit tolerance decides a match. Histogram mode compares
// normalized RGB color histograms by Pearson correlation scaled to 0-100:
// higher means more similar. Both descriptors are computed up front so one
// batch can be re-scored in either mode without re-decoding.
package imagesim

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/corona10/goimagehash"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// histogramBins is the per-channel bin count; the descriptor is a joint
// R*G*B histogram of histogramBins^3 buckets.
const histogramBins = 8

// Fingerprint is a perceptual descriptor of one raster image.
type Fingerprint struct {
	phash     *goimagehash.ImageHash
	histogram []float64
}

// ErrUndecodable reports image bytes no registered decoder understands.
var ErrUndecodable = errors.New("undecodable image")

// FromBytes decodes data and computes both descriptors. Returns
// ErrUndecodable (wrapped) when no registered format can decode the bytes.
func FromBytes(data []byte) (*Fingerprint, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return FromImage(img)
}

// FromImage computes both descriptors for an already-decoded image.
func FromImage(img image.Image) (*Fingerprint, error) {
	phash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("perception hash: %w", err)
	}
	return &Fingerprint{
		phash:     phash,
		histogram: colorHistogram(img),
	}, nil
}

// Distance returns the Hamming distance in bits between the perceptual
// hashes of a and b. Lower is more similar; 0 means visually identical at
// hash resolution.
func Distance(a, b *Fingerprint) (int, error) {
	if a == nil || b == nil {
		return 0, errors.New("nil fingerprint")
	}
	return a.phash.Distance(b.phash)
}

// Correlation returns the Pearson correlation of the color histograms of a
// and b, scaled to 0-100. Identical distributions score 100; negative
// correlations clamp to 0.
func Correlation(a, b *Fingerprint) float64 {
	if a == nil || b == nil {
		return 0
	}
	r := pearson(a.histogram, b.histogram)
	if r <= 0 {
		return 0
	}
	return r * 100
}

// HashString returns the perceptual hash in its textual form, for logging.
func (f *Fingerprint) HashString() string {
	if f == nil || f.phash == nil {
		return ""
	}
	return f.phash.ToString()
}

func colorHistogram(img image.Image) []float64 {
	hist := make([]float64, histogramBins*histogramBins*histogramBins)
	bounds := img.Bounds()
	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			ri := int(r >> 8 * histogramBins / 256)
			gi := int(g >> 8 * histogramBins / 256)
			bi := int(b >> 8 * histogramBins / 256)
			hist[(ri*histogramBins+gi)*histogramBins+bi]++
			total++
		}
	}
	if total > 0 {
		for i := range hist {
			hist[i] /= total
		}
	}
	return hist
}

func pearson(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
