// Package hog - Histogram of Oriented Gradients feature extraction.
//
// The extractor converts a fixed-size pixel grid into a fixed-length
// gradient-orientation descriptor: luminance normalization, central
// difference gradients, per-cell unsigned-angle histograms and 2x2
// block-level L2 normalization.
package hog

import (
	"image"
	"math"

	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-face/images"
)

const (
	// varianceEpsilon stabilizes the luminance standard deviation.
	varianceEpsilon = 1e-6
	// blockEpsilon stabilizes the block norm denominator.
	blockEpsilon = 1e-6
	// clipRange bounds normalized luminance to [-clipRange, clipRange].
	clipRange = 3.0
)

// Config defines the extractor geometry. Every parameter changes the
// feature length, so all classifiers trained against one Config must score
// vectors produced by the same Config.
type Config struct {
	// ImageSize is the canonical square input edge in pixels.
	ImageSize int
	// CellSize is the histogram cell edge in pixels.
	CellSize int
	// Bins is the number of unsigned orientation bins over [0, 180).
	Bins int
}

// DefaultConfig returns the reference geometry: 128px inputs, 8px cells
// and 9 orientation bins, which yields 3969-length feature vectors.
func DefaultConfig() Config {
	return Config{ImageSize: 128, CellSize: 8, Bins: 9}
}

// FeatureLength returns the descriptor length produced for a canonical
// input: (cellsX-1) * (cellsY-1) * Bins * 4.
func (c Config) FeatureLength() int {
	cells := c.ImageSize / c.CellSize
	return (cells - 1) * (cells - 1) * c.Bins * 4
}

// Extractor computes HOG descriptors. It is stateless apart from its
// configuration and safe for concurrent use.
type Extractor struct {
	config Config
}

// NewExtractor creates an extractor with the given geometry. Zero-value
// fields fall back to the reference configuration.
func NewExtractor(config Config) *Extractor {
	def := DefaultConfig()
	if config.ImageSize <= 0 {
		config.ImageSize = def.ImageSize
	}
	if config.CellSize <= 0 {
		config.CellSize = def.CellSize
	}
	if config.Bins <= 0 {
		config.Bins = def.Bins
	}
	return &Extractor{config: config}
}

// Config returns the extractor geometry.
func (e *Extractor) Config() Config {
	return e.config
}

// Extract converts an image to its HOG descriptor. The image is expected
// to already be at the canonical size; the descriptor length follows the
// actual input dimensions.
func (e *Extractor) Extract(img image.Image) []float64 {
	return e.ExtractPlane(images.Luminance(img))
}

// ExtractPlane converts a luminance plane to its HOG descriptor.
//
// Arguments:
//   - p: The luminance raster to describe.
//
// Returns:
//   - The feature vector, (cellsX-1)*(cellsY-1)*Bins*4 values in
//     row-major block order. Extraction never fails; a flat input yields
//     an all-zero descriptor.
func (e *Extractor) ExtractPlane(p *images.Plane) []float64 {
	width := p.Width
	height := p.Height
	nbins := e.config.Bins

	gray := e.normalize(p)

	// Central-difference gradients on interior pixels; borders stay zero.
	gradX := make([]float32, width*height)
	gradY := make([]float32, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			gradX[i] = gray[i+1] - gray[i-1]
			gradY[i] = gray[i+width] - gray[i-width]
		}
	}

	// Per-cell orientation histograms over the unsigned angle.
	cellsX := width / e.config.CellSize
	cellsY := height / e.config.CellSize
	binWidth := 180.0 / float32(nbins)
	histograms := make([][]float64, cellsX*cellsY)
	for cy := 0; cy < cellsY; cy++ {
		for cx := 0; cx < cellsX; cx++ {
			hist := make([]float64, nbins)
			for y := cy * e.config.CellSize; y < (cy+1)*e.config.CellSize && y < height; y++ {
				for x := cx * e.config.CellSize; x < (cx+1)*e.config.CellSize && x < width; x++ {
					i := y*width + x
					gx := gradX[i]
					gy := gradY[i]
					mag := math32.Sqrt(gx*gx + gy*gy)
					angle := math32.Atan2(gy, gx) * 180 / math.Pi
					if angle < 0 {
						angle += 180
					}
					bin := int(angle / binWidth)
					// Floating rounding can land exactly on the top edge.
					if bin >= nbins {
						bin = nbins - 1
					}
					hist[bin] += float64(mag)
				}
			}
			histograms[cy*cellsX+cx] = hist
		}
	}

	// 2x2 overlapping blocks with one-cell stride, L2-normalized and
	// concatenated in row-major order.
	features := make([]float64, 0, (cellsX-1)*(cellsY-1)*nbins*4)
	block := make([]float64, nbins*4)
	for by := 0; by < cellsY-1; by++ {
		for bx := 0; bx < cellsX-1; bx++ {
			var norm float64
			idx := 0
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					hist := histograms[(by+dy)*cellsX+(bx+dx)]
					for _, v := range hist {
						block[idx] = v
						norm += v * v
						idx++
					}
				}
			}
			norm = math.Sqrt(norm + blockEpsilon)
			for _, v := range block {
				features = append(features, v/norm)
			}
		}
	}

	return features
}

// normalize converts raw luminance to a zero-mean, unit-variance raster
// clipped to [-3, 3]. The epsilon under the square root keeps flat
// patches from dividing by zero.
func (e *Extractor) normalize(p *images.Plane) []float32 {
	mean, variance := p.MeanVariance(p.Bounds())
	std := float32(math.Sqrt(variance + varianceEpsilon))
	m := float32(mean)

	gray := make([]float32, len(p.Pix))
	for i, v := range p.Pix {
		gray[i] = math32.Min(math32.Max((v-m)/std, -clipRange), clipRange)
	}
	return gray
}

// MeanGradientMagnitude computes the mean central-difference gradient
// magnitude of the raw (un-normalized) luminance inside rect. It is the
// cheap texture pre-filter used before full extraction and builds no
// histograms.
func (e *Extractor) MeanGradientMagnitude(p *images.Plane, rect image.Rectangle) float64 {
	rect = rect.Intersect(p.Bounds())
	width := rect.Dx()
	height := rect.Dy()
	if width <= 2 || height <= 2 {
		return 0
	}

	var sum float64
	for y := rect.Min.Y + 1; y < rect.Max.Y-1; y++ {
		for x := rect.Min.X + 1; x < rect.Max.X-1; x++ {
			gx := p.At(x+1, y) - p.At(x-1, y)
			gy := p.At(x, y+1) - p.At(x, y-1)
			sum += float64(math32.Sqrt(gx*gx + gy*gy))
		}
	}
	return sum / float64((width-2)*(height-2))
}
