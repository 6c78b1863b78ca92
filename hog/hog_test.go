package hog

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-face/images"
)

// checkerboard builds a size x size grayscale checkerboard with the given
// square edge.
func checkerboard(size, square int, dark, light uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/square+y/square)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: light})
			} else {
				img.SetGray(x, y, color.Gray{Y: dark})
			}
		}
	}
	return img
}

// uniform builds a size x size image of a single gray level.
func uniform(size int, level uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}

// TestFeatureLength verifies the descriptor length is a pure function of
// the geometry and invariant across inputs of the canonical size.
func TestFeatureLength(t *testing.T) {
	config := DefaultConfig()
	// (16-1) * (16-1) * 9 * 4 for the reference geometry.
	require.Equal(t, 3969, config.FeatureLength())

	e := NewExtractor(config)
	inputs := []image.Image{
		checkerboard(128, 8, 0, 255),
		checkerboard(128, 16, 40, 200),
		uniform(128, 127),
	}
	for _, img := range inputs {
		assert.Len(t, e.Extract(img), config.FeatureLength())
	}
}

// TestBlockNormalization checks that every block sub-vector has unit L2
// norm within tolerance, except all-zero blocks.
func TestBlockNormalization(t *testing.T) {
	e := NewExtractor(DefaultConfig())
	features := e.Extract(checkerboard(128, 8, 0, 255))

	blockLen := DefaultConfig().Bins * 4
	require.Zero(t, len(features)%blockLen)

	for offset := 0; offset < len(features); offset += blockLen {
		var norm float64
		for _, v := range features[offset : offset+blockLen] {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm > 0.5 {
			assert.InDelta(t, 1.0, norm, 1e-3)
		} else {
			assert.InDelta(t, 0.0, norm, 1e-3, "blocks are either unit-norm or empty")
		}
	}
}

// TestUniformImageYieldsZeroDescriptor: a flat input has no gradients, so
// the full descriptor must be zero rather than NaN.
func TestUniformImageYieldsZeroDescriptor(t *testing.T) {
	e := NewExtractor(DefaultConfig())
	for _, v := range e.Extract(uniform(128, 90)) {
		require.False(t, math.IsNaN(v))
		require.Zero(t, v)
	}
}

// TestContrastInvariance: mean/std normalization makes the descriptor
// independent of the absolute gray levels of the same pattern.
func TestContrastInvariance(t *testing.T) {
	e := NewExtractor(DefaultConfig())
	a := e.Extract(checkerboard(128, 8, 0, 255))
	b := e.Extract(checkerboard(128, 8, 60, 180))

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-6)
	}
}

func TestMeanGradientMagnitude(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	flat := images.Luminance(uniform(128, 90))
	assert.Zero(t, e.MeanGradientMagnitude(flat, flat.Bounds()))

	textured := images.Luminance(checkerboard(128, 8, 0, 255))
	assert.Greater(t, e.MeanGradientMagnitude(textured, textured.Bounds()), 10.0)
}

func TestNewExtractorDefaults(t *testing.T) {
	e := NewExtractor(Config{})
	assert.Equal(t, DefaultConfig(), e.Config())
}
